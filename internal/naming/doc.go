// Package naming builds export file names from parameter-token patterns.
//
// A pattern is an ordered list of tokens. Each token names a parameter by
// its stable id and carries a literal prefix and suffix:
//
//	rows := []naming.Token{
//		{ID: "BIP:SHEET_NUMBER", Suffix: "_"},
//		{ID: "BIP:SHEET_NAME"},
//	}
//	naming.Build(rows)          // "{BIP:SHEET_NUMBER}_{BIP:SHEET_NAME}"
//	naming.Resolve(rows, sheet) // "A101_Plan"
//
// Two patterns exist, one per Kind (sheet and set). Both are persisted in
// the config store as a pattern string plus a row list. Row lists are
// written as JSON and read either as JSON or in the legacy single-line form
//
//	[[ "name": "<id>", "prefixe": "<pf>", "suffixe": "<sf>" ], ...]
//
// A token whose parameter is missing resolves to the empty string, never to
// its own name.
package naming
