// Package plan turns the user's parameter choices into an ordered export
// plan.
//
// The user binds three Yes/No parameter names to meanings:
//
//	include    the collection is exported (as PDF)
//	per-sheet  one PDF per sheet instead of one combined PDF
//	dwg        sheets are also exported as DWG, always one file per sheet
//
// Each collection reads its three flags (absent means false) and yields one
// Entry. Entries that are not exported are kept so a UI can show them as
// skipped. Collections are ordered by name, case-insensitively, and sheets
// by number in natural order ("A2" before "A10").
//
// Plans are pure functions of the model and the selection: the same input
// marshals to the same JSON.
package plan
