// Package register writes drawing registers: the list of files an export
// run produced, one row per sheet and format.
//
// # Building Rows
//
// Rows come from an export report. The plan of the run, when given,
// supplies the sheet names the report does not carry:
//
//	rows := register.Build(report, p, layout.Root)
//
// File paths are made relative to the root so the register can travel with
// the exported files.
//
// # Writing
//
// Generate a register in one of the supported formats:
//
//	creator := register.NewCreator(register.FormatCSV)
//	content, err := creator.Create(rows)
//	os.WriteFile("register.csv", content, 0644)
//
// Supported formats:
//   - CSV (header row, one row per sheet and format)
//   - Markdown (table, for transmittal notes)
//   - JSON (indented array)
//
// FormatFor picks the format from a file extension.
package register
