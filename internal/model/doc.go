// Package model defines the read-only drawing model the export engine works
// on and the contracts of the host that provides it.
//
// # Elements
//
// Sheets, collections and the project-information element all carry a list
// of Parameters. A parameter is addressed by its stable id: "BIP:<TOKEN>"
// for built-in parameters, the display name otherwise.
//
//	sheet := &model.Sheet{Number: "A101", Name: "Plan"}
//	p, ok := sheet.Param("BIP:SHEET_NUMBER") // always resolvable on sheets
//
// # Provider
//
// The host (the BIM authoring environment, or the offline snapshot host) is
// represented by Provider. It exposes the model read-through and two raw
// export primitives that write into a directory chosen by the caller.
// Hosts that also offer the legacy print-to-file path implement
// LegacyPrinter.
package model
