// Package setup lists the PDF and DWG export setups a user can pick.
//
// Setups come from two sources: the model itself (PDF-export settings and
// print settings for PDF, DWG-export settings for DWG) and user-defined
// setups stored as a JSON list in the config store:
//
//	[{"name": "A3 grey", "data": {"page_size": "A3", "colors": "grayscale", ...}}]
//
// The lists are merged with user-defined setups shadowing model setups of
// the same name, and sorted case-insensitively.
package setup
