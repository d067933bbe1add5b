// Package params enumerates the parameter definitions available to the
// export UI.
//
// Definitions are collected per scope: the project-info element, every
// collection, and a bounded sample of sheets (the engine only needs the
// schema, and sheet schemas are normally uniform). A full scan can be forced
// when a project mixes sheet schemas.
//
// Two roles filter the result:
//
//	RoleFlag    writable Yes/No parameters, for the include / per-sheet / dwg pickers
//	RoleNaming  every parameter, for naming tokens
//
// Both roles drop names starting with "_" and names listed in the
// excluded_sheet_params setting (case-insensitive). Results are sorted by
// display name, case-insensitively.
package params
