// Package rename names views after the sheet they are placed on.
//
// A placed view is named
//
//	<sheet number>_<level or NA>_<title on sheet or NA>_<detail number>.<scale>
//
// for example "A101_Level 1_NA_3.100". Read-only views, templates and
// sheet-like view types (drawing sheets, legends, schedules, reports) are
// left alone.
//
// The Hook collects changed viewports and renames them in a single host
// transaction when drained, typically when the host goes idle.
package rename
