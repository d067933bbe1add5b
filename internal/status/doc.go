// Package status defines how the export engine reports activity.
//
// The engine writes through two contracts and never reads back:
//
//   - Sink receives collection-level and sheet-level state changes, each
//     followed by a Refresh hint so a UI can redraw.
//   - ProgressFunc receives (current, total, message) with a constant total
//     and a non-decreasing current within a run.
//
// Every preview row follows the same state machine:
//
//	idle → progress → ok | error
//
// Board is a thread-safe Sink holding the preview rows for a UI. Recorder
// keeps the raw event stream, which is what tests assert on.
package status
