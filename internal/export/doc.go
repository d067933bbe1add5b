// Package export executes export plans.
//
// # Orchestrator
//
// The Orchestrator walks a plan.Plan in order and, for every exported
// collection:
//
//  1. Prepares the PDF and DWG directories of the destination layout
//  2. Calls the host's export primitives into a per-format temp directory
//  3. Moves the newest produced file onto a collision-free final path
//  4. Reports every state change through a status.Sink
//
// # Basic Usage
//
//	o := export.New(host, store,
//	    export.WithSink(board),
//	    export.WithProgress(func(i, n int, msg string) { ... }),
//	)
//
//	report, err := o.Run(ctx, p)
//	if err != nil {
//	    // destination unusable, or another run in progress
//	}
//
// # Failure Handling
//
// One failing sheet never aborts its collection: the sheet row is marked
// error and the run continues. A collection fails as a whole only when its
// setup cannot be resolved or its directories cannot be created. When the
// modern PDF primitive fails for a single sheet, the legacy print-to-file
// path is tried if the host offers one. A file that cannot be moved is left
// in the temp directory and its path is reported.
//
// Run itself only fails before any work starts: when the destination root
// is unusable (ErrNoDestination) or another run holds the orchestrator
// (ErrBusy).
//
// # Progress Tracking
//
// Progress goes to a status.ProgressFunc as (current, total, message) with
// total = number of plan entries:
//
//	(0, N, "Preparing") (i, N, "Collection: <name>") ... (N, N, "Done")
//
// Human-readable notices go to an optional callback receiving Notice:
//
//	type Notice struct {
//	    Message string
//	    Level   Level // Info, Verbose, Warning, Error, Success
//	}
package export
