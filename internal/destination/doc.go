// Package destination resolves where exported files go.
//
// The destination root comes from the config store (default
// ~/Documents/Exports). Two flags shape the layout below it:
//
//	<root>/[<collection>/][PDF|DWG/]<file>.<ext>
//
// Directories are created lazily. Final paths go through a collision
// resolver that appends " (1)", " (2)", ... to taken names.
package destination
