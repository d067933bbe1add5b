// Package ioutils holds the file helpers the export engine leans on when it
// moves files out of temporary directories and into the destination tree.
//
// Every function takes plain paths and touches only the file system:
//
//	err := ioutils.EnsureDir("/exports/Floors/PDF")
//	err = ioutils.WriteFileAtomic("/data/profil.json", data, 0644)
//	err = ioutils.MoveFile("/exports/_tmp_dwg/export-0001.dwg", "/exports/S1.dwg")
//
// MoveFile renames when it can and copies then unlinks across devices.
// WriteFileAtomic writes a sibling temp file, syncs it and renames it over
// the target, so readers never observe a partial write.
//
// SanitizeFileName makes one path component safe on Windows and Unix alike
// (`Plan A/B: "North"` becomes `Plan A_B_ _North_`). UniquePath returns the
// first free "name (n).ext" variant of a path.
package ioutils
