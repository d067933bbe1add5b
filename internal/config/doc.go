// Package config provides configuration management for sheet-exporter.
//
// This package handles:
//   - The Config Store: a namespaced key/value store with list and flag
//     accessors, kept in memory or persisted to a YAML file
//   - The typed Settings view read once per export run
//   - The CLI application settings (file locations, log level)
//
// # Config Store
//
//	store, err := config.Open("/path/to/settings.yaml")
//	if err != nil {
//	    // Fall back to config.NewMemory()
//	}
//	root := store.Get(config.KeyDestinationRoot, "")
//	store.Set(config.KeyCreateSubfolders, "1")
//	excluded := store.GetList(config.KeyExcludedSheetParams, nil)
//
// Keys are case-insensitive. Flags are stored as "1" and "0"; use Flag and
// SetFlag to read and write them. A failed write to disk makes Set return
// false but keeps the value in memory.
//
// # Settings
//
//	settings := config.LoadSettings(store)
//	// settings.DestinationRoot defaults to ~/Documents/Exports
//
// # Application settings
//
// LoadApp layers defaults, an optional sheet-export.yaml, SHEETEXPORT_*
// environment variables and command-line flags, highest last.
package config
