package config

import (
	"os"
	"path/filepath"
)

// Settings is the typed view of the Config Store read once per export run.
type Settings struct {
	// Destination
	DestinationRoot       string
	CreateSubfolders      bool
	SeparateFormatFolders bool

	// Setups
	PDFSetupName     string
	DWGSetupName     string
	PDFSeparateViews bool
	DWGSeparateViews bool

	// Parameter selection
	IncludeParam        string
	PerSheetParam       string
	DWGParam            string
	ExcludedSheetParams []string
}

// DefaultDestinationRoot returns ~/Documents/Exports.
func DefaultDestinationRoot() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, "Documents", "Exports")
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		DestinationRoot:       DefaultDestinationRoot(),
		CreateSubfolders:      false,
		SeparateFormatFolders: false,
	}
}

// LoadSettings reads settings from store, falling back to defaults for
// absent keys.
func LoadSettings(store Store) *Settings {
	d := DefaultSettings()
	return &Settings{
		DestinationRoot:       store.Get(KeyDestinationRoot, d.DestinationRoot),
		CreateSubfolders:      Flag(store, KeyCreateSubfolders, d.CreateSubfolders),
		SeparateFormatFolders: Flag(store, KeySeparateFormatFolders, d.SeparateFormatFolders),

		PDFSetupName:     store.Get(KeyPDFSetupName, ""),
		DWGSetupName:     store.Get(KeyDWGSetupName, ""),
		PDFSeparateViews: Flag(store, KeyPDFSeparateViews, false),
		DWGSeparateViews: Flag(store, KeyDWGSeparateViews, false),

		IncludeParam:        store.Get(KeyIncludeParam, ""),
		PerSheetParam:       store.Get(KeyPerSheetParam, ""),
		DWGParam:            store.Get(KeyDWGParam, ""),
		ExcludedSheetParams: store.GetList(KeyExcludedSheetParams, nil),
	}
}

// Save writes every setting back to store. It returns false if any write
// failed to persist.
func (s *Settings) Save(store Store) bool {
	ok := true
	ok = store.Set(KeyDestinationRoot, s.DestinationRoot) && ok
	ok = SetFlag(store, KeyCreateSubfolders, s.CreateSubfolders) && ok
	ok = SetFlag(store, KeySeparateFormatFolders, s.SeparateFormatFolders) && ok
	ok = store.Set(KeyPDFSetupName, s.PDFSetupName) && ok
	ok = store.Set(KeyDWGSetupName, s.DWGSetupName) && ok
	ok = SetFlag(store, KeyPDFSeparateViews, s.PDFSeparateViews) && ok
	ok = SetFlag(store, KeyDWGSeparateViews, s.DWGSeparateViews) && ok
	ok = store.Set(KeyIncludeParam, s.IncludeParam) && ok
	ok = store.Set(KeyPerSheetParam, s.PerSheetParam) && ok
	ok = store.Set(KeyDWGParam, s.DWGParam) && ok
	return ok
}
