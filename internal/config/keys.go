package config

// Config keys consumed by the export engine. Keys are case-insensitive, so
// KeyDestinationRoot also matches the historical "PathDossier" spelling.
const (
	KeyDestinationRoot       = "pathdossier"
	KeyCreateSubfolders      = "create_subfolders"
	KeySeparateFormatFolders = "separate_format_folders"

	KeyPatternSheet     = "pattern_sheet"
	KeyPatternSet       = "pattern_set"
	KeyPatternSheetRows = "pattern_sheet_rows"
	KeyPatternSetRows   = "pattern_set_rows"

	KeyPDFSetupName     = "pdf_setup_name"
	KeyDWGSetupName     = "dwg_setup_name"
	KeyPDFSeparateViews = "pdf_separate_views"
	KeyDWGSeparateViews = "dwg_separate_views"
	KeyCustomPDFSetups  = "custom_pdf_setups"
	KeyCustomDWGSetups  = "custom_dwg_setups"

	KeyExcludedSheetParams = "excluded_sheet_params"

	// The three Yes/No parameters chosen by the user.
	KeyIncludeParam  = "sheet_param_exportcombo"
	KeyPerSheetParam = "sheet_param_carnetcombo"
	KeyDWGParam      = "sheet_param_dwgcombo"

	// KeyActiveProfile mirrors the profile store's active key.
	KeyActiveProfile = "active_profile_key"
)

// CapturedKeys are the keys snapshotted by profiles. The list is stable:
// profile files written by earlier versions rely on it.
var CapturedKeys = []string{
	KeySeparateFormatFolders,
	KeyCreateSubfolders,
	KeyPerSheetParam,
	KeyDWGParam,
	KeyPatternSheet,
	KeyPatternSet,
	KeyPatternSetRows,
	KeyDestinationRoot,
	KeyPatternSheetRows,
	KeyPDFSetupName,
	KeyDWGSetupName,
}

// IsCaptured reports whether key is one of CapturedKeys.
func IsCaptured(key string) bool {
	key = normalizeKey(key)
	for _, k := range CapturedKeys {
		if k == key {
			return true
		}
	}
	return false
}
