package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKV_GetSet(t *testing.T) {
	s := NewMemory()

	assert.Equal(t, "fallback", s.Get("missing", "fallback"))
	assert.True(t, s.Set("pattern_sheet", "{Sheet Number}"))
	assert.Equal(t, "{Sheet Number}", s.Get("pattern_sheet", ""))

	v, ok := s.Lookup("pattern_sheet")
	assert.True(t, ok)
	assert.Equal(t, "{Sheet Number}", v)
}

func TestKV_KeysAreCaseInsensitive(t *testing.T) {
	s := NewMemory()
	s.Set("PathDossier", "/tmp/e")

	assert.Equal(t, "/tmp/e", s.Get(KeyDestinationRoot, ""))
	assert.Equal(t, "/tmp/e", s.Get("PATHDOSSIER", ""))
}

func TestKV_GetList(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{"csv", "a, b,c", []string{"a", "b", "c"}},
		{"empties dropped", " a ,, ,b,", []string{"a", "b"}},
		{"single", "only", []string{"only"}},
		{"empty", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewMemory()
			s.Set(KeyExcludedSheetParams, tt.value)
			assert.Equal(t, tt.want, s.GetList(KeyExcludedSheetParams, nil))
		})
	}

	assert.Equal(t, []string{"d"}, NewMemory().GetList("absent", []string{"d"}))
}

func TestKV_GetListFromYAMLList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("excluded_sheet_params:\n  - A\n  - ' b '\n  - ''\n"), 0644))

	s, err := Open(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "b"}, s.GetList(KeyExcludedSheetParams, nil))
}

func TestKV_Namespace(t *testing.T) {
	s := NewMemory()
	export := s.Namespace("export")

	export.Set("pattern_set", "{Name}")

	assert.Equal(t, "{Name}", export.Get("pattern_set", ""))
	assert.Equal(t, "", s.Get("pattern_set", ""))
	assert.Equal(t, "{Name}", s.Get("export.pattern_set", ""))
	assert.Equal(t, []string{"pattern_set"}, export.Keys())
}

func TestOpen_PersistsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "settings.yaml")

	s, err := Open(path)
	require.NoError(t, err)
	require.True(t, s.Set(KeyDestinationRoot, "/exports"))
	require.True(t, SetFlag(s, KeyCreateSubfolders, true))

	reloaded, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "/exports", reloaded.Get(KeyDestinationRoot, ""))
	assert.True(t, Flag(reloaded, KeyCreateSubfolders, false))
	assert.NoFileExists(t, path+".tmp")
}

func TestOpen_NormalizesKeysFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("PathDossier: /old\ncreate_subfolders: 1\n"), 0644))

	s, err := Open(path)
	require.NoError(t, err)

	assert.Equal(t, "/old", s.Get(KeyDestinationRoot, ""))
	assert.Equal(t, "1", s.Get(KeyCreateSubfolders, ""))
}

func TestKV_SetReportsPersistFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	s, err := Open(filepath.Join(blocker, "settings.yaml"))
	require.NoError(t, err)

	assert.False(t, s.Set("k", "v"))
	assert.Equal(t, "v", s.Get("k", ""))
}

func TestFlag(t *testing.T) {
	s := NewMemory()
	assert.True(t, Flag(s, "f", true))

	SetFlag(s, "f", false)
	assert.Equal(t, "0", s.Get("f", ""))
	assert.False(t, Flag(s, "f", true))

	s.Set("f", "true")
	assert.True(t, Flag(s, "f", false))
}

func TestLoadSettings(t *testing.T) {
	s := NewMemory()
	s.Set(KeyDestinationRoot, "/tmp/e")
	s.Set(KeySeparateFormatFolders, "1")
	s.Set(KeyExcludedSheetParams, "a,b")

	settings := LoadSettings(s)
	assert.Equal(t, "/tmp/e", settings.DestinationRoot)
	assert.True(t, settings.SeparateFormatFolders)
	assert.False(t, settings.CreateSubfolders)
	assert.Equal(t, []string{"a", "b"}, settings.ExcludedSheetParams)

	defaults := LoadSettings(NewMemory())
	assert.Equal(t, DefaultDestinationRoot(), defaults.DestinationRoot)
}

func TestSettings_Save(t *testing.T) {
	s := NewMemory()
	settings := DefaultSettings()
	settings.DestinationRoot = "/out"
	settings.CreateSubfolders = true
	settings.PDFSetupName = "A3"

	require.True(t, settings.Save(s))

	again := LoadSettings(s)
	assert.Equal(t, "/out", again.DestinationRoot)
	assert.True(t, again.CreateSubfolders)
	assert.Equal(t, "A3", again.PDFSetupName)
}

func TestIsCaptured(t *testing.T) {
	assert.True(t, IsCaptured("PathDossier"))
	assert.True(t, IsCaptured(KeyPatternSetRows))
	assert.False(t, IsCaptured(KeyCustomPDFSetups))
}

func TestLoadApp_Precedence(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "app.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("log_level: warn\nmodel: /from/file.yaml\ndata_dir: "+dir+"\n"), 0644))

	t.Setenv("SHEETEXPORT_MODEL", "/from/env.yaml")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "", "")
	require.NoError(t, flags.Parse([]string{"--log-level", "debug"}))

	cfg, err := LoadApp(cfgFile, flags)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/from/env.yaml", cfg.Model)
	assert.Equal(t, filepath.Join(dir, "settings.yaml"), cfg.Settings)
	assert.Equal(t, filepath.Join(dir, ProfileFileName), cfg.Profiles)
}
