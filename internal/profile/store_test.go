package profile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/handiism/sheet-exporter/internal/config"
	"github.com/handiism/sheet-exporter/internal/naming"
)

var fixedNow = func() time.Time {
	return time.Date(2026, 10, 19, 8, 30, 0, 0, time.FixedZone("CEST", 2*3600))
}

func newStore(t *testing.T, opts ...Option) (*Store, *config.KV) {
	t.Helper()
	cfg := config.NewMemory()
	path := filepath.Join(t.TempDir(), config.ProfileFileName)
	opts = append([]Option{WithClock(fixedNow), WithLogger(zaptest.NewLogger(t))}, opts...)
	return New(path, cfg, opts...), cfg
}

func TestStore_EmptyWhenMissing(t *testing.T) {
	s, _ := newStore(t)

	assert.Empty(t, s.List())
	assert.Equal(t, "", s.Active())
}

func TestStore_SaveWritesSchema(t *testing.T) {
	s, cfg := newStore(t)
	cfg.Set(config.KeyDestinationRoot, "/exports")
	cfg.Set(config.KeyPatternSheet, "{Sheet Number}")

	require.NoError(t, s.Save("  Client A "))

	profiles := s.List()
	require.Contains(t, profiles, "Client A")
	p := profiles["Client A"]
	assert.Equal(t, "Client A", p.Name)
	assert.Equal(t, "2026-10-19T06:30:00Z", p.UpdatedAt)
	assert.Equal(t, "/exports", p.Data[config.KeyDestinationRoot])
	assert.Equal(t, "{Sheet Number}", p.Data[config.KeyPatternSheet])
	assert.Len(t, p.Data, 2)

	assert.Equal(t, "Client A", s.Active())
	assert.Equal(t, "Client A", cfg.Get(config.KeyActiveProfile, ""))
	assert.NoFileExists(t, s.Path()+".tmp")
}

func TestStore_SaveIsStable(t *testing.T) {
	s, cfg := newStore(t)
	cfg.Set(config.KeyPDFSetupName, "A3")

	require.NoError(t, s.Save("p"))
	first, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	require.NoError(t, s.Save("p"))
	second, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestStore_SaveRejectsEmptyName(t *testing.T) {
	s, _ := newStore(t)
	assert.ErrorIs(t, s.Save("   "), ErrEmptyName)
	assert.NoFileExists(t, s.Path())
}

func TestStore_RoundTrip(t *testing.T) {
	s, cfg := newStore(t)

	state := map[string]string{}
	for i, k := range config.CapturedKeys {
		v := "value-" + k
		if i%3 == 0 {
			v = ""
		}
		cfg.Set(k, v)
		state[k] = v
	}
	cfg.Set(config.KeyCustomPDFSetups, "[]")

	require.NoError(t, s.Save("p"))

	for _, k := range config.CapturedKeys {
		cfg.Set(k, "mutated")
	}
	cfg.Set(config.KeyCustomPDFSetups, "changed")

	require.NoError(t, s.Load("p"))

	for k, v := range state {
		assert.Equal(t, v, cfg.Get(k, "absent"), k)
	}
	assert.Equal(t, "changed", cfg.Get(config.KeyCustomPDFSetups, ""))
}

func TestStore_RoundTripKeepsAbsentKeysAbsent(t *testing.T) {
	s, cfg := newStore(t)
	cfg.Set(config.KeyPatternSheet, "{Sheet Number}-X")
	engine := naming.NewEngine(cfg)
	before := engine.Rows(naming.KindSheet)
	require.NotEmpty(t, before)

	require.NoError(t, s.Save("p"))
	assert.NotContains(t, s.List()["p"].Data, config.KeyPatternSheetRows)

	cfg.Set(config.KeyPatternSheet, "{Sheet Name}")
	require.NoError(t, s.Load("p"))

	_, present := cfg.Lookup(config.KeyPatternSheetRows)
	assert.False(t, present)
	assert.Equal(t, "{Sheet Number}-X", cfg.Get(config.KeyPatternSheet, ""))
	assert.Equal(t, before, engine.Rows(naming.KindSheet))
}

func TestStore_LoadIgnoresUnknownAndMissingKeys(t *testing.T) {
	s, cfg := newStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte(`{
  "version": 1,
  "active_profile_key": "",
  "profiles": {
    "old": {
      "name": "old",
      "updated_at": "2020-01-01T00:00:00Z",
      "data": { "pathdossier": "/old", "legacy_key": "x" }
    }
  }
}`), 0644))
	cfg.Set(config.KeyPatternSet, "{Name}")

	require.NoError(t, s.Load("old"))

	assert.Equal(t, "/old", cfg.Get(config.KeyDestinationRoot, ""))
	assert.Equal(t, "{Name}", cfg.Get(config.KeyPatternSet, ""))
	assert.Equal(t, "", cfg.Get("legacy_key", ""))
	assert.Equal(t, "old", s.Active())
}

func TestStore_LoadUnknownProfile(t *testing.T) {
	s, _ := newStore(t)
	assert.ErrorIs(t, s.Load("nope"), ErrNotFound)
}

func TestStore_MalformedOrOutdatedReadsEmpty(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "{{{"},
		{"version zero", `{"version": 0, "profiles": {"a": {"name": "a"}}}`},
		{"no profiles", `{"version": 1}`},
		{"legacy flat", `{"a": {"pathdossier": "/x"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newStore(t)
			require.NoError(t, os.WriteFile(s.Path(), []byte(tt.content), 0644))

			assert.Empty(t, s.List())
			assert.Equal(t, "", s.Active())
		})
	}
}

func TestStore_Delete(t *testing.T) {
	s, cfg := newStore(t)
	require.NoError(t, s.Save("b"))
	require.NoError(t, s.Save("c"))
	require.NoError(t, s.Save("a"))

	require.NoError(t, s.Delete("c"))
	assert.Equal(t, "a", s.Active())
	assert.Equal(t, []string{"a", "b"}, s.Names())

	require.NoError(t, s.Delete("a"))
	assert.Equal(t, "b", s.Active())
	assert.Equal(t, "b", cfg.Get(config.KeyActiveProfile, ""))

	require.NoError(t, s.Delete("b"))
	assert.Equal(t, "", s.Active())
	assert.Empty(t, s.List())

	assert.ErrorIs(t, s.Delete("b"), ErrNotFound)
}

func TestStore_AtomicSaveKeepsOriginalOnRenameFailure(t *testing.T) {
	var failRename bool
	rename := func(oldpath, newpath string) error {
		if failRename {
			return errors.New("injected rename failure")
		}
		return os.Rename(oldpath, newpath)
	}

	s, cfg := newStore(t, WithRenameFunc(rename))
	cfg.Set(config.KeyDestinationRoot, "/first")
	require.NoError(t, s.Save("P0"))

	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	failRename = true
	cfg.Set(config.KeyDestinationRoot, "/second")
	err = s.Save("P1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProfileIO)

	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.NoFileExists(t, s.Path()+".tmp")
}

func TestStore_CSVRoundTrip(t *testing.T) {
	s, cfg := newStore(t)
	cfg.Set(config.KeyDestinationRoot, `C:\Exports, "quoted"`)
	cfg.Set(config.KeyCreateSubfolders, "1")

	csvPath := filepath.Join(t.TempDir(), "current.csv")
	require.NoError(t, s.ExportCSV(csvPath))

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "key,value\n")

	cfg.Set(config.KeyDestinationRoot, "/other")
	cfg.Set(config.KeyCreateSubfolders, "0")

	n, err := s.ImportCSV(csvPath)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, `C:\Exports, "quoted"`, cfg.Get(config.KeyDestinationRoot, ""))
	assert.Equal(t, "1", cfg.Get(config.KeyCreateSubfolders, ""))
}

func TestStore_ImportCSVWithoutHeader(t *testing.T) {
	s, cfg := newStore(t)
	csvPath := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("PathDossier,/from/csv\nunknown,x\nlonely\npattern_set,{Name}\n"), 0644))

	n, err := s.ImportCSV(csvPath)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "/from/csv", cfg.Get(config.KeyDestinationRoot, ""))
	assert.Equal(t, "{Name}", cfg.Get(config.KeyPatternSet, ""))
	assert.Equal(t, "", cfg.Get("unknown", ""))
}

func TestStore_ImportCSVMissingFile(t *testing.T) {
	s, _ := newStore(t)
	_, err := s.ImportCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, ErrProfileIO)
}
