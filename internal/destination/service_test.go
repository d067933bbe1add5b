package destination

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/sheet-exporter/internal/config"
	"github.com/handiism/sheet-exporter/internal/model"
)

func TestService_Root(t *testing.T) {
	store := config.NewMemory()
	s := New(store, nil)

	assert.Equal(t, config.DefaultDestinationRoot(), s.Root())

	assert.False(t, s.SetRoot("  "))
	assert.True(t, s.SetRoot("/tmp/e/"))
	assert.Equal(t, "/tmp/e", s.Root())
	assert.Equal(t, "/tmp/e", store.Get("PathDossier", ""))
}

func TestLayout_Dir(t *testing.T) {
	tests := []struct {
		name          string
		perCollection bool
		perFormat     bool
		format        model.Format
		want          string
	}{
		{"flat", false, false, model.FormatPDF, "/e"},
		{"per collection", true, false, model.FormatPDF, "/e/Floors_Plans"},
		{"per format", false, true, model.FormatDWG, "/e/DWG"},
		{"both", true, true, model.FormatPDF, "/e/Floors_Plans/PDF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Layout{Root: "/e", PerCollection: tt.perCollection, PerFormat: tt.perFormat}
			assert.Equal(t, filepath.FromSlash(tt.want), l.Dir("Floors/Plans", tt.format))
		})
	}
}

func TestLayout_TempDir(t *testing.T) {
	l := Layout{Root: "/e", PerCollection: true, PerFormat: true}
	assert.Equal(t, filepath.FromSlash("/e/Floors/_tmp_dwg"), l.TempDir("Floors", model.FormatDWG))

	flat := Layout{Root: "/e"}
	assert.Equal(t, filepath.FromSlash("/e/_tmp_pdf"), flat.TempDir("Floors", model.FormatPDF))
}

func TestService_LayoutReadsFlags(t *testing.T) {
	store := config.NewMemory()
	store.Set(config.KeyDestinationRoot, "/x")
	store.Set(config.KeyCreateSubfolders, "1")
	store.Set(config.KeySeparateFormatFolders, "0")

	l := New(store, nil).Layout()
	assert.Equal(t, Layout{Root: "/x", PerCollection: true}, l)
}

func TestService_Preflight(t *testing.T) {
	root := filepath.Join(t.TempDir(), "exports", "nested")
	store := config.NewMemory()
	store.Set(config.KeyDestinationRoot, root)

	l, err := New(store, nil).Preflight()
	require.NoError(t, err)
	assert.Equal(t, root, l.Root)
	assert.DirExists(t, root)
}

func TestService_PreflightFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	store := config.NewMemory()
	store.Set(config.KeyDestinationRoot, filepath.Join(blocker, "sub"))

	_, err := New(store, nil).Preflight()
	assert.True(t, errors.Is(err, ErrNoDestination))
}

func TestService_PrepareAndFinalPath(t *testing.T) {
	root := t.TempDir()
	s := New(config.NewMemory(), nil)
	l := Layout{Root: root, PerCollection: true, PerFormat: true}

	dir, err := s.Prepare(l, "Floors", model.FormatPDF)
	require.NoError(t, err)
	assert.DirExists(t, dir)

	first, err := s.FinalPath(dir, "A101_Plan", model.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "A101_Plan.pdf"), first)
	require.NoError(t, os.WriteFile(first, nil, 0644))

	second, err := s.FinalPath(dir, "A101_Plan", model.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "A101_Plan (1).pdf"), second)

	third, err := s.FinalPath(dir, "a/b", model.FormatDWG)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a_b.dwg"), third)
}
