package ioutils

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"normal-file", "normal-file"},
		{"file:with:colons", "file_with_colons"},
		{"file<with>brackets", "file_with_brackets"},
		{"file/with\\slashes", "file_with_slashes"},
		{"file|with|pipes", "file_with_pipes"},
		{"file?with*wildcards", "file_with_wildcards"},
		{"file\"with\"quotes", "file_with_quotes"},
		{"trailing dots...", "trailing dots"},
		{"trailing spaces   ", "trailing spaces"},
		{"mixed . . ", "mixed"},
		{"", "untitled"},
		{" ... ", "untitled"},
		{`A-10_Plan A/B: "North" ?`, "A-10_Plan A_B_ _North_ _"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := SanitizeFileName(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeFileName_Properties(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		`\/:*?"<>|`,
		"ends with dot.",
		"ends with space ",
		strings.Repeat("x", 500),
		strings.Repeat("a", 179) + " .b",
		strings.Repeat("é", 200),
		"tab\tinside\t",
		"...",
	}

	for _, in := range inputs {
		once := SanitizeFileName(in)
		assert.Equal(t, once, SanitizeFileName(once), "not idempotent for %q", in)
		assert.False(t, strings.ContainsAny(once, `\/:*?"<>|`), "invalid char left in %q", once)
		assert.False(t, strings.HasSuffix(once, " "), "trailing space in %q", once)
		assert.False(t, strings.HasSuffix(once, "."), "trailing dot in %q", once)
		assert.LessOrEqual(t, len([]rune(once)), MaxNameLength)
		assert.LessOrEqual(t, len(once), MaxNameBytes)
		assert.NotEmpty(t, once)
	}
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "A101_Plan.pdf")

	want := []string{
		base,
		filepath.Join(dir, "A101_Plan (1).pdf"),
		filepath.Join(dir, "A101_Plan (2).pdf"),
		filepath.Join(dir, "A101_Plan (3).pdf"),
	}

	seen := map[string]bool{}
	for i, w := range want {
		got, err := UniquePath(base)
		require.NoError(t, err)
		require.Equal(t, w, got, "call %d", i)
		require.False(t, seen[got])
		seen[got] = true
		require.NoError(t, os.WriteFile(got, []byte("x"), 0644))
	}
}

func TestUniquePath_NoExtension(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "S1")
	require.NoError(t, os.WriteFile(base, nil, 0644))

	got, err := UniquePath(base)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "S1 (1)"), got)
}

func TestUniquePath_MultiByteName(t *testing.T) {
	dir := t.TempDir()
	name := SanitizeFileName(strings.Repeat("é", 200))
	require.LessOrEqual(t, len(name), MaxNameBytes)

	path := filepath.Join(dir, name+".pdf")
	got, err := UniquePath(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	require.NoError(t, os.WriteFile(got, nil, 0644))
	second, err := UniquePath(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, name+" (1).pdf"), second)
}

func TestUniquePath_NameTooLong(t *testing.T) {
	path := filepath.Join(t.TempDir(), strings.Repeat("é", 200)+".pdf")

	done := make(chan error, 1)
	go func() {
		_, err := UniquePath(path)
		done <- err
	}()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("UniquePath did not return")
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "profil.json")

	require.NoError(t, WriteFileAtomic(path, []byte(`{"version":1}`), 0644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, string(data))
	assert.NoFileExists(t, path+".tmp")
}

func TestWriteFileAtomicWith_RenameFailureKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profil.json")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0644))

	failing := func(_, _ string) error { return errors.New("disk on fire") }
	err := WriteFileAtomicWith(path, []byte("replacement"), 0644, failing)
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
	assert.NoFileExists(t, path+".tmp")
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "export-0001.dwg")
	dst := filepath.Join(dir, "out", "S1.dwg")
	require.NoError(t, os.WriteFile(src, []byte("dwg"), 0644))
	require.NoError(t, EnsureDir(filepath.Dir(dst)))

	require.NoError(t, MoveFile(src, dst))

	assert.NoFileExists(t, src)
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "dwg", string(data))
}

func TestMoveFile_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := MoveFile(filepath.Join(dir, "missing.pdf"), filepath.Join(dir, "out.pdf"))
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "out.pdf"))
}

func TestRemoveIfEmpty(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "_tmp_pdf")
	full := filepath.Join(dir, "_tmp_dwg")
	require.NoError(t, EnsureDir(empty))
	require.NoError(t, EnsureDir(full))
	require.NoError(t, os.WriteFile(filepath.Join(full, "orphan.dwg"), nil, 0644))

	assert.True(t, RemoveIfEmpty(empty))
	assert.NoDirExists(t, empty)
	assert.False(t, RemoveIfEmpty(full))
	assert.DirExists(t, full)
}
