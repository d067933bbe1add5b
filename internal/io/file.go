package ioutils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxNameLength is the maximum length, in runes, of a sanitized name
// (extension excluded).
const MaxNameLength = 180

// MaxNameBytes is the maximum length, in bytes, of a sanitized name. File
// systems cap a path component at 255 bytes; the rest is kept free for a
// " (k)" suffix and the extension.
const MaxNameBytes = 255 - 16

// MaxUniqueAttempts bounds the " (k)" suffixes UniquePath tries.
const MaxUniqueAttempts = 10000

// UntitledName replaces names that sanitize to nothing.
const UntitledName = "untitled"

// invalidChars matches characters that are invalid in a file name on at
// least one supported platform: \ / : * ? " < > | and control characters.
var invalidChars = regexp.MustCompile(`[\\/:*?"<>|\x00-\x1f]`)

// RenameFunc renames oldpath to newpath. It has the signature of os.Rename
// so tests can inject failures.
type RenameFunc func(oldpath, newpath string) error

// CopyFile copies a file from source to destination.
//
// The destination file is created with mode 0644 if it doesn't exist,
// or truncated if it does. The source file must exist and be readable.
//
// Example:
//
//	err := CopyFile("/tmp/export-0001.dwg", "/exports/S1.dwg")
func CopyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		destFile.Close()
		return err
	}
	return destFile.Close()
}

// MoveFile moves src onto dst.
//
// A plain rename is tried first. When it fails (typically because src and
// dst live on different devices) the file is copied and the source removed.
// If the copy fails as well, any partial destination is removed and src is
// left in place.
func MoveFile(src, dst string) error {
	renameErr := os.Rename(src, dst)
	if renameErr == nil {
		return nil
	}

	if err := CopyFile(src, dst); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("move %s: rename: %v; copy: %w", src, renameErr, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("move %s: remove source after copy: %w", src, err)
	}
	return nil
}

// WriteFileAtomic writes data to path so that readers observe either the old
// content or the new content, never a partial write.
//
// The data goes to path + ".tmp", is synced and closed, then renamed over
// path. On any failure the temp file is removed and path is untouched.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	return WriteFileAtomicWith(path, data, perm, os.Rename)
}

// WriteFileAtomicWith is WriteFileAtomic with a custom rename step.
func WriteFileAtomicWith(path string, data []byte, perm os.FileMode, rename RenameFunc) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	cleanup := func(cause error) error {
		_ = os.Remove(tmp)
		return cause
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return cleanup(err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return cleanup(err)
	}
	if err := f.Close(); err != nil {
		return cleanup(err)
	}
	if err := rename(tmp, path); err != nil {
		return cleanup(err)
	}
	return nil
}

// SanitizeFileName makes name safe to use as a single path component.
//
// The following transformations are applied:
//   - Invalid characters (\/:*?"<>| and control chars) → underscore
//   - Trailing whitespace and dots → removed (Windows limitation)
//   - Length capped at MaxNameLength runes and MaxNameBytes bytes,
//     cutting on a rune boundary
//   - Empty result → "untitled"
//
// SanitizeFileName is idempotent.
//
// Example:
//
//	SanitizeFileName("Level 1: Plan")  // Returns "Level 1_ Plan"
//	SanitizeFileName("Notes...")       // Returns "Notes"
//	SanitizeFileName(" . ")            // Returns "untitled"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = strings.TrimRightFunc(name, isTrailingJunk)

	if runes := []rune(name); len(runes) > MaxNameLength {
		name = strings.TrimRightFunc(string(runes[:MaxNameLength]), isTrailingJunk)
	}
	if len(name) > MaxNameBytes {
		cut := MaxNameBytes
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = strings.TrimRightFunc(name[:cut], isTrailingJunk)
	}

	if name == "" {
		return UntitledName
	}
	return name
}

func isTrailingJunk(r rune) bool {
	return r == '.' || unicode.IsSpace(r)
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// Exists reports whether something is present at path. Errors other than
// "not exist", such as a name too long for the file system, are returned.
func Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// UniquePath returns path if nothing exists there, otherwise the first free
// "<root> (k)<ext>" with k = 1, 2, ... up to MaxUniqueAttempts.
//
// The check is not atomic with respect to file creation; callers resolve as
// late as possible before writing.
//
// Example:
//
//	p, err := UniquePath("/exports/A101.pdf") // "/exports/A101 (1).pdf" when A101.pdf exists
func UniquePath(path string) (string, error) {
	taken, err := Exists(path)
	if err != nil {
		return "", fmt.Errorf("check %s: %w", path, err)
	}
	if !taken {
		return path, nil
	}

	ext := filepath.Ext(path)
	root := strings.TrimSuffix(path, ext)
	for k := 1; k <= MaxUniqueAttempts; k++ {
		candidate := fmt.Sprintf("%s (%d)%s", root, k, ext)
		taken, err := Exists(candidate)
		if err != nil {
			return "", fmt.Errorf("check %s: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free name for %s after %d attempts", path, MaxUniqueAttempts)
}

// RemoveIfEmpty removes dir when it contains no entries.
func RemoveIfEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return false
	}
	return os.Remove(dir) == nil
}
