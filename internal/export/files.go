package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var errNoOutput = errors.New("no output produced")

// present lists the names already in dir, so files left by an earlier
// output are not collected again. A missing dir is empty.
func present(dir string) map[string]bool {
	names := map[string]bool{}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return names
	}
	for _, entry := range entries {
		names[entry.Name()] = true
	}
	return names
}

// newest returns the most recently modified file in dir with extension ext
// (case-insensitive), ignoring the names in skip. Ties go to the greater
// name.
func newest(dir, ext string, skip map[string]bool) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", dir, err)
	}

	var (
		best    string
		bestMod time.Time
	)
	for _, entry := range entries {
		if entry.IsDir() || skip[entry.Name()] || !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		mod := info.ModTime()
		if best == "" || mod.After(bestMod) || (mod.Equal(bestMod) && entry.Name() > best) {
			best, bestMod = entry.Name(), mod
		}
	}
	if best == "" {
		return "", fmt.Errorf("%w in %s", errNoOutput, dir)
	}
	return filepath.Join(dir, best), nil
}
