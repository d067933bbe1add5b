package destination

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/handiism/sheet-exporter/internal/config"
	ioutils "github.com/handiism/sheet-exporter/internal/io"
	"github.com/handiism/sheet-exporter/internal/model"
)

// ErrNoDestination reports a destination root that cannot be resolved or
// created.
var ErrNoDestination = errors.New("no usable destination")

// tempPrefix names the transient per-format directories.
const tempPrefix = "_tmp_"

// Layout is a snapshot of the destination settings for one run.
type Layout struct {
	Root          string
	PerCollection bool
	PerFormat     bool
}

// CollectionDir returns root[/collection].
func (l Layout) CollectionDir(collection string) string {
	if !l.PerCollection {
		return l.Root
	}
	return filepath.Join(l.Root, ioutils.SanitizeFileName(collection))
}

// Dir returns root[/collection][/FORMAT].
func (l Layout) Dir(collection string, format model.Format) string {
	dir := l.CollectionDir(collection)
	if l.PerFormat {
		dir = filepath.Join(dir, string(format))
	}
	return dir
}

// TempDir returns the transient directory export primitives write into,
// e.g. <collectionDir>/_tmp_dwg.
func (l Layout) TempDir(collection string, format model.Format) string {
	return filepath.Join(l.CollectionDir(collection), tempPrefix+strings.ToLower(string(format)))
}

// Service resolves and prepares destination directories.
type Service struct {
	store  config.Store
	logger *zap.Logger
}

// New creates a Service reading its settings from store.
func New(store config.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// Root returns the saved destination root, or the default.
func (s *Service) Root() string {
	root := strings.TrimSpace(s.store.Get(config.KeyDestinationRoot, ""))
	if root == "" {
		return config.DefaultDestinationRoot()
	}
	return root
}

// SetRoot persists a user override. Blank paths are rejected.
func (s *Service) SetRoot(path string) bool {
	path = strings.TrimSpace(path)
	if path == "" {
		return false
	}
	return s.store.Set(config.KeyDestinationRoot, filepath.Clean(path))
}

// Layout reads the current layout settings.
func (s *Service) Layout() Layout {
	return Layout{
		Root:          s.Root(),
		PerCollection: config.Flag(s.store, config.KeyCreateSubfolders, false),
		PerFormat:     config.Flag(s.store, config.KeySeparateFormatFolders, false),
	}
}

// Preflight resolves the root and makes sure it exists. Exporting is
// disabled when it fails.
func (s *Service) Preflight() (Layout, error) {
	layout := s.Layout()
	if layout.Root == "" {
		return layout, ErrNoDestination
	}
	if err := ioutils.EnsureDir(layout.Root); err != nil {
		s.logger.Warn("destination root unusable", zap.String("root", layout.Root), zap.Error(err))
		return layout, fmt.Errorf("%w: %s: %v", ErrNoDestination, layout.Root, err)
	}
	return layout, nil
}

// EnsureDir creates dir and its parents. It is idempotent.
func (s *Service) EnsureDir(dir string) error {
	return ioutils.EnsureDir(dir)
}

// Prepare returns the (created) directory for collection and format.
func (s *Service) Prepare(layout Layout, collection string, format model.Format) (string, error) {
	dir := layout.Dir(collection, format)
	if err := ioutils.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("prepare %s: %w", dir, err)
	}
	return dir, nil
}

// Sanitize makes name safe as a single path component.
func (s *Service) Sanitize(name string) string {
	return ioutils.SanitizeFileName(name)
}

// UniquePath returns a free path derived from path.
func (s *Service) UniquePath(path string) (string, error) {
	return ioutils.UniquePath(path)
}

// FinalPath joins dir with the sanitized base name and the format
// extension, then resolves collisions. It fails when the file system
// rejects the name.
func (s *Service) FinalPath(dir, base string, format model.Format) (string, error) {
	return ioutils.UniquePath(filepath.Join(dir, ioutils.SanitizeFileName(base)+format.Extension()))
}
