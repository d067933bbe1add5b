package profile

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/handiism/sheet-exporter/internal/config"
	ioutils "github.com/handiism/sheet-exporter/internal/io"
)

// SchemaVersion is the version written to new profile files.
const SchemaVersion = 1

// TimeFormat is the updated_at layout (ISO 8601, UTC).
const TimeFormat = "2006-01-02T15:04:05Z"

var (
	// ErrProfileIO reports a failure to read or write the profile file.
	ErrProfileIO = errors.New("profile store I/O failure")
	// ErrNotFound reports an unknown profile name.
	ErrNotFound = errors.New("profile not found")
	// ErrEmptyName reports a blank profile name.
	ErrEmptyName = errors.New("profile name is empty")
)

// Profile is one named snapshot.
type Profile struct {
	Name      string            `json:"name"`
	UpdatedAt string            `json:"updated_at"`
	Data      map[string]string `json:"data"`
}

// Schema is the on-disk container.
type Schema struct {
	Version          int                 `json:"version"`
	ActiveProfileKey string              `json:"active_profile_key"`
	Profiles         map[string]*Profile `json:"profiles"`
}

func emptySchema() *Schema {
	return &Schema{Version: SchemaVersion, Profiles: map[string]*Profile{}}
}

// Store manages the profile file.
type Store struct {
	path   string
	config config.Store
	keys   []string
	now    func() time.Time
	rename ioutils.RenameFunc
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithRenameFunc overrides the final rename of atomic writes.
func WithRenameFunc(rename ioutils.RenameFunc) Option {
	return func(s *Store) { s.rename = rename }
}

// WithCapturedKeys overrides the captured key list.
func WithCapturedKeys(keys []string) Option {
	return func(s *Store) { s.keys = keys }
}

// New returns a Store persisting to path and capturing from cfg.
func New(path string, cfg config.Store, opts ...Option) *Store {
	s := &Store{
		path:   path,
		config: cfg,
		keys:   config.CapturedKeys,
		now:    time.Now,
		rename: os.Rename,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the profile file path.
func (s *Store) Path() string {
	return s.path
}

// List returns all profiles keyed by their trimmed name.
func (s *Store) List() map[string]Profile {
	schema := s.read()
	out := make(map[string]Profile, len(schema.Profiles))
	for key, p := range schema.Profiles {
		out[key] = *p
	}
	return out
}

// Names returns the profile keys sorted.
func (s *Store) Names() []string {
	schema := s.read()
	names := make([]string, 0, len(schema.Profiles))
	for key := range schema.Profiles {
		names = append(names, key)
	}
	sort.Strings(names)
	return names
}

// Active returns the active profile key, or "".
func (s *Store) Active() string {
	return s.read().ActiveProfileKey
}

// Save snapshots the captured keys under name and makes it active.
func (s *Store) Save(name string) error {
	key := strings.TrimSpace(name)
	if key == "" {
		return ErrEmptyName
	}

	data := make(map[string]string, len(s.keys))
	for _, k := range s.keys {
		if v, ok := s.config.Lookup(k); ok {
			data[k] = v
		}
	}

	schema := s.read()
	schema.Profiles[key] = &Profile{
		Name:      key,
		UpdatedAt: s.now().UTC().Format(TimeFormat),
		Data:      data,
	}
	schema.ActiveProfileKey = key

	if err := s.write(schema); err != nil {
		return err
	}
	s.config.Set(config.KeyActiveProfile, key)
	s.logger.Info("profile saved", zap.String("profile", key), zap.Int("keys", len(data)))
	return nil
}

// Load applies the profile's captured values to the config store and makes
// it active.
func (s *Store) Load(name string) error {
	key := strings.TrimSpace(name)
	schema := s.read()
	p, ok := schema.Profiles[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}

	applied := 0
	for _, k := range s.keys {
		if v, ok := p.Data[k]; ok {
			s.config.Set(k, v)
			applied++
		}
	}

	schema.ActiveProfileKey = key
	s.config.Set(config.KeyActiveProfile, key)
	if err := s.write(schema); err != nil {
		return err
	}
	s.logger.Info("profile loaded", zap.String("profile", key), zap.Int("applied", applied))
	return nil
}

// Delete removes a profile. When it was active, the first remaining key
// (sorted) becomes active, or none.
func (s *Store) Delete(name string) error {
	key := strings.TrimSpace(name)
	schema := s.read()
	if _, ok := schema.Profiles[key]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	delete(schema.Profiles, key)

	if schema.ActiveProfileKey == key {
		schema.ActiveProfileKey = ""
		remaining := make([]string, 0, len(schema.Profiles))
		for k := range schema.Profiles {
			remaining = append(remaining, k)
		}
		sort.Strings(remaining)
		if len(remaining) > 0 {
			schema.ActiveProfileKey = remaining[0]
		}
		s.config.Set(config.KeyActiveProfile, schema.ActiveProfileKey)
	}

	return s.write(schema)
}

// ExportCSV writes the current captured values as a key,value CSV file with
// a header row.
func (s *Store) ExportCSV(path string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"key", "value"})
	for _, k := range s.keys {
		if v, ok := s.config.Lookup(k); ok {
			_ = w.Write([]string{k, v})
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrProfileIO, err)
	}

	if err := ioutils.WriteFileAtomicWith(path, buf.Bytes(), 0644, s.rename); err != nil {
		return fmt.Errorf("%w: %v", ErrProfileIO, err)
	}
	return nil
}

// ImportCSV applies a key,value CSV file to the config store. The header row
// is optional; unknown keys are ignored. It returns the number of applied
// values.
func (s *Store) ImportCSV(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrProfileIO, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	applied := 0
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return applied, fmt.Errorf("%w: %v", ErrProfileIO, err)
		}

		if first {
			first = false
			if len(row) >= 2 && strings.EqualFold(strings.TrimSpace(row[0]), "key") &&
				strings.EqualFold(strings.TrimSpace(row[1]), "value") {
				continue
			}
		}
		if len(row) < 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(row[0]))
		if !s.captures(key) {
			s.logger.Debug("csv import: unknown key ignored", zap.String("key", key))
			continue
		}
		s.config.Set(key, row[1])
		applied++
	}

	return applied, nil
}

func (s *Store) captures(key string) bool {
	for _, k := range s.keys {
		if k == key {
			return true
		}
	}
	return false
}

// read loads the schema, returning an empty one for a missing, malformed or
// outdated file.
func (s *Store) read() *Schema {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("profile file unreadable", zap.String("path", s.path), zap.Error(err))
		}
		return emptySchema()
	}

	var schema Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		s.logger.Warn("profile file malformed", zap.String("path", s.path), zap.Error(err))
		return emptySchema()
	}
	if schema.Version < 1 || schema.Profiles == nil {
		s.logger.Warn("profile file outdated", zap.String("path", s.path), zap.Int("version", schema.Version))
		return emptySchema()
	}

	for key, p := range schema.Profiles {
		if p == nil {
			delete(schema.Profiles, key)
			continue
		}
		if p.Data == nil {
			p.Data = map[string]string{}
		}
	}
	return &schema
}

func (s *Store) write(schema *Schema) error {
	if schema.Version < SchemaVersion {
		schema.Version = SchemaVersion
	}
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProfileIO, err)
	}
	data = append(data, '\n')

	if err := ioutils.WriteFileAtomicWith(s.path, data, 0644, s.rename); err != nil {
		s.logger.Warn("profile write failed", zap.String("path", s.path), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrProfileIO, err)
	}
	return nil
}
