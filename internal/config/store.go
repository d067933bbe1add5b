package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	ioutils "github.com/handiism/sheet-exporter/internal/io"
)

// Store is a string key/value store. Reads never fail: a missing key yields
// the default. Writes report whether the value was persisted.
type Store interface {
	Get(key, def string) string
	Lookup(key string) (string, bool)
	Set(key, value string) bool
	GetList(key string, def []string) []string
}

// KV is the koanf-backed Store. It keeps values in memory and, when opened
// from a file, rewrites the file atomically after every Set.
type KV struct {
	b  *backend
	ns string
}

type backend struct {
	mu     sync.RWMutex
	k      *koanf.Koanf
	path   string
	logger *zap.Logger
}

// Option configures a KV.
type Option func(*backend)

// WithLogger sets the logger used to report persistence failures.
func WithLogger(logger *zap.Logger) Option {
	return func(b *backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewMemory returns a store that is never persisted.
func NewMemory(opts ...Option) *KV {
	b := &backend{k: koanf.New("."), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return &KV{b: b}
}

// Open loads the YAML file at path, if present, and returns a store that
// persists to it.
func Open(path string, opts ...Option) (*KV, error) {
	s := NewMemory(opts...)
	s.b.path = path

	// Nothing readable yet: start empty, the first Set creates the file.
	if _, err := os.Stat(path); err != nil {
		return s, nil
	}

	loaded := koanf.New(".")
	if err := loaded.Load(file.Provider(path), kyaml.Parser()); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	for key, value := range loaded.All() {
		if err := s.b.k.Set(normalizeKey(key), value); err != nil {
			return nil, fmt.Errorf("load %s: key %s: %w", path, key, err)
		}
	}

	return s, nil
}

// Namespace returns a view of the store whose keys live under ns.
func (s *KV) Namespace(ns string) *KV {
	return &KV{b: s.b, ns: s.qualify(ns)}
}

// Path returns the backing file, or "" for memory stores.
func (s *KV) Path() string {
	return s.b.path
}

// Get returns the value for key as a string, or def when the key is absent.
// Lists are joined with ", ".
func (s *KV) Get(key, def string) string {
	v, ok := s.Lookup(key)
	if !ok {
		return def
	}
	return v
}

// Lookup returns the value for key and whether it is present.
func (s *KV) Lookup(key string) (string, bool) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()

	full := s.qualify(key)
	if !s.b.k.Exists(full) {
		return "", false
	}
	return stringify(s.b.k.Get(full)), true
}

// Set stores value under key. It returns false when the value could not be
// persisted; the in-memory value is updated regardless.
func (s *KV) Set(key, value string) bool {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()

	full := s.qualify(key)
	if err := s.b.k.Set(full, value); err != nil {
		s.b.logger.Warn("config set failed", zap.String("key", full), zap.Error(err))
		return false
	}
	return s.b.persist()
}

// GetList returns the list stored under key. The value may be a YAML list or
// a comma-separated string; items are trimmed and empty items dropped.
func (s *KV) GetList(key string, def []string) []string {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()

	full := s.qualify(key)
	if !s.b.k.Exists(full) {
		return def
	}

	var items []string
	switch v := s.b.k.Get(full).(type) {
	case []any:
		for _, item := range v {
			items = append(items, stringify(item))
		}
	case []string:
		items = v
	default:
		items = strings.Split(stringify(v), ",")
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Keys returns the keys under the store's namespace, sorted.
func (s *KV) Keys() []string {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()

	prefix := ""
	if s.ns != "" {
		prefix = s.ns + "."
	}
	var keys []string
	for _, k := range s.b.k.Keys() {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, strings.TrimPrefix(k, prefix))
		}
	}
	sort.Strings(keys)
	return keys
}

func (s *KV) qualify(key string) string {
	key = normalizeKey(key)
	if s.ns == "" {
		return key
	}
	return s.ns + "." + key
}

// persist must be called with mu held.
func (b *backend) persist() bool {
	if b.path == "" {
		return true
	}

	data, err := yaml.Marshal(b.k.Raw())
	if err != nil {
		b.logger.Warn("config encode failed", zap.String("path", b.path), zap.Error(err))
		return false
	}
	if err := ioutils.WriteFileAtomic(b.path, data, 0644); err != nil {
		b.logger.Warn("config write failed", zap.String("path", b.path), zap.Error(err))
		return false
	}
	return true
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "1"
		}
		return "0"
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = stringify(item)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}

// Flag reads a "1"/"0" flag. "true"/"yes" are accepted as set; an absent key
// yields def.
func Flag(s Store, key string, def bool) bool {
	v, ok := s.Lookup(key)
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	case "":
		return def
	default:
		return false
	}
}

// SetFlag writes b as "1" or "0".
func SetFlag(s Store, key string, b bool) bool {
	if b {
		return s.Set(key, "1")
	}
	return s.Set(key, "0")
}
