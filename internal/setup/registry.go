package setup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/handiism/sheet-exporter/internal/config"
	"github.com/handiism/sheet-exporter/internal/model"
)

// ErrSetupUnresolved reports a setup name that matches nothing.
var ErrSetupUnresolved = errors.New("setup not found")

// Setup is one selectable setup.
type Setup struct {
	Name   string
	Format model.Format
	Source model.SetupSource
	// Options is set for user-defined setups only.
	Options *model.ExportOptions
}

// Custom reports whether the setup is user-defined.
func (s Setup) Custom() bool {
	return s.Source == model.SourceCustom
}

type customEntry struct {
	Name string              `json:"name"`
	Data model.ExportOptions `json:"data"`
}

// Registry merges model-defined and user-defined setups.
type Registry struct {
	provider model.Provider
	store    config.Store
	logger   *zap.Logger
}

// New returns a Registry.
func New(provider model.Provider, store config.Store, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{provider: provider, store: store, logger: logger}
}

func customKey(format model.Format) string {
	if format == model.FormatDWG {
		return config.KeyCustomDWGSetups
	}
	return config.KeyCustomPDFSetups
}

// List returns the setups of format, sorted by name.
func (r *Registry) List(ctx context.Context, format model.Format) ([]Setup, error) {
	var (
		defined []model.ModelSetup
		err     error
	)
	switch format {
	case model.FormatPDF:
		defined, err = r.provider.PDFSetups(ctx)
	case model.FormatDWG:
		defined, err = r.provider.DWGSetups(ctx)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("list %s setups: %w", format, err)
	}

	custom := r.Custom(format)
	out := make([]Setup, 0, len(defined)+len(custom))
	out = append(out, custom...)
	for _, d := range defined {
		if strings.TrimSpace(d.Name) == "" || containsName(out, d.Name) {
			continue
		}
		out = append(out, Setup{Name: d.Name, Format: format, Source: d.Source})
	}

	slices.SortFunc(out, func(a, b Setup) int {
		return model.CompareFold(a.Name, b.Name)
	})
	return out, nil
}

func containsName(setups []Setup, name string) bool {
	return slices.ContainsFunc(setups, func(s Setup) bool {
		return strings.EqualFold(s.Name, name)
	})
}

// Find returns the setup of format named name. An exact match wins over a
// case-insensitive one.
func (r *Registry) Find(ctx context.Context, format model.Format, name string) (Setup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Setup{}, fmt.Errorf("%w: no %s setup chosen", ErrSetupUnresolved, format)
	}

	setups, err := r.List(ctx, format)
	if err != nil {
		return Setup{}, err
	}
	for _, s := range setups {
		if s.Name == name {
			return s, nil
		}
	}
	for _, s := range setups {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return Setup{}, fmt.Errorf("%w: %s setup %q", ErrSetupUnresolved, format, name)
}

// Resolve finds the setup and turns it into the selection handed to the
// export primitives.
func (r *Registry) Resolve(ctx context.Context, format model.Format, name string, separateViews bool) (model.SetupSelection, error) {
	s, err := r.Find(ctx, format, name)
	if err != nil {
		return model.SetupSelection{}, err
	}
	return model.SetupSelection{
		Name:          s.Name,
		Source:        s.Source,
		Options:       s.Options,
		SeparateViews: separateViews,
	}, nil
}

// Custom returns the user-defined setups of format in stored order. A
// malformed list reads as empty.
func (r *Registry) Custom(format model.Format) []Setup {
	entries := r.entries(format)
	out := make([]Setup, 0, len(entries))
	for _, e := range entries {
		opts := Normalize(e.Data)
		out = append(out, Setup{Name: e.Name, Format: format, Source: model.SourceCustom, Options: &opts})
	}
	return out
}

func (r *Registry) entries(format model.Format) []customEntry {
	raw := strings.TrimSpace(r.store.Get(customKey(format), ""))
	if raw == "" {
		return nil
	}

	var entries []customEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		r.logger.Warn("custom setups unreadable", zap.String("format", string(format)), zap.Error(err))
		return nil
	}
	return slices.DeleteFunc(entries, func(e customEntry) bool {
		return strings.TrimSpace(e.Name) == ""
	})
}

// SaveCustom adds or replaces a user-defined setup. Options are normalized
// before they are stored.
func (r *Registry) SaveCustom(format model.Format, name string, opts model.ExportOptions) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}

	entry := customEntry{Name: name, Data: Normalize(opts)}
	entries := r.entries(format)
	if i := slices.IndexFunc(entries, func(e customEntry) bool { return strings.EqualFold(e.Name, name) }); i >= 0 {
		entries[i] = entry
	} else {
		entries = append(entries, entry)
	}
	return r.write(format, entries)
}

// DeleteCustom removes a user-defined setup. It returns false when there
// was nothing to remove or the write failed.
func (r *Registry) DeleteCustom(format model.Format, name string) bool {
	entries := r.entries(format)
	kept := slices.DeleteFunc(slices.Clone(entries), func(e customEntry) bool {
		return strings.EqualFold(e.Name, strings.TrimSpace(name))
	})
	if len(kept) == len(entries) {
		return false
	}
	return r.write(format, kept)
}

func (r *Registry) write(format model.Format, entries []customEntry) bool {
	if entries == nil {
		entries = []customEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		r.logger.Warn("custom setups encode failed", zap.Error(err))
		return false
	}
	return r.store.Set(customKey(format), string(data))
}
