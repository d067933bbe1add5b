package params

import (
	"context"
	"fmt"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/sheet-exporter/internal/config"
	"github.com/handiism/sheet-exporter/internal/model"
)

// DefaultSampleSize is the number of sheets inspected without a full scan.
const DefaultSampleSize = 20

const cacheSize = 8

// Role selects the filter applied to definitions.
type Role int

const (
	// RoleFlag keeps writable Yes/No parameters.
	RoleFlag Role = iota
	// RoleNaming keeps every parameter.
	RoleNaming
)

// Choice is one selectable parameter.
type Choice struct {
	DisplayName string `json:"display_name"`
	StableID    string `json:"stable_id"`
}

// Repository enumerates parameter definitions through a model provider and
// caches them per scope for the session.
type Repository struct {
	provider model.Provider
	store    config.Store
	sample   int
	fullScan bool
	cache    *lru.Cache[model.Scope, []model.Descriptor]
	logger   *zap.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithSampleSize sets how many sheets are inspected.
func WithSampleSize(n int) Option {
	return func(r *Repository) {
		if n > 0 {
			r.sample = n
		}
	}
}

// WithFullScan inspects every sheet.
func WithFullScan(full bool) Option {
	return func(r *Repository) { r.fullScan = full }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Repository. store provides the excluded parameter list.
func New(provider model.Provider, store config.Store, opts ...Option) (*Repository, error) {
	cache, err := lru.New[model.Scope, []model.Descriptor](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create parameter cache: %w", err)
	}

	r := &Repository{
		provider: provider,
		store:    store,
		sample:   DefaultSampleSize,
		cache:    cache,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Invalidate drops every cached scope.
func (r *Repository) Invalidate() {
	r.cache.Purge()
}

// Descriptors returns the unfiltered definitions of scope, de-duplicated by
// stable id in discovery order.
func (r *Repository) Descriptors(ctx context.Context, scope model.Scope) ([]model.Descriptor, error) {
	if cached, ok := r.cache.Get(scope); ok {
		return cached, nil
	}

	elements, err := r.elements(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list %s parameters: %w", scope, err)
	}

	seen := make(map[string]bool)
	var out []model.Descriptor
	for _, params := range elements {
		for _, p := range params {
			d := p.Descriptor(scope)
			if d.ID == "" || seen[d.ID] {
				continue
			}
			seen[d.ID] = true
			out = append(out, d)
		}
	}

	r.logger.Debug("parameters collected",
		zap.Stringer("scope", scope),
		zap.Int("elements", len(elements)),
		zap.Int("definitions", len(out)))

	r.cache.Add(scope, out)
	return out, nil
}

// Scopes lists every parameter scope.
var Scopes = []model.Scope{model.ScopeProject, model.ScopeCollection, model.ScopeSheet}

// Warm loads the given scopes, or all of them, concurrently into the cache.
func (r *Repository) Warm(ctx context.Context, scopes ...model.Scope) error {
	if len(scopes) == 0 {
		scopes = Scopes
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, scope := range scopes {
		g.Go(func() error {
			_, err := r.Descriptors(ctx, scope)
			return err
		})
	}
	return g.Wait()
}

// elements returns the parameter lists of every element inspected for
// scope.
func (r *Repository) elements(ctx context.Context, scope model.Scope) ([][]model.Parameter, error) {
	switch scope {
	case model.ScopeProject:
		info, err := r.provider.ProjectInfo(ctx)
		if err != nil {
			return nil, err
		}
		if info == nil {
			return nil, nil
		}
		return [][]model.Parameter{info.Params}, nil

	case model.ScopeCollection:
		collections, err := r.provider.Collections(ctx)
		if err != nil {
			return nil, err
		}
		out := make([][]model.Parameter, 0, len(collections))
		for _, c := range collections {
			out = append(out, c.Params)
		}
		return out, nil

	case model.ScopeSheet:
		sheets, err := r.provider.Sheets(ctx)
		if err != nil {
			return nil, err
		}
		if !r.fullScan && len(sheets) > r.sample {
			sheets = sheets[:r.sample]
		}
		out := make([][]model.Parameter, 0, len(sheets)+1)
		out = append(out, sheetBuiltIns())
		for _, s := range sheets {
			out = append(out, s.Params)
		}
		return out, nil
	}

	return nil, fmt.Errorf("unknown scope %d", scope)
}

// sheetBuiltIns are the read-only built-ins every sheet carries.
func sheetBuiltIns() []model.Parameter {
	return []model.Parameter{
		{Name: model.SheetNumberName, BuiltIn: model.BuiltInSheetNumber, ReadOnly: true, LegacyType: "Text"},
		{Name: model.SheetNameName, BuiltIn: model.BuiltInSheetName, ReadOnly: true, LegacyType: "Text"},
	}
}

// Choices returns the definitions of scope accepted by role, sorted by
// display name.
func (r *Repository) Choices(ctx context.Context, scope model.Scope, role Role) ([]Choice, error) {
	descriptors, err := r.Descriptors(ctx, scope)
	if err != nil {
		return nil, err
	}

	excluded := r.store.GetList(config.KeyExcludedSheetParams, nil)

	var out []Choice
	for _, d := range descriptors {
		if !Accept(d, role, excluded) {
			continue
		}
		out = append(out, Choice{DisplayName: d.Name, StableID: d.ID})
	}

	slices.SortFunc(out, func(a, b Choice) int {
		return model.CompareFold(a.DisplayName, b.DisplayName)
	})
	return out, nil
}

// FlagParameters returns the display names of the writable Yes/No
// parameters of scope.
func (r *Repository) FlagParameters(ctx context.Context, scope model.Scope) ([]string, error) {
	choices, err := r.Choices(ctx, scope, RoleFlag)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(choices))
	for i, c := range choices {
		names[i] = c.DisplayName
	}
	return names, nil
}

// Accept reports whether d passes the filter of role.
func Accept(d model.Descriptor, role Role, excluded []string) bool {
	if strings.HasPrefix(d.Name, "_") {
		return false
	}
	for _, x := range excluded {
		if strings.EqualFold(strings.TrimSpace(x), d.Name) {
			return false
		}
	}
	if role == RoleFlag {
		return !d.ReadOnly && d.Kind == model.KindYesNo
	}
	return true
}
