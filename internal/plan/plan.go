package plan

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

// ErrAmbiguousSelection reports an unusable choice of flag parameters.
var ErrAmbiguousSelection = errors.New("ambiguous parameter selection")

// Selection is the user's choice of flag parameters.
type Selection struct {
	Include  string `json:"include"`
	PerSheet string `json:"per_sheet"`
	DWG      string `json:"dwg"`
}

// SelectionFromSettings reads the selection out of the settings snapshot.
func SelectionFromSettings(s *config.Settings) Selection {
	return Selection{
		Include:  strings.TrimSpace(s.IncludeParam),
		PerSheet: strings.TrimSpace(s.PerSheetParam),
		DWG:      strings.TrimSpace(s.DWGParam),
	}
}

// Validate requires an include parameter and three distinct names
// (case-insensitive). Unset per-sheet and dwg names are allowed.
func (s Selection) Validate() error {
	if strings.TrimSpace(s.Include) == "" {
		return fmt.Errorf("%w: no include parameter chosen", ErrAmbiguousSelection)
	}

	named := []struct{ role, name string }{
		{"include", s.Include},
		{"per-sheet", s.PerSheet},
		{"dwg", s.DWG},
	}
	for i := range named {
		for j := i + 1; j < len(named); j++ {
			a, b := strings.TrimSpace(named[i].name), strings.TrimSpace(named[j].name)
			if a != "" && strings.EqualFold(a, b) {
				return fmt.Errorf("%w: %q is used for both %s and %s",
					ErrAmbiguousSelection, a, named[i].role, named[j].role)
			}
		}
	}
	return nil
}

// SheetRef is a sheet as listed in a plan.
type SheetRef struct {
	ID          string `json:"id"`
	Number      string `json:"number"`
	Name        string `json:"name"`
	Size        string `json:"size,omitempty"`
	Orientation string `json:"orientation,omitempty"`

	sheet *model.Sheet
}

// Sheet returns the model sheet behind the reference.
func (r SheetRef) Sheet() *model.Sheet {
	if r.sheet != nil {
		return r.sheet
	}
	return &model.Sheet{Element: model.Element{ID: r.ID}, Number: r.Number, Name: r.Name,
		Size: r.Size, Orientation: r.Orientation}
}

// Entry is the plan for one collection.
type Entry struct {
	Collection   string     `json:"collection"`
	CollectionID string     `json:"collection_id"`
	Export       bool       `json:"export"`
	DoPDF        bool       `json:"do_pdf"`
	DoDWG        bool       `json:"do_dwg"`
	PerSheet     bool       `json:"per_sheet"`
	Sheets       []SheetRef `json:"sheets"`

	collection *model.Collection
}

// CollectionElement returns the collection behind the entry.
func (e Entry) CollectionElement() *model.Collection {
	if e.collection != nil {
		return e.collection
	}
	return &model.Collection{Element: model.Element{ID: e.CollectionID}, Name: e.Collection}
}

// ModelSheets returns the entry's sheets in plan order.
func (e Entry) ModelSheets() []*model.Sheet {
	out := make([]*model.Sheet, len(e.Sheets))
	for i, r := range e.Sheets {
		out[i] = r.Sheet()
	}
	return out
}

// Plan is the ordered list of entries.
type Plan struct {
	Selection Selection `json:"selection"`
	Entries   []Entry   `json:"entries"`
}

// Exported returns the entries that will be exported.
func (p *Plan) Exported() []Entry {
	var out []Entry
	for _, e := range p.Entries {
		if e.Export {
			out = append(out, e)
		}
	}
	return out
}

// NeedsPDF reports whether any exported entry produces PDF.
func (p *Plan) NeedsPDF() bool {
	return slices.ContainsFunc(p.Entries, func(e Entry) bool { return e.Export && e.DoPDF })
}

// NeedsDWG reports whether any exported entry produces DWG.
func (p *Plan) NeedsDWG() bool {
	return slices.ContainsFunc(p.Entries, func(e Entry) bool { return e.Export && e.DoDWG })
}

// JSON returns the indented JSON form of the plan.
func (p *Plan) JSON() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// Planner builds plans from a model provider.
type Planner struct {
	provider model.Provider
	logger   *zap.Logger
}

// New returns a Planner.
func New(provider model.Provider, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{provider: provider, logger: logger}
}

// Plan computes the export plan for sel. Sheets without a known collection
// are ignored.
func (pl *Planner) Plan(ctx context.Context, sel Selection) (*Plan, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	collections, err := pl.provider.Collections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	sheets, err := pl.provider.Sheets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sheets: %w", err)
	}

	byCollection := make(map[string][]*model.Sheet, len(collections))
	for _, c := range collections {
		byCollection[c.ID] = nil
	}
	orphans := 0
	for _, s := range sheets {
		if _, ok := byCollection[s.CollectionID]; !ok || s.CollectionID == "" {
			orphans++
			continue
		}
		byCollection[s.CollectionID] = append(byCollection[s.CollectionID], s)
	}

	ordered := slices.Clone(collections)
	slices.SortStableFunc(ordered, func(a, b *model.Collection) int {
		if c := model.CompareFold(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	p := &Plan{Selection: sel, Entries: make([]Entry, 0, len(ordered))}
	for _, c := range ordered {
		entry := Entry{
			Collection:   c.Name,
			CollectionID: c.ID,
			Export:       flag(c, sel.Include),
			PerSheet:     flag(c, sel.PerSheet),
			collection:   c,
		}
		entry.DoPDF = entry.Export
		entry.DoDWG = flag(c, sel.DWG)

		members := byCollection[c.ID]
		slices.SortStableFunc(members, func(a, b *model.Sheet) int {
			if n := model.CompareNatural(a.Number, b.Number); n != 0 {
				return n
			}
			return strings.Compare(a.ID, b.ID)
		})
		entry.Sheets = make([]SheetRef, len(members))
		for i, s := range members {
			entry.Sheets[i] = SheetRef{
				ID:          s.ID,
				Number:      s.Number,
				Name:        s.Name,
				Size:        s.Size,
				Orientation: s.Orientation,
				sheet:       s,
			}
		}

		p.Entries = append(p.Entries, entry)
	}

	pl.logger.Debug("plan built",
		zap.Int("entries", len(p.Entries)),
		zap.Int("exported", len(p.Exported())),
		zap.Int("orphan_sheets", orphans))

	return p, nil
}

func flag(c *model.Collection, name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	p, ok := c.Param(name)
	return ok && p.Bool()
}
