package naming

import (
	"go.uber.org/zap"

	"github.com/handiism/sheet-exporter/internal/config"
	"github.com/handiism/sheet-exporter/internal/model"
)

// Kind selects one of the two patterns.
type Kind string

const (
	// KindSheet names per-sheet files.
	KindSheet Kind = "sheet"
	// KindSet names combined collection files.
	KindSet Kind = "set"
)

func (k Kind) keys() (pattern, rows string) {
	if k == KindSet {
		return config.KeyPatternSet, config.KeyPatternSetRows
	}
	return config.KeyPatternSheet, config.KeyPatternSheetRows
}

// Patterns is a snapshot of both patterns, taken once per export run.
type Patterns struct {
	Sheet []Token
	Set   []Token
}

// For returns the rows of kind.
func (p Patterns) For(kind Kind) []Token {
	if kind == KindSet {
		return p.Set
	}
	return p.Sheet
}

// Combined returns the rows used to name a combined file: the set pattern
// when it has rows, the sheet pattern otherwise.
func (p Patterns) Combined() []Token {
	if len(p.Set) > 0 {
		return p.Set
	}
	return p.Sheet
}

// Engine reads and writes patterns in the config store.
type Engine struct {
	store  config.Store
	logger *zap.Logger
	legacy bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLegacyRows makes SetRows write the legacy row encoding instead of
// JSON, for configurations shared with older installations.
func WithLegacyRows(legacy bool) EngineOption {
	return func(e *Engine) { e.legacy = legacy }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine returns an Engine over store.
func NewEngine(store config.Store, opts ...EngineOption) *Engine {
	e := &Engine{store: store, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Pattern returns the stored pattern string of kind.
func (e *Engine) Pattern(kind Kind) string {
	key, _ := kind.keys()
	return e.store.Get(key, "")
}

// Rows returns the rows of kind. When the row list is missing or
// unreadable, rows are recovered from the pattern string.
func (e *Engine) Rows(kind Kind) []Token {
	patternKey, rowsKey := kind.keys()

	if raw, ok := e.store.Lookup(rowsKey); ok {
		rows, err := DecodeRows(raw)
		if err == nil {
			return rows
		}
		e.logger.Warn("pattern rows unreadable, using pattern string",
			zap.String("kind", string(kind)), zap.Error(err))
	}
	return ParsePattern(e.store.Get(patternKey, ""))
}

// SetRows persists rows and the matching pattern string. It returns false
// if either write failed to persist.
func (e *Engine) SetRows(kind Kind, rows []Token) bool {
	patternKey, rowsKey := kind.keys()

	encoded := EncodeRows(rows)
	if e.legacy {
		encoded = EncodeLegacy(rows)
	}
	ok := e.store.Set(rowsKey, encoded)
	return e.store.Set(patternKey, Build(rows)) && ok
}

// Patterns snapshots both patterns.
func (e *Engine) Patterns() Patterns {
	return Patterns{Sheet: e.Rows(KindSheet), Set: e.Rows(KindSet)}
}

// SheetFileName names a per-sheet file. Parameters are looked up on the
// sheet, then on project.
func (e *Engine) SheetFileName(sheet *model.Sheet, project *model.Element) string {
	return FileName(e.Rows(KindSheet), model.Chain{sheet, project}, sheet.DefaultName())
}
