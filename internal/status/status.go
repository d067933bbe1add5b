package status

import (
	"github.com/handiism/sheet-exporter/internal/model"
)

// State is the progress state of a preview row or a collection.
type State int

const (
	StateIdle State = iota
	StateProgress
	StateOK
	StateError
)

func (s State) String() string {
	switch s {
	case StateProgress:
		return "progress"
	case StateOK:
		return "ok"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// Terminal reports whether no further transition is allowed.
func (s State) Terminal() bool {
	return s == StateOK || s == StateError
}

// CanTransition reports whether a row in state from may move to to.
// Nothing returns to idle and terminal states stick.
func CanTransition(from, to State) bool {
	if to == StateIdle || from.Terminal() {
		return false
	}
	return from != to
}

// Format labels of detail rows.
const (
	LabelPDF         = "PDF"
	LabelDWG         = "DWG"
	LabelPDFCombined = "PDF (combined)"
)

// FormatLabel returns the detail-row label of format.
func FormatLabel(format model.Format, combined bool) string {
	if format == model.FormatDWG {
		return LabelDWG
	}
	if combined {
		return LabelPDFCombined
	}
	return LabelPDF
}

// Sink receives state changes from the engine.
type Sink interface {
	SetCollectionStatus(collection string, state State)
	SetDetailStatus(collection, sheet, format string, state State)
	Refresh()
}

// ProgressFunc receives run progress.
type ProgressFunc func(current, total int, message string)

// Item is one preview row: one (sheet, format) output.
type Item struct {
	Collection  string `json:"collection"`
	SheetNumber string `json:"sheet_number"`
	SheetName   string `json:"sheet_name"`
	PreviewName string `json:"preview_name"`
	Format      string `json:"format"`
	Combined    bool   `json:"is_combined"`
	Size        string `json:"size,omitempty"`
	Orientation string `json:"orientation,omitempty"`
	State       State  `json:"-"`
}

// Discard is a Sink that drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) SetCollectionStatus(string, State) {}

func (discard) SetDetailStatus(string, string, string, State) {}

func (discard) Refresh() {}

// Tee fans events out to several sinks in order.
func Tee(sinks ...Sink) Sink {
	return tee(sinks)
}

type tee []Sink

func (t tee) SetCollectionStatus(collection string, state State) {
	for _, s := range t {
		s.SetCollectionStatus(collection, state)
	}
}

func (t tee) SetDetailStatus(collection, sheet, format string, state State) {
	for _, s := range t {
		s.SetDetailStatus(collection, sheet, format, state)
	}
}

func (t tee) Refresh() {
	for _, s := range t {
		s.Refresh()
	}
}
