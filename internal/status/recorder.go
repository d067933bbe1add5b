package status

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// EventKind tells which sink call produced an Event.
type EventKind string

const (
	EventCollection EventKind = "collection"
	EventDetail     EventKind = "detail"
	EventRefresh    EventKind = "refresh"
	EventProgress   EventKind = "progress"
)

// Event is one recorded sink or progress call.
type Event struct {
	Kind       EventKind
	Collection string
	Sheet      string
	Format     string
	State      State
	Current    int
	Total      int
	Message    string
}

func (e Event) String() string {
	switch e.Kind {
	case EventCollection:
		return fmt.Sprintf("collection %s %s", e.Collection, e.State)
	case EventDetail:
		return fmt.Sprintf("detail %s/%s/%s %s", e.Collection, e.Sheet, e.Format, e.State)
	case EventProgress:
		return fmt.Sprintf("progress %d/%d %s", e.Current, e.Total, e.Message)
	default:
		return string(e.Kind)
	}
}

// Recorder is a Sink that keeps every call in order. Its Progress method
// is a ProgressFunc feeding the same stream.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// SetCollectionStatus implements Sink.
func (r *Recorder) SetCollectionStatus(collection string, state State) {
	r.add(Event{Kind: EventCollection, Collection: collection, State: state})
}

// SetDetailStatus implements Sink.
func (r *Recorder) SetDetailStatus(collection, sheet, format string, state State) {
	r.add(Event{Kind: EventDetail, Collection: collection, Sheet: sheet, Format: format, State: state})
}

// Refresh implements Sink.
func (r *Recorder) Refresh() {
	r.add(Event{Kind: EventRefresh})
}

// Progress records a progress call.
func (r *Recorder) Progress(current, total int, message string) {
	r.add(Event{Kind: EventProgress, Current: current, Total: total, Message: message})
}

func (r *Recorder) add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns the recorded events, optionally restricted to kinds.
func (r *Recorder) Events(kinds ...EventKind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(kinds) == 0 {
		return append([]Event(nil), r.events...)
	}
	var out []Event
	for _, e := range r.events {
		for _, k := range kinds {
			if e.Kind == k {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// LogSink logs every state change at debug level.
func LogSink(logger *zap.Logger) Sink {
	return logSink{logger: logger}
}

type logSink struct {
	logger *zap.Logger
}

func (l logSink) SetCollectionStatus(collection string, state State) {
	l.logger.Debug("collection status",
		zap.String("collection", collection),
		zap.Stringer("state", state))
}

func (l logSink) SetDetailStatus(collection, sheet, format string, state State) {
	l.logger.Debug("sheet status",
		zap.String("collection", collection),
		zap.String("sheet", sheet),
		zap.String("format", format),
		zap.Stringer("state", state))
}

func (l logSink) Refresh() {}
