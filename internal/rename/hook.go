package rename

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/handiism/sheet-exporter/internal/model"
)

// TransactionName is the host transaction opened by Drain.
const TransactionName = "Rename views"

// ErrNoFreeName reports a view whose name and all suffixed variants are
// taken.
var ErrNoFreeName = errors.New("no free view name")

// Renamed is one applied rename.
type Renamed struct {
	ViewportID string
	ViewID     string
	From       string
	To         string
}

// Result summarizes a drain.
type Result struct {
	Renamed []Renamed
	// Skipped counts viewports left alone: excluded views and views already
	// carrying their name.
	Skipped int
}

// Hook queues changed viewports and renames them on Drain.
type Hook struct {
	doc     model.Document
	logger  *zap.Logger
	onDrain func(*Result)

	mu     sync.Mutex
	queue  []string
	queued map[string]bool
}

// NewHook creates a Hook editing doc.
func NewHook(doc model.Document, logger *zap.Logger) *Hook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hook{doc: doc, logger: logger, queued: map[string]bool{}}
}

// OnDrain registers fn to be called by Run after every drain that renamed
// at least one view.
func (h *Hook) OnDrain(fn func(*Result)) {
	h.onDrain = fn
}

// Notify queues viewports that were added or modified. Ids already queued
// are ignored.
func (h *Hook) Notify(ids ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, id := range ids {
		if id == "" || h.queued[id] {
			continue
		}
		h.queued[id] = true
		h.queue = append(h.queue, id)
	}
}

// Pending returns the number of queued viewports.
func (h *Hook) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.queue)
}

func (h *Hook) take() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := h.queue
	h.queue = nil
	h.queued = map[string]bool{}
	return ids
}

// Drain renames every queued viewport inside one transaction. On any
// failure the transaction is rolled back and nothing is renamed. The queue
// is emptied either way.
func (h *Hook) Drain(ctx context.Context) (*Result, error) {
	ids := h.take()
	res := &Result{}
	if len(ids) == 0 {
		return res, nil
	}

	names, err := h.doc.ViewNames(ctx)
	if err != nil {
		return res, fmt.Errorf("list view names: %w", err)
	}
	taken := make(map[string]int, len(names))
	for _, n := range names {
		taken[n]++
	}

	var txn model.Transaction
	rollback := func(cause error) (*Result, error) {
		if txn != nil {
			if err := txn.Rollback(); err != nil {
				h.logger.Warn("rollback failed", zap.Error(err))
			}
		}
		return &Result{}, cause
	}

	for _, id := range ids {
		vp, err := h.doc.Viewport(ctx, id)
		if err != nil {
			return rollback(err)
		}
		if Skip(vp) {
			res.Skipped++
			continue
		}

		desired := Name(vp)
		if vp.ViewName == desired {
			res.Skipped++
			continue
		}

		name, ok := Unique(desired, func(s string) bool { return taken[s] > 0 && s != vp.ViewName })
		if !ok {
			return rollback(fmt.Errorf("%w: %s", ErrNoFreeName, desired))
		}
		if name == vp.ViewName {
			res.Skipped++
			continue
		}

		if txn == nil {
			if txn, err = h.doc.Begin(ctx, TransactionName); err != nil {
				return &Result{}, fmt.Errorf("begin: %w", err)
			}
		}
		if err := txn.RenameView(vp.ViewID, name); err != nil {
			return rollback(fmt.Errorf("rename %s: %w", vp.ViewID, err))
		}

		taken[vp.ViewName]--
		taken[name]++
		res.Renamed = append(res.Renamed, Renamed{ViewportID: id, ViewID: vp.ViewID, From: vp.ViewName, To: name})
	}

	if txn == nil {
		return res, nil
	}
	if err := txn.Commit(); err != nil {
		return &Result{}, fmt.Errorf("commit: %w", err)
	}

	h.logger.Info("views renamed", zap.Int("renamed", len(res.Renamed)), zap.Int("skipped", res.Skipped))
	return res, nil
}

// Run feeds changes into the queue and drains it on every idle tick until
// ctx is done. Drain failures are logged.
func (h *Hook) Run(ctx context.Context, changes <-chan []string, idle <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ids, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			h.Notify(ids...)
		case <-idle:
			if h.Pending() == 0 {
				continue
			}
			res, err := h.Drain(ctx)
			if err != nil {
				h.logger.Warn("rename drain failed", zap.Error(err))
				continue
			}
			if h.onDrain != nil && len(res.Renamed) > 0 {
				h.onDrain(res)
			}
		}
	}
}
