package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/handiism/sheet-exporter/internal/model"
)

// ErrTxnClosed reports use of a committed or rolled back transaction.
var ErrTxnClosed = errors.New("transaction closed")

// Viewport implements model.Document.
func (h *Host) Viewport(ctx context.Context, id string) (*model.Viewport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, vp := range h.snap.Viewports {
		if vp.ID == id {
			cp := *vp
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("viewport %s: %w", id, ErrNotFound)
}

// Viewports returns the ids of every placed viewport.
func (h *Host) Viewports() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, len(h.snap.Viewports))
	for i, vp := range h.snap.Viewports {
		ids[i] = vp.ID
	}
	return ids
}

// ViewNames implements model.Document.
func (h *Host) ViewNames(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.snap.Viewports))
	for _, vp := range h.snap.Viewports {
		names = append(names, vp.ViewName)
	}
	return names, nil
}

// Begin implements model.Document.
func (h *Host) Begin(ctx context.Context, name string) (model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &txn{host: h, name: name, renames: map[string]string{}}, nil
}

// txn stages renames until Commit.
type txn struct {
	host    *Host
	name    string
	order   []string
	renames map[string]string
	closed  bool
}

func (t *txn) RenameView(viewID, name string) error {
	if t.closed {
		return ErrTxnClosed
	}

	h := t.host
	h.mu.RLock()
	fail := h.fail
	found := false
	for _, vp := range h.snap.Viewports {
		if vp.ViewID == viewID {
			found = true
			break
		}
	}
	h.mu.RUnlock()

	if !found {
		return fmt.Errorf("view %s: %w", viewID, ErrNotFound)
	}
	if fail != nil {
		if err := fail(OpRename, nil); err != nil {
			return err
		}
	}

	if _, ok := t.renames[viewID]; !ok {
		t.order = append(t.order, viewID)
	}
	t.renames[viewID] = name
	return nil
}

func (t *txn) Commit() error {
	if t.closed {
		return ErrTxnClosed
	}
	t.closed = true

	h := t.host
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, viewID := range t.order {
		for _, vp := range h.snap.Viewports {
			if vp.ViewID == viewID {
				vp.ViewName = t.renames[viewID]
			}
		}
	}
	h.calls = append(h.calls, Call{Op: OpRename, Sheets: append([]string(nil), t.order...)})
	return nil
}

func (t *txn) Rollback() error {
	if t.closed {
		return ErrTxnClosed
	}
	t.closed = true
	t.renames = nil
	t.order = nil
	return nil
}
