package status

import (
	"sync"
)

type rowKey struct {
	collection string
	sheet      string
	format     string
}

// Board is an in-memory Sink holding the preview rows of the current run.
// It enforces the row state machine: illegal transitions are ignored and
// counted. Board is safe for concurrent use.
type Board struct {
	mu          sync.RWMutex
	items       []*Item
	index       map[rowKey]*Item
	collections map[string]State
	rejected    int
	onRefresh   func()
}

// NewBoard returns a Board holding items, all reset to idle.
func NewBoard(items []Item) *Board {
	b := &Board{}
	b.Reset(items)
	return b
}

// Reset replaces the rows, all idle.
func (b *Board) Reset(items []Item) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = make([]*Item, 0, len(items))
	b.index = make(map[rowKey]*Item, len(items))
	b.collections = make(map[string]State)
	b.rejected = 0
	for _, it := range items {
		it.State = StateIdle
		row := &it
		b.items = append(b.items, row)
		b.index[rowKey{it.Collection, it.SheetNumber, it.Format}] = row
		b.collections[it.Collection] = StateIdle
	}
}

// OnRefresh registers fn to be called on every Refresh.
func (b *Board) OnRefresh(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onRefresh = fn
}

// SetCollectionStatus implements Sink.
func (b *Board) SetCollectionStatus(collection string, state State) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !CanTransition(b.collections[collection], state) {
		b.rejected++
		return
	}
	b.collections[collection] = state
}

// SetDetailStatus implements Sink. Rows missing from the preview are added.
func (b *Board) SetDetailStatus(collection, sheet, format string, state State) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := rowKey{collection, sheet, format}
	row, ok := b.index[key]
	if !ok {
		row = &Item{Collection: collection, SheetNumber: sheet, Format: format}
		b.items = append(b.items, row)
		b.index[key] = row
	}

	if !CanTransition(row.State, state) {
		b.rejected++
		return
	}
	row.State = state
}

// Refresh implements Sink.
func (b *Board) Refresh() {
	b.mu.RLock()
	fn := b.onRefresh
	b.mu.RUnlock()

	if fn != nil {
		fn()
	}
}

// Items returns a copy of the rows in display order.
func (b *Board) Items() []Item {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Item, len(b.items))
	for i, row := range b.items {
		out[i] = *row
	}
	return out
}

// CollectionStatus returns the state of collection.
func (b *Board) CollectionStatus(collection string) State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.collections[collection]
}

// Counts returns the number of rows per state.
func (b *Board) Counts() map[State]int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	counts := make(map[State]int, 4)
	for _, row := range b.items {
		counts[row.State]++
	}
	return counts
}

// Rejected returns how many illegal transitions were ignored.
func (b *Board) Rejected() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rejected
}
