package status

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/handiism/sheet-exporter/internal/model"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateIdle, StateProgress, true},
		{StateProgress, StateOK, true},
		{StateProgress, StateError, true},
		{StateIdle, StateError, true},
		{StateProgress, StateIdle, false},
		{StateOK, StateError, false},
		{StateError, StateProgress, false},
		{StateProgress, StateProgress, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestFormatLabel(t *testing.T) {
	assert.Equal(t, "PDF", FormatLabel(model.FormatPDF, false))
	assert.Equal(t, "PDF (combined)", FormatLabel(model.FormatPDF, true))
	assert.Equal(t, "DWG", FormatLabel(model.FormatDWG, true))
}

func TestBoard_StateMachine(t *testing.T) {
	b := NewBoard([]Item{
		{Collection: "Floors", SheetNumber: "A101", Format: LabelPDF, State: StateOK},
		{Collection: "Floors", SheetNumber: "A102", Format: LabelPDF},
	})

	items := b.Items()
	assert.Equal(t, StateIdle, items[0].State)

	b.SetDetailStatus("Floors", "A101", LabelPDF, StateProgress)
	b.SetDetailStatus("Floors", "A101", LabelPDF, StateOK)
	b.SetDetailStatus("Floors", "A101", LabelPDF, StateIdle)
	b.SetDetailStatus("Floors", "A101", LabelPDF, StateError)

	assert.Equal(t, StateOK, b.Items()[0].State)
	assert.Equal(t, 2, b.Rejected())

	b.SetCollectionStatus("Floors", StateProgress)
	b.SetCollectionStatus("Floors", StateError)
	assert.Equal(t, StateError, b.CollectionStatus("Floors"))

	assert.Equal(t, map[State]int{StateOK: 1, StateIdle: 1}, b.Counts())
}

func TestBoard_AddsUnknownRows(t *testing.T) {
	b := NewBoard(nil)
	b.SetDetailStatus("Walls", "W1", LabelDWG, StateProgress)

	items := b.Items()
	assert.Len(t, items, 1)
	assert.Equal(t, Item{Collection: "Walls", SheetNumber: "W1", Format: LabelDWG, State: StateProgress}, items[0])
}

func TestBoard_RefreshCallback(t *testing.T) {
	b := NewBoard(nil)
	calls := 0
	b.OnRefresh(func() { calls++ })

	b.Refresh()
	b.Refresh()
	assert.Equal(t, 2, calls)
}

func TestBoard_Concurrent(t *testing.T) {
	b := NewBoard(nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.SetDetailStatus("C", "S", LabelPDF, StateProgress)
			b.SetDetailStatus("C", "S", LabelPDF, StateOK)
			_ = b.Items()
		}()
	}
	wg.Wait()

	assert.Equal(t, StateOK, b.Items()[0].State)
}

func TestRecorderAndTee(t *testing.T) {
	rec := &Recorder{}
	board := NewBoard(nil)
	sink := Tee(rec, board, LogSink(zaptest.NewLogger(t)), Discard)

	rec.Progress(0, 1, "Preparing")
	sink.SetCollectionStatus("Floors", StateProgress)
	sink.SetDetailStatus("Floors", "A101", LabelPDF, StateProgress)
	sink.Refresh()

	events := rec.Events()
	assert.Len(t, events, 4)
	assert.Equal(t, "progress 0/1 Preparing", events[0].String())
	assert.Equal(t, "detail Floors/A101/PDF progress", events[2].String())

	assert.Len(t, rec.Events(EventRefresh), 1)
	assert.Equal(t, StateProgress, board.CollectionStatus("Floors"))
}
