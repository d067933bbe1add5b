package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	ioutils "github.com/handiism/sheet-exporter/internal/io"
	"github.com/handiism/sheet-exporter/internal/model"
)

// ErrNotFound reports an unknown element id.
var ErrNotFound = errors.New("element not found")

// Op names a host primitive, for fault injection and call recording.
type Op string

const (
	OpPDF    Op = "pdf"
	OpDWG    Op = "dwg"
	OpPrint  Op = "print"
	OpRename Op = "rename"
)

// FailFunc decides whether a primitive call fails. A nil error lets the
// call proceed.
type FailFunc func(op Op, sheets []*model.Sheet) error

// SilentFunc decides whether a primitive call succeeds without writing any
// file.
type SilentFunc func(op Op, sheets []*model.Sheet) bool

// Call records one primitive invocation.
type Call struct {
	Op      Op
	Dir     string
	Path    string
	Sheets  []string
	Combine bool
	Setup   string
}

// Host serves a Snapshot as a model provider. It is safe for concurrent
// use.
type Host struct {
	mu     sync.RWMutex
	snap   *Snapshot
	seq    int
	calls  []Call
	fail   FailFunc
	silent SilentFunc
	logger *zap.Logger
}

// Option configures a Host.
type Option func(*Host)

// WithFailures injects primitive failures.
func WithFailures(fail FailFunc) Option {
	return func(h *Host) { h.fail = fail }
}

// WithSilentOps makes the given primitives succeed without writing any
// file.
func WithSilentOps(ops ...Op) Option {
	set := map[Op]bool{}
	for _, op := range ops {
		set[op] = true
	}
	return WithSilent(func(op Op, _ []*model.Sheet) bool { return set[op] })
}

// WithSilent makes the calls silent picks succeed without writing any file.
func WithSilent(silent SilentFunc) Option {
	return func(h *Host) { h.silent = silent }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Host) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// New returns a Host serving snap.
func New(snap *Snapshot, opts ...Option) *Host {
	if snap == nil {
		snap = &Snapshot{}
	}
	h := &Host{snap: snap, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Open loads the snapshot at path and serves it.
func Open(path string, opts ...Option) (*Host, error) {
	snap, err := Load(path)
	if err != nil {
		return nil, err
	}
	return New(snap, opts...), nil
}

// Snapshot returns the served snapshot.
func (h *Host) Snapshot() *Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snap
}

// Replace swaps the served snapshot.
func (h *Host) Replace(snap *Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snap = snap
}

// Calls returns the recorded primitive calls.
func (h *Host) Calls() []Call {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Call(nil), h.calls...)
}

// ProjectInfo implements model.Provider.
func (h *Host) ProjectInfo(ctx context.Context) (*model.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return &h.snap.Project, nil
}

// Collections implements model.Provider.
func (h *Host) Collections(ctx context.Context) ([]*model.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]*model.Collection(nil), h.snap.Collections...), nil
}

// Sheets implements model.Provider.
func (h *Host) Sheets(ctx context.Context) ([]*model.Sheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]*model.Sheet(nil), h.snap.Sheets...), nil
}

// PDFSetups implements model.Provider.
func (h *Host) PDFSetups(ctx context.Context) ([]model.ModelSetup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]model.ModelSetup(nil), h.snap.PDFSetups...), nil
}

// DWGSetups implements model.Provider.
func (h *Host) DWGSetups(ctx context.Context) ([]model.ModelSetup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]model.ModelSetup(nil), h.snap.DWGSetups...), nil
}

// ExportPDF implements model.Provider. A combined request writes one file;
// otherwise one file per sheet.
func (h *Host) ExportPDF(ctx context.Context, req model.PDFRequest) error {
	if err := h.begin(ctx, Call{
		Op:      OpPDF,
		Dir:     req.Dir,
		Sheets:  sheetIDs(req.Sheets),
		Combine: req.Combine,
		Setup:   req.Setup.Name,
	}, req.Sheets); err != nil {
		return err
	}
	if h.isSilent(OpPDF, req.Sheets) {
		return nil
	}

	if req.Combine {
		return h.writeStub(req.Dir, model.FormatPDF, req.Sheets)
	}
	for _, s := range req.Sheets {
		if err := h.writeStub(req.Dir, model.FormatPDF, []*model.Sheet{s}); err != nil {
			return err
		}
	}
	return nil
}

// ExportDWG implements model.Provider.
func (h *Host) ExportDWG(ctx context.Context, req model.DWGRequest) error {
	if err := h.begin(ctx, Call{
		Op:     OpDWG,
		Dir:    req.Dir,
		Sheets: sheetIDs(req.Sheets),
		Setup:  req.Setup.Name,
	}, req.Sheets); err != nil {
		return err
	}
	if h.isSilent(OpDWG, req.Sheets) {
		return nil
	}

	for _, s := range req.Sheets {
		if err := h.writeStub(req.Dir, model.FormatDWG, []*model.Sheet{s}); err != nil {
			return err
		}
	}
	return nil
}

// PrintToFile implements model.LegacyPrinter.
func (h *Host) PrintToFile(ctx context.Context, req model.PrintRequest) error {
	sheets := []*model.Sheet{req.Sheet}
	if err := h.begin(ctx, Call{
		Op:     OpPrint,
		Path:   req.Path,
		Sheets: sheetIDs(sheets),
		Setup:  req.Setup.Name,
	}, sheets); err != nil {
		return err
	}
	if h.isSilent(OpPrint, sheets) {
		return nil
	}

	if err := ioutils.EnsureDir(filepath.Dir(req.Path)); err != nil {
		return err
	}
	return os.WriteFile(req.Path, stubContent(model.FormatPDF, sheets), 0644)
}

func (h *Host) isSilent(op Op, sheets []*model.Sheet) bool {
	return h.silent != nil && h.silent(op, sheets)
}

// begin records the call and applies fault injection.
func (h *Host) begin(ctx context.Context, call Call, sheets []*model.Sheet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(sheets) == 0 {
		return fmt.Errorf("%s export: no sheets", call.Op)
	}

	h.mu.Lock()
	h.calls = append(h.calls, call)
	fail := h.fail
	h.mu.Unlock()

	if fail != nil {
		if err := fail(call.Op, sheets); err != nil {
			h.logger.Debug("injected failure", zap.String("op", string(call.Op)), zap.Error(err))
			return err
		}
	}
	return nil
}

// writeStub writes the next export-NNNN.<ext> file into dir.
func (h *Host) writeStub(dir string, format model.Format, sheets []*model.Sheet) error {
	if err := ioutils.EnsureDir(dir); err != nil {
		return err
	}

	h.mu.Lock()
	h.seq++
	name := fmt.Sprintf("export-%04d%s", h.seq, format.Extension())
	h.mu.Unlock()

	return os.WriteFile(filepath.Join(dir, name), stubContent(format, sheets), 0644)
}

func stubContent(format model.Format, sheets []*model.Sheet) []byte {
	content := fmt.Sprintf("%s stub\n", format)
	for _, s := range sheets {
		content += fmt.Sprintf("sheet %s %s\n", s.Number, s.Name)
	}
	return []byte(content)
}

func sheetIDs(sheets []*model.Sheet) []string {
	ids := make([]string, len(sheets))
	for i, s := range sheets {
		if s != nil {
			ids[i] = s.Number
		}
	}
	return ids
}
