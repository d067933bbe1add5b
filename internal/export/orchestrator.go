package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/handiism/sheet-exporter/internal/config"
	"github.com/handiism/sheet-exporter/internal/destination"
	ioutils "github.com/handiism/sheet-exporter/internal/io"
	"github.com/handiism/sheet-exporter/internal/model"
	"github.com/handiism/sheet-exporter/internal/naming"
	"github.com/handiism/sheet-exporter/internal/plan"
	"github.com/handiism/sheet-exporter/internal/setup"
	"github.com/handiism/sheet-exporter/internal/status"
)

// MoveFunc moves a produced file onto its final path.
type MoveFunc func(src, dst string) error

// Orchestrator runs export plans against a host.
type Orchestrator struct {
	provider model.Provider
	store    config.Store
	dest     *destination.Service
	naming   *naming.Engine
	setups   *setup.Registry

	sink     status.Sink
	progress status.ProgressFunc
	notices  func(Notice)
	move     MoveFunc
	newID    func() string
	logger   *zap.Logger

	// One run at a time.
	sem *semaphore.Weighted
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSink sets the status sink. Defaults to status.Discard.
func WithSink(sink status.Sink) Option {
	return func(o *Orchestrator) {
		o.sink = sink
	}
}

// WithProgress sets the progress callback.
func WithProgress(fn status.ProgressFunc) Option {
	return func(o *Orchestrator) {
		o.progress = fn
	}
}

// WithNotices sets the notice callback.
func WithNotices(fn func(Notice)) Option {
	return func(o *Orchestrator) {
		o.notices = fn
	}
}

// WithMoveFunc replaces the file move step.
func WithMoveFunc(fn MoveFunc) Option {
	return func(o *Orchestrator) {
		o.move = fn
	}
}

// WithRunID replaces the run id generator.
func WithRunID(fn func() string) Option {
	return func(o *Orchestrator) {
		o.newID = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithNaming sets the naming engine. Defaults to one reading store.
func WithNaming(engine *naming.Engine) Option {
	return func(o *Orchestrator) {
		o.naming = engine
	}
}

// New creates an Orchestrator exporting from provider with settings read
// from store.
func New(provider model.Provider, store config.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider: provider,
		store:    store,
		sink:     status.Discard,
		move:     ioutils.MoveFile,
		newID:    uuid.NewString,
		sem:      semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.naming == nil {
		o.naming = naming.NewEngine(store, naming.WithLogger(o.logger))
	}
	o.dest = destination.New(store, o.logger)
	o.setups = setup.New(provider, store, o.logger)
	return o
}

// Run executes p. It returns ErrBusy when another run is in progress and
// ErrNoDestination when the destination root is unusable; every other
// failure is recorded in the report and on the sink.
func (o *Orchestrator) Run(ctx context.Context, p *plan.Plan) (*Report, error) {
	if !o.sem.TryAcquire(1) {
		return nil, ErrBusy
	}
	defer o.sem.Release(1)

	r := &run{
		Orchestrator: o,
		report:       &Report{RunID: o.newID(), Started: time.Now()},
		settings:     config.LoadSettings(o.store),
	}
	r.logger = o.logger.With(zap.String("run", r.report.RunID))
	defer func() { r.report.Finished = time.Now() }()

	layout, err := o.dest.Preflight()
	if err != nil {
		r.notify(LevelError, "Destination unusable: %v", err)
		return r.report, err
	}
	r.layout = layout

	if p.NeedsPDF() {
		r.pdfSetup, r.pdfErr = o.setups.Resolve(ctx, model.FormatPDF, r.settings.PDFSetupName, r.settings.PDFSeparateViews)
	}
	if p.NeedsDWG() {
		r.dwgSetup, r.dwgErr = o.setups.Resolve(ctx, model.FormatDWG, r.settings.DWGSetupName, r.settings.DWGSeparateViews)
	}

	project, err := o.provider.ProjectInfo(ctx)
	if err != nil {
		r.logger.Warn("project info unavailable", zap.Error(err))
	}
	r.namer = plan.Namer{Patterns: o.naming.Patterns(), Project: project}

	r.logger.Info("export started",
		zap.Int("entries", len(p.Entries)),
		zap.String("root", layout.Root))

	total := len(p.Entries)
	r.step(0, total, "Preparing")
	for i, e := range p.Entries {
		r.step(i, total, "Collection: "+e.Collection)
		if !e.Export {
			r.report.Skipped = append(r.report.Skipped, e.Collection)
			r.logger.Debug("collection skipped", zap.String("collection", e.Collection))
			continue
		}
		r.collection(ctx, e)
	}
	r.step(total, total, "Done")

	r.notify(LevelSuccess, "Done: %d file(s) exported, %d failure(s)",
		r.report.Succeeded(), len(r.report.Failures()))
	r.logger.Info("export finished",
		zap.Int("succeeded", r.report.Succeeded()),
		zap.Int("failed", len(r.report.Failures())))

	return r.report, nil
}

// run is the state of one Run call.
type run struct {
	*Orchestrator
	logger   *zap.Logger
	report   *Report
	settings *config.Settings
	layout   destination.Layout
	namer    plan.Namer

	pdfSetup model.SetupSelection
	pdfErr   error
	dwgSetup model.SetupSelection
	dwgErr   error
}

func (r *run) step(current, total int, message string) {
	if r.progress != nil {
		r.progress(current, total, message)
	}
}

func (r *run) notify(level Level, format string, args ...any) {
	if r.notices != nil {
		r.notices(Notice{Message: fmt.Sprintf(format, args...), Level: level})
	}
}

func (r *run) setCollection(name string, state status.State) {
	r.sink.SetCollectionStatus(name, state)
	r.sink.Refresh()
}

func (r *run) setDetail(collection string, sheets []*model.Sheet, label string, state status.State) {
	for _, s := range sheets {
		r.sink.SetDetailStatus(collection, s.Number, label, state)
	}
	r.sink.Refresh()
}

// collection exports one entry. The collection status is always bracketed
// by progress and a terminal state.
func (r *run) collection(ctx context.Context, e plan.Entry) {
	r.notify(LevelInfo, "Collection: %s", e.Collection)
	r.setCollection(e.Collection, status.StateProgress)

	sheets := e.ModelSheets()
	if err := r.prepare(e); err != nil {
		r.logger.Error("collection failed",
			zap.String("collection", e.Collection), zap.Error(err))
		r.notify(LevelError, "%s: %v", e.Collection, err)
		r.fail(e, sheets, err)
		r.setCollection(e.Collection, status.StateError)
		return
	}

	var pdfDir, dwgDir string
	if e.DoPDF {
		pdfDir = r.layout.Dir(e.Collection, model.FormatPDF)
	}
	if e.DoDWG {
		dwgDir = r.layout.Dir(e.Collection, model.FormatDWG)
	}

	if e.PerSheet {
		for _, s := range sheets {
			base := r.namer.Sheet(s)
			if e.DoPDF {
				r.sheetPDF(ctx, e, s, pdfDir, base)
			}
			if e.DoDWG {
				r.sheetDWG(ctx, e, s, dwgDir, base)
			}
		}
	} else {
		if e.DoPDF && len(sheets) > 0 {
			r.combinedPDF(ctx, e, sheets, pdfDir)
		}
		if e.DoDWG {
			for _, s := range sheets {
				r.sheetDWG(ctx, e, s, dwgDir, r.namer.Sheet(s))
			}
		}
	}

	if e.DoPDF {
		ioutils.RemoveIfEmpty(r.layout.TempDir(e.Collection, model.FormatPDF))
	}
	if e.DoDWG {
		ioutils.RemoveIfEmpty(r.layout.TempDir(e.Collection, model.FormatDWG))
	}
	r.setCollection(e.Collection, status.StateOK)
}

// prepare checks the setups and creates the directories e needs.
func (r *run) prepare(e plan.Entry) error {
	if e.DoPDF && r.pdfErr != nil {
		return r.pdfErr
	}
	if e.DoDWG && r.dwgErr != nil {
		return r.dwgErr
	}
	for _, f := range formats(e) {
		if _, err := r.dest.Prepare(r.layout, e.Collection, f); err != nil {
			return fmt.Errorf("%w: %v", ErrNoDestination, err)
		}
		if err := r.dest.EnsureDir(r.layout.TempDir(e.Collection, f)); err != nil {
			return fmt.Errorf("%w: %v", ErrNoDestination, err)
		}
	}
	return nil
}

func formats(e plan.Entry) []model.Format {
	var out []model.Format
	if e.DoPDF {
		out = append(out, model.FormatPDF)
	}
	if e.DoDWG {
		out = append(out, model.FormatDWG)
	}
	return out
}

// fail marks every row of a failed collection as error.
func (r *run) fail(e plan.Entry, sheets []*model.Sheet, err error) {
	r.report.Failed = append(r.report.Failed, e.Collection)
	if e.DoPDF {
		label := status.FormatLabel(model.FormatPDF, !e.PerSheet)
		r.setDetail(e.Collection, sheets, label, status.StateError)
		r.record(e, sheets, label, "", false, err)
	}
	if e.DoDWG {
		label := status.FormatLabel(model.FormatDWG, false)
		r.setDetail(e.Collection, sheets, label, status.StateError)
		r.record(e, sheets, label, "", false, err)
	}
}

func (r *run) record(e plan.Entry, sheets []*model.Sheet, label, path string, legacy bool, err error) {
	out := Output{
		Collection: e.Collection,
		Format:     label,
		Path:       path,
		Legacy:     legacy,
		Kind:       Kind(err),
	}
	for _, s := range sheets {
		out.Sheets = append(out.Sheets, s.Number)
	}
	if err != nil {
		out.Error = err.Error()
	}
	r.report.Outputs = append(r.report.Outputs, out)
}

// finish records the outcome of one output and moves its rows to a
// terminal state.
func (r *run) finish(e plan.Entry, sheets []*model.Sheet, label, path string, legacy bool, err error) {
	r.record(e, sheets, label, path, legacy, err)
	if err != nil {
		r.logger.Warn("export failed",
			zap.String("collection", e.Collection),
			zap.String("format", label),
			zap.Int("sheets", len(sheets)),
			zap.Error(err))
		r.notify(LevelError, "%s %s: %v", e.Collection, label, err)
		r.setDetail(e.Collection, sheets, label, status.StateError)
		return
	}
	r.logger.Debug("exported", zap.String("path", path), zap.Bool("legacy", legacy))
	r.notify(LevelVerbose, "Exported: %s", path)
	r.setDetail(e.Collection, sheets, label, status.StateOK)
}

func (r *run) sheetPDF(ctx context.Context, e plan.Entry, s *model.Sheet, dir, base string) {
	label := status.FormatLabel(model.FormatPDF, false)
	sheets := []*model.Sheet{s}
	r.setDetail(e.Collection, sheets, label, status.StateProgress)

	temp := r.layout.TempDir(e.Collection, model.FormatPDF)
	before := present(temp)
	err := r.provider.ExportPDF(ctx, model.PDFRequest{
		Dir:      temp,
		Sheets:   sheets,
		FileName: base,
		Setup:    r.pdfSetup,
	})
	var path string
	if err == nil {
		path, err = r.collect(temp, before, dir, base, model.FormatPDF)
		if errors.Is(err, ErrRenameFailure) {
			r.finish(e, sheets, label, "", false, err)
			return
		}
	} else {
		err = fmt.Errorf("%w: %v", ErrPrimitiveFailure, err)
	}
	if err == nil {
		r.finish(e, sheets, label, path, false, nil)
		return
	}

	printer, ok := r.provider.(model.LegacyPrinter)
	if !ok {
		r.finish(e, sheets, label, "", false, err)
		return
	}

	r.logger.Info("falling back to legacy print",
		zap.String("sheet", s.Number), zap.NamedError("cause", err))
	r.notify(LevelWarning, "%s: PDF export failed, printing instead", s.Number)

	path, perr := r.dest.FinalPath(dir, base, model.FormatPDF)
	if perr != nil {
		r.finish(e, sheets, label, "", false, fmt.Errorf("%w: %v", ErrRenameFailure, perr))
		return
	}
	if perr := printer.PrintToFile(ctx, model.PrintRequest{
		Sheet:   s,
		Path:    path,
		Printer: model.DefaultPDFPrinter,
		Setup:   r.pdfSetup,
	}); perr != nil {
		r.finish(e, sheets, label, "", false,
			fmt.Errorf("%w: %v; legacy print: %v", ErrPrimitiveFailure, err, perr))
		return
	}
	r.finish(e, sheets, label, path, true, nil)
}

func (r *run) combinedPDF(ctx context.Context, e plan.Entry, sheets []*model.Sheet, dir string) {
	label := status.FormatLabel(model.FormatPDF, true)
	r.setDetail(e.Collection, sheets, label, status.StateProgress)

	base := r.namer.Combined(e)
	temp := r.layout.TempDir(e.Collection, model.FormatPDF)
	before := present(temp)
	err := r.provider.ExportPDF(ctx, model.PDFRequest{
		Dir:      temp,
		Sheets:   sheets,
		Combine:  true,
		FileName: base,
		Setup:    r.pdfSetup,
	})
	var path string
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrPrimitiveFailure, err)
	} else {
		path, err = r.collect(temp, before, dir, base, model.FormatPDF)
	}
	r.finish(e, sheets, label, path, false, err)
}

func (r *run) sheetDWG(ctx context.Context, e plan.Entry, s *model.Sheet, dir, base string) {
	label := status.FormatLabel(model.FormatDWG, false)
	sheets := []*model.Sheet{s}
	r.setDetail(e.Collection, sheets, label, status.StateProgress)

	temp := r.layout.TempDir(e.Collection, model.FormatDWG)
	before := present(temp)
	err := r.provider.ExportDWG(ctx, model.DWGRequest{
		Dir:    temp,
		Sheets: sheets,
		Setup:  r.dwgSetup,
	})
	var path string
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrPrimitiveFailure, err)
	} else {
		path, err = r.collect(temp, before, dir, base, model.FormatDWG)
	}
	r.finish(e, sheets, label, path, false, err)
}

// collect moves the newest file of format that was not in before out of
// temp onto a free path in dir. The final path is resolved right before the
// move.
func (r *run) collect(temp string, before map[string]bool, dir, base string, format model.Format) (string, error) {
	src, err := newest(temp, format.Extension(), before)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPrimitiveFailure, err)
	}
	dst, err := r.dest.FinalPath(dir, base, format)
	if err != nil {
		return "", fmt.Errorf("%w: %s left at %s: %v", ErrRenameFailure, base, src, err)
	}
	if err := r.move(src, dst); err != nil {
		return "", fmt.Errorf("%w: %s left at %s: %v", ErrRenameFailure, dst, src, err)
	}
	return dst, nil
}
