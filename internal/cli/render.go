package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"

	"github.com/handiism/sheet-exporter/internal/config"
	"github.com/handiism/sheet-exporter/internal/export"
	"github.com/handiism/sheet-exporter/internal/model"
	"github.com/handiism/sheet-exporter/internal/naming"
	"github.com/handiism/sheet-exporter/internal/plan"
	"github.com/handiism/sheet-exporter/internal/status"
)

// buildPlan plans the current selection and lists its preview rows.
func buildPlan(ctx context.Context, provider model.Provider, store config.Store, logger *zap.Logger) (*plan.Plan, []status.Item, error) {
	settings := config.LoadSettings(store)
	p, err := plan.New(provider, logger).Plan(ctx, plan.SelectionFromSettings(settings))
	if err != nil {
		return nil, nil, err
	}

	project, err := provider.ProjectInfo(ctx)
	if err != nil {
		logger.Warn("project info unavailable", zap.Error(err))
	}
	namer := plan.Namer{Patterns: naming.NewEngine(store).Patterns(), Project: project}
	return p, plan.Preview(p, namer), nil
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func renderPreview(w io.Writer, p *plan.Plan, items []status.Item) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Collection", "Sheet", "Name", "Format", "File"})
	for _, it := range items {
		t.AppendRow(table.Row{it.Collection, it.SheetNumber, it.SheetName, it.Format, it.PreviewName})
	}
	t.Render()

	fmt.Fprintf(w, "%d collection(s) to export, %d skipped, %d file row(s)\n",
		len(p.Exported()), len(p.Entries)-len(p.Exported()), len(items))
}

func renderReport(w io.Writer, r *export.Report) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Collection", "Format", "Sheets", "Result"})
	for _, o := range r.Outputs {
		result := o.Path
		if !o.OK() {
			result = "error: " + o.Error
		} else if o.Legacy {
			result += " (legacy print)"
		}
		t.AppendRow(table.Row{o.Collection, o.Format, strings.Join(o.Sheets, ", "), result})
	}
	t.Render()

	fmt.Fprintf(w, "%d file(s) exported, %d failed in %s\n",
		r.Succeeded(), len(r.Failures()), r.Duration().Round(time.Millisecond))
}
