package register

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/handiism/sheet-exporter/internal/export"
	"github.com/handiism/sheet-exporter/internal/plan"
)

// Format is a register file format.
type Format int

const (
	// FormatCSV writes comma-separated values with a header row.
	FormatCSV Format = iota

	// FormatMarkdown writes a Markdown table.
	FormatMarkdown

	// FormatJSON writes an indented JSON array of rows.
	FormatJSON
)

// FormatFor returns the format matching the extension of path. Unknown
// extensions map to CSV.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return FormatMarkdown
	case ".json":
		return FormatJSON
	default:
		return FormatCSV
	}
}

// Status values of a row.
const (
	StatusExported = "exported"
	StatusLegacy   = "exported (legacy print)"
	StatusFailed   = "failed"
)

// Row is one register line.
type Row struct {
	Collection  string `json:"collection"`
	SheetNumber string `json:"sheet_number"`
	SheetName   string `json:"sheet_name,omitempty"`
	Format      string `json:"format"`
	// File is relative to the export root when possible.
	File   string `json:"file,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Build lists the rows of report in report order, one per sheet of each
// output. p may be nil; it resolves sheet names.
func Build(report *export.Report, p *plan.Plan, root string) []Row {
	names := map[string]string{}
	if p != nil {
		for _, e := range p.Entries {
			for _, s := range e.Sheets {
				names[e.Collection+"\x00"+s.Number] = s.Name
			}
		}
	}

	var rows []Row
	for _, o := range report.Outputs {
		file := o.Path
		if root != "" && file != "" {
			if rel, err := filepath.Rel(root, file); err == nil && !strings.HasPrefix(rel, "..") {
				file = filepath.ToSlash(rel)
			}
		}

		status := StatusExported
		switch {
		case !o.OK():
			status = StatusFailed
		case o.Legacy:
			status = StatusLegacy
		}

		for _, number := range o.Sheets {
			rows = append(rows, Row{
				Collection:  o.Collection,
				SheetNumber: number,
				SheetName:   names[o.Collection+"\x00"+number],
				Format:      o.Format,
				File:        file,
				Status:      status,
				Error:       o.Error,
			})
		}
	}
	return rows
}

// Creator renders registers in one format.
//
// Example:
//
//	creator := NewCreator(FormatMarkdown)
//	content, err := creator.Create(rows)
//
//	// | Collection | Sheet | Name | Format | File | Status |
//	// | --- | --- | --- | --- | --- | --- |
//	// | Floors | A101 | Plan | PDF | A101_Plan.pdf | exported |
type Creator struct {
	format Format
}

// NewCreator creates a Creator for format.
func NewCreator(format Format) *Creator {
	return &Creator{format: format}
}

var header = []string{"Collection", "Sheet", "Name", "Format", "File", "Status"}

// Create renders rows.
func (c *Creator) Create(rows []Row) ([]byte, error) {
	switch c.format {
	case FormatMarkdown:
		return c.createMarkdown(rows), nil
	case FormatJSON:
		return c.createJSON(rows)
	default:
		return c.createCSV(rows)
	}
}

func (r Row) cells() []string {
	status := r.Status
	if r.Error != "" {
		status += ": " + r.Error
	}
	return []string{r.Collection, r.SheetNumber, r.SheetName, r.Format, r.File, status}
}

// createCSV generates:
//
//	Collection,Sheet,Name,Format,File,Status
//	Floors,A101,Plan,PDF,A101_Plan.pdf,exported
func (c *Creator) createCSV(rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write(r.cells()); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write register: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *Creator) createMarkdown(rows []Row) []byte {
	t := table.NewWriter()
	hdr := make(table.Row, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	t.AppendHeader(hdr)
	for _, r := range rows {
		cells := r.cells()
		row := make(table.Row, len(cells))
		for i, cell := range cells {
			row[i] = cell
		}
		t.AppendRow(row)
	}
	return []byte(t.RenderMarkdown() + "\n")
}

func (c *Creator) createJSON(rows []Row) ([]byte, error) {
	if rows == nil {
		rows = []Row{}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
