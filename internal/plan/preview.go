package plan

import (
	"github.com/handiism/sheet-exporter/internal/model"
	"github.com/handiism/sheet-exporter/internal/naming"
	"github.com/handiism/sheet-exporter/internal/status"
)

// Namer names the files of a plan.
type Namer struct {
	Patterns naming.Patterns
	// Project is the parameter fallback for every token.
	Project *model.Element
}

// Sheet returns the base name of a per-sheet file.
func (n Namer) Sheet(s *model.Sheet) string {
	return naming.FileName(n.Patterns.Sheet, model.Chain{s, n.Project}, s.DefaultName())
}

// Combined returns the base name of the combined PDF of e, resolved on its
// first sheet. It returns "" for an entry without sheets.
func (n Namer) Combined(e Entry) string {
	if len(e.Sheets) == 0 {
		return ""
	}
	first := e.Sheets[0].Sheet()
	src := model.Chain{first, e.CollectionElement(), n.Project}
	return naming.FileName(n.Patterns.Combined(), src, first.DefaultName())
}

// Preview lists the preview rows of p: for every exported entry, one row
// per sheet and output format, all idle. PDF rows of a combined entry
// share the combined file name.
func Preview(p *Plan, namer Namer) []status.Item {
	var items []status.Item
	for _, e := range p.Entries {
		if !e.Export {
			continue
		}

		combined := ""
		if e.DoPDF && !e.PerSheet {
			combined = namer.Combined(e) + model.FormatPDF.Extension()
		}

		for _, ref := range e.Sheets {
			s := ref.Sheet()
			base := namer.Sheet(s)
			row := status.Item{
				Collection:  e.Collection,
				SheetNumber: s.Number,
				SheetName:   s.Name,
				Size:        s.Size,
				Orientation: s.Orientation,
			}

			if e.DoPDF {
				pdf := row
				pdf.Format = status.FormatLabel(model.FormatPDF, !e.PerSheet)
				pdf.Combined = !e.PerSheet
				pdf.PreviewName = base + model.FormatPDF.Extension()
				if pdf.Combined {
					pdf.PreviewName = combined
				}
				items = append(items, pdf)
			}
			if e.DoDWG {
				dwg := row
				dwg.Format = status.FormatLabel(model.FormatDWG, false)
				dwg.PreviewName = base + model.FormatDWG.Extension()
				items = append(items, dwg)
			}
		}
	}
	return items
}
