package model

import (
	"context"
	"strings"
)

// Format is an export deliverable format.
type Format string

const (
	FormatPDF Format = "PDF"
	FormatDWG Format = "DWG"
)

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	return "." + strings.ToLower(string(f))
}

// SetupSource tells where a setup is defined.
type SetupSource string

const (
	SourcePDFExportSettings SetupSource = "pdf-export-settings"
	SourcePrintSettings     SetupSource = "print-settings"
	SourceDWGExportSettings SetupSource = "dwg-export-settings"
	SourceCustom            SetupSource = "custom"
)

// ModelSetup is a setup defined in the model itself.
type ModelSetup struct {
	Name   string      `yaml:"name"`
	Source SetupSource `yaml:"source"`
}

// ExportOptions is the bag of options of a user-defined setup.
type ExportOptions struct {
	PageSize           string  `json:"page_size"`
	ZoomMode           string  `json:"zoom_mode"`
	ZoomPercent        int     `json:"zoom_percent"`
	Orientation        string  `json:"orientation"`
	Placement          string  `json:"placement"`
	OffsetX            float64 `json:"offset_x"`
	OffsetY            float64 `json:"offset_y"`
	RasterQuality      string  `json:"raster_quality"`
	Colors             string  `json:"colors"`
	Processing         string  `json:"processing"`
	HideRefWorkPlanes  bool    `json:"hide_ref_work_planes"`
	HideUnrefTags      bool    `json:"hide_unref_tags"`
	HideCropBoundaries bool    `json:"hide_crop_boundaries"`
	HideScopeBoxes     bool    `json:"hide_scope_boxes"`
	ExportInBackground bool    `json:"export_in_background"`
	SeparateViewsFiles bool    `json:"separate_views_files"`
}

// SetupSelection is the resolved setup handed to an export primitive.
type SetupSelection struct {
	Name   string
	Source SetupSource
	// Options is set for user-defined setups; model-defined setups are
	// resolved by the host from Name.
	Options *ExportOptions
	// SeparateViews mirrors the user's "separate views" toggle.
	SeparateViews bool
}

// PDFRequest asks the host to export sheets to PDF into Dir.
type PDFRequest struct {
	Dir    string
	Sheets []*Sheet
	// Combine produces one file for all sheets.
	Combine bool
	// FileName is a hint; the caller still renames whatever lands in Dir.
	FileName string
	Setup    SetupSelection
}

// DWGRequest asks the host to export sheets to DWG into Dir, one file per
// sheet.
type DWGRequest struct {
	Dir    string
	Sheets []*Sheet
	Setup  SetupSelection
}

// PrintRequest drives the legacy print path for a single sheet. The output
// is written directly to Path.
type PrintRequest struct {
	Sheet   *Sheet
	Path    string
	Printer string
	Setup   SetupSelection
}

// DefaultPDFPrinter is the printer used by the legacy PDF path.
const DefaultPDFPrinter = "Microsoft Print to PDF"

// Provider is the host model and its raw export primitives.
type Provider interface {
	ProjectInfo(ctx context.Context) (*Element, error)
	Collections(ctx context.Context) ([]*Collection, error)
	Sheets(ctx context.Context) ([]*Sheet, error)

	// PDFSetups lists PDF-export settings and print settings of the model.
	PDFSetups(ctx context.Context) ([]ModelSetup, error)
	// DWGSetups lists DWG-export settings of the model.
	DWGSetups(ctx context.Context) ([]ModelSetup, error)

	ExportPDF(ctx context.Context, req PDFRequest) error
	ExportDWG(ctx context.Context, req DWGRequest) error
}

// LegacyPrinter is implemented by hosts that can print a sheet to a file.
type LegacyPrinter interface {
	PrintToFile(ctx context.Context, req PrintRequest) error
}
