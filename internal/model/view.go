package model

import "context"

// ViewType is the host's view type name.
type ViewType string

// View types the rename hook never touches.
const (
	ViewTypeDrawingSheet ViewType = "DrawingSheet"
	ViewTypeLegend       ViewType = "Legend"
	ViewTypeSchedule     ViewType = "Schedule"
	ViewTypeReport       ViewType = "Report"
)

// Viewport is a view placed on a sheet, with what is needed to name it.
type Viewport struct {
	ID           string   `yaml:"id"`
	ViewID       string   `yaml:"view_id"`
	ViewName     string   `yaml:"view_name"`
	ViewType     ViewType `yaml:"view_type"`
	ReadOnly     bool     `yaml:"readonly,omitempty"`
	Template     bool     `yaml:"template,omitempty"`
	SheetID      string   `yaml:"sheet"`
	SheetNumber  string   `yaml:"sheet_number,omitempty"`
	Level        string   `yaml:"level,omitempty"`
	TitleOnSheet string   `yaml:"title_on_sheet,omitempty"`
	DetailNumber string   `yaml:"detail_number"`
	// Scale is the view scale denominator (100 for 1:100).
	Scale int `yaml:"scale"`
}

// Document is the part of the host model the rename hook edits.
type Document interface {
	// Viewport returns the viewport with id.
	Viewport(ctx context.Context, id string) (*Viewport, error)
	// ViewNames lists the names of every view in the model.
	ViewNames(ctx context.Context) ([]string, error)
	// Begin opens a named host transaction.
	Begin(ctx context.Context, name string) (Transaction, error)
}

// Transaction groups view renames. Nothing is visible until Commit.
type Transaction interface {
	RenameView(viewID, name string) error
	Commit() error
	Rollback() error
}
