package setup

import (
	"slices"
	"strings"

	"github.com/handiism/sheet-exporter/internal/model"
)

// Enumerated option values. The first value of each list is the default.
var (
	ZoomModes       = []string{"fit", "percent"}
	Orientations    = []string{"auto", "portrait", "landscape"}
	Placements      = []string{"center", "offset"}
	Processings     = []string{"vector", "raster"}
	RasterQualities = []string{"high", "low", "medium", "presentation"}
	ColorModes      = []string{"color", "grayscale", "blackline"}
)

// DefaultPageSize is used when a setup names no paper size.
const DefaultPageSize = "A4"

// Zoom bounds, in percent.
const (
	MinZoom     = 10
	MaxZoom     = 500
	DefaultZoom = 100
)

// Normalize lower-cases enumerated fields and replaces unknown values with
// their default.
func Normalize(o model.ExportOptions) model.ExportOptions {
	o.PageSize = strings.TrimSpace(o.PageSize)
	if o.PageSize == "" {
		o.PageSize = DefaultPageSize
	}

	o.ZoomMode = enum(o.ZoomMode, ZoomModes)
	o.Orientation = enum(o.Orientation, Orientations)
	o.Placement = enum(o.Placement, Placements)
	o.Processing = enum(o.Processing, Processings)
	o.RasterQuality = enum(o.RasterQuality, RasterQualities)
	o.Colors = enum(o.Colors, ColorModes)

	if o.ZoomPercent < MinZoom || o.ZoomPercent > MaxZoom {
		o.ZoomPercent = DefaultZoom
	}
	if o.Placement == "center" {
		o.OffsetX, o.OffsetY = 0, 0
	}
	return o
}

func enum(v string, allowed []string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if slices.Contains(allowed, v) {
		return v
	}
	return allowed[0]
}
