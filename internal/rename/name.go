package rename

import (
	"fmt"
	"strconv"
	"strings"

	ioutils "github.com/handiism/sheet-exporter/internal/io"
	"github.com/handiism/sheet-exporter/internal/model"
)

// NotAvailable stands in for an empty level or title.
const NotAvailable = "NA"

// MaxSuffix bounds the " (k)" suffixes tried for a taken name.
const MaxSuffix = 50

var tokenReplacer = strings.NewReplacer(
	"{", "-", "}", "-",
	"[", "-", "]", "-",
	";", "-", "`", "-", "~", "-",
)

var skippedTypes = map[model.ViewType]bool{
	model.ViewTypeDrawingSheet: true,
	model.ViewTypeLegend:       true,
	model.ViewTypeSchedule:     true,
	model.ViewTypeReport:       true,
}

// Skip reports whether vp is never renamed.
func Skip(vp *model.Viewport) bool {
	return vp.ReadOnly || vp.Template || skippedTypes[vp.ViewType]
}

// Name returns the desired view name of vp.
func Name(vp *model.Viewport) string {
	scale := NotAvailable
	if vp.Scale > 0 {
		scale = strconv.Itoa(vp.Scale)
	}
	return fmt.Sprintf("%s_%s_%s_%s.%s",
		token(vp.SheetNumber, ""),
		token(vp.Level, NotAvailable),
		token(vp.TitleOnSheet, NotAvailable),
		token(vp.DetailNumber, ""),
		scale)
}

func token(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return tokenReplacer.Replace(ioutils.SanitizeFileName(s))
}

// Unique returns name, or the first free "name (k)" for k up to MaxSuffix.
// It returns false when all of them are taken.
func Unique(name string, taken func(string) bool) (string, bool) {
	if !taken(name) {
		return name, true
	}
	for k := 1; k <= MaxSuffix; k++ {
		candidate := fmt.Sprintf("%s (%d)", name, k)
		if !taken(candidate) {
			return candidate, true
		}
	}
	return "", false
}
