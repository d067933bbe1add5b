package setup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/sheet-exporter/internal/config"
	"github.com/handiism/sheet-exporter/internal/model"
	"github.com/handiism/sheet-exporter/internal/snapshot"
)

func newRegistry(store config.Store) *Registry {
	host := snapshot.New(&snapshot.Snapshot{
		PDFSetups: []model.ModelSetup{
			{Name: "b-model", Source: model.SourcePDFExportSettings},
			{Name: "Shared", Source: model.SourcePrintSettings},
			{Name: "", Source: model.SourcePrintSettings},
		},
		DWGSetups: []model.ModelSetup{
			{Name: "Standard", Source: model.SourceDWGExportSettings},
		},
	})
	return New(host, store, nil)
}

func names(setups []Setup) []string {
	out := make([]string, len(setups))
	for i, s := range setups {
		out[i] = s.Name
	}
	return out
}

func TestRegistry_ListMergesAndShadows(t *testing.T) {
	store := config.NewMemory()
	store.Set(config.KeyCustomPDFSetups, `[{"name":"shared","data":{"page_size":"A3"}},{"name":"A custom","data":{}}]`)
	r := newRegistry(store)
	ctx := context.Background()

	pdf, err := r.List(ctx, model.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, []string{"A custom", "b-model", "shared"}, names(pdf))
	assert.True(t, pdf[2].Custom())
	assert.Equal(t, "A3", pdf[2].Options.PageSize)
	assert.Equal(t, model.SourcePDFExportSettings, pdf[1].Source)

	dwg, err := r.List(ctx, model.FormatDWG)
	require.NoError(t, err)
	assert.Equal(t, []string{"Standard"}, names(dwg))
}

func TestRegistry_MalformedCustomReadsEmpty(t *testing.T) {
	store := config.NewMemory()
	store.Set(config.KeyCustomDWGSetups, "{not json")

	dwg, err := newRegistry(store).List(context.Background(), model.FormatDWG)
	require.NoError(t, err)
	assert.Equal(t, []string{"Standard"}, names(dwg))
}

func TestRegistry_Find(t *testing.T) {
	r := newRegistry(config.NewMemory())
	ctx := context.Background()

	s, err := r.Find(ctx, model.FormatPDF, "SHARED")
	require.NoError(t, err)
	assert.Equal(t, "Shared", s.Name)
	assert.Equal(t, model.SourcePrintSettings, s.Source)

	_, err = r.Find(ctx, model.FormatPDF, "missing")
	assert.ErrorIs(t, err, ErrSetupUnresolved)

	_, err = r.Find(ctx, model.FormatDWG, " ")
	assert.ErrorIs(t, err, ErrSetupUnresolved)
}

func TestRegistry_Resolve(t *testing.T) {
	store := config.NewMemory()
	r := newRegistry(store)
	require.True(t, r.SaveCustom(model.FormatPDF, "Grey", model.ExportOptions{Colors: "Grayscale"}))

	sel, err := r.Resolve(context.Background(), model.FormatPDF, "Grey", true)
	require.NoError(t, err)
	assert.Equal(t, "Grey", sel.Name)
	assert.Equal(t, model.SourceCustom, sel.Source)
	assert.True(t, sel.SeparateViews)
	require.NotNil(t, sel.Options)
	assert.Equal(t, "grayscale", sel.Options.Colors)
}

func TestRegistry_SaveAndDeleteCustom(t *testing.T) {
	store := config.NewMemory()
	r := newRegistry(store)

	assert.False(t, r.SaveCustom(model.FormatDWG, "  ", model.ExportOptions{}))
	require.True(t, r.SaveCustom(model.FormatDWG, "Mine", model.ExportOptions{PageSize: "A1"}))
	require.True(t, r.SaveCustom(model.FormatDWG, "mine", model.ExportOptions{PageSize: "A0"}))

	custom := r.Custom(model.FormatDWG)
	require.Len(t, custom, 1)
	assert.Equal(t, "mine", custom[0].Name)
	assert.Equal(t, "A0", custom[0].Options.PageSize)

	assert.False(t, r.DeleteCustom(model.FormatDWG, "other"))
	assert.True(t, r.DeleteCustom(model.FormatDWG, "MINE"))
	assert.Empty(t, r.Custom(model.FormatDWG))
	assert.Equal(t, "[]", store.Get(config.KeyCustomDWGSetups, ""))
}

func TestNormalize(t *testing.T) {
	got := Normalize(model.ExportOptions{
		ZoomMode:      "PERCENT",
		ZoomPercent:   5000,
		Orientation:   "sideways",
		Placement:     "center",
		OffsetX:       3,
		RasterQuality: " Low ",
		Processing:    "Raster",
	})

	assert.Equal(t, model.ExportOptions{
		PageSize:      DefaultPageSize,
		ZoomMode:      "percent",
		ZoomPercent:   DefaultZoom,
		Orientation:   "auto",
		Placement:     "center",
		RasterQuality: "low",
		Colors:        "color",
		Processing:    "raster",
	}, got)

	offset := Normalize(model.ExportOptions{Placement: "offset", OffsetX: 1.5, ZoomPercent: 50})
	assert.Equal(t, 1.5, offset.OffsetX)
	assert.Equal(t, 50, offset.ZoomPercent)
}
