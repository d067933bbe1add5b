package register

import (
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/sheet-exporter/internal/export"
	"github.com/handiism/sheet-exporter/internal/plan"
)

func testReport(root string) *export.Report {
	return &export.Report{
		RunID: "run-1",
		Outputs: []export.Output{
			{Collection: "Floors", Sheets: []string{"A101"}, Format: "PDF", Path: filepath.Join(root, "A101_Plan.pdf")},
			{Collection: "Floors", Sheets: []string{"A102"}, Format: "PDF", Path: filepath.Join(root, "A102_Section.pdf"), Legacy: true},
			{Collection: "Roofs", Sheets: []string{"R1", "R2"}, Format: "PDF (combined)", Path: filepath.Join(root, "Roofs", "Roofs.pdf")},
			{Collection: "Roofs", Sheets: []string{"R1"}, Format: "DWG", Error: "primitive failure: boom"},
		},
	}
}

func testPlan() *plan.Plan {
	return &plan.Plan{Entries: []plan.Entry{
		{Collection: "Floors", Sheets: []plan.SheetRef{{Number: "A101", Name: "Plan"}, {Number: "A102", Name: "Section"}}},
		{Collection: "Roofs", Sheets: []plan.SheetRef{{Number: "R1", Name: "North"}, {Number: "R2", Name: "South"}}},
	}}
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"register.csv", FormatCSV},
		{"register.MD", FormatMarkdown},
		{"register.markdown", FormatMarkdown},
		{"out/register.json", FormatJSON},
		{"register", FormatCSV},
		{"register.txt", FormatCSV},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFor(tt.path))
		})
	}
}

func TestBuild(t *testing.T) {
	root := t.TempDir()
	rows := Build(testReport(root), testPlan(), root)

	require.Len(t, rows, 5)
	assert.Equal(t, Row{Collection: "Floors", SheetNumber: "A101", SheetName: "Plan", Format: "PDF",
		File: "A101_Plan.pdf", Status: StatusExported}, rows[0])
	assert.Equal(t, StatusLegacy, rows[1].Status)

	// A combined output lists every sheet.
	assert.Equal(t, "R1", rows[2].SheetNumber)
	assert.Equal(t, "R2", rows[3].SheetNumber)
	assert.Equal(t, "Roofs/Roofs.pdf", rows[3].File)
	assert.Equal(t, "South", rows[3].SheetName)

	assert.Equal(t, StatusFailed, rows[4].Status)
	assert.Equal(t, "primitive failure: boom", rows[4].Error)
	assert.Empty(t, rows[4].File)
}

func TestBuild_WithoutPlanOrRoot(t *testing.T) {
	root := t.TempDir()
	rows := Build(testReport(root), nil, "")

	require.Len(t, rows, 5)
	assert.Empty(t, rows[0].SheetName)
	assert.Equal(t, filepath.Join(root, "A101_Plan.pdf"), rows[0].File)
}

func TestCreator_CSV(t *testing.T) {
	root := t.TempDir()
	content, err := NewCreator(FormatCSV).Create(Build(testReport(root), testPlan(), root))
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(content))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 6)
	assert.Equal(t, []string{"Collection", "Sheet", "Name", "Format", "File", "Status"}, records[0])
	assert.Equal(t, []string{"Floors", "A101", "Plan", "PDF", "A101_Plan.pdf", "exported"}, records[1])
	assert.Equal(t, "failed: primitive failure: boom", records[5][5])
}

func TestCreator_Markdown(t *testing.T) {
	root := t.TempDir()
	content, err := NewCreator(FormatMarkdown).Create(Build(testReport(root), testPlan(), root))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 7)
	assert.True(t, strings.HasPrefix(lines[0], "|"))
	assert.Contains(t, lines[2], "A101_Plan.pdf")
}

func TestCreator_JSON(t *testing.T) {
	content, err := NewCreator(FormatJSON).Create(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(content))

	root := t.TempDir()
	content, err = NewCreator(FormatJSON).Create(Build(testReport(root), testPlan(), root))
	require.NoError(t, err)

	var rows []Row
	require.NoError(t, json.Unmarshal(content, &rows))
	assert.Len(t, rows, 5)
	assert.Equal(t, "North", rows[2].SheetName)
}
