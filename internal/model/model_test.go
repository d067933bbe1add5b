package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsYesNo(t *testing.T) {
	tests := []struct {
		legacy string
		typeID string
		want   bool
	}{
		{"YesNo", "", true},
		{"", "autodesk.spec:spec.bool-1.0.0", true},
		{"", "YesNoType", true},
		{"", "System.Boolean", true},
		{"", "BOOL", true},
		{"Text", "autodesk.spec:spec.string-2.0.0", false},
		{"Integer", "autodesk.spec:spec.int64-2.0.0", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.legacy+"/"+tt.typeID, func(t *testing.T) {
			assert.Equal(t, tt.want, IsYesNo(tt.legacy, tt.typeID))
		})
	}
}

func TestParameter_String(t *testing.T) {
	tests := []struct {
		name  string
		param Parameter
		want  string
	}{
		{"absent", Parameter{Name: "X"}, ""},
		{"text wins", Parameter{Value: &Value{Text: "a", Formatted: "b"}}, "a"},
		{"formatted", Parameter{Value: &Value{Formatted: "12 m²"}}, "12 m²"},
		{"yes", Parameter{LegacyType: LegacyYesNo, Value: YesNo(true)}, "1"},
		{"no", Parameter{LegacyType: LegacyYesNo, Value: YesNo(false)}, "0"},
		{"raw", Parameter{Value: &Value{Raw: 3.5}}, "3.5"},
		{"int", Parameter{Value: &Value{Int: Int(42)}}, "42"},
		{"empty value", Parameter{Value: &Value{}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.param.String())
		})
	}
}

func TestParameter_Kind(t *testing.T) {
	assert.Equal(t, KindYesNo, Parameter{LegacyType: LegacyYesNo}.Kind())
	assert.Equal(t, KindString, Parameter{LegacyType: "Text"}.Kind())
	assert.Equal(t, KindString, Parameter{TypeID: "autodesk.spec:spec.string-2.0.0"}.Kind())
	assert.Equal(t, KindValue, Parameter{TypeID: "autodesk.spec.aec:length-2.0.0", LegacyType: "Length"}.Kind())
	assert.Equal(t, KindOther, Parameter{}.Kind())
}

func TestParameter_ID(t *testing.T) {
	assert.Equal(t, "BIP:SHEET_NUMBER", Parameter{Name: "Sheet Number", BuiltIn: "SHEET_NUMBER"}.ID())
	assert.Equal(t, "Discipline", Parameter{Name: "Discipline"}.ID())
}

func TestSheet_Param(t *testing.T) {
	sheet := &Sheet{
		Element: Element{ID: "1", Params: []Parameter{{Name: "Discipline", Value: Text("ARCH")}}},
		Number:  "A101",
		Name:    "Plan",
	}

	p, ok := sheet.Param("Discipline")
	assert.True(t, ok)
	assert.Equal(t, "ARCH", p.String())

	p, ok = sheet.Param("discipline")
	assert.True(t, ok)
	assert.Equal(t, "ARCH", p.String())

	p, ok = sheet.Param("BIP:SHEET_NUMBER")
	assert.True(t, ok)
	assert.Equal(t, "A101", p.String())

	p, ok = sheet.Param("Sheet Name")
	assert.True(t, ok)
	assert.Equal(t, "Plan", p.String())

	_, ok = sheet.Param("Missing")
	assert.False(t, ok)
}

func TestSheet_DefaultName(t *testing.T) {
	assert.Equal(t, "A101_Plan", (&Sheet{Number: "A101", Name: "Plan"}).DefaultName())
	assert.Equal(t, "S1", (&Sheet{Number: "S1"}).DefaultName())
	assert.Equal(t, "", (&Sheet{}).DefaultName())
}

func TestChain(t *testing.T) {
	project := &Element{Params: []Parameter{{Name: "Project Number", Value: Text("P-42")}}}
	var missing *Collection
	chain := Chain{&Sheet{Number: "A1"}, missing, project}

	p, ok := chain.Param("Project Number")
	assert.True(t, ok)
	assert.Equal(t, "P-42", p.String())

	_, ok = chain.Param("Nope")
	assert.False(t, ok)
}

func TestParameter_Bool(t *testing.T) {
	assert.True(t, Parameter{Value: YesNo(true)}.Bool())
	assert.False(t, Parameter{Value: YesNo(false)}.Bool())
	assert.False(t, Parameter{}.Bool())
	assert.True(t, Parameter{Value: Text("Yes")}.Bool())
}

func TestFormat_Extension(t *testing.T) {
	assert.Equal(t, ".pdf", FormatPDF.Extension())
	assert.Equal(t, ".dwg", FormatDWG.Extension())
}

func TestCompareNatural(t *testing.T) {
	sorted := []string{"A1", "A2", "A10", "a11", "A101", "B", "B01", "B1a", "S-2", "S-10"}
	for i := 0; i < len(sorted)-1; i++ {
		assert.Negative(t, CompareNatural(sorted[i], sorted[i+1]), "%s < %s", sorted[i], sorted[i+1])
		assert.Positive(t, CompareNatural(sorted[i+1], sorted[i]), "%s > %s", sorted[i+1], sorted[i])
	}
	assert.Zero(t, CompareNatural("A10", "A10"))
}

func TestCompareFold(t *testing.T) {
	assert.Negative(t, CompareFold("alpha", "Beta"))
	assert.Negative(t, CompareFold("Floors", "floors2"))
	assert.NotZero(t, CompareFold("Floors", "floors"))
	assert.Zero(t, CompareFold("x", "x"))
}
