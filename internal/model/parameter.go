package model

import (
	"fmt"
	"strconv"
	"strings"
)

// BuiltInPrefix marks stable ids of built-in parameters.
const BuiltInPrefix = "BIP:"

// Built-in parameter tokens the engine relies on.
const (
	BuiltInSheetNumber = "SHEET_NUMBER"
	BuiltInSheetName   = "SHEET_NAME"
)

// Display names of the sheet built-ins.
const (
	SheetNumberName = "Sheet Number"
	SheetNameName   = "Sheet Name"
)

// LegacyYesNo is the legacy parameter-type enum value for Yes/No parameters.
const LegacyYesNo = "YesNo"

// Scope is where a parameter is defined.
type Scope int

const (
	ScopeProject Scope = iota
	ScopeCollection
	ScopeSheet
)

func (s Scope) String() string {
	switch s {
	case ScopeProject:
		return "project"
	case ScopeCollection:
		return "collection"
	case ScopeSheet:
		return "sheet"
	default:
		return "unknown"
	}
}

// DataKind classifies parameter storage.
type DataKind int

const (
	KindOther DataKind = iota
	KindYesNo
	KindString
	KindValue
)

func (k DataKind) String() string {
	switch k {
	case KindYesNo:
		return "yesno"
	case KindString:
		return "string"
	case KindValue:
		return "value"
	default:
		return "other"
	}
}

// Value is a parameter value as the host reports it. Each field mirrors one
// of the host's accessors; unset fields are empty.
type Value struct {
	// Text is the raw string value (string parameters).
	Text string `yaml:"text,omitempty"`
	// Formatted is the unit-formatted value string.
	Formatted string `yaml:"formatted,omitempty"`
	// Int is the integer storage (Yes/No, integers, element ids).
	Int *int `yaml:"int,omitempty"`
	// Raw is any other storage, stringified generically.
	Raw any `yaml:"raw,omitempty"`
}

// Parameter is one parameter instance on an element, with enough of its
// definition to classify it.
type Parameter struct {
	// Name is the localized display name.
	Name string `yaml:"name"`
	// BuiltIn is the built-in token (e.g. SHEET_NUMBER); empty for shared
	// and project parameters.
	BuiltIn  string `yaml:"builtin,omitempty"`
	ReadOnly bool   `yaml:"readonly,omitempty"`
	// LegacyType is the legacy parameter-type enum name.
	LegacyType string `yaml:"legacy_type,omitempty"`
	// TypeID is the data-type identifier string of newer hosts.
	TypeID string `yaml:"type_id,omitempty"`
	// Value is nil when the parameter has no value.
	Value *Value `yaml:"value,omitempty"`
}

// Descriptor describes a parameter definition independently of any element.
type Descriptor struct {
	Name     string
	ID       string
	Scope    Scope
	ReadOnly bool
	Kind     DataKind
}

// ID returns the stable id of the parameter.
func (p Parameter) ID() string {
	if p.BuiltIn != "" {
		return BuiltInPrefix + p.BuiltIn
	}
	return p.Name
}

// IsYesNo reports whether the parameter is a Yes/No parameter. Both the
// legacy enum and the data-type id are checked so the answer is the same on
// every host version.
func (p Parameter) IsYesNo() bool {
	return IsYesNo(p.LegacyType, p.TypeID)
}

// IsYesNo is the Yes/No test on raw definition data.
func IsYesNo(legacyType, typeID string) bool {
	if legacyType == LegacyYesNo {
		return true
	}
	id := strings.ToLower(typeID)
	return strings.Contains(id, "yesno") ||
		strings.Contains(id, "boolean") ||
		strings.Contains(id, "bool")
}

// Kind classifies the parameter.
func (p Parameter) Kind() DataKind {
	if p.IsYesNo() {
		return KindYesNo
	}

	id := strings.ToLower(p.TypeID)
	switch p.LegacyType {
	case "Text", "MultilineText", "URL":
		return KindString
	case "Integer", "Number", "Length", "Area", "Volume", "Angle", "Currency":
		return KindValue
	}
	switch {
	case strings.Contains(id, "string"):
		return KindString
	case strings.Contains(id, "int"), strings.Contains(id, "number"), strings.Contains(id, "measurable"):
		return KindValue
	}
	return KindOther
}

// Descriptor returns the definition view of p within scope.
func (p Parameter) Descriptor(scope Scope) Descriptor {
	return Descriptor{
		Name:     p.Name,
		ID:       p.ID(),
		Scope:    scope,
		ReadOnly: p.ReadOnly,
		Kind:     p.Kind(),
	}
}

// String converts the value for use in file names. Priority: raw string,
// formatted value string, Yes/No as "1"/"0", generic stringify, empty.
func (p Parameter) String() string {
	v := p.Value
	if v == nil {
		return ""
	}
	if v.Text != "" {
		return v.Text
	}
	if v.Formatted != "" {
		return v.Formatted
	}
	if v.Int != nil && p.IsYesNo() {
		if *v.Int != 0 {
			return "1"
		}
		return "0"
	}
	if v.Raw != nil {
		return fmt.Sprint(v.Raw)
	}
	if v.Int != nil {
		return strconv.Itoa(*v.Int)
	}
	return ""
}

// Bool interprets the parameter as a flag. Absent values are false.
func (p Parameter) Bool() bool {
	v := p.Value
	if v == nil {
		return false
	}
	if v.Int != nil {
		return *v.Int != 0
	}
	switch strings.ToLower(strings.TrimSpace(v.Text)) {
	case "1", "true", "yes", "oui":
		return true
	}
	if b, ok := v.Raw.(bool); ok {
		return b
	}
	return false
}

// Int returns a pointer to n, for building Values.
func Int(n int) *int {
	return &n
}

// YesNo returns a Yes/No value.
func YesNo(b bool) *Value {
	if b {
		return &Value{Int: Int(1)}
	}
	return &Value{Int: Int(0)}
}

// Text returns a string value.
func Text(s string) *Value {
	return &Value{Text: s}
}
