package model

import "strings"

// ParamSource resolves parameters by stable id or display name.
type ParamSource interface {
	Param(id string) (Parameter, bool)
}

// Element is any model element carrying parameters.
type Element struct {
	ID     string      `yaml:"id"`
	Params []Parameter `yaml:"params,omitempty"`
}

// Param looks a parameter up by stable id, then by exact display name, then
// by case-insensitive display name.
func (e *Element) Param(id string) (Parameter, bool) {
	if e == nil || id == "" {
		return Parameter{}, false
	}
	for _, p := range e.Params {
		if p.ID() == id {
			return p, true
		}
	}
	for _, p := range e.Params {
		if p.Name == id {
			return p, true
		}
	}
	for _, p := range e.Params {
		if strings.EqualFold(p.Name, id) {
			return p, true
		}
	}
	return Parameter{}, false
}

// Sheet is a drawing sheet. The engine never mutates sheets.
type Sheet struct {
	Element      `yaml:",inline"`
	Number       string `yaml:"number"`
	Name         string `yaml:"name"`
	TitleOnSheet string `yaml:"title_on_sheet,omitempty"`
	Size         string `yaml:"size,omitempty"`
	Orientation  string `yaml:"orientation,omitempty"`
	CollectionID string `yaml:"collection,omitempty"`
}

// Param resolves element parameters first and falls back to the sheet
// number and name built-ins, which every sheet has.
func (s *Sheet) Param(id string) (Parameter, bool) {
	if s == nil {
		return Parameter{}, false
	}
	if p, ok := s.Element.Param(id); ok {
		return p, true
	}

	switch {
	case id == BuiltInPrefix+BuiltInSheetNumber || strings.EqualFold(id, SheetNumberName):
		return Parameter{Name: SheetNumberName, BuiltIn: BuiltInSheetNumber, Value: Text(s.Number)}, true
	case id == BuiltInPrefix+BuiltInSheetName || strings.EqualFold(id, SheetNameName):
		return Parameter{Name: SheetNameName, BuiltIn: BuiltInSheetName, Value: Text(s.Name)}, true
	}
	return Parameter{}, false
}

// DefaultName is the file name used when no pattern applies:
// "<number>_<name>", skipping empty parts.
func (s *Sheet) DefaultName() string {
	var parts []string
	if s.Number != "" {
		parts = append(parts, s.Number)
	}
	if s.Name != "" {
		parts = append(parts, s.Name)
	}
	return strings.Join(parts, "_")
}

// Collection is a named group of sheets.
type Collection struct {
	Element `yaml:",inline"`
	Name    string `yaml:"name"`
}

// Chain resolves a parameter on each source in order and returns the first
// hit. Nil sources are skipped.
type Chain []ParamSource

// Param implements ParamSource.
func (c Chain) Param(id string) (Parameter, bool) {
	for _, src := range c {
		if src == nil || isNilSource(src) {
			continue
		}
		if p, ok := src.Param(id); ok {
			return p, true
		}
	}
	return Parameter{}, false
}

func isNilSource(src ParamSource) bool {
	switch v := src.(type) {
	case *Element:
		return v == nil
	case *Sheet:
		return v == nil
	case *Collection:
		return v == nil
	}
	return false
}
