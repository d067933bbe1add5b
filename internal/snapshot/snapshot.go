package snapshot

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	ioutils "github.com/handiism/sheet-exporter/internal/io"
	"github.com/handiism/sheet-exporter/internal/model"
)

// Snapshot is the serialized model.
type Snapshot struct {
	Project     model.Element       `yaml:"project"`
	Collections []*model.Collection `yaml:"collections"`
	Sheets      []*model.Sheet      `yaml:"sheets"`
	PDFSetups   []model.ModelSetup  `yaml:"pdf_setups,omitempty"`
	DWGSetups   []model.ModelSetup  `yaml:"dwg_setups,omitempty"`
	Viewports   []*model.Viewport   `yaml:"viewports,omitempty"`
}

// Parse decodes a YAML snapshot.
func Parse(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	snap.normalize()
	return &snap, nil
}

// Load reads a YAML snapshot from path.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return Parse(data)
}

// Save writes the snapshot to path atomically.
func (s *Snapshot) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return ioutils.WriteFileAtomic(path, data, 0644)
}

// normalize fills defaults the YAML may omit: sheet ids and the sheet
// numbers of viewports.
func (s *Snapshot) normalize() {
	s.Collections = slices.DeleteFunc(s.Collections, func(c *model.Collection) bool { return c == nil })
	s.Sheets = slices.DeleteFunc(s.Sheets, func(sh *model.Sheet) bool { return sh == nil })
	s.Viewports = slices.DeleteFunc(s.Viewports, func(vp *model.Viewport) bool { return vp == nil })

	if s.Project.ID == "" {
		s.Project.ID = "project"
	}

	bySheetID := make(map[string]*model.Sheet, len(s.Sheets))
	for i, sh := range s.Sheets {
		if sh.ID == "" {
			sh.ID = fmt.Sprintf("sheet-%d", i+1)
		}
		bySheetID[sh.ID] = sh
	}
	for i, c := range s.Collections {
		if c.ID == "" {
			c.ID = fmt.Sprintf("collection-%d", i+1)
		}
	}

	for _, vp := range s.Viewports {
		if sh, ok := bySheetID[vp.SheetID]; ok && vp.SheetNumber == "" {
			vp.SheetNumber = sh.Number
		}
	}
}
