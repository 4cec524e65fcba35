// CLAUDE:SUMMARY Roster manifest YAML schema: session, provenance, CSV format and column mapping.
package roster

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Manifest describes a roster directory: which session it covers, where the
// data came from and how to read it.
type Manifest struct {
	ID        string          `yaml:"id" json:"id" validate:"required"`
	Session   int             `yaml:"session" json:"session" validate:"gte=1"`
	Source    string          `yaml:"source" json:"source"`
	SourceURL string          `yaml:"source_url" json:"source_url,omitempty" validate:"omitempty,url"`
	License   string          `yaml:"license" json:"license,omitempty"`
	DataFile  string          `yaml:"data_file" json:"data_file"`
	Format    FormatSpec      `yaml:"format" json:"-"`
	Columns   []ColumnMapping `yaml:"columns" json:"-" validate:"dive"`
}

// FormatSpec describes the CSV layout.
type FormatSpec struct {
	Delimiter string `yaml:"delimiter"`
	Encoding  string `yaml:"encoding"`
	Normalize string `yaml:"normalize" validate:"omitempty,oneof=lowercase_ascii lowercase_utf8 none"`
}

// ColumnMapping renames a CSV header to a roster column.
type ColumnMapping struct {
	Name   string `yaml:"name" validate:"required"`
	Column string `yaml:"column" validate:"required"`
}

// LoadManifest reads, parses and validates a manifest.yaml file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if err := validate.Struct(&m); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	if m.DataFile == "" {
		m.DataFile = "data.csv"
	}
	return &m, nil
}

// SaveManifest writes m as YAML to path.
func SaveManifest(m *Manifest, path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest %s: %w", path, err)
	}
	return nil
}
