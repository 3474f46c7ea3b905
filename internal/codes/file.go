package codes

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a registry file
type File struct {
	Codes []Record `yaml:"codes"`
}

// LoadFile reads additional records from a YAML registry file.
// Records are validated here and again when the registry is built.
func LoadFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML registry data. Unknown keys are rejected.
func Parse(data []byte) ([]Record, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse registry file: %w", err)
	}

	for i, rec := range f.Codes {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}

	return f.Codes, nil
}

// Build returns a registry with the built-in records plus the records in
// path. An empty path yields the default registry.
func Build(path string) (*Registry, error) {
	records := DefaultRecords()
	if path != "" {
		extra, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		records = append(records, extra...)
	}
	return NewRegistry(records...)
}
