// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-query/pkg/types"
)

// CSVWriter writes a header row followed by one line per record.
type CSVWriter struct{}

func (CSVWriter) Write(path string, rows []types.CanonicalRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(types.Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range rows {
		if err := w.Write(r.Values()); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return f.Close()
}

// JSONWriter writes the rows as an indented JSON array.
type JSONWriter struct{}

func (JSONWriter) Write(path string, rows []types.CanonicalRow) error {
	if rows == nil {
		rows = []types.CanonicalRow{}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// YAMLWriter writes the rows as a YAML list.
type YAMLWriter struct{}

func (YAMLWriter) Write(path string, rows []types.CanonicalRow) error {
	if rows == nil {
		rows = []types.CanonicalRow{}
	}
	data, err := yaml.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
