// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes the result table to disk. Every writer emits the
// fixed column order of types.Columns.
package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pubmed-query/pkg/types"
)

// Writer writes rows to a file at path, replacing any existing file.
type Writer interface {
	Write(path string, rows []types.CanonicalRow) error
}

// ForFormat returns the writer for format. An empty format is inferred from
// the extension of path, with XLSX as the fallback.
func ForFormat(format types.ExportFormat, path string, cfg types.ExportConfig) (Writer, error) {
	if format == "" {
		format = FormatFromPath(path)
	}
	switch format {
	case types.FormatXLSX:
		return &XLSXWriter{SheetName: cfg.SheetName}, nil
	case types.FormatCSV:
		return CSVWriter{}, nil
	case types.FormatJSON:
		return JSONWriter{}, nil
	case types.FormatYAML:
		return YAMLWriter{}, nil
	case types.FormatCSL:
		return CSLWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format %q: use xlsx, csv, json, yaml, or csl", format)
	}
}

// FormatFromPath infers the export format from a file extension.
func FormatFromPath(path string) types.ExportFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return types.FormatCSV
	case ".json":
		return types.FormatJSON
	case ".yaml", ".yml":
		return types.FormatYAML
	default:
		return types.FormatXLSX
	}
}
