// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-query/pkg/types"
)

func sampleRows() []types.CanonicalRow {
	return []types.CanonicalRow{
		{
			ID:       "31000001",
			Title:    "Brain changes after spaceflight",
			Authors:  " Koppelmans, Vincent; Seidler, NA;",
			Journal:  "NeuroImage",
			PubDate:  "2019-05-01",
			Abstract: "Astronauts were scanned.",
		},
		{
			ID:       "31000003",
			Title:    "GeneReviews chapter",
			Authors:  " Adam, Margaret P;",
			Journal:  "NA",
			PubDate:  "2018 Winter",
			Abstract: "",
		},
	}
}

// --- ForFormat ---

func TestForFormat(t *testing.T) {
	tests := []struct {
		format types.ExportFormat
		path   string
		want   Writer
	}{
		{"", "out.xlsx", &XLSXWriter{}},
		{"", "out", &XLSXWriter{}},
		{"", "out.CSV", CSVWriter{}},
		{"", "out.json", JSONWriter{}},
		{"", "out.yml", YAMLWriter{}},
		{types.FormatCSL, "refs.yaml", CSLWriter{}},
		{types.FormatCSV, "out.xlsx", CSVWriter{}},
	}
	for _, tt := range tests {
		got, err := ForFormat(tt.format, tt.path, types.ExportConfig{})
		require.NoError(t, err)
		assert.IsType(t, tt.want, got, "%s %s", tt.format, tt.path)
	}

	_, err := ForFormat("pdf", "out.pdf", types.ExportConfig{})
	assert.ErrorContains(t, err, "unsupported format")
}

// --- XLSX ---

func TestXLSXWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	require.NoError(t, (&XLSXWriter{}).Write(path, sampleRows()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{DefaultSheetName}, f.GetSheetList())

	rows, err := f.GetRows(DefaultSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, types.Columns, rows[0])
	assert.Equal(t, sampleRows()[0].Values(), rows[1])
	assert.Equal(t, "NA", rows[2][3])

	for col, want := range map[string]float64{"A": 9, "B": 22, "C": 22, "D": 11, "E": 11, "F": 58} {
		w, err := f.GetColWidth(DefaultSheetName, col)
		require.NoError(t, err)
		assert.InDelta(t, want, w, 0.01, "column %s", col)
	}

	styleID, err := f.GetCellStyle(DefaultSheetName, "F2")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Alignment)
	assert.True(t, style.Alignment.WrapText)
	assert.Equal(t, "top", style.Alignment.Vertical)
}

func TestXLSXWriterCustomSheetAndNoRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, (&XLSXWriter{SheetName: "Results"}).Write(path, nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, types.Columns, rows[0])
}

// --- text formats ---

func TestCSVWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, CSVWriter{}.Write(path, sampleRows()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, types.Columns, records[0])
	assert.Equal(t, " Koppelmans, Vincent; Seidler, NA;", records[1][2])
}

func TestJSONWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, JSONWriter{}.Write(path, sampleRows()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []map[string]string
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "31000001", got[0]["pmid"])

	empty := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, JSONWriter{}.Write(empty, nil))
	data, err = os.ReadFile(empty)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestYAMLWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.yaml")
	require.NoError(t, YAMLWriter{}.Write(path, sampleRows()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []types.CanonicalRow
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, sampleRows(), got)
}

// --- CSL ---

func TestToCSLItem(t *testing.T) {
	item := toCSLItem(sampleRows()[0])
	assert.Equal(t, "pmid:31000001", item.ID)
	assert.Equal(t, "article-journal", item.Type)
	assert.Equal(t, "NeuroImage", item.ContainerTitle)
	assert.Equal(t, "https://pubmed.ncbi.nlm.nih.gov/31000001/", item.URL)
	assert.Equal(t, []CSLName{
		{Family: "Koppelmans", Given: "Vincent"},
		{Family: "Seidler"},
	}, item.Author)
	require.NotNil(t, item.Issued)
	assert.Equal(t, [][]int{{2019, 5, 1}}, item.Issued.DateParts)

	book := toCSLItem(sampleRows()[1])
	assert.Equal(t, "chapter", book.Type)
	assert.Empty(t, book.ContainerTitle)
	assert.Equal(t, "2018 Winter", book.Issued.Literal)
}

func TestParseAuthorString(t *testing.T) {
	assert.Nil(t, parseAuthorString(""))
	assert.Nil(t, parseAuthorString(" NA, NA;"))
	assert.Equal(t, []CSLName{{Given: "Jane"}}, parseAuthorString(" NA, Jane;"))
	assert.Equal(t, []CSLName{{Literal: "Consortium"}}, parseAuthorString(" Consortium;"))
}

func TestCSLWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.yaml")
	require.NoError(t, CSLWriter{}.Write(path, sampleRows()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var items []CSLItem
	require.NoError(t, yaml.Unmarshal(data, &items))
	require.Len(t, items, 2)
	assert.Equal(t, "31000003", items[1].PMID)
}
