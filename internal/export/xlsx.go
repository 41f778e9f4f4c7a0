// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/pubmed-query/pkg/types"
)

// DefaultSheetName names the single worksheet of the spreadsheet.
const DefaultSheetName = "PMquery"

// columnWidths sets the width of each column range, in characters.
var columnWidths = []struct {
	first, last string
	width       float64
}{
	{"A", "A", 9},
	{"B", "C", 22},
	{"D", "E", 11},
	{"F", "F", 58},
}

// XLSXWriter writes one worksheet with a header row, wrapped top-aligned
// cells, and fixed column widths.
type XLSXWriter struct {
	SheetName string
}

// Write creates the workbook at path.
func (x *XLSXWriter) Write(path string, rows []types.CanonicalRow) error {
	sheet := x.SheetName
	if sheet == "" {
		sheet = DefaultSheetName
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	wrap, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return fmt.Errorf("creating cell style: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	for _, cw := range columnWidths {
		if err := f.SetColWidth(sheet, cw.first, cw.last, cw.width); err != nil {
			return fmt.Errorf("setting width of %s:%s: %w", cw.first, cw.last, err)
		}
		if err := f.SetColStyle(sheet, cw.first+":"+cw.last, wrap); err != nil {
			return fmt.Errorf("styling %s:%s: %w", cw.first, cw.last, err)
		}
	}

	if err := f.SetSheetRow(sheet, "A1", &types.Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", "F1", header); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := r.Values()
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
