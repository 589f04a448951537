// Package export renders an extraction result as an XLSX workbook, one row
// per line item.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"billex/internal/domain"
)

const sheetName = "Line Items"

// columns defines the header row.
var columns = []string{
	"Page No",
	"Page Type",
	"Item Name",
	"Quantity",
	"Rate",
	"Amount",
}

// WriteXLSX renders the result's line items into an XLSX workbook and
// returns its bytes. Page order and per-page item order are preserved.
func WriteXLSX(result *domain.ExtractResult) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	for i, h := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("writing header: %w", err)
		}
	}

	row := 2
	for _, page := range result.Data.PagewiseLineItems {
		for _, item := range page.BillItems {
			values := []interface{}{
				page.PageNo,
				string(page.PageType),
				item.ItemName,
				item.ItemQuantity,
				item.ItemRate,
				item.ItemAmount,
			}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				if err := f.SetCellValue(sheetName, cell, v); err != nil {
					return nil, fmt.Errorf("writing row %d: %w", row, err)
				}
			}
			row++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
