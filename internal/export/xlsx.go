package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/tilestock/tilestock/internal/inventory"
)

const sheetName = "Inventory"

// GroupsXLSX renders the full grouped inventory as a spreadsheet, one row
// per variant with the group columns repeated on its first row.
func GroupsXLSX(groups []inventory.Group) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("removing default sheet: %w", err)
	}

	headers := []string{"Model", "Size", "Type", "Quantity", "Created"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("writing header: %w", err)
		}
	}

	row := 2
	for _, g := range groups {
		for i, v := range g.Variants {
			values := []any{"", "", v.Label, v.Quantity, ""}
			if i == 0 {
				values[0], values[1] = g.ModelPrefix, g.Dimensions()
			}
			if !v.CreatedAt.IsZero() {
				values[4] = v.CreatedAt.Format("2006-01-02")
			}

			for col, value := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				if err := f.SetCellValue(sheetName, cell, value); err != nil {
					return nil, fmt.Errorf("writing row %d: %w", row, err)
				}
			}
			row++
		}
	}

	if err := f.SetColWidth(sheetName, "A", "E", 16); err != nil {
		return nil, fmt.Errorf("sizing columns: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("rendering spreadsheet: %w", err)
	}
	return buf.Bytes(), nil
}
