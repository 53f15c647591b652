package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXRenderer writes the sheet into a single-worksheet workbook with a styled header row.
type XLSXRenderer struct{}

func (XLSXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (XLSXRenderer) Extension() string { return "xlsx" }

func (XLSXRenderer) Render(sheet Sheet) ([]byte, error) {
	if err := sheet.validate("xlsx"); err != nil {
		return nil, err
	}
	f := excelize.NewFile()
	defer f.Close()

	const name = "Timetable"
	if _, err := f.NewSheet(name); err != nil {
		return nil, fmt.Errorf("create worksheet: %w", err)
	}
	_ = f.DeleteSheet("Sheet1")
	if idx, err := f.GetSheetIndex(name); err == nil {
		f.SetActiveSheet(idx)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	row := 1
	if sheet.Title != "" {
		last, _ := excelize.ColumnNumberToName(len(sheet.Headers))
		_ = f.SetCellValue(name, "A1", sheet.Title)
		_ = f.MergeCell(name, "A1", fmt.Sprintf("%s1", last))
		_ = f.SetCellStyle(name, "A1", "A1", headerStyle)
		row = 2
	}

	for i, h := range sheet.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		if err := f.SetCellValue(name, cell, h); err != nil {
			return nil, fmt.Errorf("write header %s: %w", cell, err)
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(name, col, col, 18)
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(sheet.Headers), row)
	_ = f.SetCellStyle(name, first, last, headerStyle)

	for r, values := range sheet.Rows {
		for c, value := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row+r+1)
			if err := f.SetCellValue(name, cell, value); err != nil {
				return nil, fmt.Errorf("write cell %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}
