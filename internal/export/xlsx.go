package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// BuildXLSX renders every table of the report on its own sheet.
func BuildXLSX(r Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range r.tables() {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", t.Name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return nil, err
		}

		for col, title := range t.Header {
			if err := f.SetCellValue(t.Name, cellName(col, 1), title); err != nil {
				return nil, err
			}
		}
		for rowIdx, row := range t.Rows {
			for col, v := range row {
				if v == nil {
					continue
				}
				if err := f.SetCellValue(t.Name, cellName(col, rowIdx+2), xlsxValue(v)); err != nil {
					return nil, err
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return fmt.Sprintf("A%d", row)
	}
	return name
}

func xlsxValue(v interface{}) interface{} {
	if a, ok := v.(Amount); ok {
		return a.Value.Round(a.Places).InexactFloat64()
	}
	return v
}
