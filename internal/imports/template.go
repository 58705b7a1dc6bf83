package imports

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// BuildTemplate returns an .xlsx workbook whose first sheet carries headers
// in a bold, shaded row followed by one example row.
func BuildTemplate(sheet string, headers, example []string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("imports: template sheet: %w", err)
	}
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return nil, fmt.Errorf("imports: template style: %w", err)
	}

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, float64(max(len(h), 12)+4)); err != nil {
			return nil, err
		}
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return nil, err
	}
	for i, v := range example {
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return nil, err
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("imports: write template: %w", err)
	}
	return buf.Bytes(), nil
}

// ItemTemplate is the workbook offered for item imports.
func ItemTemplate() ([]byte, error) {
	return BuildTemplate("Items", ItemHeaders, []string{"BOLT-01", "Steel Bolt", "Hardware", "PCS", "1.50", "10", "bolt-01.jpg"})
}

// POTemplate is the workbook offered for purchase order imports.
func POTemplate() ([]byte, error) {
	return BuildTemplate("Purchase Orders", POHeaders, []string{"PO-100", "2-Jan-25", "Steel Bolt", "100", "PCS", "1.50", "150.00", "Acme Trading", "INV-0001", "5-Jan-25"})
}
