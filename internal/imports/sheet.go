package imports

import (
	"bytes"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Row is one spreadsheet data row keyed by trimmed header text.
type Row map[string]string

// Get returns the first non-empty value among the given headers.
func (r Row) Get(headers ...string) string {
	for _, h := range headers {
		if v := strings.TrimSpace(r[h]); v != "" {
			return v
		}
	}
	return ""
}

// MsgUnreadableExcel is returned when the spreadsheet cannot be decoded.
const MsgUnreadableExcel = "Unable to read Excel file"

// oleSignature starts every legacy BIFF .xls compound document.
var oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// ReadRows decodes the first worksheet of data, either an .xlsx workbook or
// a legacy .xls compound document. The first non-blank row is the header;
// fully blank data rows are dropped.
func ReadRows(data []byte) ([]Row, error) {
	var (
		grid [][]string
		err  error
	)
	if bytes.HasPrefix(data, oleSignature) {
		grid, err = legacyGrid(data)
	} else {
		grid, err = workbookGrid(data)
	}
	if err != nil {
		return nil, err
	}
	return gridRows(grid)
}

// workbookGrid reads cells as raw values so date cells surface as Excel
// serial numbers.
func workbookGrid(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, badRequest(MsgUnreadableExcel)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, badRequest(MsgExcelEmpty)
	}
	grid, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, badRequest(MsgUnreadableExcel)
	}
	return grid, nil
}

// legacyGrid reads the first sheet of a BIFF workbook. The decoder panics on
// some malformed streams, which is reported as an unreadable file.
func legacyGrid(data []byte) (grid [][]string, err error) {
	defer func() {
		if recover() != nil {
			grid, err = nil, badRequest(MsgUnreadableExcel)
		}
	}()
	wb, openErr := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if openErr != nil || wb == nil {
		return nil, badRequest(MsgUnreadableExcel)
	}
	if wb.NumSheets() == 0 {
		return nil, badRequest(MsgExcelEmpty)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, badRequest(MsgExcelEmpty)
	}
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		cells := make([]string, 0, row.LastCol()+1)
		for c := 0; c <= row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

func gridRows(grid [][]string) ([]Row, error) {
	var (
		header []string
		rows   []Row
	)
	for _, cells := range grid {
		if blank(cells) {
			continue
		}
		if header == nil {
			header = make([]string, len(cells))
			for i, c := range cells {
				header[i] = strings.TrimSpace(c)
			}
			continue
		}
		row := make(Row, len(header))
		for i, name := range header {
			if name == "" || i >= len(cells) {
				continue
			}
			row[name] = strings.TrimSpace(cells[i])
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, badRequest(MsgExcelEmpty)
	}
	return rows, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
