package formats

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/gdpdash/internal/loader"
	"github.com/JonMunkholm/gdpdash/internal/table"
)

const formatExcel = "excel"

// excelErrorValues are formula results that mark a cell as invalid.
var excelErrorValues = map[string]bool{
	"#DIV/0!": true,
	"#N/A":    true,
	"#NAME?":  true,
	"#NULL!":  true,
	"#NUM!":   true,
	"#REF!":   true,
	"#VALUE!": true,
}

// Excel loads OOXML workbooks (.xlsx, .xlsm).
//
// Options:
//   - sheet: sheet name (default: first sheet)
//   - header_row: 1-based row holding column names (default 1)
type Excel struct{}

// NewExcel returns the Excel loader.
func NewExcel() *Excel { return &Excel{} }

func (l *Excel) SupportedFormat() string { return formatExcel }

func (l *Excel) Load(req loader.Request) (*table.Table, error) {
	f, err := excelize.OpenFile(req.Source())
	if err != nil {
		return nil, loader.NewLoadError(req, formatExcel, "cannot open workbook", err)
	}
	defer f.Close()

	sheet, err := pickSheet(f, req.OptionOr("sheet", ""))
	if err != nil {
		return nil, loader.NewLoadError(req, formatExcel, err.Error(), nil)
	}

	headerRow, err := strconv.Atoi(req.OptionOr("header_row", "1"))
	if err != nil || headerRow < 1 {
		return nil, loader.NewLoadError(req, formatExcel, fmt.Sprintf("invalid header_row %q", req.OptionOr("header_row", "")), nil)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, loader.NewLoadError(req, formatExcel, fmt.Sprintf("cannot read sheet %q", sheet), err)
	}
	if len(rows) < headerRow || len(rows[headerRow-1]) == 0 {
		return nil, loader.NewLoadError(req, formatExcel, fmt.Sprintf("sheet %q is empty", sheet), nil)
	}

	header, err := normalizeHeader(req, formatExcel, rows[headerRow-1])
	if err != nil {
		return nil, err
	}

	data := make([][]string, 0, len(rows)-headerRow)
	for i, row := range rows[headerRow:] {
		rowNum := headerRow + i + 1
		if len(row) > len(header) {
			for j := len(header); j < len(row); j++ {
				if strings.TrimSpace(row[j]) != "" {
					cell, _ := excelize.CoordinatesToCellName(j+1, rowNum)
					return nil, loader.NewLoadError(req, formatExcel,
						fmt.Sprintf("cell %s has a value outside the %d header columns", cell, len(header)), nil)
				}
			}
			row = row[:len(header)]
		}
		// Excel omits trailing blank cells; pad them back as empty.
		padded := make([]string, len(header))
		copy(padded, row)

		for j, v := range padded {
			if excelErrorValues[strings.TrimSpace(v)] {
				cell, _ := excelize.CoordinatesToCellName(j+1, rowNum)
				return nil, loader.NewLoadError(req, formatExcel, fmt.Sprintf("invalid cell %s: %s", cell, v), nil)
			}
		}
		data = append(data, padded)
	}

	return buildTable(req, formatExcel, header, data)
}

func pickSheet(f *excelize.File, want string) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}
	if want == "" {
		return sheets[0], nil
	}
	for _, s := range sheets {
		if strings.EqualFold(s, want) {
			return s, nil
		}
	}
	return "", fmt.Errorf("sheet %q not found (have %s)", want, strings.Join(sheets, ", "))
}
