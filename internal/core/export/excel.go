package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const maxColumnWidth = 60

// ExcelExporter implements Excel export using excelize
type ExcelExporter struct {
	sheetName string
}

func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{sheetName: "Conversations"}
}

func (e *ExcelExporter) Export(table *Table, writer io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", e.sheetName)

	row := 1
	if table.Title != "" {
		titleStyle, _ := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true, Size: 14, Family: fontFamily},
		})
		f.SetCellValue(e.sheetName, cellName(1, row), table.Title)
		f.SetCellStyle(e.sheetName, cellName(1, row), cellName(1, row), titleStyle)
		row++
		if table.Subtitle != "" {
			f.SetCellValue(e.sheetName, cellName(1, row), table.Subtitle)
			row++
		}
		row++
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: fontSize, Family: fontFamily, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerColor}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	stripeStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: fontSize, Family: fontFamily},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{stripeColor}},
	})
	if err != nil {
		return fmt.Errorf("failed to create row style: %w", err)
	}

	headerRow := row
	widths := make([]int, len(table.Headers))
	for col, header := range table.Headers {
		f.SetCellValue(e.sheetName, cellName(col+1, row), header)
		widths[col] = len(header)
	}
	if len(table.Headers) > 0 {
		f.SetCellStyle(e.sheetName, cellName(1, row), cellName(len(table.Headers), row), headerStyle)
	}
	row++

	for i, values := range table.Rows {
		for col, v := range values {
			f.SetCellValue(e.sheetName, cellName(col+1, row), v)
			if col < len(widths) && len(v) > widths[col] {
				widths[col] = len(v)
			}
		}
		if i%2 == 1 && len(values) > 0 {
			f.SetCellStyle(e.sheetName, cellName(1, row), cellName(len(values), row), stripeStyle)
		}
		row++
	}

	for col, w := range widths {
		name, _ := excelize.ColumnNumberToName(col + 1)
		f.SetColWidth(e.sheetName, name, name, float64(min(w+2, maxColumnWidth)))
	}

	if len(table.Headers) > 0 {
		f.SetPanes(e.sheetName, &excelize.Panes{
			Freeze:      true,
			YSplit:      headerRow,
			TopLeftCell: cellName(1, headerRow+1),
			ActivePane:  "bottomLeft",
		})
		lastRow := headerRow + len(table.Rows)
		f.AutoFilter(e.sheetName, cellName(1, headerRow)+":"+cellName(len(table.Headers), lastRow), nil)
	}

	if err := f.Write(writer); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

func (e *ExcelExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (e *ExcelExporter) FileExtension() string {
	return ".xlsx"
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
