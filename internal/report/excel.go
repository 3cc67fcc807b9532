package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet is the tabular payload for one exported workbook: a label merged
// across the column span, the column headings, then data rows.
type Sheet struct {
	Name    string
	Header  string
	Columns []string
	Rows    [][]interface{}
}

// Exporter turns a Sheet into spreadsheet bytes. Aggregation code depends on
// this interface only, so the encoding library stays swappable.
type Exporter interface {
	Export(sheet Sheet) ([]byte, error)
}

type excelExporter struct{}

// NewExcelExporter returns the XLSX implementation of Exporter.
func NewExcelExporter() Exporter {
	return &excelExporter{}
}

func (e *excelExporter) Export(sheet Sheet) ([]byte, error) {
	if len(sheet.Columns) == 0 {
		return nil, fmt.Errorf("sheet %q has no columns", sheet.Name)
	}

	f := excelize.NewFile()
	defer f.Close()

	name := sheet.Name
	if name == "" {
		name = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return nil, err
	}

	endCol, err := excelize.ColumnNumberToName(len(sheet.Columns))
	if err != nil {
		return nil, err
	}

	if err := f.MergeCell(name, "A1", endCol+"1"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(name, "A1", sheet.Header); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"000000"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(name, "A1", endCol+"1", headerStyle); err != nil {
		return nil, err
	}

	headingStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	for i, column := range sheet.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(name, cell, column); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(name, "A2", endCol+"2", headingStyle); err != nil {
		return nil, err
	}

	for r, row := range sheet.Rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+3)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(name, cell, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
