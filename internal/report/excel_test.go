package report_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fleetmate/loan-ledger/internal/report"
)

func TestExportWorkbookLayout(t *testing.T) {
	sheet := report.Sheet{
		Name:    "Loan Calculations",
		Header:  "KA-01-1234 - Loan Calculations ( 2024-01-01 - 2024-01-31 )",
		Columns: []string{"Date", "Cost", "Additional Charges", "Note"},
		Rows: [][]interface{}{
			{"2024-01-10", 2000.0, 100.0, "first installment"},
			{"2024-01-20", 3000.0, 0.0, ""},
		},
	}

	raw, err := report.NewExcelExporter().Export(sheet)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	require.Contains(t, f.GetSheetList(), "Loan Calculations")

	header, err := f.GetCellValue("Loan Calculations", "A1")
	require.NoError(t, err)
	assert.Equal(t, sheet.Header, header)

	// Header label spans the full column width
	merged, err := f.GetMergeCells("Loan Calculations")
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "A1", merged[0].GetStartAxis())
	assert.Equal(t, "D1", merged[0].GetEndAxis())

	for i, want := range sheet.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		require.NoError(t, err)
		got, err := f.GetCellValue("Loan Calculations", cell)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	date, err := f.GetCellValue("Loan Calculations", "A3")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", date)

	cost, err := f.GetCellValue("Loan Calculations", "B4")
	require.NoError(t, err)
	assert.Equal(t, "3000", cost)

	note, err := f.GetCellValue("Loan Calculations", "D3")
	require.NoError(t, err)
	assert.Equal(t, "first installment", note)
}

func TestExportRejectsEmptyColumns(t *testing.T) {
	_, err := report.NewExcelExporter().Export(report.Sheet{Name: "Empty"})
	assert.Error(t, err)
}
