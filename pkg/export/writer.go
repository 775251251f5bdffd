package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// SheetName is the name of the worksheet in XLSX exports.
const SheetName = "Transactions"

// WriteCSV writes the rows with a header line as CSV.
func WriteCSV(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("could not write CSV header: %w", err)
	}

	for i, row := range rows {
		if err := writer.Write(row.Record()); err != nil {
			return fmt.Errorf("could not write line %d of the CSV: %w", i+2, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes the rows with a header line as an XLSX workbook.
//
// Amounts are written as numbers so that they can be summed up in the
// spreadsheet.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(SheetName, "A1", &Header); err != nil {
		return err
	}

	last, err := excelize.CoordinatesToCellName(len(Header), 1)
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(SheetName, "A1", last, header); err != nil {
		return err
	}

	for i, row := range rows {
		cells := make([]any, 0, len(Header))
		for j, value := range row.Record() {
			// The amount column
			if j == 3 {
				amount, _ := row.Amount.Float64()
				cells = append(cells, amount)
				continue
			}
			cells = append(cells, value)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
			return fmt.Errorf("could not write row %d of the sheet: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "B", 12); err != nil {
		return err
	}

	if err := f.SetColWidth(SheetName, "E", "G", 30); err != nil {
		return err
	}

	return f.Write(w)
}
