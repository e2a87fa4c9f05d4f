package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// WriteCSV writes t as comma-separated values with a header row.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for i := range t.Rows {
		if err := cw.Write(paddedRow(t, i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteWorkbook writes t to the first sheet of a new .xlsx workbook. Marks
// and attendance cells are stored as numbers; everything else as text.
func WriteWorkbook(w io.Writer, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	numeric := make([]bool, len(t.Columns))
	header := make([]interface{}, len(t.Columns))
	for j, c := range t.Columns {
		header[j] = c
		numeric[j] = strings.HasSuffix(c, suffixMarks) || strings.HasSuffix(c, suffixAttendance)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range t.Rows {
		cells := paddedRow(t, i)
		row := make([]interface{}, len(cells))
		for j, v := range cells {
			row[j] = v
			if numeric[j] {
				if n, err := strconv.ParseFloat(v, 64); err == nil {
					row[j] = n
				}
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	return f.Write(w)
}

func paddedRow(t *Table, i int) []string {
	row := make([]string, len(t.Columns))
	for j := range row {
		row[j] = t.Cell(i, j)
	}
	return row
}
