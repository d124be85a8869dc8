package export

import (
	"fmt"

	"github.com/nvandessel/defense-datagen/internal/dataset"
	"github.com/nvandessel/defense-datagen/internal/pathutil"
	"github.com/xuri/excelize/v2"
)

// maxSheetName is the Excel limit on sheet name length.
const maxSheetName = 31

// WriteWorkbook writes every non-empty dataset to its own sheet of an XLSX workbook.
// Sheets are named after the datasets. Returns false without creating a file
// when every dataset is empty.
func WriteWorkbook(path string, datasets []dataset.Dataset) (bool, error) {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return false, fmt.Errorf("creating header style: %w", err)
	}

	sheets := 0
	for _, ds := range datasets {
		if ds.Len() == 0 {
			continue
		}
		if err := ds.CheckShape(); err != nil {
			return false, err
		}

		name := sheetName(ds.Name)
		if sheets == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return false, fmt.Errorf("naming sheet %s: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return false, fmt.Errorf("adding sheet %s: %w", name, err)
		}
		sheets++

		if err := writeSheet(f, name, ds, bold); err != nil {
			return false, err
		}
	}

	if sheets == 0 {
		return false, nil
	}

	if err := f.SaveAs(path); err != nil {
		return false, fmt.Errorf("saving workbook %s: %w", pathutil.RedactPath(path), err)
	}
	return true, nil
}

func writeSheet(f *excelize.File, sheet string, ds dataset.Dataset, headerStyle int) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("opening sheet %s: %w", sheet, err)
	}

	cols := ds.Columns()
	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: c}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("writing %s header: %w", sheet, err)
	}

	row := make([]interface{}, len(cols))
	for i, r := range ds.Records {
		for j, field := range r {
			row[j] = field.Value
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flushing sheet %s: %w", sheet, err)
	}
	return nil
}

func sheetName(name string) string {
	if len(name) > maxSheetName {
		return name[:maxSheetName]
	}
	return name
}

// ReadWorkbookRowCounts returns the number of data rows (excluding the header) per sheet.
func ReadWorkbookRowCounts(path string) (map[string]int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", pathutil.RedactPath(path), err)
	}
	defer f.Close()

	counts := make(map[string]int)
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
		}
		if len(rows) > 0 {
			counts[sheet] = len(rows) - 1
		}
	}
	return counts, nil
}
