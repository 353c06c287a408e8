package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"smart-price/models"
)

// XLSXSource reads a dataset from the first sheet of an Excel workbook.
type XLSXSource struct {
	Path         string
	RequirePrice bool
}

func (s *XLSXSource) ReadRaw() ([]*models.RawListing, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open %q: %w", s.Path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx: %q has no sheets", s.Path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("xlsx: read %q: %w", s.Path, err)
	}
	raw, err := rowsToRaw(rows, s.RequirePrice)
	if err != nil {
		return nil, fmt.Errorf("xlsx: %q: %w", s.Path, err)
	}
	return raw, nil
}

// XLSXWriter writes batch results into a single-sheet workbook on Close.
type XLSXWriter struct {
	path  string
	file  *excelize.File
	sheet string
}

// NewXLSXWriter prepares a workbook that will be saved at path.
func NewXLSXWriter(path string) (*XLSXWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("xlsx: create output dir: %w", err)
	}
	f := excelize.NewFile()
	return &XLSXWriter{path: path, file: f, sheet: f.GetSheetName(0)}, nil
}

func (x *XLSXWriter) WriteResults(results []*models.BatchResult) error {
	if err := x.writeRow(1, resultHeader()); err != nil {
		return err
	}
	for i, res := range results {
		if err := x.writeRow(i+2, resultCells(res)); err != nil {
			return err
		}
	}
	return nil
}

func (x *XLSXWriter) writeRow(row int, cells []string) error {
	addr, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("xlsx: cell address: %w", err)
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	if err := x.file.SetSheetRow(x.sheet, addr, &values); err != nil {
		return fmt.Errorf("xlsx: write row %d: %w", row, err)
	}
	return nil
}

// Close saves the workbook to disk.
func (x *XLSXWriter) Close() error {
	defer x.file.Close()
	if err := x.file.SaveAs(x.path); err != nil {
		return fmt.Errorf("xlsx: save %q: %w", x.path, err)
	}
	return nil
}
