package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"smart-price/models"
)

// TSVSource reads a tab-separated dataset with a header row.
type TSVSource struct {
	Path         string
	RequirePrice bool
}

func (s *TSVSource) ReadRaw() ([]*models.RawListing, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("tsv: open %q: %w", s.Path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("tsv: read %q: %w", s.Path, err)
	}
	raw, err := rowsToRaw(rows, s.RequirePrice)
	if err != nil {
		return nil, fmt.Errorf("tsv: %q: %w", s.Path, err)
	}
	return raw, nil
}

// TSVWriter writes tab-separated output files. It is safe for concurrent use.
type TSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewTSVWriter creates (or truncates) the file at the given path.
// Intermediate directories are created automatically.
func NewTSVWriter(path string) (*TSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("tsv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("tsv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	w.Comma = '\t'
	return &TSVWriter{file: f, writer: w}, nil
}

// Write exports cleaned listings in the dataset layout, with numeric fields
// already stripped of their units.
func (t *TSVWriter) Write(listings []*models.Listing) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	header := append(append([]string{}, InputColumns...), models.ColumnSellingPrice)
	if err := t.writer.Write(header); err != nil {
		return fmt.Errorf("tsv: write header: %w", err)
	}
	for _, l := range listings {
		price := ""
		if l.HasPrice {
			price = formatFloat(l.SellingPrice)
		}
		row := []string{
			l.Name,
			strconv.Itoa(l.Year),
			strconv.Itoa(l.KmDriven),
			l.Fuel,
			l.SellerType,
			l.Transmission,
			l.Owner,
			formatFloat(l.Mileage),
			formatFloat(l.Engine),
			formatFloat(l.MaxPower),
			strconv.Itoa(l.Seats),
			price,
		}
		if err := t.writer.Write(row); err != nil {
			return fmt.Errorf("tsv: write row: %w", err)
		}
	}

	t.writer.Flush()
	return t.writer.Error()
}

// WriteResults writes batch predictions, one row per input row.
func (t *TSVWriter) WriteResults(results []*models.BatchResult) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.writer.Write(resultHeader()); err != nil {
		return fmt.Errorf("tsv: write header: %w", err)
	}
	for _, res := range results {
		if err := t.writer.Write(resultCells(res)); err != nil {
			return fmt.Errorf("tsv: write row: %w", err)
		}
	}

	t.writer.Flush()
	return t.writer.Error()
}

// Close flushes and closes the underlying file.
func (t *TSVWriter) Close() error {
	t.writer.Flush()
	return t.file.Close()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
