package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"smart-price/models"
)

// InputColumns are required in every dataset and batch request file.
var InputColumns = []string{
	models.ColumnName,
	models.ColumnYear,
	models.ColumnKmDriven,
	models.ColumnFuel,
	models.ColumnSellerType,
	models.ColumnTransmission,
	models.ColumnOwner,
	models.ColumnMileage,
	models.ColumnEngine,
	models.ColumnMaxPower,
	models.ColumnSeats,
}

// OpenSource picks a reader by file extension: .xlsx files are read from
// their first sheet, everything else as tab-separated text. When
// requirePrice is set the selling_price column must be present.
func OpenSource(path string, requirePrice bool) ListingSource {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return &XLSXSource{Path: path, RequirePrice: requirePrice}
	}
	return &TSVSource{Path: path, RequirePrice: requirePrice}
}

// OpenResultWriter picks a batch output writer by file extension.
func OpenResultWriter(path string) (ResultWriter, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		w, err := NewXLSXWriter(path)
		if err != nil {
			return nil, err
		}
		return w, nil
	}
	w, err := NewTSVWriter(path)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// rowsToRaw maps header names to positions and converts the remaining rows.
// Columns are located by name, so extra or reordered columns are fine.
func rowsToRaw(rows [][]string, requirePrice bool) ([]*models.RawListing, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset: missing header row")
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	required := InputColumns
	if requirePrice {
		required = append(append([]string{}, InputColumns...), models.ColumnSellingPrice)
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("dataset: missing required column %q", col)
		}
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	out := make([]*models.RawListing, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		out = append(out, &models.RawListing{
			Row:          n + 1,
			Name:         cell(row, models.ColumnName),
			Year:         cell(row, models.ColumnYear),
			KmDriven:     cell(row, models.ColumnKmDriven),
			Fuel:         cell(row, models.ColumnFuel),
			SellerType:   cell(row, models.ColumnSellerType),
			Transmission: cell(row, models.ColumnTransmission),
			Owner:        cell(row, models.ColumnOwner),
			Mileage:      cell(row, models.ColumnMileage),
			Engine:       cell(row, models.ColumnEngine),
			MaxPower:     cell(row, models.ColumnMaxPower),
			Seats:        cell(row, models.ColumnSeats),
			SellingPrice: cell(row, models.ColumnSellingPrice),
		})
	}
	return out, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// rawCells returns the input columns of r in InputColumns order.
func rawCells(r *models.RawListing) []string {
	return []string{
		r.Name, r.Year, r.KmDriven, r.Fuel, r.SellerType, r.Transmission,
		r.Owner, r.Mileage, r.Engine, r.MaxPower, r.Seats,
	}
}

// resultHeader is the header of batch output files.
func resultHeader() []string {
	return append(append([]string{}, InputColumns...), "predicted_price", "floored", "error")
}

// resultCells flattens one batch result into output cells.
func resultCells(res *models.BatchResult) []string {
	cells := rawCells(res.Input)
	switch {
	case res.Err != nil:
		cells = append(cells, "", "", res.Err.Error())
	case res.Prediction != nil:
		floored := "false"
		if res.Prediction.Floored {
			floored = "true"
		}
		cells = append(cells, res.Prediction.Price.String(), floored, "")
	default:
		cells = append(cells, "", "", "")
	}
	return cells
}
