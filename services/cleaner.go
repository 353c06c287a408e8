package services

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"smart-price/metrics"
	"smart-price/models"
	"smart-price/utils"
)

// numberRegexp captures the first decimal number in a unit-suffixed field,
// e.g. "23.4" from "23.4 kmpl" or "1197" from "1197 CC".
var numberRegexp = regexp.MustCompile(`\d+(?:\.\d+)?|\.\d+`)

// plainNumberRegexp is the whole-field numeric syntax a plain column may use.
// Go-only forms such as "1_000" or "0x1p4" are rejected.
var plainNumberRegexp = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?$`)

// ExtractNumber returns the first decimal number embedded in raw.
// The second result is false when raw holds no number.
func ExtractNumber(raw string) (float64, bool) {
	match := numberRegexp.FindString(raw)
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseNumber coerces a plain numeric field. Anything that is not entirely a
// finite number is reported as missing.
func ParseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if !plainNumberRegexp.MatchString(raw) {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// CleanStats counts what a Clean pass kept and dropped.
type CleanStats struct {
	Total          int
	Kept           int
	DroppedByField map[string]int
}

// Dropped returns the number of rows removed.
func (s CleanStats) Dropped() int {
	return s.Total - s.Kept
}

// Cleaner turns RawListings into validated Listings. Rows with any missing or
// out-of-domain required value are dropped, never repaired.
type Cleaner struct {
	logger  *utils.Logger
	metrics *metrics.Metrics
}

// NewCleaner creates a Cleaner. m may be nil.
func NewCleaner(logger *utils.Logger, m *metrics.Metrics) *Cleaner {
	return &Cleaner{logger: logger, metrics: m}
}

// Clean validates every raw row in order. When requirePrice is set, the
// selling price is a required field as well (training data).
func (c *Cleaner) Clean(raw []*models.RawListing, requirePrice bool) ([]*models.Listing, CleanStats) {
	stats := CleanStats{Total: len(raw), DroppedByField: make(map[string]int)}
	result := make([]*models.Listing, 0, len(raw))
	now := time.Now()

	for _, r := range raw {
		listing, err := c.Normalize(r, requirePrice)
		if err != nil {
			field := "unknown"
			var fe *FieldError
			if errors.As(err, &fe) {
				field = fe.Field
			}
			stats.DroppedByField[field]++
			c.metrics.MalformedRow(field)
			c.logger.Warn("[cleaner] Dropping %v", err)
			continue
		}
		listing.CreatedAt = now
		result = append(result, listing)
	}

	stats.Kept = len(result)
	c.logger.Info("[cleaner] Cleaned %d → %d listings (dropped %d)",
		stats.Total, stats.Kept, stats.Dropped())
	return result, stats
}

// Normalize converts one raw row, returning a *FieldError for the first
// field that is missing or outside its domain.
func (c *Cleaner) Normalize(r *models.RawListing, requirePrice bool) (*models.Listing, error) {
	bad := func(field, raw string) error {
		return &FieldError{Row: r.Row, Field: field, Raw: raw}
	}

	year, ok := ParseNumber(r.Year)
	if !ok || !numericInDomain(models.ColumnYear, year) {
		return nil, bad(models.ColumnYear, r.Year)
	}
	km, ok := ParseNumber(r.KmDriven)
	if !ok || !numericInDomain(models.ColumnKmDriven, km) {
		return nil, bad(models.ColumnKmDriven, r.KmDriven)
	}
	mileage, ok := ExtractNumber(r.Mileage)
	if !ok || !numericInDomain(models.ColumnMileage, mileage) {
		return nil, bad(models.ColumnMileage, r.Mileage)
	}
	engine, ok := ExtractNumber(r.Engine)
	if !ok || !numericInDomain(models.ColumnEngine, engine) {
		return nil, bad(models.ColumnEngine, r.Engine)
	}
	power, ok := ExtractNumber(r.MaxPower)
	if !ok || !numericInDomain(models.ColumnMaxPower, power) {
		return nil, bad(models.ColumnMaxPower, r.MaxPower)
	}
	seats, ok := ParseNumber(r.Seats)
	if !ok || !numericInDomain(models.ColumnSeats, seats) {
		return nil, bad(models.ColumnSeats, r.Seats)
	}

	listing := &models.Listing{
		Name:         normaliseText(r.Name),
		Brand:        BrandLabel(r.Name),
		Year:         int(year),
		KmDriven:     int(km),
		Fuel:         strings.TrimSpace(r.Fuel),
		SellerType:   strings.TrimSpace(r.SellerType),
		Transmission: strings.TrimSpace(r.Transmission),
		Owner:        strings.TrimSpace(r.Owner),
		Mileage:      mileage,
		Engine:       engine,
		MaxPower:     power,
		Seats:        int(seats),
	}

	labels := listing.Labels()
	for i, label := range labels {
		if label == "" {
			raw := [5]string{r.Name, r.Fuel, r.SellerType, r.Transmission, r.Owner}[i]
			return nil, bad(models.CategoricalColumns[i], raw)
		}
	}

	if price, ok := ParseNumber(r.SellingPrice); ok && price >= 0 {
		listing.SellingPrice = price
		listing.HasPrice = true
	} else if requirePrice {
		return nil, bad(models.ColumnSellingPrice, r.SellingPrice)
	}

	return listing, nil
}

// numericInDomain reports whether v is a valid value for a numeric column.
// Training rows and inference requests share these bounds.
func numericInDomain(column string, v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	switch column {
	case models.ColumnYear:
		return isWhole(v)
	case models.ColumnKmDriven:
		return v >= 0 && isWhole(v)
	case models.ColumnSeats:
		return v >= 1 && isWhole(v)
	default:
		return v >= 0
	}
}

func isWhole(v float64) bool {
	return v == math.Trunc(v)
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
