package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"smart-price/models"
	"smart-price/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Ranges computes min, max and median of every numeric input over the live
// dataset. An empty dataset is ErrEmptyDataset rather than undefined bounds.
func (s *InsightService) Ranges(listings []*models.Listing) (map[string]models.NumericRange, error) {
	if len(listings) == 0 {
		return nil, fmt.Errorf("insights: ranges: %w", ErrEmptyDataset)
	}

	columns := make([][]float64, len(models.NumericColumns))
	for i := range columns {
		columns[i] = make([]float64, 0, len(listings))
	}
	for _, l := range listings {
		for i, v := range l.Numeric() {
			columns[i] = append(columns[i], v)
		}
	}

	out := make(map[string]models.NumericRange, len(columns))
	for i, values := range columns {
		sort.Float64s(values)
		out[models.NumericColumns[i]] = models.NumericRange{
			Min:    values[0],
			Max:    values[len(values)-1],
			Median: median(values),
		}
	}
	return out, nil
}

// FormOptions combines the artifact's category labels, in code order, with
// numeric ranges from the live dataset.
func (s *InsightService) FormOptions(enc *Encoder, listings []*models.Listing) (*models.FormOptions, error) {
	ranges, err := s.Ranges(listings)
	if err != nil {
		return nil, err
	}
	opts := &models.FormOptions{
		Categories: make(map[string][]string, len(models.CategoricalColumns)),
		Ranges:     ranges,
		Rows:       len(listings),
	}
	for _, col := range models.CategoricalColumns {
		opts.Categories[col] = enc.Labels(col)
	}
	return opts, nil
}

// Summarize computes a price and brand overview of a cleaned dataset.
func (s *InsightService) Summarize(listings []*models.Listing) *models.DatasetSummary {
	report := &models.DatasetSummary{
		ListingsByBrand: make(map[string]int),
	}
	if len(listings) == 0 {
		return report
	}
	report.TotalListings = len(listings)

	var total float64
	for _, l := range listings {
		report.ListingsByBrand[l.Brand]++
		if !l.HasPrice {
			continue
		}
		report.PricedListings++
		total += l.SellingPrice
		if report.MostExpensive == nil || l.SellingPrice > report.MaxPrice {
			report.MaxPrice = l.SellingPrice
			report.MostExpensive = l
		}
		if report.PricedListings == 1 || l.SellingPrice < report.MinPrice {
			report.MinPrice = l.SellingPrice
		}
	}
	if report.PricedListings > 0 {
		report.AveragePrice = round2(total / float64(report.PricedListings))
	}
	return report
}

// Print writes a human-readable overview of r and opts to w.
func (s *InsightService) Print(w io.Writer, r *models.DatasetSummary, opts *models.FormOptions) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n%s\n  DATASET OVERVIEW\n%s\n\n", sep, sep)
	fmt.Fprintf(w, "  Listings        : %d\n", r.TotalListings)
	fmt.Fprintf(w, "  With price      : %d\n", r.PricedListings)
	if r.PricedListings > 0 {
		fmt.Fprintf(w, "  Average price   : ₹%.2f\n", r.AveragePrice)
		fmt.Fprintf(w, "  Minimum price   : ₹%.2f\n", r.MinPrice)
		fmt.Fprintf(w, "  Maximum price   : ₹%.2f\n", r.MaxPrice)
	}
	if r.MostExpensive != nil {
		fmt.Fprintf(w, "  Most expensive  : %s\n", truncate(r.MostExpensive.Name, 40))
	}
	fmt.Fprintln(w)

	if opts != nil {
		fmt.Fprintf(w, "  Input ranges\n  %s\n", thin)
		for _, col := range models.NumericColumns {
			rg := opts.Ranges[col]
			fmt.Fprintf(w, "  %-10s min %-10.1f max %-10.1f median %.1f\n", col, rg.Min, rg.Max, rg.Median)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "  Listings by brand\n  %s\n", thin)
	type brandCount struct {
		brand string
		count int
	}
	brands := make([]brandCount, 0, len(r.ListingsByBrand))
	for b, n := range r.ListingsByBrand {
		brands = append(brands, brandCount{b, n})
	}
	sort.Slice(brands, func(i, j int) bool {
		if brands[i].count != brands[j].count {
			return brands[i].count > brands[j].count
		}
		return brands[i].brand < brands[j].brand
	})
	for _, bc := range brands {
		fmt.Fprintf(w, "  %-20s %d\n", truncate(bc.brand, 18), bc.count)
	}
	fmt.Fprintf(w, "\n%s\n\n", sep)
}

// median expects sorted, non-empty values.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

// truncate shortens s to at most max runes.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
