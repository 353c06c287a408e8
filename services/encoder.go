package services

import (
	"fmt"
	"strings"

	"smart-price/models"
)

// BrandLabel reduces a free-text model name to its manufacturer token:
// "Maruti Swift Dzire VDI" → "Maruti".
func BrandLabel(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// BuildCategoryMaps scans listings in row order and assigns every new label
// of each categorical column the next unused code, starting at 0.
func BuildCategoryMaps(listings []*models.Listing) map[string]*models.CategoryMap {
	maps := make(map[string]*models.CategoryMap, len(models.CategoricalColumns))
	for _, col := range models.CategoricalColumns {
		maps[col] = models.NewCategoryMap()
	}
	for _, l := range listings {
		for i, label := range l.Labels() {
			maps[models.CategoricalColumns[i]].Add(label)
		}
	}
	return maps
}

// Encoder resolves labels against a fixed set of category maps. It never
// assigns codes, so it is safe for concurrent use.
type Encoder struct {
	maps map[string]*models.CategoryMap
}

// NewEncoder wraps trained maps. Every categorical column must be present.
func NewEncoder(maps map[string]*models.CategoryMap) (*Encoder, error) {
	for _, col := range models.CategoricalColumns {
		m, ok := maps[col]
		if !ok || m == nil || m.Len() == 0 {
			return nil, fmt.Errorf("encoder: no category map for %q: %w", col, ErrModelUnavailable)
		}
	}
	return &Encoder{maps: maps}, nil
}

// Encode returns the codes of the five labels in feature order. A label
// missing from its map fails with *UnknownCategoryError.
func (e *Encoder) Encode(labels [5]string) ([5]int, error) {
	var codes [5]int
	for i, label := range labels {
		col := models.CategoricalColumns[i]
		code, ok := e.maps[col].Code(label)
		if !ok {
			return codes, &UnknownCategoryError{Column: col, Label: label}
		}
		codes[i] = code
	}
	return codes, nil
}

// Labels returns the known labels of column ordered by code.
func (e *Encoder) Labels(column string) []string {
	m, ok := e.maps[column]
	if !ok {
		return nil
	}
	return m.Labels()
}
