package services

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedField marks a numeric field that could not be parsed. Rows
	// carrying one are dropped during loading.
	ErrMalformedField = errors.New("malformed field")
	// ErrUnknownCategory marks a categorical label absent from the trained maps.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrModelUnavailable marks a trained artifact that cannot be loaded or used.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrEmptyDataset marks a dataset with no usable rows after cleaning.
	ErrEmptyDataset = errors.New("empty dataset")
	// ErrInvalidRequest marks a prediction request with non-finite numbers.
	ErrInvalidRequest = errors.New("invalid request")
)

// FieldError describes one malformed field of one dataset row.
type FieldError struct {
	Row   int
	Field string
	Raw   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("row %d: %s: cannot parse %q", e.Row, e.Field, e.Raw)
}

func (e *FieldError) Unwrap() error { return ErrMalformedField }

// UnknownCategoryError names the column and label that failed to encode.
type UnknownCategoryError struct {
	Column string
	Label  string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category: %s %q was not seen in training", e.Column, e.Label)
}

func (e *UnknownCategoryError) Unwrap() error { return ErrUnknownCategory }
