package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrDataLoad     = errors.New("data load failed")
	ErrInvalidInput = errors.New("invalid input")

	// Test applicability errors
	ErrDegenerateTable  = errors.New("degenerate contingency table")
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// Alignment errors
	ErrMissingYear = errors.New("missing year in series")
)

// PointError carries the (category, year) context of a failed test.
type PointError struct {
	Category string
	Year     int
	Test     string
	Err      error
}

func (e *PointError) Error() string {
	return fmt.Sprintf("%s test for %s in %d: %v", e.Test, e.Category, e.Year, e.Err)
}

func (e *PointError) Unwrap() error {
	return e.Err
}

// Error constructors with context
func NewDataLoadError(path string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrDataLoad, path, reason)
}

func NewDegenerateTableError(reason string) error {
	return fmt.Errorf("%w: %s", ErrDegenerateTable, reason)
}

func NewInsufficientDataError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInsufficientData, reason)
}

func NewInvalidInputError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}

func NewMissingYearError(series string, year int) error {
	return fmt.Errorf("%w: %s has no result for %d", ErrMissingYear, series, year)
}

func NewPointError(test, category string, year int, err error) error {
	if err == nil {
		return nil
	}
	return &PointError{Category: category, Year: year, Test: test, Err: err}
}

// Error checking helpers
func IsDataLoadError(err error) bool {
	return errors.Is(err, ErrDataLoad)
}

// IsUndefinedPointError reports whether err only makes a single point undefined.
func IsUndefinedPointError(err error) bool {
	return errors.Is(err, ErrDegenerateTable) ||
		errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrInvalidInput)
}

func IsAlignmentError(err error) bool {
	return errors.Is(err, ErrMissingYear)
}
