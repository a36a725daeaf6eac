package dataframe

import (
	"errors"
	"fmt"

	"github.com/ssargent/tabula/pkg/val"
)

// Errors returned by the dataframe package. Every error carries the
// offending header, line or type name in its message and matches one of
// these with errors.Is.
var (
	// ErrIO wraps a failure reading the input.
	ErrIO = errors.New("i/o failure")

	// ErrHeaderNotFound is returned when mutating a column that does not exist.
	ErrHeaderNotFound = errors.New("header not found")

	// ErrDimensionMismatch is returned by New when headers or values do not
	// match the declared width and height.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrRaggedRow is returned when a data line has a different cell count
	// than the header line.
	ErrRaggedRow = errors.New("ragged row")

	// ErrOther covers uncategorized failures, such as an error returned by
	// a Loc or Apply callback.
	ErrOther = errors.New("dataframe error")

	ErrParse            = val.ErrParse
	ErrInvalidDataType  = val.ErrInvalidDataType
	ErrIncompatibleType = val.ErrIncompatibleType
	ErrUnhashable       = val.ErrUnhashable
)

var categories = []error{
	ErrIO, ErrHeaderNotFound, ErrDimensionMismatch, ErrRaggedRow, ErrOther,
	ErrParse, ErrInvalidDataType, ErrIncompatibleType, ErrUnhashable,
}

// categorize wraps err with ErrOther unless it already matches one of the
// package errors. The original error stays matchable.
func categorize(err error) error {
	for _, c := range categories {
		if errors.Is(err, c) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", ErrOther, err)
}
