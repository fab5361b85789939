package raster

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("raster not found")
	ErrShapeMismatch  = errors.New("grid shape mismatch")
	ErrInvalidWindow  = errors.New("invalid window")
	ErrEmptyRaster    = errors.New("raster has no bands")
	ErrNoValidSamples = errors.New("grid has no valid samples")
)

// NotFoundError is returned when a raster file cannot be opened.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("failed to open %s: %v", e.Path, e.Err)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// ShapeMismatchError is returned when grids of differing dimensions are combined.
type ShapeMismatchError struct {
	Op    string
	Left  [2]int
	Right [2]int
	Index int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s: shape %dx%d does not match %dx%d", e.Op, e.Left[0], e.Left[1], e.Right[0], e.Right[1])
}

func (e *ShapeMismatchError) Is(target error) bool {
	return target == ErrShapeMismatch
}
