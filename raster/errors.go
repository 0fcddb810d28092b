package raster

import "errors"

// Sentinel errors for raster package.
var (
	// ErrEmptyFontData is returned when Open is given no bytes.
	ErrEmptyFontData = errors.New("raster: empty font data")

	// ErrPointSize is returned for a non-positive point size or DPI.
	ErrPointSize = errors.New("raster: invalid point size")

	// ErrNoTable is returned when the font has no table with the
	// requested tag.
	ErrNoTable = errors.New("raster: table not found")

	// ErrInvalidTag is returned for tags that are not four bytes long.
	ErrInvalidTag = errors.New("raster: table tag must be four bytes")

	// ErrSizeNotSet is returned when glyphs are requested before
	// SetPointSize succeeded.
	ErrSizeNotSet = errors.New("raster: point size not set")
)
