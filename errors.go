package fontatlas

import (
	"errors"
	"fmt"
)

// Sentinel errors for fontatlas package.
var (
	// ErrEmptyFontData is returned when a font is created from no bytes.
	ErrEmptyFontData = errors.New("fontatlas: empty font data")

	// ErrShortRead is returned when a reader ends before the announced
	// font size.
	ErrShortRead = errors.New("fontatlas: short read")

	// ErrUnknownFontType is returned when a face is requested from a font
	// whose name does not identify an outline or bitmap format.
	ErrUnknownFontType = errors.New("fontatlas: unknown font type")

	// ErrPackingOverflow is returned when a glyph that the size estimate
	// accounted for does not fit the page.
	ErrPackingOverflow = errors.New("fontatlas: glyph packing overflow")

	// ErrNoResourceFS is returned when a bitmap font has page images but no
	// file system to load them from.
	ErrNoResourceFS = errors.New("fontatlas: no file system for page images")
)

// LoadError is returned when a face cannot be built.
type LoadError struct {
	Font      string
	PointSize int
	Err       error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("fontatlas: load %s at %dpt: %v", e.Font, e.PointSize, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ConfigError is returned for an invalid FaceConfig.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "fontatlas: invalid config: " + e.Field + " " + e.Reason
}
