package kern

import (
	"errors"
	"fmt"
)

// Sentinel errors for kern package.
var (
	// ErrUnsupportedVersion is returned for table versions other than 0.
	ErrUnsupportedVersion = errors.New("kern: unsupported table version")

	// ErrUnsupportedFormat is returned for subtables that are not
	// horizontal format 0.
	ErrUnsupportedFormat = errors.New("kern: unsupported subtable format")

	// ErrTruncated is returned when the table ends early.
	ErrTruncated = errors.New("kern: table truncated")

	// ErrUnitsPerEm is returned when Options.UnitsPerEm is not positive.
	ErrUnitsPerEm = errors.New("kern: units per em must be positive")
)

// FormatError describes a malformed or unsupported subtable.
type FormatError struct {
	// Subtable is the zero-based subtable index.
	Subtable int

	// Offset is the byte offset in the table where the problem was found.
	Offset int

	// Version and Coverage are the subtable header fields, when read.
	Version  uint16
	Coverage uint16

	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("kern: subtable %d at offset %d (version %d, coverage %#04x): %v",
		e.Subtable, e.Offset, e.Version, e.Coverage, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
