package page

import (
	"errors"
	"fmt"
)

// Sentinel errors for page package.
var (
	// ErrInvalidSize is returned when a page is requested with a
	// non-positive dimension.
	ErrInvalidSize = errors.New("page: invalid page size")

	// ErrOutOfBounds is returned when a region does not lie inside the page.
	ErrOutOfBounds = errors.New("page: region out of bounds")

	// ErrShortBuffer is returned when a region's pixel slice is smaller
	// than the region.
	ErrShortBuffer = errors.New("page: pixel buffer too small")

	// ErrDataLost is returned when writing to a page whose contents were
	// lost.
	ErrDataLost = errors.New("page: data lost")
)

// Page is a fixed-size pixel surface holding glyph bitmaps.
type Page interface {
	// Width returns the page width in pixels.
	Width() int

	// Height returns the page height in pixels.
	Height() int

	// Format returns the pixel format.
	Format() Format

	// WriteRegion copies a w x h block of tightly packed pixels in the
	// page format to (x, y).
	WriteRegion(x, y, w, h int, pix []byte) error

	// IsDataLost reports whether the page contents are gone.
	IsDataLost() bool
}

// Allocator creates pages.
type Allocator interface {
	NewPage(width, height int, format Format) (Page, error)
}

// checkRegion validates a WriteRegion call against a page.
func checkRegion(p Page, x, y, w, h int, pix []byte) error {
	if x < 0 || y < 0 || w < 0 || h < 0 || x+w > p.Width() || y+h > p.Height() {
		return fmt.Errorf("%w: %dx%d at (%d,%d) in %dx%d page",
			ErrOutOfBounds, w, h, x, y, p.Width(), p.Height())
	}
	if need := p.Format().Size(w, h); len(pix) < need {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrShortBuffer, len(pix), need)
	}
	return nil
}

// checkSize validates page dimensions.
func checkSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return nil
}
