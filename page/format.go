package page

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Format is the pixel format of a page.
type Format uint8

const (
	// FormatAlpha8 is single-channel 8-bit coverage, used for outline
	// fonts.
	FormatAlpha8 Format = iota

	// FormatRGBA8 is 8 bits per channel colour, used for bitmap fonts
	// whose page images carry their own colour.
	FormatRGBA8
)

// String returns a human-readable name for the format.
func (f Format) String() string {
	switch f {
	case FormatAlpha8:
		return "A8"
	case FormatRGBA8:
		return "RGBA8"
	default:
		return fmt.Sprintf("Unknown(%d)", f)
	}
}

// BytesPerPixel returns the number of bytes per pixel for the format.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatAlpha8:
		return 1
	default:
		return 4
	}
}

// TextureFormat returns the matching GPU texture format.
func (f Format) TextureFormat() gputypes.TextureFormat {
	switch f {
	case FormatAlpha8:
		return gputypes.TextureFormatR8Unorm
	default:
		return gputypes.TextureFormatRGBA8Unorm
	}
}

// Size returns the byte size of a w x h surface in this format.
func (f Format) Size(w, h int) int {
	return w * h * f.BytesPerPixel()
}
