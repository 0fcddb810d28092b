package raster

// PixelMode is the encoding of Bitmap.Pix.
type PixelMode uint8

const (
	// PixelModeGrey8 stores one coverage byte per pixel.
	PixelModeGrey8 PixelMode = iota

	// PixelModeMono stores one bit per pixel, most significant bit first.
	PixelModeMono
)

// String returns a human-readable name for the mode.
func (m PixelMode) String() string {
	switch m {
	case PixelModeGrey8:
		return "grey8"
	case PixelModeMono:
		return "mono"
	default:
		return "unknown"
	}
}

// Bitmap is a rendered glyph.
type Bitmap struct {
	// Pix holds Height rows of Pitch bytes each.
	Pix []byte

	// Mode is the pixel encoding of Pix.
	Mode PixelMode

	// Width and Height are the bitmap size in pixels.
	Width  int
	Height int

	// Pitch is the number of bytes per row.
	Pitch int

	// BearingX is the horizontal distance from the pen position to the
	// left edge of the bitmap.
	BearingX int

	// BearingY is the vertical distance from the baseline up to the top
	// edge of the bitmap.
	BearingY int

	// Advance is the horizontal pen advance.
	Advance int
}

// Empty reports whether the bitmap has no pixels.
func (b *Bitmap) Empty() bool {
	return b == nil || b.Width <= 0 || b.Height <= 0
}

// CopyTo writes the bitmap as 8-bit coverage into dst, a buffer of rows
// stride bytes apart. At most w x h pixels are written; pixels outside the
// bitmap are left untouched. Mono pixels expand to 0x00 or 0xFF.
//
// Returns the written width and height.
func (b *Bitmap) CopyTo(dst []byte, stride, w, h int) (int, int) {
	if b.Empty() {
		return 0, 0
	}
	w = min(w, b.Width)
	h = min(h, b.Height)

	for y := 0; y < h; y++ {
		src := b.Pix[y*b.Pitch:]
		row := dst[y*stride : y*stride+w]

		switch b.Mode {
		case PixelModeMono:
			for x := range row {
				if src[x>>3]&(0x80>>(x&7)) != 0 {
					row[x] = 0xFF
				} else {
					row[x] = 0x00
				}
			}
		default:
			copy(row, src[:w])
		}
	}
	return w, h
}
