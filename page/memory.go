package page

import (
	"image"
	"sync/atomic"
)

// Memory is a Page held in system memory.
type Memory struct {
	format Format
	width  int
	height int
	pix    []byte
	stride int
	lost   atomic.Bool
}

// NewMemory creates a zeroed in-memory page.
func NewMemory(width, height int, format Format) (*Memory, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	stride := width * format.BytesPerPixel()
	return &Memory{
		format: format,
		width:  width,
		height: height,
		pix:    make([]byte, stride*height),
		stride: stride,
	}, nil
}

// Width implements Page.
func (m *Memory) Width() int { return m.width }

// Height implements Page.
func (m *Memory) Height() int { return m.height }

// Format implements Page.
func (m *Memory) Format() Format { return m.format }

// WriteRegion implements Page.
func (m *Memory) WriteRegion(x, y, w, h int, pix []byte) error {
	if m.lost.Load() {
		return ErrDataLost
	}
	if err := checkRegion(m, x, y, w, h, pix); err != nil {
		return err
	}
	copyRegion(m.pix, m.stride, x, y, w, h, m.format.BytesPerPixel(), pix)
	return nil
}

// IsDataLost implements Page.
func (m *Memory) IsDataLost() bool { return m.lost.Load() }

// Invalidate marks the page contents as lost.
func (m *Memory) Invalidate() { m.lost.Store(true) }

// Pix returns the backing pixels, rows Stride bytes apart.
func (m *Memory) Pix() []byte { return m.pix }

// Stride returns the distance in bytes between rows.
func (m *Memory) Stride() int { return m.stride }

// Image returns the page as an image sharing its pixels: *image.Alpha for
// FormatAlpha8 and *image.RGBA for FormatRGBA8.
func (m *Memory) Image() image.Image {
	r := image.Rect(0, 0, m.width, m.height)
	if m.format == FormatAlpha8 {
		return &image.Alpha{Pix: m.pix, Stride: m.stride, Rect: r}
	}
	return &image.RGBA{Pix: m.pix, Stride: m.stride, Rect: r}
}

// copyRegion copies a tightly packed w x h block into dst at (x, y).
func copyRegion(dst []byte, stride, x, y, w, h, bpp int, src []byte) {
	row := w * bpp
	for j := 0; j < h; j++ {
		off := (y+j)*stride + x*bpp
		copy(dst[off:off+row], src[j*row:(j+1)*row])
	}
}

// MemoryAllocator creates Memory pages.
type MemoryAllocator struct{}

// NewPage implements Allocator.
func (MemoryAllocator) NewPage(width, height int, format Format) (Page, error) {
	return NewMemory(width, height, format)
}
