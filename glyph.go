package fontatlas

import (
	"errors"
	"io"

	"github.com/gogpu/fontatlas/kern"
	"github.com/gogpu/fontatlas/page"
)

// Glyph locates a rendered character on a face's pages.
type Glyph struct {
	// X and Y are the top-left corner of the bitmap on the page.
	X, Y int

	// Width and Height are the bitmap size in pixels.
	Width, Height int

	// OffsetX and OffsetY place the bitmap relative to the pen position on
	// the top line of a row: OffsetY is measured down from the row top.
	OffsetX, OffsetY int

	// Advance is the horizontal pen advance.
	Advance int

	// Page indexes Face.Pages.
	Page int
}

// Face is one size of a font, with its glyphs packed onto pages.
//
// Faces are not safe for concurrent use.
type Face interface {
	// Glyph returns the glyph for c. Returned values are copies.
	Glyph(c rune) (Glyph, bool)

	// Kerning returns the horizontal adjustment between c and d. It is 0
	// when either is a newline.
	Kerning(c, d rune) int

	// IsDataLost reports whether any page lost its contents. A lost face
	// must be rebuilt.
	IsDataLost() bool

	// TextureSize returns the bytes held by all pages.
	TextureSize() int

	// PointSize returns the face size. Bitmap faces report the size from
	// their description.
	PointSize() int

	// RowHeight returns the line spacing in pixels.
	RowHeight() int

	// Pages returns the pages glyphs refer to.
	Pages() []page.Page

	// GlyphCount returns the number of resident glyphs.
	GlyphCount() int
}

// textureSize sums the byte size of pages.
func textureSize(pages []page.Page) int {
	total := 0
	for _, p := range pages {
		total += p.Format().Size(p.Width(), p.Height())
	}
	return total
}

// anyDataLost reports whether any page lost its contents.
func anyDataLost(pages []page.Page) bool {
	for _, p := range pages {
		if p.IsDataLost() {
			return true
		}
	}
	return false
}

// closePages releases pages that hold device resources.
func closePages(pages []page.Page) error {
	var errs []error
	for _, p := range pages {
		if c, ok := p.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

// kerning returns the adjustment between c and d.
func kerning(pairs kern.Pairs, c, d rune) int {
	if c == '\n' || d == '\n' || len(pairs) == 0 {
		return 0
	}
	return pairs.Get(c, d)
}
