package fontatlas

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	// Page image decoders.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/gogpu/fontatlas/bmfont"
	"github.com/gogpu/fontatlas/kern"
	"github.com/gogpu/fontatlas/page"
)

// BitmapFace is a face made from pre-rendered BMFont pages. It has one
// size, taken from the description.
type BitmapFace struct {
	pointSize int
	rowHeight int
	pages     []page.Page
	glyphs    map[rune]Glyph
	kerning   kern.Pairs
}

// loadBitmapFace builds a face from a BMFont description. Page images are
// read from fsys, relative to dir.
func loadBitmapFace(data []byte, fsys fs.FS, dir string, pages page.Allocator, log *slog.Logger) (*BitmapFace, error) {
	doc, err := bmfont.Parse(data)
	if err != nil {
		return nil, err
	}

	files := doc.PageFiles()
	if len(files) > 0 && fsys == nil {
		return nil, ErrNoResourceFS
	}

	f := &BitmapFace{
		pointSize: doc.Info.Size,
		rowHeight: doc.Common.LineHeight,
		glyphs:    make(map[rune]Glyph, len(doc.Chars)),
	}

	for _, file := range files {
		p, err := loadPageImage(fsys, pagePath(dir, file), pages)
		if err != nil {
			return nil, errors.Join(err, closePages(f.pages))
		}
		f.pages = append(f.pages, p)
	}

	for _, c := range doc.Chars {
		if c.Page < 0 || c.Page >= len(f.pages) {
			log.Debug("fontatlas: bitmap glyph on missing page", "char", c.ID, "page", c.Page)
			continue
		}
		f.glyphs[rune(c.ID)] = Glyph{
			X:       c.X,
			Y:       c.Y,
			Width:   c.Width,
			Height:  c.Height,
			OffsetX: c.XOffset,
			OffsetY: c.YOffset,
			Advance: c.XAdvance,
			Page:    c.Page,
		}
	}

	for _, k := range doc.Kernings {
		if k.Amount == 0 || k.First < 0 || k.Second < 0 || k.First > 0xFFFF || k.Second > 0xFFFF {
			continue
		}
		if f.kerning == nil {
			f.kerning = make(kern.Pairs)
		}
		f.kerning[kern.MakeKey(rune(k.First), rune(k.Second))] = int16(k.Amount)
	}

	log.Debug("fontatlas: bitmap face built",
		"face", doc.Info.Face,
		"size", f.pointSize,
		"pages", len(f.pages),
		"glyphs", len(f.glyphs))
	return f, nil
}

// pagePath resolves a page file named in a description. Descriptions
// written on Windows use backslashes.
func pagePath(dir, file string) string {
	return path.Join(dir, strings.ReplaceAll(file, `\`, "/"))
}

// loadPageImage decodes an image file into an RGBA8 page.
func loadPageImage(fsys fs.FS, name string, pages page.Allocator) (page.Page, error) {
	r, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open page image: %w", err)
	}
	defer r.Close()

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode page image %s: %w", name, err)
	}

	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || b.Min != (image.Point{}) || rgba.Stride != 4*b.Dx() {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}

	p, err := pages.NewPage(b.Dx(), b.Dy(), page.FormatRGBA8)
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	if err := p.WriteRegion(0, 0, b.Dx(), b.Dy(), rgba.Pix); err != nil {
		return nil, errors.Join(fmt.Errorf("write page: %w", err), closePages([]page.Page{p}))
	}
	return p, nil
}

// Glyph implements Face.Glyph.
func (f *BitmapFace) Glyph(c rune) (Glyph, bool) {
	g, ok := f.glyphs[c]
	return g, ok
}

// Kerning implements Face.Kerning.
func (f *BitmapFace) Kerning(c, d rune) int {
	return kerning(f.kerning, c, d)
}

// IsDataLost implements Face.IsDataLost.
func (f *BitmapFace) IsDataLost() bool { return anyDataLost(f.pages) }

// TextureSize implements Face.TextureSize.
func (f *BitmapFace) TextureSize() int { return textureSize(f.pages) }

// PointSize implements Face.PointSize.
func (f *BitmapFace) PointSize() int { return f.pointSize }

// RowHeight implements Face.RowHeight.
func (f *BitmapFace) RowHeight() int { return f.rowHeight }

// Pages implements Face.Pages.
func (f *BitmapFace) Pages() []page.Page { return f.pages }

// GlyphCount implements Face.GlyphCount.
func (f *BitmapFace) GlyphCount() int { return len(f.glyphs) }

// Close releases the pages.
func (f *BitmapFace) Close() error { return closePages(f.pages) }
