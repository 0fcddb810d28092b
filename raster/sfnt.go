package raster

import (
	"bytes"
	"cmp"
	"fmt"
	"image"
	"image/draw"
	"iter"
	"math"
	"slices"

	gtfont "github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// SFNT is the default Rasterizer for TrueType and OpenType fonts.
//
// Outlines, bounds and metrics come from golang.org/x/image/font/sfnt and
// are scan-converted with golang.org/x/image/vector. The character map and
// raw table access come from github.com/go-text/typesetting, which exposes
// both, while x/image does not.
type SFNT struct {
	mono bool
}

// SFNTOption configures an SFNT rasterizer.
type SFNTOption func(*SFNT)

// WithMonochrome makes the rasterizer produce 1-bit bitmaps
// (PixelModeMono) instead of 8-bit coverage.
func WithMonochrome() SFNTOption {
	return func(r *SFNT) {
		r.mono = true
	}
}

// NewSFNT creates an SFNT rasterizer.
func NewSFNT(opts ...SFNTOption) *SFNT {
	r := &SFNT{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// charEntry is one character map entry.
type charEntry struct {
	r   rune
	gid GlyphIndex
}

// Open implements Rasterizer.Open.
// For font collections the first font is used.
func (r *SFNT) Open(data []byte) (Face, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}

	collection := bytes.HasPrefix(data, []byte("ttcf"))

	var (
		f   *sfnt.Font
		err error
	)
	if collection {
		var c *sfnt.Collection
		if c, err = sfnt.ParseCollection(data); err == nil {
			f, err = c.Font(0)
		}
	} else {
		f, err = sfnt.Parse(data)
	}
	if err != nil {
		return nil, fmt.Errorf("raster: failed to parse font: %w", err)
	}

	ld, cmapFace, err := openTypesetting(data, collection)
	if err != nil {
		return nil, err
	}

	return &sfntFace{
		font:   f,
		loader: ld,
		chars:  collectChars(cmapFace),
		mono:   r.mono,
	}, nil
}

// openTypesetting opens the go-text views of the font: the table loader
// and the parsed face that carries the character map.
func openTypesetting(data []byte, collection bool) (*ot.Loader, *gtfont.Face, error) {
	if collection {
		lds, err := ot.NewLoaders(bytes.NewReader(data))
		if err != nil || len(lds) == 0 {
			return nil, nil, fmt.Errorf("raster: failed to load font collection: %w", err)
		}
		faces, err := gtfont.ParseTTC(bytes.NewReader(data))
		if err != nil || len(faces) == 0 {
			return nil, nil, fmt.Errorf("raster: failed to parse font collection: %w", err)
		}
		return lds[0], faces[0], nil
	}

	ld, err := ot.NewLoader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("raster: failed to load font tables: %w", err)
	}
	face, err := gtfont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("raster: failed to parse character map: %w", err)
	}
	return ld, face, nil
}

// collectChars flattens the character map into a sorted, deduplicated
// slice. Entries mapping to the missing glyph are dropped.
func collectChars(face *gtfont.Face) []charEntry {
	var chars []charEntry
	it := face.Cmap.Iter()
	for it.Next() {
		c, gid := it.Char()
		if gid == 0 || gid > math.MaxUint16 {
			continue
		}
		chars = append(chars, charEntry{r: c, gid: GlyphIndex(gid)})
	}

	slices.SortStableFunc(chars, func(a, b charEntry) int {
		return cmp.Compare(a.r, b.r)
	})
	return slices.CompactFunc(chars, func(a, b charEntry) bool {
		return a.r == b.r
	})
}

// sfntFace implements Face.
type sfntFace struct {
	font   *sfnt.Font
	loader *ot.Loader
	chars  []charEntry
	mono   bool

	buf     sfnt.Buffer
	ras     vector.Rasterizer
	ppem    fixed.Int26_6
	metrics Metrics
}

// SetPointSize implements Face.SetPointSize.
// The pixel size is rounded to whole pixels per em.
func (f *sfntFace) SetPointSize(points, dpi int) error {
	if points <= 0 || dpi <= 0 {
		return fmt.Errorf("%w: %dpt at %d dpi", ErrPointSize, points, dpi)
	}

	ppem := int(math.Round(float64(points) * float64(dpi) / 72))
	if ppem <= 0 {
		return fmt.Errorf("%w: %dpt at %d dpi", ErrPointSize, points, dpi)
	}

	m, err := f.font.Metrics(&f.buf, fixed.I(ppem), xfont.HintingNone)
	if err != nil {
		return fmt.Errorf("raster: failed to read metrics: %w", err)
	}

	f.ppem = fixed.I(ppem)
	f.metrics = Metrics{
		UnitsPerEm:  int(f.font.UnitsPerEm()),
		PixelsPerEm: ppem,
		Ascender:    m.Ascent.Ceil(),
		Descender:   m.Descent.Ceil(),
		LineHeight:  m.Height.Round(),
	}
	return nil
}

// Characters implements Face.Characters.
func (f *sfntFace) Characters() iter.Seq2[rune, GlyphIndex] {
	return func(yield func(rune, GlyphIndex) bool) {
		for _, e := range f.chars {
			if !yield(e.r, e.gid) {
				return
			}
		}
	}
}

// GlyphIndex implements Face.GlyphIndex.
func (f *sfntFace) GlyphIndex(c rune) (GlyphIndex, bool) {
	i, ok := slices.BinarySearchFunc(f.chars, c, func(e charEntry, c rune) int {
		return cmp.Compare(e.r, c)
	})
	if !ok {
		return 0, false
	}
	return f.chars[i].gid, true
}

// pixelBounds returns the glyph's bounding box snapped outward to whole
// pixels, in the y-down coordinate space of sfnt, plus the rounded advance.
func (f *sfntFace) pixelBounds(g GlyphIndex) (image.Rectangle, int, error) {
	if f.ppem == 0 {
		return image.Rectangle{}, 0, ErrSizeNotSet
	}

	b, advance, err := f.font.GlyphBounds(&f.buf, sfnt.GlyphIndex(g), f.ppem, xfont.HintingNone)
	if err != nil {
		return image.Rectangle{}, 0, fmt.Errorf("raster: glyph %d: %w", g, err)
	}

	r := image.Rect(b.Min.X.Floor(), b.Min.Y.Floor(), b.Max.X.Ceil(), b.Max.Y.Ceil())
	return r, advance.Round(), nil
}

// GlyphMetrics implements Face.GlyphMetrics.
func (f *sfntFace) GlyphMetrics(g GlyphIndex) (width, height int, err error) {
	r, _, err := f.pixelBounds(g)
	if err != nil {
		return 0, 0, err
	}
	return r.Dx(), r.Dy(), nil
}

// RenderGlyph implements Face.RenderGlyph.
func (f *sfntFace) RenderGlyph(g GlyphIndex) (*Bitmap, error) {
	r, advance, err := f.pixelBounds(g)
	if err != nil {
		return nil, err
	}

	bm := &Bitmap{
		Mode:     PixelModeGrey8,
		BearingX: r.Min.X,
		BearingY: -r.Min.Y,
		Advance:  advance,
	}
	if r.Empty() {
		// Blank glyphs such as space have metrics but no pixels.
		return bm, nil
	}

	segments, err := f.font.LoadGlyph(&f.buf, sfnt.GlyphIndex(g), f.ppem, nil)
	if err != nil {
		return nil, fmt.Errorf("raster: glyph %d: %w", g, err)
	}

	w, h := r.Dx(), r.Dy()
	f.ras.Reset(w, h)
	f.ras.DrawOp = draw.Src

	// Translate so the bounding box's top-left corner is the origin.
	dx, dy := float32(-r.Min.X), float32(-r.Min.Y)
	pt := func(p fixed.Point26_6) (float32, float32) {
		return float32(p.X)/64 + dx, float32(p.Y)/64 + dy
	}

	started := false
	for _, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if started {
				f.ras.ClosePath()
			}
			f.ras.MoveTo(pt(seg.Args[0]))
			started = true
		case sfnt.SegmentOpLineTo:
			f.ras.LineTo(pt(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			f.ras.QuadTo(bx, by, cx, cy)
		case sfnt.SegmentOpCubeTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			ex, ey := pt(seg.Args[2])
			f.ras.CubeTo(bx, by, cx, cy, ex, ey)
		}
	}
	if started {
		f.ras.ClosePath()
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	f.ras.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	bm.Width, bm.Height = w, h
	if f.mono {
		bm.Mode = PixelModeMono
		bm.Pitch = (w + 7) / 8
		bm.Pix = packMono(mask, bm.Pitch)
	} else {
		bm.Pitch = mask.Stride
		bm.Pix = mask.Pix
	}
	return bm, nil
}

// packMono thresholds coverage at 50% into MSB-first bit rows.
func packMono(mask *image.Alpha, pitch int) []byte {
	w, h := mask.Rect.Dx(), mask.Rect.Dy()
	pix := make([]byte, pitch*h)
	for y := 0; y < h; y++ {
		src := mask.Pix[y*mask.Stride : y*mask.Stride+w]
		dst := pix[y*pitch : (y+1)*pitch]
		for x, a := range src {
			if a >= 0x80 {
				dst[x>>3] |= 0x80 >> (x & 7)
			}
		}
	}
	return pix
}

// RawTable implements Face.RawTable.
func (f *sfntFace) RawTable(tag string) ([]byte, error) {
	if len(tag) != 4 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTag, tag)
	}
	data, err := f.loader.RawTable(ot.MustNewTag(tag))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrNoTable, tag, err)
	}
	return data, nil
}

// Metrics implements Face.Metrics.
func (f *sfntFace) Metrics() Metrics {
	return f.metrics
}

// Close implements Face.Close.
func (f *sfntFace) Close() error {
	f.chars = nil
	f.loader = nil
	return nil
}
