package fontatlas

import (
	"encoding/binary"
	"errors"
	"fmt"
	"iter"
	"math"
	"slices"
	"testing"

	"github.com/gogpu/fontatlas/page"
	"github.com/gogpu/fontatlas/raster"
)

// fakeFont describes the character set a fakeRasterizer serves.
// Glyph index i+1 renders chars[i].
type fakeFont struct {
	chars     []rune
	size      func(c rune) (w, h int)
	fail      map[rune]bool // RenderGlyph fails
	noMetrics map[rune]bool // GlyphMetrics fails
	kern      []byte
	ppem      int // fixed pixels per em, 0 derives it from the point size
}

// rangeFont serves n consecutive characters from first, all w x h.
func rangeFont(first rune, n, w, h int) *fakeFont {
	chars := make([]rune, n)
	for i := range chars {
		chars[i] = first + rune(i)
	}
	return &fakeFont{
		chars: chars,
		size:  func(rune) (int, int) { return w, h },
	}
}

// asciiFont serves the printable ASCII range, all w x h.
func asciiFont(w, h int) *fakeFont {
	return rangeFont(' ', 95, w, h)
}

// withChars adds characters, keeping chars sorted.
func (f *fakeFont) withChars(extra ...rune) *fakeFont {
	f.chars = append(f.chars, extra...)
	slices.Sort(f.chars)
	f.chars = slices.Compact(f.chars)
	return f
}

func (f *fakeFont) glyph(c rune) raster.GlyphIndex {
	i, ok := slices.BinarySearch(f.chars, c)
	if !ok {
		return 0
	}
	return raster.GlyphIndex(i + 1)
}

// fakeRasterizer records every face it opens.
type fakeRasterizer struct {
	font    *fakeFont
	faces   []*fakeFace
	openErr error
}

func (r *fakeRasterizer) Open(data []byte) (raster.Face, error) {
	if r.openErr != nil {
		return nil, r.openErr
	}
	f := &fakeFace{font: r.font, renders: make(map[rune]int)}
	r.faces = append(r.faces, f)
	return f, nil
}

// last returns the most recently opened face.
func (r *fakeRasterizer) last(t *testing.T) *fakeFace {
	t.Helper()
	if len(r.faces) == 0 {
		t.Fatal("no face was opened")
	}
	return r.faces[len(r.faces)-1]
}

// fakeFace renders solid rectangles and counts renders per character.
type fakeFace struct {
	font    *fakeFont
	renders map[rune]int
	ppem    int
	closed  bool
}

func (f *fakeFace) SetPointSize(points, dpi int) error {
	if points <= 0 {
		return raster.ErrPointSize
	}
	f.ppem = f.font.ppem
	if f.ppem == 0 {
		f.ppem = int(math.Round(float64(points*dpi) / 72))
	}
	return nil
}

func (f *fakeFace) Characters() iter.Seq2[rune, raster.GlyphIndex] {
	return func(yield func(rune, raster.GlyphIndex) bool) {
		for i, c := range f.font.chars {
			if !yield(c, raster.GlyphIndex(i+1)) {
				return
			}
		}
	}
}

func (f *fakeFace) GlyphIndex(c rune) (raster.GlyphIndex, bool) {
	g := f.font.glyph(c)
	return g, g != 0
}

func (f *fakeFace) char(g raster.GlyphIndex) (rune, error) {
	if g == 0 || int(g) > len(f.font.chars) {
		return 0, fmt.Errorf("fake: no glyph %d", g)
	}
	return f.font.chars[g-1], nil
}

func (f *fakeFace) GlyphMetrics(g raster.GlyphIndex) (int, int, error) {
	c, err := f.char(g)
	if err != nil {
		return 0, 0, err
	}
	if f.font.noMetrics[c] {
		return 0, 0, errors.New("fake: no metrics")
	}
	w, h := f.font.size(c)
	return w, h, nil
}

func (f *fakeFace) RenderGlyph(g raster.GlyphIndex) (*raster.Bitmap, error) {
	c, err := f.char(g)
	if err != nil {
		return nil, err
	}
	f.renders[c]++
	if f.font.fail[c] {
		return nil, errors.New("fake: render failed")
	}

	w, h := f.font.size(c)
	pix := make([]byte, w*h)
	for i := range pix {
		pix[i] = 0xFF
	}
	return &raster.Bitmap{
		Pix:      pix,
		Mode:     raster.PixelModeGrey8,
		Width:    w,
		Height:   h,
		Pitch:    w,
		BearingX: 1,
		BearingY: h,
		Advance:  w + 2,
	}, nil
}

func (f *fakeFace) RawTable(tag string) ([]byte, error) {
	if tag != "kern" || f.font.kern == nil {
		return nil, raster.ErrNoTable
	}
	return f.font.kern, nil
}

func (f *fakeFace) Metrics() raster.Metrics {
	return raster.Metrics{
		UnitsPerEm:  1000,
		PixelsPerEm: f.ppem,
		Ascender:    10,
		Descender:   3,
		LineHeight:  14,
	}
}

func (f *fakeFace) Close() error {
	f.closed = true
	return nil
}

// totalRenders sums renders over all characters.
func (f *fakeFace) totalRenders() int {
	n := 0
	for _, v := range f.renders {
		n += v
	}
	return n
}

// newTestFont creates an outline font served by a fake rasterizer.
func newTestFont(t *testing.T, ff *fakeFont, opts ...Option) (*Font, *fakeRasterizer) {
	t.Helper()

	r := &fakeRasterizer{font: ff}
	all := append([]Option{WithRasterizer(r)}, opts...)
	font, err := NewFont("fake.ttf", []byte("fake font data"), all...)
	if err != nil {
		t.Fatalf("NewFont failed: %v", err)
	}
	return font, r
}

// outlineFace builds a face and asserts its concrete type.
func outlineFace(t *testing.T, font *Font, pointSize int) *OutlineFace {
	t.Helper()

	face, err := font.Face(pointSize)
	if err != nil {
		t.Fatalf("Face(%d) failed: %v", pointSize, err)
	}
	of, ok := face.(*OutlineFace)
	if !ok {
		t.Fatalf("Face(%d) returned %T, want *OutlineFace", pointSize, face)
	}
	return of
}

type kernPair struct {
	left, right raster.GlyphIndex
	value       int16
}

// kernTable encodes a version 0 table with one subtable of the given
// coverage, search header included.
func kernTable(coverage uint16, pairs ...kernPair) []byte {
	be := binary.BigEndian
	b := be.AppendUint16(nil, 0)
	b = be.AppendUint16(b, 1)
	b = be.AppendUint16(b, 0)
	b = be.AppendUint16(b, uint16(14+6*len(pairs)))
	b = be.AppendUint16(b, coverage)
	b = be.AppendUint16(b, uint16(len(pairs)))
	b = be.AppendUint16(b, 0)
	b = be.AppendUint16(b, 0)
	b = be.AppendUint16(b, 0)
	for _, p := range pairs {
		b = be.AppendUint16(b, uint16(p.left))
		b = be.AppendUint16(b, uint16(p.right))
		b = be.AppendUint16(b, uint16(p.value))
	}
	return b
}

// flakyAllocator hands out memory pages whose writes can be made to fail.
type flakyAllocator struct {
	pages []*flakyPage
}

func (a *flakyAllocator) NewPage(width, height int, format page.Format) (page.Page, error) {
	m, err := page.NewMemory(width, height, format)
	if err != nil {
		return nil, err
	}
	p := &flakyPage{Memory: m}
	a.pages = append(a.pages, p)
	return p, nil
}

type flakyPage struct {
	*page.Memory
	failWrites bool
	closed     int
}

func (p *flakyPage) Close() error {
	p.closed++
	return nil
}

func (p *flakyPage) WriteRegion(x, y, w, h int, pix []byte) error {
	if p.failWrites {
		return errors.New("fake: write failed")
	}
	return p.Memory.WriteRegion(x, y, w, h, pix)
}

// memoryPage returns a face page as *page.Memory.
func memoryPage(t *testing.T, face Face, i int) *page.Memory {
	t.Helper()
	m, ok := face.Pages()[i].(*page.Memory)
	if !ok {
		t.Fatalf("page %d is %T, want *page.Memory", i, face.Pages()[i])
	}
	return m
}
