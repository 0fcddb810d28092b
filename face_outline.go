package fontatlas

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/gogpu/fontatlas/atlas"
	"github.com/gogpu/fontatlas/kern"
	"github.com/gogpu/fontatlas/page"
	"github.com/gogpu/fontatlas/raster"
)

// OutlineFace is a face rasterized from a TrueType or OpenType font.
//
// When every character of the font fits the page at this size, all glyphs
// are rendered at load time. Otherwise only codes up to MaxASCIICode are
// resident and the rest of the page is divided into slots that are filled
// on demand, least recently used first.
type OutlineFace struct {
	face      raster.Face
	pointSize int
	rowHeight int
	pages     []page.Page
	glyphs    map[rune]Glyph
	kerning   kern.Pairs

	loadAll   bool
	maxGlyphW int
	maxGlyphH int
	dynamic   *glyphCache
	packing   PackingStats
}

// PackingStats describes how the resident glyphs filled the page.
type PackingStats struct {
	Boxes       int     // glyph boxes placed
	UsedArea    int     // pixels covered by boxes, padding included
	Utilization float64 // UsedArea over the page area
}

// textureLimits returns the largest page size for a point size. Small
// sizes get smaller pages.
func textureLimits(pointSize int, cfg FaceConfig) (maxW, maxH int) {
	maxW, maxH = cfg.MaxTextureSize, cfg.MaxTextureSize
	if pointSize < 32 {
		maxW /= 2
	}
	if pointSize < 22 {
		maxH /= 2
	}
	if pointSize < 16 {
		maxW /= 2
	}
	if pointSize < 11 {
		maxH /= 2
	}
	return max(maxW, cfg.MinTextureSize), max(maxH, cfg.MinTextureSize)
}

// sizing is the outcome of measureGlyphs.
type sizing struct {
	loadAll   bool
	pageW     int
	pageH     int
	maxGlyphW int
	maxGlyphH int
}

// measureGlyphs packs every glyph's metrics into a scratch allocator to find
// out whether the whole font fits a maxW x maxH page. The largest glyph box,
// margin included, is measured over the whole font either way.
func measureGlyphs(f raster.Face, minSize, maxW, maxH int) sizing {
	scratch := atlas.NewAllocator(minSize, minSize, maxW, maxH)
	s := sizing{loadAll: true}

	for _, gid := range f.Characters() {
		w, h, err := f.GlyphMetrics(gid)
		if err != nil {
			continue
		}
		s.maxGlyphW = max(s.maxGlyphW, w+1)
		s.maxGlyphH = max(s.maxGlyphH, h+1)

		if s.loadAll {
			if _, _, ok := scratch.Allocate(w+1, h+1); !ok {
				s.loadAll = false
			}
		}
	}

	if s.loadAll {
		s.pageW, s.pageH = scratch.Width(), scratch.Height()
	} else {
		s.pageW, s.pageH = maxW, maxH
	}
	return s
}

// loadOutlineFace builds a face from an opened rasterizer face. The raster
// face is owned by the result on success.
func loadOutlineFace(rf raster.Face, pointSize int, cfg FaceConfig, pages page.Allocator, log *slog.Logger) (*OutlineFace, error) {
	if err := rf.SetPointSize(pointSize, cfg.DPI); err != nil {
		return nil, fmt.Errorf("set point size: %w", err)
	}
	metrics := rf.Metrics()

	maxW, maxH := textureLimits(pointSize, cfg)
	s := measureGlyphs(rf, cfg.MinTextureSize, maxW, maxH)

	p, err := pages.NewPage(s.pageW, s.pageH, page.FormatAlpha8)
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}

	f := &OutlineFace{
		face:      rf,
		pointSize: pointSize,
		rowHeight: metrics.LineHeight,
		pages:     []page.Page{p},
		glyphs:    make(map[rune]Glyph),
		loadAll:   s.loadAll,
		maxGlyphW: s.maxGlyphW,
		maxGlyphH: s.maxGlyphH,
	}

	// An all-fit face replays the measured growth; otherwise the page is
	// fixed at its maximum so the leftover area can become slots.
	var alloc *atlas.Allocator
	if s.loadAll {
		alloc = atlas.NewAllocator(cfg.MinTextureSize, cfg.MinTextureSize, s.pageW, s.pageH)
	} else {
		alloc = atlas.NewAllocator(s.pageW, s.pageH, s.pageW, s.pageH)
	}

	staging := make([]byte, s.pageW*s.pageH)
	codes, err := f.renderStatic(alloc, staging, s.pageW, metrics.Ascender, log)
	if err != nil {
		return nil, err
	}
	f.packing = PackingStats{
		Boxes:       alloc.Count(),
		UsedArea:    alloc.UsedArea(),
		Utilization: alloc.Utilization(),
	}

	if !s.loadAll {
		slots := reserveSlots(alloc, s.maxGlyphW, s.maxGlyphH)
		f.dynamic = newGlyphCache(rf, p, 0, s.maxGlyphW, s.maxGlyphH, slots, log)
	}

	if err := p.WriteRegion(0, 0, s.pageW, s.pageH, staging); err != nil {
		return nil, fmt.Errorf("write page: %w", err)
	}

	f.kerning = loadKerning(rf, metrics, codes, log)

	log.Debug("fontatlas: outline face built",
		"size", pointSize,
		"page", fmt.Sprintf("%dx%d", s.pageW, s.pageH),
		"static", len(f.glyphs),
		"slots", f.DynamicCapacity(),
		"kerning", len(f.kerning))
	return f, nil
}

// renderStatic renders the resident glyphs into staging and returns the
// first character seen for each glyph index.
func (f *OutlineFace) renderStatic(alloc *atlas.Allocator, staging []byte, stride, ascender int, log *slog.Logger) (map[raster.GlyphIndex]rune, error) {
	codes := make(map[raster.GlyphIndex]rune)

	for c, gid := range f.face.Characters() {
		if !f.loadAll && c > MaxASCIICode {
			break
		}
		if _, seen := codes[gid]; !seen {
			codes[gid] = c
		}

		bm, err := f.face.RenderGlyph(gid)
		if err != nil {
			log.Debug("fontatlas: glyph render failed", "char", string(c), "err", err)
			f.glyphs[c] = Glyph{}
			continue
		}

		x, y, ok := alloc.Allocate(bm.Width+1, bm.Height+1)
		if !ok {
			return nil, fmt.Errorf("%w: %U (%dx%d)", ErrPackingOverflow, c, bm.Width, bm.Height)
		}
		bm.CopyTo(staging[y*stride+x:], stride, bm.Width, bm.Height)

		f.glyphs[c] = Glyph{
			X:       x,
			Y:       y,
			Width:   bm.Width,
			Height:  bm.Height,
			OffsetX: bm.BearingX,
			OffsetY: ascender - bm.BearingY,
			Advance: bm.Advance,
		}
	}
	return codes, nil
}

// reserveSlots allocates w x h boxes until the page is full.
func reserveSlots(alloc *atlas.Allocator, w, h int) []image.Point {
	if w <= 0 || h <= 0 {
		return nil
	}
	var slots []image.Point
	for {
		x, y, ok := alloc.Allocate(w, h)
		if !ok {
			return slots
		}
		slots = append(slots, image.Pt(x, y))
	}
}

// loadKerning reads the font's kern table. Fonts without one, or with one
// in a format that is not understood, get no kerning.
func loadKerning(rf raster.Face, m raster.Metrics, codes map[raster.GlyphIndex]rune, log *slog.Logger) kern.Pairs {
	table, err := rf.RawTable("kern")
	if err != nil {
		log.Debug("fontatlas: no kerning table", "err", err)
		return nil
	}

	pairs, err := kern.Parse(table, kern.Options{
		UnitsPerEm:  m.UnitsPerEm,
		PixelsPerEm: m.PixelsPerEm,
		CharCode: func(g uint16) (rune, bool) {
			c, ok := codes[raster.GlyphIndex(g)]
			return c, ok
		},
	})
	if err != nil {
		log.Warn("fontatlas: kerning disabled", "err", err)
		return nil
	}
	return pairs
}

// Glyph implements Face.Glyph.
func (f *OutlineFace) Glyph(c rune) (Glyph, bool) {
	if g, ok := f.glyphs[c]; ok {
		return g, true
	}
	if f.dynamic != nil && c > MaxASCIICode {
		return f.dynamic.get(c)
	}
	return Glyph{}, false
}

// Kerning implements Face.Kerning.
func (f *OutlineFace) Kerning(c, d rune) int {
	return kerning(f.kerning, c, d)
}

// IsDataLost implements Face.IsDataLost.
func (f *OutlineFace) IsDataLost() bool { return anyDataLost(f.pages) }

// TextureSize implements Face.TextureSize.
func (f *OutlineFace) TextureSize() int { return textureSize(f.pages) }

// PointSize implements Face.PointSize.
func (f *OutlineFace) PointSize() int { return f.pointSize }

// RowHeight implements Face.RowHeight.
func (f *OutlineFace) RowHeight() int { return f.rowHeight }

// Pages implements Face.Pages.
func (f *OutlineFace) Pages() []page.Page { return f.pages }

// GlyphCount implements Face.GlyphCount. It counts resident glyphs and
// characters currently held by the dynamic cache.
func (f *OutlineFace) GlyphCount() int {
	n := len(f.glyphs)
	if f.dynamic != nil {
		n += f.dynamic.count()
	}
	return n
}

// LoadsAllGlyphs reports whether every character was rendered at load time.
func (f *OutlineFace) LoadsAllGlyphs() bool { return f.loadAll }

// StaticCount returns the number of glyphs rendered at load time.
func (f *OutlineFace) StaticCount() int { return len(f.glyphs) }

// DynamicCapacity returns the number of dynamic slots, 0 for faces that
// load every glyph.
func (f *OutlineFace) DynamicCapacity() int {
	if f.dynamic == nil {
		return 0
	}
	return f.dynamic.capacity()
}

// StaticPacking reports how the glyphs rendered at load time were packed.
// Dynamic slots are not counted.
func (f *OutlineFace) StaticPacking() PackingStats { return f.packing }

// CacheStats returns dynamic cache statistics.
func (f *OutlineFace) CacheStats() CacheStats {
	if f.dynamic == nil {
		return CacheStats{}
	}
	return f.dynamic.stats
}

// CachedChars returns the characters in the dynamic cache from most to
// least recently used.
func (f *OutlineFace) CachedChars() []rune {
	if f.dynamic == nil {
		return nil
	}
	return f.dynamic.cached()
}

// MaxGlyphSize returns the largest glyph box in the font, one-pixel margin
// included. Dynamic slots have this size.
func (f *OutlineFace) MaxGlyphSize() (w, h int) { return f.maxGlyphW, f.maxGlyphH }

// Close releases the rasterizer face and the pages.
func (f *OutlineFace) Close() error {
	return errors.Join(f.face.Close(), closePages(f.pages))
}
