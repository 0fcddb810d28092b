package fontatlas

import (
	"image"
	"log/slog"

	"github.com/gogpu/fontatlas/internal/cache"
	"github.com/gogpu/fontatlas/page"
	"github.com/gogpu/fontatlas/raster"
)

// CacheStats holds dynamic glyph cache statistics.
type CacheStats struct {
	// Hits counts lookups served from a slot.
	Hits uint64

	// Misses counts lookups that had to render.
	Misses uint64

	// Evictions counts slots reassigned from one character to another.
	Evictions uint64

	// Failures counts misses that could not be served: the character is
	// not in the font, it failed to render, or the page write failed.
	Failures uint64
}

// HitRate returns the hit rate as a percentage.
// Returns 0 if there are no accesses.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// glyphCache renders characters on demand into fixed slots of a page,
// reusing the least recently used slot when all are taken.
type glyphCache struct {
	face     raster.Face
	page     page.Page
	pageIdx  int
	ascender int

	slotW, slotH int
	slots        []image.Point // slot origins, fixed for the face lifetime
	glyphs       []Glyph       // current glyph per slot
	ring         *cache.Ring[rune]
	buf          []byte

	stats CacheStats
	log   *slog.Logger
}

// newGlyphCache creates a cache over the given slot origins. Every slot is
// slotW x slotH pixels.
func newGlyphCache(face raster.Face, p page.Page, pageIdx int, slotW, slotH int, slots []image.Point, log *slog.Logger) *glyphCache {
	return &glyphCache{
		face:     face,
		page:     p,
		pageIdx:  pageIdx,
		ascender: face.Metrics().Ascender,
		slotW:    slotW,
		slotH:    slotH,
		slots:    slots,
		glyphs:   make([]Glyph, len(slots)),
		ring:     cache.NewRing[rune](len(slots)),
		buf:      make([]byte, slotW*slotH),
		log:      log,
	}
}

// capacity returns the number of slots.
func (g *glyphCache) capacity() int { return g.ring.Cap() }

// count returns the number of cached characters.
func (g *glyphCache) count() int { return g.ring.Len() }

// get returns the glyph for c, rendering it into a slot on a miss.
func (g *glyphCache) get(c rune) (Glyph, bool) {
	if i, ok := g.ring.Get(c); ok {
		g.stats.Hits++
		return g.glyphs[i], true
	}
	g.stats.Misses++
	return g.miss(c)
}

// miss renders c into the least recently used slot.
func (g *glyphCache) miss(c rune) (Glyph, bool) {
	victim := g.ring.Oldest()
	if victim < 0 {
		g.stats.Failures++
		return Glyph{}, false
	}

	gid, ok := g.face.GlyphIndex(c)
	if !ok {
		g.stats.Failures++
		return Glyph{}, false
	}

	bm, err := g.face.RenderGlyph(gid)
	if err != nil {
		g.stats.Failures++
		g.log.Debug("fontatlas: dynamic glyph render failed", "char", string(c), "err", err)
		return Glyph{}, false
	}

	clear(g.buf)
	w, h := bm.CopyTo(g.buf, g.slotW, g.slotW, g.slotH)

	at := g.slots[victim]
	if err := g.page.WriteRegion(at.X, at.Y, g.slotW, g.slotH, g.buf); err != nil {
		g.stats.Failures++
		g.ring.Release(victim)
		g.glyphs[victim] = Glyph{}
		g.log.Debug("fontatlas: dynamic glyph write failed", "char", string(c), "err", err)
		return Glyph{}, false
	}

	if _, evicted := g.ring.Assign(victim, c); evicted {
		g.stats.Evictions++
	}
	g.glyphs[victim] = Glyph{
		X:       at.X,
		Y:       at.Y,
		Width:   w,
		Height:  h,
		OffsetX: bm.BearingX,
		OffsetY: g.ascender - bm.BearingY,
		Advance: bm.Advance,
		Page:    g.pageIdx,
	}
	return g.glyphs[victim], true
}

// cached returns the cached characters from most to least recently used.
func (g *glyphCache) cached() []rune {
	return g.ring.Keys()
}
