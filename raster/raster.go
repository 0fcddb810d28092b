package raster

import "iter"

// GlyphIndex is a glyph identifier internal to one font program.
// Index 0 is the missing-glyph (.notdef) glyph.
type GlyphIndex uint16

// Rasterizer opens font programs.
// It is constructed once per process and shared by every font that needs
// outline rendering.
type Rasterizer interface {
	// Open parses a font program. The returned Face keeps a reference to
	// data, which must not be modified while the Face is in use.
	Open(data []byte) (Face, error)
}

// Face is an opened font program that renders glyphs at one active size.
//
// A Face is not safe for concurrent use.
type Face interface {
	// SetPointSize selects the active size. All metrics and bitmaps are
	// reported in whole pixels at this size.
	SetPointSize(points, dpi int) error

	// Characters yields every (character code, glyph index) pair in the
	// character map, in ascending character order. The sequence is finite
	// and restarts from the beginning on every call.
	Characters() iter.Seq2[rune, GlyphIndex]

	// GlyphIndex maps a character code to its glyph.
	// Returns false if the font has no glyph for c.
	GlyphIndex(c rune) (GlyphIndex, bool)

	// GlyphMetrics returns the unhinted bitmap size of a glyph without
	// rendering it.
	GlyphMetrics(g GlyphIndex) (width, height int, err error)

	// RenderGlyph renders a glyph bitmap together with its metrics.
	RenderGlyph(g GlyphIndex) (*Bitmap, error)

	// RawTable returns the bytes of the font table with the given
	// four-character tag, exactly as stored in the font program.
	RawTable(tag string) ([]byte, error)

	// Metrics returns face-wide metrics at the active size.
	Metrics() Metrics

	// Close releases resources held by the face.
	Close() error
}

// Metrics holds face-wide metrics at the active size.
type Metrics struct {
	// UnitsPerEm is the size of the font's design grid.
	UnitsPerEm int

	// PixelsPerEm is the effective em size in pixels at the active size.
	PixelsPerEm int

	// Ascender is the distance from the baseline to the top of the face,
	// in pixels (positive).
	Ascender int

	// Descender is the distance from the baseline to the bottom of the
	// face, in pixels (positive).
	Descender int

	// LineHeight is the recommended distance between two baselines,
	// in pixels.
	LineHeight int
}
