package kern

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Key identifies an ordered character pair.
type Key uint32

// MakeKey returns the key for the pair (left, right). Both characters must
// be in the Basic Multilingual Plane.
func MakeKey(left, right rune) Key {
	return Key(uint32(left)<<16 + uint32(right))
}

// Left returns the first character of the pair.
func (k Key) Left() rune { return rune(k >> 16) }

// Right returns the second character of the pair.
func (k Key) Right() rune { return rune(k & 0xFFFF) }

// Pairs maps character pairs to horizontal pixel adjustments.
type Pairs map[Key]int16

// Get returns the adjustment for (left, right), or 0 when the pair is not
// kerned or either character is outside the Basic Multilingual Plane.
func (p Pairs) Get(left, right rune) int {
	if left < 0 || right < 0 || left > 0xFFFF || right > 0xFFFF {
		return 0
	}
	return int(p[MakeKey(left, right)])
}

// Options configures Parse.
type Options struct {
	// UnitsPerEm is the font design grid size.
	UnitsPerEm int

	// PixelsPerEm is the rendering size.
	PixelsPerEm int

	// CharCode maps a glyph index to the character it renders. Pairs with
	// unmapped glyphs are dropped. A nil CharCode drops every pair.
	CharCode func(glyph uint16) (rune, bool)
}

const (
	tableHeaderSize    = 4 // version, nTables
	subtableHeaderSize = 6 // version, length, coverage
	searchHeaderSize   = 8 // nPairs, searchRange, entrySelector, rangeShift
	pairSize           = 6 // left, right, value
)

// formatHorizontal0 is the coverage word of a horizontal, non-minimum,
// non-cross-stream format 0 subtable.
const formatHorizontal0 = 0x0001

// SwapBytes returns a copy of b with the two bytes of every 16-bit unit
// exchanged. A trailing odd byte is copied unchanged.
func SwapBytes(b []byte) []byte {
	out := make([]byte, len(b))
	i := 0
	for ; i+1 < len(b); i += 2 {
		out[i], out[i+1] = b[i+1], b[i]
	}
	if i < len(b) {
		out[i] = b[i]
	}
	return out
}

// reader reads little-endian words from a byte-swapped table.
type reader struct {
	b   []byte
	off int
}

func (r *reader) u16() (uint16, bool) {
	if r.off+2 > len(r.b) {
		return 0, false
	}
	v := binary.LittleEndian.Uint16(r.b[r.off:])
	r.off += 2
	return v, true
}

// Parse decodes a big-endian 'kern' table.
//
// Values from every subtable are summed per pair. The table buffer is not
// modified.
func Parse(table []byte, opts Options) (Pairs, error) {
	if opts.UnitsPerEm <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnitsPerEm, opts.UnitsPerEm)
	}

	r := &reader{b: SwapBytes(table)}

	version, ok := r.u16()
	if !ok {
		return nil, &FormatError{Subtable: -1, Offset: 0, Err: ErrTruncated}
	}
	if version != 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	nTables, ok := r.u16()
	if !ok {
		return nil, &FormatError{Subtable: -1, Offset: 2, Err: ErrTruncated}
	}

	sums := make(map[Key]int)
	for i := 0; i < int(nTables); i++ {
		if err := parseSubtable(r, i, opts, sums); err != nil {
			return nil, err
		}
	}

	pairs := make(Pairs, len(sums))
	for k, v := range sums {
		if v == 0 {
			continue
		}
		pairs[k] = int16(max(math.MinInt16, min(math.MaxInt16, v)))
	}
	return pairs, nil
}

// parseSubtable reads one subtable at r's offset and adds its scaled pairs
// to sums. On return r is positioned just past the subtable.
func parseSubtable(r *reader, index int, opts Options, sums map[Key]int) error {
	start := r.off
	fail := func(err error) *FormatError {
		return &FormatError{Subtable: index, Offset: r.off, Err: err}
	}

	if start+subtableHeaderSize+2 > len(r.b) {
		return fail(ErrTruncated)
	}
	version, _ := r.u16()
	length, _ := r.u16()
	coverage, _ := r.u16()
	if version != 0 || coverage != formatHorizontal0 {
		return &FormatError{
			Subtable: index,
			Offset:   start,
			Version:  version,
			Coverage: coverage,
			Err:      ErrUnsupportedFormat,
		}
	}

	nPairs, _ := r.u16()

	// Fonts carry a binary search header after nPairs; hand-built tables
	// may not. The subtable length tells which. Subtables with more than
	// 10920 pairs overflow the 16-bit length, so only its low bits can be
	// compared.
	full := subtableHeaderSize + searchHeaderSize + pairSize*int(nPairs)
	wrapped := full > math.MaxUint16
	if length == uint16(full) || (!wrapped && int(length) > full) {
		r.off += searchHeaderSize - 2
	}

	end := r.off + pairSize*int(nPairs)
	if end > len(r.b) {
		return fail(ErrTruncated)
	}

	for n := 0; n < int(nPairs); n++ {
		left, _ := r.u16()
		right, _ := r.u16()
		raw, _ := r.u16()

		v := scale(int16(raw), opts.UnitsPerEm, opts.PixelsPerEm)
		if v == 0 || opts.CharCode == nil {
			continue
		}
		lc, ok := opts.CharCode(left)
		if !ok || lc > 0xFFFF {
			continue
		}
		rc, ok := opts.CharCode(right)
		if !ok || rc > 0xFFFF {
			continue
		}
		sums[MakeKey(lc, rc)] += v
	}

	// Skip padding, unless the length cannot be trusted.
	if next := start + int(length); !wrapped && next > r.off && next <= len(r.b) {
		r.off = next
	}
	return nil
}

// scale converts a font-unit value to whole pixels.
func scale(v int16, upem, ppem int) int {
	return int(math.Round(float64(v) * float64(ppem) / float64(upem)))
}
