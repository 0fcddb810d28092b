// Package kern parses the TrueType 'kern' table into per-size pixel
// adjustments keyed by character pair.
//
// Only the classic Microsoft layout is understood: table version 0 with
// horizontal format 0 subtables. Values are scaled from font units to
// pixels and rounded; pairs that round to zero are dropped.
//
//	table, _ := face.RawTable("kern")
//	pairs, err := kern.Parse(table, kern.Options{
//	    UnitsPerEm:  2048,
//	    PixelsPerEm: 16,
//	    CharCode:    lookup,
//	})
//	dx := pairs.Get('A', 'V')
package kern
