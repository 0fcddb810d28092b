// Package atlas provides rectangle packing for glyph texture pages.
//
// An [Allocator] hands out disjoint rectangles inside a region that starts
// small and grows toward a configured maximum. Growth doubles whichever axis
// is currently shorter, so the consumed region stays close to square. After a
// packing pass, [Allocator.Width] and [Allocator.Height] report the extent
// that was actually needed, which lets callers size a texture page exactly.
//
// # Usage
//
//	a := atlas.NewAllocator(128, 128, 1024, 1024)
//	for _, g := range glyphs {
//	    // Reserve one pixel of margin so neighbouring glyphs don't bleed.
//	    x, y, ok := a.Allocate(g.Width+1, g.Height+1)
//	    if !ok {
//	        break // the maximum extent is exhausted
//	    }
//	    place(g, x, y)
//	}
//	page := newPage(a.Width(), a.Height())
//
// Placement is deterministic: the same sequence of requests always yields
// the same placements and the same final extent.
//
// An Allocator is not safe for concurrent use.
package atlas
