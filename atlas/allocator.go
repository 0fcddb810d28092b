package atlas

import (
	"image"
	"slices"
)

// Allocator implements guillotine-style rectangle packing over a growable
// region.
//
// The allocator keeps an ordered frontier of disjoint free rectangles.
// A request is placed in the first free rectangle that can hold it, and the
// unused part of that rectangle is split into at most two new free
// rectangles: the remainder to the right of the placement (as tall as the
// placement) and the remainder below it (as wide as the original rectangle).
//
// When nothing fits, the region grows. The shorter axis is doubled first
// (width on a tie), clamped to its maximum; if that axis is already at its
// maximum the other axis grows instead. Allocation fails only when neither
// axis can grow any further.
type Allocator struct {
	width     int // Current region width
	height    int // Current region height
	maxWidth  int // Growth limit for width
	maxHeight int // Growth limit for height

	initWidth  int // Width restored by Reset
	initHeight int // Height restored by Reset

	// free lists unallocated rectangles in placement-priority order.
	// Rectangles in the list never overlap each other or any allocation.
	free []image.Rectangle

	// Tracking for utilization
	usedArea int
	count    int
}

// NewAllocator creates an allocator whose region starts at width x height
// and may grow up to maxWidth x maxHeight.
//
// Negative values are treated as zero and the initial size is clamped to
// the maximum.
func NewAllocator(width, height, maxWidth, maxHeight int) *Allocator {
	maxWidth = max(maxWidth, 0)
	maxHeight = max(maxHeight, 0)

	a := &Allocator{
		maxWidth:   maxWidth,
		maxHeight:  maxHeight,
		initWidth:  min(max(width, 0), maxWidth),
		initHeight: min(max(height, 0), maxHeight),
		free:       make([]image.Rectangle, 0, 64),
	}
	a.Reset()
	return a
}

// Allocate finds space for a w x h rectangle.
// Returns the top-left position and true on success, or -1, -1, false when
// the rectangle cannot be placed even at the maximum extent.
//
// Negative sizes are treated as zero. A zero-area request always succeeds
// at (0, 0) and consumes nothing. The caller is responsible for any margin
// between neighbouring rectangles.
func (a *Allocator) Allocate(w, h int) (x, y int, ok bool) {
	w = max(w, 0)
	h = max(h, 0)

	if w == 0 || h == 0 {
		return 0, 0, true
	}

	// Requests larger than the maximum extent can never fit.
	if w > a.maxWidth || h > a.maxHeight {
		return -1, -1, false
	}

	for {
		if i := a.firstFit(w, h); i >= 0 {
			return a.reserve(i, w, h)
		}
		if !a.grow() {
			return -1, -1, false
		}
	}
}

// firstFit returns the index of the first free rectangle that can hold a
// w x h rectangle, or -1.
func (a *Allocator) firstFit(w, h int) int {
	for i, r := range a.free {
		if r.Dx() >= w && r.Dy() >= h {
			return i
		}
	}
	return -1
}

// reserve places a w x h rectangle at the top-left corner of free[i] and
// replaces free[i] with its right and bottom remainders.
func (a *Allocator) reserve(i, w, h int) (x, y int, ok bool) {
	r := a.free[i]
	x, y = r.Min.X, r.Min.Y

	right := image.Rect(x+w, y, r.Max.X, y+h)
	bottom := image.Rect(x, y+h, r.Max.X, r.Max.Y)

	// The remainders take the place of the consumed rectangle so that the
	// frontier keeps filling left-to-right, top-to-bottom.
	split := make([]image.Rectangle, 0, 2)
	if !right.Empty() {
		split = append(split, right)
	}
	if !bottom.Empty() {
		split = append(split, bottom)
	}
	a.free = slices.Delete(a.free, i, i+1)
	a.free = slices.Insert(a.free, i, split...)

	a.usedArea += w * h
	a.count++
	return x, y, true
}

// grow enlarges the region along one axis.
// Returns false if both axes are at their maximum.
func (a *Allocator) grow() bool {
	growWidth := a.width <= a.height
	if growWidth && a.width >= a.maxWidth {
		growWidth = false
	}
	if !growWidth && a.height >= a.maxHeight {
		if a.width >= a.maxWidth {
			return false
		}
		growWidth = true
	}

	if growWidth {
		old := a.width
		a.width = min(max(old*2, 1), a.maxWidth)
		a.addFree(image.Rect(old, 0, a.width, a.height))
	} else {
		old := a.height
		a.height = min(max(old*2, 1), a.maxHeight)
		a.addFree(image.Rect(0, old, a.width, a.height))
	}
	return true
}

// addFree appends a newly grown strip and merges free rectangles that share
// a full edge.
func (a *Allocator) addFree(r image.Rectangle) {
	if r.Empty() {
		return
	}
	a.free = append(a.free, r)

	for merged := true; merged; {
		merged = false
	scan:
		for i := 0; i < len(a.free); i++ {
			for j := i + 1; j < len(a.free); j++ {
				if u, ok := mergeRects(a.free[i], a.free[j]); ok {
					a.free[i] = u
					a.free = slices.Delete(a.free, j, j+1)
					merged = true
					break scan
				}
			}
		}
	}
}

// mergeRects returns the union of p and q if they are edge-adjacent with
// identical spans along the shared edge.
func mergeRects(p, q image.Rectangle) (image.Rectangle, bool) {
	sameRows := p.Min.Y == q.Min.Y && p.Max.Y == q.Max.Y
	if sameRows && (p.Max.X == q.Min.X || q.Max.X == p.Min.X) {
		return p.Union(q), true
	}
	sameCols := p.Min.X == q.Min.X && p.Max.X == q.Max.X
	if sameCols && (p.Max.Y == q.Min.Y || q.Max.Y == p.Min.Y) {
		return p.Union(q), true
	}
	return image.Rectangle{}, false
}

// Reset clears all allocations and shrinks the region back to its initial
// size, allowing the allocator to be reused.
func (a *Allocator) Reset() {
	a.width = a.initWidth
	a.height = a.initHeight
	a.free = a.free[:0] // Keep capacity
	if a.width > 0 && a.height > 0 {
		a.free = append(a.free, image.Rect(0, 0, a.width, a.height))
	}
	a.usedArea = 0
	a.count = 0
}

// Width returns the current region width, including any growth.
func (a *Allocator) Width() int {
	return a.width
}

// Height returns the current region height, including any growth.
func (a *Allocator) Height() int {
	return a.height
}

// MaxWidth returns the width the region may grow to.
func (a *Allocator) MaxWidth() int {
	return a.maxWidth
}

// MaxHeight returns the height the region may grow to.
func (a *Allocator) MaxHeight() int {
	return a.maxHeight
}

// Count returns the number of successful non-empty allocations.
func (a *Allocator) Count() int {
	return a.count
}

// UsedArea returns the total area handed out by Allocate.
func (a *Allocator) UsedArea() int {
	return a.usedArea
}

// Utilization returns the fraction of the current region that is allocated
// (0.0 to 1.0).
func (a *Allocator) Utilization() float64 {
	if a.width <= 0 || a.height <= 0 {
		return 0
	}
	return float64(a.usedArea) / float64(a.width*a.height)
}

// freeRects returns a copy of the free rectangle frontier in priority order.
func (a *Allocator) freeRects() []image.Rectangle {
	return slices.Clone(a.free)
}
