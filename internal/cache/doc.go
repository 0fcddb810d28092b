// Package cache provides the recency bookkeeping behind fixed-capacity
// glyph slot pools.
//
// # Ring[K]
//
// A Ring tracks a fixed arena of slots addressed by integer handle. Each
// slot holds at most one key, and each key occupies at most one slot. Slots
// are threaded on an intrusive doubly-linked list, most recently used first,
// using prev/next handle fields instead of pointers, so handles stay valid
// for the lifetime of the ring.
//
//	r := cache.NewRing[rune](n)
//	if slot, ok := r.Get('é'); ok {
//	    use(slot) // hit, slot is now most recently used
//	} else {
//	    slot := r.Oldest()
//	    fill(slot)
//	    r.Assign(slot, 'é') // evicts whatever the slot held before
//	}
//
// The ring owns no payload. Callers keep per-slot data in a parallel slice
// indexed by handle.
//
// # Thread Safety
//
// Ring is not safe for concurrent use. Callers must serialize access.
package cache
