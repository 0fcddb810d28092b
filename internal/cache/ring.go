package cache

// nilSlot marks the end of the recency list.
const nilSlot = -1

// ringSlot is one arena entry. The key is only meaningful when used is set.
type ringSlot[K comparable] struct {
	key  K
	used bool
	prev int
	next int
}

// Ring is a fixed set of slots in least-recently-used order.
//
// The head is the most recently used slot, the tail the least recently
// used. Empty slots are never moved to the head by lookups, so a new ring
// hands out its slots in creation order: slot 0 first.
type Ring[K comparable] struct {
	slots []ringSlot[K]
	index map[K]int
	head  int
	tail  int
}

// NewRing creates a ring with n empty slots.
// Negative values are treated as zero.
func NewRing[K comparable](n int) *Ring[K] {
	n = max(n, 0)
	r := &Ring[K]{
		slots: make([]ringSlot[K], n),
		index: make(map[K]int, n),
		head:  nilSlot,
		tail:  nilSlot,
	}

	// Later slots sit closer to the head, so slot 0 is the first victim.
	for i := range r.slots {
		r.slots[i].prev = nilSlot
		r.slots[i].next = nilSlot
		r.pushFront(i)
	}
	return r
}

// Cap returns the number of slots.
func (r *Ring[K]) Cap() int {
	return len(r.slots)
}

// Len returns the number of slots currently holding a key.
func (r *Ring[K]) Len() int {
	return len(r.index)
}

// Get returns the slot holding k and marks it most recently used.
func (r *Ring[K]) Get(k K) (int, bool) {
	i, ok := r.index[k]
	if !ok {
		return nilSlot, false
	}
	r.moveToFront(i)
	return i, true
}

// peek returns the slot holding k without touching the recency order.
func (r *Ring[K]) peek(k K) (int, bool) {
	i, ok := r.index[k]
	if !ok {
		return nilSlot, false
	}
	return i, true
}

// Oldest returns the least recently used slot, the next eviction victim.
// Returns -1 if the ring has no slots.
func (r *Ring[K]) Oldest() int {
	return r.tail
}

// key returns the key held by slot i.
func (r *Ring[K]) key(i int) (K, bool) {
	if i < 0 || i >= len(r.slots) || !r.slots[i].used {
		var zero K
		return zero, false
	}
	return r.slots[i].key, true
}

// Assign stores k in slot i and marks the slot most recently used.
// If the slot held another key, that key is unmapped and returned with
// evicted set. If k was held by a different slot, that slot is released.
//
// Assign panics if i is out of range.
func (r *Ring[K]) Assign(i int, k K) (old K, evicted bool) {
	s := &r.slots[i]
	if j, ok := r.index[k]; ok && j != i {
		r.Release(j)
	}

	if s.used && s.key != k {
		old, evicted = s.key, true
		delete(r.index, s.key)
	}

	s.key = k
	s.used = true
	r.index[k] = i
	r.moveToFront(i)
	return old, evicted
}

// Release empties slot i and moves it to the tail so it is reused first.
// Returns the key it held, if any.
func (r *Ring[K]) Release(i int) (old K, ok bool) {
	if i < 0 || i >= len(r.slots) {
		return old, false
	}
	s := &r.slots[i]
	if s.used {
		old, ok = s.key, true
		delete(r.index, s.key)
		var zero K
		s.key = zero
		s.used = false
	}
	r.moveToBack(i)
	return old, ok
}

// Keys returns the held keys from most to least recently used.
func (r *Ring[K]) Keys() []K {
	keys := make([]K, 0, len(r.index))
	for i := r.head; i != nilSlot; i = r.slots[i].next {
		if r.slots[i].used {
			keys = append(keys, r.slots[i].key)
		}
	}
	return keys
}

// order returns slot handles from most to least recently used, including
// empty slots.
func (r *Ring[K]) order() []int {
	order := make([]int, 0, len(r.slots))
	for i := r.head; i != nilSlot; i = r.slots[i].next {
		order = append(order, i)
	}
	return order
}

// moveToFront relinks slot i at the head.
func (r *Ring[K]) moveToFront(i int) {
	if i == r.head {
		return
	}
	r.unlink(i)
	r.pushFront(i)
}

// moveToBack relinks slot i at the tail.
func (r *Ring[K]) moveToBack(i int) {
	if i == r.tail {
		return
	}
	r.unlink(i)

	s := &r.slots[i]
	s.next = nilSlot
	s.prev = r.tail
	if r.tail != nilSlot {
		r.slots[r.tail].next = i
	}
	r.tail = i
	if r.head == nilSlot {
		r.head = i
	}
}

// pushFront links an unlinked slot at the head.
func (r *Ring[K]) pushFront(i int) {
	s := &r.slots[i]
	s.prev = nilSlot
	s.next = r.head
	if r.head != nilSlot {
		r.slots[r.head].prev = i
	}
	r.head = i
	if r.tail == nilSlot {
		r.tail = i
	}
}

// unlink removes slot i from the list and clears its links.
func (r *Ring[K]) unlink(i int) {
	s := &r.slots[i]
	if s.prev != nilSlot {
		r.slots[s.prev].next = s.next
	} else if r.head == i {
		r.head = s.next
	}

	if s.next != nilSlot {
		r.slots[s.next].prev = s.prev
	} else if r.tail == i {
		r.tail = s.prev
	}

	s.prev = nilSlot
	s.next = nilSlot
}
