package pack

import "container/heap"

// expiryEntry is one handle's position in the expiry index.
type expiryEntry struct {
	handle    slotHandle
	expiresAt int64
	index     int // position in the heap, maintained by container/heap
}

// expiryIndex is a min-heap ordered by expiresAt, supporting bulk deletion
// of every resident whose expiration is below a monotonically advancing
// watermark. Mirrors the teacher's use of container/heap for criterion-
// ordered eviction (core/txpool/txpool.go's sortedMap-by-heartbeat shape),
// specialized to a single int64 key.
type expiryIndex struct {
	entries []*expiryEntry
	byHandle map[slotHandle]*expiryEntry
	watermark int64
}

func newExpiryIndex() *expiryIndex {
	return &expiryIndex{
		byHandle: make(map[slotHandle]*expiryEntry),
	}
}

// Len, Less, Swap, Push, Pop implement heap.Interface over *expiryEntry.
func (x *expiryIndex) Len() int { return len(x.entries) }
func (x *expiryIndex) Less(i, j int) bool {
	return x.entries[i].expiresAt < x.entries[j].expiresAt
}
func (x *expiryIndex) Swap(i, j int) {
	x.entries[i], x.entries[j] = x.entries[j], x.entries[i]
	x.entries[i].index = i
	x.entries[j].index = j
}
func (x *expiryIndex) Push(v any) {
	e := v.(*expiryEntry)
	e.index = len(x.entries)
	x.entries = append(x.entries, e)
}
func (x *expiryIndex) Pop() any {
	old := x.entries
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	x.entries = old[:n-1]
	return e
}

// insert adds a handle at the given expiration to the index.
func (x *expiryIndex) insert(handle slotHandle, expiresAt int64) {
	e := &expiryEntry{handle: handle, expiresAt: expiresAt}
	heap.Push(x, e)
	x.byHandle[handle] = e
}

// remove deletes a handle from the index ahead of its natural expiration
// (used on evict/consume/explicit delete).
func (x *expiryIndex) remove(handle slotHandle) {
	e, ok := x.byHandle[handle]
	if !ok {
		return
	}
	heap.Remove(x, e.index)
	delete(x.byHandle, handle)
}

// expireBefore advances the watermark to max(prev, threshold) and returns
// every handle whose expiresAt is strictly less than threshold, walking the
// heap in ascending order and halting at the first survivor (§4.5).
func (x *expiryIndex) expireBefore(threshold int64) []slotHandle {
	if threshold > x.watermark {
		x.watermark = threshold
	}
	var expired []slotHandle
	for x.Len() > 0 && x.entries[0].expiresAt < threshold {
		e := heap.Pop(x).(*expiryEntry)
		delete(x.byHandle, e.handle)
		expired = append(expired, e.handle)
	}
	return expired
}
