package pack

import (
	"container/heap"
	"sort"
)

// poolEntry is one resident transaction together with its heap bookkeeping.
type poolEntry struct {
	handle slotHandle
	txn    *TxnP
	index  int // position in the min-heap, maintained by container/heap
}

// pool is the bounded max-priority pool of pending transactions (§4.2). It
// is implemented as a handle-addressable min-heap ordered by ascending
// priority: the root is always the globally lowest-priority resident, so
// eviction on a full pool is O(log n), and removing any specific handle
// (on consume, explicit delete, or expiry) is also O(log n) via the
// handle->index map -- both sub-linear, as design notes require, without
// needing a second heap for the opposite order.
type pool struct {
	entries  []*poolEntry
	byHandle map[slotHandle]*poolEntry
	bySig    map[Signature]slotHandle
	depth    int
	nextSlot slotHandle
	free     []slotHandle
}

func newPool(depth int) *pool {
	return &pool{
		byHandle: make(map[slotHandle]*poolEntry, depth),
		bySig:    make(map[Signature]slotHandle, depth),
		depth:    depth,
	}
}

func (p *pool) Len() int { return len(p.entries) }
func (p *pool) Less(i, j int) bool {
	return comparePriority(p.entries[j].txn, p.entries[i].txn)
}
func (p *pool) Swap(i, j int) {
	p.entries[i], p.entries[j] = p.entries[j], p.entries[i]
	p.entries[i].index = i
	p.entries[j].index = j
}
func (p *pool) Push(v any) {
	e := v.(*poolEntry)
	e.index = len(p.entries)
	p.entries = append(p.entries, e)
}
func (p *pool) Pop() any {
	old := p.entries
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	p.entries = old[:n-1]
	return e
}

// full reports whether the pool has reached pack_depth residents.
func (p *pool) full() bool { return len(p.entries) >= p.depth }

// min returns the current globally-lowest-priority resident, or nil if the
// pool is empty.
func (p *pool) min() *poolEntry {
	if len(p.entries) == 0 {
		return nil
	}
	return p.entries[0]
}

// allocSlot reserves a handle for insert_init, reusing a freed slot when
// available.
func (p *pool) allocSlot() slotHandle {
	if n := len(p.free); n > 0 {
		h := p.free[n-1]
		p.free = p.free[:n-1]
		return h
	}
	h := p.nextSlot
	p.nextSlot++
	return h
}

// releaseSlot returns a handle to the free list without it ever having been
// admitted (insert_cancel).
func (p *pool) releaseSlot(h slotHandle) {
	p.free = append(p.free, h)
}

// admit inserts a priced, admitted transaction under the given handle.
func (p *pool) admit(h slotHandle, txn *TxnP) {
	e := &poolEntry{handle: h, txn: txn}
	heap.Push(p, e)
	p.byHandle[h] = e
	p.bySig[txn.FirstSignature] = h
}

// evict removes a specific resident by handle, returning its transaction.
// Used for eviction-on-replace, consume-on-schedule, explicit delete, and
// expiry.
func (p *pool) evict(h slotHandle) *TxnP {
	e, ok := p.byHandle[h]
	if !ok {
		return nil
	}
	heap.Remove(p, e.index)
	delete(p.byHandle, h)
	delete(p.bySig, e.txn.FirstSignature)
	p.releaseSlot(h)
	return e.txn
}

// handleFor returns the resident handle for a given identity signature, if
// present.
func (p *pool) handleFor(sig Signature) (slotHandle, bool) {
	h, ok := p.bySig[sig]
	return h, ok
}

// get returns the transaction resident at handle h.
func (p *pool) get(h slotHandle) *TxnP {
	e, ok := p.byHandle[h]
	if !ok {
		return nil
	}
	return e.txn
}

// candidatesByPriority returns every resident handle ordered by descending
// priority, the traversal order schedule_next_microblock iterates in
// (§4.3's "design level" pseudocode: "iterate candidates in descending
// priority"). A fresh snapshot is taken per call since scheduling mutates
// the pool as it accepts candidates.
func (p *pool) candidatesByPriority() []slotHandle {
	out := make([]slotHandle, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.handle
	}
	sort.Slice(out, func(i, j int) bool {
		return comparePriority(p.get(out[i]), p.get(out[j]))
	})
	return out
}

// clear drops every resident, resetting the pool to empty (clear_all).
func (p *pool) clear() {
	p.entries = nil
	p.byHandle = make(map[slotHandle]*poolEntry, p.depth)
	p.bySig = make(map[Signature]slotHandle, p.depth)
	p.free = nil
	p.nextSlot = 0
}
