package pack

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"

	packmetrics "github.com/luxfi/validator-core/pack/metrics"

	"github.com/luxfi/validator-core/log"
)

// rejectLogCacheSize bounds the reject-log dedup cache (see rejectLog
// below). It is a fixed size, independent of PackDepth and smaller than
// the default PackDepth (1 << 15); once more distinct (signature, code)
// pairs are rejected than it holds, the least recently used entries are
// evicted and those pairs are logged again.
const rejectLogCacheSize = 8192

// InsertHandle is the opaque slot reservation returned by InsertInit. It
// must be passed to exactly one of InsertFini or InsertCancel.
type InsertHandle struct {
	slot slotHandle
}

// workerState is one bank-tile worker's in-flight microblock bookkeeping.
type workerState struct {
	accounts []Address // accounts currently held by this worker
}

// Pack is the single-threaded transaction scheduler: admission, priority
// ordering, conflict-aware microblock assembly, and block-budget
// accounting. It orchestrates pool, conflictGraph, expiryIndex, and
// accountant exactly the way the teacher's TxPool orchestrates its
// reservation map, subpools, and background reorg state -- one coordinator
// type dispatching to purpose-built sub-components, all mutated from a
// single owning goroutine (§5: "no internal locks and no atomics on the hot
// path").
type Pack struct {
	limits   Limits
	isSysvar IsSysvarFunc

	pool   *pool
	expiry *expiryIndex
	graph  *conflictGraph
	acct   *accountant

	workers map[int]*workerState

	metrics *packmetrics.Metrics

	// rejectLog dedups reject logging by (signature, reject code): a
	// resubmitting sender retrying into the same rejection floods Debug
	// logs with no new information, so only the first occurrence of a given
	// signature/code pair within the cache's window is logged.
	rejectLog *lru.Cache

	// insertGeneration counts InsertInit calls, incremented atomically.
	// Nothing in this package reads it.
	insertGeneration int64
}

// New constructs a Pack with the given limits. isSysvar may be nil if the
// embedding validator has no sysvar concept (all writes accepted for that
// check).
func New(limits Limits, isSysvar IsSysvarFunc, m *packmetrics.Metrics) (*Pack, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	if m == nil {
		m = packmetrics.NewNoop()
	}
	rejectLog, err := lru.New(rejectLogCacheSize)
	if err != nil {
		return nil, fmt.Errorf("pack: reject-log cache: %w", err)
	}
	return &Pack{
		limits:    limits,
		isSysvar:  isSysvar,
		pool:      newPool(limits.PackDepth),
		expiry:    newExpiryIndex(),
		graph:     newConflictGraph(),
		acct:      newAccountant(limits),
		workers:   make(map[int]*workerState),
		metrics:   m,
		rejectLog: rejectLog,
	}, nil
}

// logReject logs a rejection at Debug level the first time this
// (signature, code) pair is seen, and silently suppresses repeats.
func (p *Pack) logReject(sig Signature, code InsertResult) {
	key := [2]interface{}{sig, code}
	if _, seen := p.rejectLog.Get(key); seen {
		return
	}
	p.rejectLog.Add(key, struct{}{})
	log.Debug("pack: rejected transaction", "sig", sig, "result", code)
}

// AvailTxnCnt returns the current number of pool residents.
func (p *Pack) AvailTxnCnt() int {
	return p.pool.Len()
}

// InsertInit reserves a pool slot for a new transaction, returning the
// handle to pass to InsertFini or InsertCancel. It never blocks and never
// fails: reservation does not require the pool to have free capacity,
// mirroring the C API's arena-slot-reservation contract (capacity is only
// enforced at InsertFini, where an admit may evict).
func (p *Pack) InsertInit() *InsertHandle {
	atomic.AddInt64(&p.insertGeneration, 1)
	return &InsertHandle{slot: p.pool.allocSlot()}
}

// InsertCancel returns a reserved slot to the pool's free list without
// admitting anything. The resident set is unchanged, but the slot
// bookkeeping is not restored exactly: a fresh slot taken by InsertInit
// stays counted in nextSlot and is added to the free list.
func (p *Pack) InsertCancel(h *InsertHandle) {
	p.pool.releaseSlot(h.slot)
}

// InsertFini validates and prices in, then admits or rejects it following
// §4.2's ordering: duplicate check, pricing/structural rejects, expiry,
// then priority-vs-capacity.
func (p *Pack) InsertFini(h *InsertHandle, in TxnInput, expiresAt int64) InsertResult {
	if _, dup := p.pool.handleFor(in.FirstSignature); dup {
		p.pool.releaseSlot(h.slot)
		p.metrics.Reject(InsertRejectDuplicate)
		p.logReject(in.FirstSignature, InsertRejectDuplicate)
		return InsertRejectDuplicate
	}

	txn, reject := ComputeCost(in, p.limits, p.isSysvar)
	if txn == nil {
		p.pool.releaseSlot(h.slot)
		p.metrics.Reject(reject)
		p.logReject(in.FirstSignature, reject)
		return reject
	}

	if expiresAt < p.expiry.watermark {
		p.pool.releaseSlot(h.slot)
		p.metrics.Reject(InsertRejectExpired)
		p.logReject(in.FirstSignature, InsertRejectExpired)
		return InsertRejectExpired
	}
	txn.ExpiresAt = expiresAt

	replaced := false
	if p.pool.full() {
		min := p.pool.min()
		if !comparePriority(txn, min.txn) {
			p.pool.releaseSlot(h.slot)
			p.metrics.Reject(InsertRejectPriority)
			p.logReject(in.FirstSignature, InsertRejectPriority)
			return InsertRejectPriority
		}
		p.removeResident(min.handle)
		replaced = true
	}

	p.pool.admit(h.slot, txn)
	p.graph.register(h.slot, txn)
	p.expiry.insert(h.slot, expiresAt)

	result := acceptCode(txn.IsSimpleVote, replaced)
	p.metrics.Accept(result)
	log.Debug("pack: admitted transaction", "sig", txn.FirstSignature, "priority", txn.Priority, "result", result)
	return result
}

// removeResident fully unlinks a resident from pool, graph, and expiry
// index -- the "fully unlink" step §4.2 requires on eviction.
func (p *Pack) removeResident(h slotHandle) {
	txn := p.pool.get(h)
	if txn == nil {
		return
	}
	p.graph.unregister(h, txn)
	p.expiry.remove(h)
	p.pool.evict(h)
}

// ScheduleNextMicroblock assembles a conflict-free, budget-respecting batch
// for workerID (§4.3). Accepted transactions are removed from the pending
// pool and their accounts held by workerID until MicroblockComplete.
func (p *Pack) ScheduleNextMicroblock(workerID int, totalCUs uint64, voteFraction float64) []*TxnP {
	if p.acct.blockSaturated() {
		return nil
	}

	maxTxn := p.limits.MaxTxnPerMicroblock
	maxVoteTxn := uint32(voteFraction * float64(maxTxn))
	maxVoteCUs := uint64(voteFraction * float64(totalCUs))

	var (
		out               []*TxnP
		cuUsed            uint64
		voteCount         uint32
		voteCUsUsed       uint64
		writeLocked       = make(map[Address]struct{})
		readLocked        = make(map[Address]struct{})
		heldWriteAccounts []Address
		heldReadAccounts  []Address
	)

	for _, h := range p.pool.candidatesByPriority() {
		if uint32(len(out)) >= maxTxn {
			break
		}
		txn := p.pool.get(h)
		if txn == nil {
			continue
		}
		if cuUsed+txn.CostUnits > totalCUs {
			continue
		}
		if txn.IsSimpleVote {
			if voteCount >= maxVoteTxn || voteCUsUsed+txn.CostUnits > maxVoteCUs {
				continue
			}
		}
		if !p.conflictFree(txn, writeLocked, readLocked) {
			continue
		}
		if !p.acct.fits(txn) {
			continue
		}

		// Accept: stage locks, remove from pool, commit budgets.
		for _, a := range txn.WriteAccounts {
			writeLocked[a] = struct{}{}
			heldWriteAccounts = append(heldWriteAccounts, a)
		}
		for _, a := range txn.ReadAccounts {
			readLocked[a] = struct{}{}
			heldReadAccounts = append(heldReadAccounts, a)
		}
		cuUsed += txn.CostUnits
		if txn.IsSimpleVote {
			voteCount++
			voteCUsUsed += txn.CostUnits
		}
		p.acct.commit(txn)
		p.removeResident(h)
		out = append(out, txn)
	}

	if len(out) == 0 {
		return nil
	}

	p.acct.commitMicroblock()
	p.graph.holdWrite(workerID, heldWriteAccounts)
	p.graph.holdRead(workerID, heldReadAccounts)
	ws, ok := p.workers[workerID]
	if !ok {
		ws = &workerState{}
		p.workers[workerID] = ws
	}
	ws.accounts = append(ws.accounts, heldWriteAccounts...)
	ws.accounts = append(ws.accounts, heldReadAccounts...)

	p.metrics.Microblock(len(out))
	return out
}

// conflictFree reports whether txn may be added to a microblock already
// holding writeLocked/readLocked accounts from earlier acceptances in this
// same assembly pass, given the cross-worker in-flight state in p.graph
// (§4.3's conflict rule). A write account must see no other in-flight
// holder of either kind; a read account only conflicts with another
// in-flight writer, since concurrent microblocks may share-read the same
// account.
func (p *Pack) conflictFree(txn *TxnP, writeLocked, readLocked map[Address]struct{}) bool {
	for _, a := range txn.WriteAccounts {
		if _, ok := writeLocked[a]; ok {
			return false
		}
		if _, ok := readLocked[a]; ok {
			return false
		}
		if p.graph.heldByOther(a, -1) {
			return false
		}
	}
	for _, a := range txn.ReadAccounts {
		if _, ok := writeLocked[a]; ok {
			return false
		}
		if p.graph.writeHeldByOther(a, -1) {
			return false
		}
	}
	return true
}

// MicroblockComplete releases every account workerID holds from its most
// recently dispatched microblocks.
func (p *Pack) MicroblockComplete(workerID int) {
	p.graph.release(workerID)
	delete(p.workers, workerID)
}

// ExpireBefore advances the expiry watermark and deletes every resident
// whose expires_at falls below it, returning the count deleted (§4.5).
func (p *Pack) ExpireBefore(threshold int64) int {
	expired := p.expiry.expireBefore(threshold)
	for _, h := range expired {
		if txn := p.pool.get(h); txn != nil {
			p.graph.unregister(h, txn)
			p.pool.evict(h)
		}
	}
	return len(expired)
}

// DeleteTransaction removes a resident by its identity signature, returning
// true iff a resident was found and removed.
func (p *Pack) DeleteTransaction(sig Signature) bool {
	h, ok := p.pool.handleFor(sig)
	if !ok {
		return false
	}
	p.removeResident(h)
	return true
}

// EndBlock zeroes all per-block accountants but preserves the pending pool,
// expiration watermark, and any still-in-flight worker holds (§4.6).
func (p *Pack) EndBlock() {
	p.acct.endBlock()
}

// ClearAll drops every resident transaction and resets accountant and
// per-worker in-flight state.
func (p *Pack) ClearAll() {
	p.pool.clear()
	p.graph.clear()
	p.expiry = newExpiryIndex()
	p.acct.endBlock()
	p.workers = make(map[int]*workerState)
}

// SetBlockLimits shrinks the operational per-block ceilings mid-block.
func (p *Pack) SetBlockLimits(maxMicroblocks, maxDataBytes uint64) {
	p.acct.setBlockLimits(maxMicroblocks, maxDataBytes)
}

// Verify re-derives Pack's structural invariants and returns the first
// violation found, if any. It is a debugging aid (mirrors fd_pack_verify's
// "for debugging use primarily") never called on a production hot path: no
// ScheduleNextMicroblock/InsertFini caller invokes it.
func (p *Pack) Verify() error {
	if p.pool.Len() > p.limits.PackDepth {
		return fmt.Errorf("pack: pool size %d exceeds depth %d", p.pool.Len(), p.limits.PackDepth)
	}
	for h, e := range p.pool.byHandle {
		if e.handle != h {
			return fmt.Errorf("pack: pool entry handle mismatch at %d", h)
		}
		if _, ok := p.pool.bySig[e.txn.FirstSignature]; !ok {
			return fmt.Errorf("pack: resident %v missing from signature index", e.txn.FirstSignature)
		}
	}
	for addr, e := range p.graph.accounts {
		var badHandle slotHandle = invalidHandle
		e.writers.Each(func(h slotHandle) bool {
			if p.pool.get(h) == nil && e.writeHolders.Cardinality() == 0 {
				badHandle = h
				return true
			}
			return false
		})
		if badHandle != invalidHandle {
			return fmt.Errorf("pack: account %v writer set references non-resident handle %d", addr, badHandle)
		}
	}
	if p.acct.costTotal > p.limits.MaxCostPerBlock {
		return fmt.Errorf("pack: running block cost %d exceeds ceiling %d", p.acct.costTotal, p.limits.MaxCostPerBlock)
	}
	if p.acct.voteCostTotal > p.limits.MaxVoteCostPerBlock {
		return fmt.Errorf("pack: running vote cost %d exceeds ceiling %d", p.acct.voteCostTotal, p.limits.MaxVoteCostPerBlock)
	}
	for a, c := range p.acct.writeCost {
		if c > p.limits.MaxWriteCostPerAcct {
			return fmt.Errorf("pack: account %v write cost %d exceeds ceiling %d", a, c, p.limits.MaxWriteCostPerAcct)
		}
	}
	return nil
}
