package pack

import (
	"testing"

	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"
)

func addr(b byte) Address {
	var a Address
	a[0] = b
	return a
}

func sig(b byte) Signature {
	var s Signature
	s[0] = b
	return s
}

func txnInput(s Signature, writes []Address, cu uint64) TxnInput {
	return txnInputRW(s, writes, nil, cu)
}

func txnInputRW(s Signature, writes, reads []Address, cu uint64) TxnInput {
	return TxnInput{
		FirstSignature: s,
		SigCount:       1,
		WriteAccounts:  writes,
		ReadAccounts:   reads,
		ComputeBudget: ComputeBudgetInput{
			Present:          true,
			ComputeUnitLimit: cu,
		},
	}
}

func newTestPack(t *testing.T, limits Limits) *Pack {
	t.Helper()
	p, err := New(limits, nil, nil)
	require.NoError(t, err)
	return p
}

// Scenario 1 (spec.md §8): two transactions writing the same account with
// priorities 100 and 50; scheduling returns exactly the higher-priority
// one, the second only appears after MicroblockComplete.
func TestScheduleConflictingWrites(t *testing.T) {
	require := require.New(t)
	limits := DefaultLimits()
	limits.PackDepth = 8
	p := newTestPack(t, limits)

	a := addr(1)
	lowCU := uint64(1000)  // higher priority: fee fixed per-sig, lower cost -> higher priority
	highCU := uint64(5000) // lower priority: higher cost -> lower priority

	hi := p.InsertInit()
	resHi := p.InsertFini(hi, txnInput(sig(1), []Address{a}, lowCU), 1000)
	require.True(resHi.IsAccept())

	lo := p.InsertInit()
	resLo := p.InsertFini(lo, txnInput(sig(2), []Address{a}, highCU), 1000)
	require.True(resLo.IsAccept())

	require.Equal(2, p.AvailTxnCnt())

	batch := p.ScheduleNextMicroblock(0, limits.MaxCostPerBlock, 0.5)
	require.Len(batch, 1)
	require.Equal(sig(1), batch[0].FirstSignature)
	require.Equal(1, p.AvailTxnCnt())

	// The conflicting transaction cannot schedule while worker 0 holds A.
	batch2 := p.ScheduleNextMicroblock(1, limits.MaxCostPerBlock, 0.5)
	require.Len(batch2, 0)

	p.MicroblockComplete(0)

	batch3 := p.ScheduleNextMicroblock(1, limits.MaxCostPerBlock, 0.5)
	require.Len(batch3, 1)
	require.Equal(sig(2), batch3[0].FirstSignature)
}

// Scenario 2 (spec.md §8): pool capacity 4, four residents with priorities
// derived from cost {10,20,30,40}-equivalent; inserting a mid-priority
// transaction replaces the lowest, inserting a too-low-priority one is
// rejected.
func TestInsertFiniEvictionAtCapacity(t *testing.T) {
	require := require.New(t)
	limits := DefaultLimits()
	limits.PackDepth = 4
	p := newTestPack(t, limits)

	// Distinct accounts, decreasing cost => increasing priority. costs
	// chosen so the four residents rank strictly by signature index.
	costs := []uint64{8000, 6000, 4000, 2000} // sig 1..4, priorities ascending
	for i, cu := range costs {
		h := p.InsertInit()
		res := p.InsertFini(h, txnInput(sig(byte(i+1)), []Address{addr(byte(i + 1))}, cu), 1000)
		require.True(res.IsAccept(), "resident %d should be admitted", i)
	}
	require.Equal(4, p.AvailTxnCnt())

	// A transaction with cost between the lowest (sig 1, cu 8000, lowest
	// priority) and the next (sig 2, cu 6000): should replace sig 1.
	mid := p.InsertInit()
	resMid := p.InsertFini(mid, txnInput(sig(5), []Address{addr(5)}, 7000), 1000)
	require.Equal(InsertAcceptNonVoteReplace, resMid)
	require.Equal(4, p.AvailTxnCnt())
	_, stillThere := p.pool.handleFor(sig(1))
	require.False(stillThere, "lowest-priority resident should have been evicted")

	// A transaction ranked below every resident is rejected outright.
	tooLow := p.InsertInit()
	resLow := p.InsertFini(tooLow, txnInput(sig(6), []Address{addr(6)}, 9000), 1000)
	require.Equal(InsertRejectPriority, resLow)
	require.Equal(4, p.AvailTxnCnt())
}

// Scenario 3 (spec.md §8): five 10M-cost transactions on distinct accounts
// with max_cost_per_block=48M; four schedule, the fifth remains pending
// until end_block.
func TestBlockCostBudget(t *testing.T) {
	require := require.New(t)
	limits := DefaultLimits()
	limits.PackDepth = 8
	limits.MaxCostPerBlock = 48_000_000
	p := newTestPack(t, limits)

	for i := 0; i < 5; i++ {
		h := p.InsertInit()
		res := p.InsertFini(h, txnInput(sig(byte(i+1)), []Address{addr(byte(i + 1))}, 10_000_000), 1000)
		require.True(res.IsAccept())
	}

	batch := p.ScheduleNextMicroblock(0, limits.MaxCostPerBlock, 0)
	require.Len(batch, 4, "only four 10M-cost transactions fit under a 48M budget")
	require.Equal(1, p.AvailTxnCnt())

	p.MicroblockComplete(0)
	batch2 := p.ScheduleNextMicroblock(0, limits.MaxCostPerBlock, 0)
	require.Len(batch2, 0, "the fifth already exceeds the still-open block's running cost")

	p.EndBlock()
	batch3 := p.ScheduleNextMicroblock(0, limits.MaxCostPerBlock, 0)
	require.Len(batch3, 1, "after end_block the fifth schedules against a fresh accountant")
}

// Scenario 4 (spec.md §8): expiry watermark advance deletes residents below
// it; a second identical advance is a no-op; deleting the since-expired
// transaction by signature returns false.
func TestExpireBefore(t *testing.T) {
	require := require.New(t)
	p := newTestPack(t, DefaultLimits())

	h := p.InsertInit()
	res := p.InsertFini(h, txnInput(sig(1), []Address{addr(1)}, 1000), 100)
	require.True(res.IsAccept())

	require.Equal(1, p.ExpireBefore(101))
	require.Equal(0, p.AvailTxnCnt())

	// Round-trip / idempotence property (§8): the second call is a no-op.
	require.Equal(0, p.ExpireBefore(101))

	require.False(p.DeleteTransaction(sig(1)))
}

// insert_init -> insert_cancel leaves the resident set unchanged and puts
// the reserved slot on the free list.
func TestInsertInitCancelRoundTrip(t *testing.T) {
	require := require.New(t)
	p := newTestPack(t, DefaultLimits())

	before := p.AvailTxnCnt()
	beforeFree := len(p.pool.free)

	h := p.InsertInit()
	p.InsertCancel(h)

	require.Equal(before, p.AvailTxnCnt())
	require.Equal(beforeFree+1, len(p.pool.free), "the cancelled slot returns to the free list")
	require.NoError(p.Verify())
}

func TestInsertFiniRejectsDuplicateSignature(t *testing.T) {
	require := require.New(t)
	p := newTestPack(t, DefaultLimits())

	h1 := p.InsertInit()
	require.True(p.InsertFini(h1, txnInput(sig(9), []Address{addr(1)}, 1000), 1000).IsAccept())

	h2 := p.InsertInit()
	res := p.InsertFini(h2, txnInput(sig(9), []Address{addr(2)}, 1000), 1000)
	require.Equal(InsertRejectDuplicate, res)
}

func TestInsertFiniRejectsTooManyAccounts(t *testing.T) {
	require := require.New(t)
	p := newTestPack(t, DefaultLimits())

	writes := make([]Address, maxAccountsPerTxn+1)
	for i := range writes {
		writes[i] = addr(byte(i))
	}

	h := p.InsertInit()
	res := p.InsertFini(h, txnInput(sig(1), writes, 1000), 1000)
	require.Equal(InsertRejectAccountCnt, res)
}

func TestInsertFiniRejectsSysvarWrite(t *testing.T) {
	require := require.New(t)
	sysvar := addr(0xFF)
	isSysvar := func(a Address) bool { return a == sysvar }
	p, err := New(DefaultLimits(), isSysvar, nil)
	require.NoError(err)

	h := p.InsertInit()
	res := p.InsertFini(h, txnInput(sig(1), []Address{sysvar}, 1000), 1000)
	require.Equal(InsertRejectWritesSysvar, res)
}

// Invariant (§8): in-flight microblocks' write-sets are pairwise disjoint.
func TestConcurrentMicroblocksDisjointWrites(t *testing.T) {
	require := require.New(t)
	limits := DefaultLimits()
	limits.PackDepth = 16
	p := newTestPack(t, limits)

	for i := 0; i < 4; i++ {
		h := p.InsertInit()
		res := p.InsertFini(h, txnInput(sig(byte(i+1)), []Address{addr(byte(i + 1))}, 1000), 1000)
		require.True(res.IsAccept())
	}

	batchA := p.ScheduleNextMicroblock(0, limits.MaxCostPerBlock, 0)
	batchB := p.ScheduleNextMicroblock(1, limits.MaxCostPerBlock, 0)

	seen := make(map[common.Address]bool)
	for _, txn := range append(append([]*TxnP{}, batchA...), batchB...) {
		for _, a := range txn.WriteAccounts {
			require.False(seen[a], "account %v written by two concurrently in-flight microblocks", a)
			seen[a] = true
		}
	}
	require.NoError(p.Verify())
}

func TestScheduleBlocksWriteAgainstInFlightRead(t *testing.T) {
	require := require.New(t)
	limits := DefaultLimits()
	p := newTestPack(t, limits)

	a := addr(1)

	// Worker 0 schedules a microblock that only reads account a.
	h1 := p.InsertInit()
	res1 := p.InsertFini(h1, txnInputRW(sig(1), nil, []Address{a}, 1000), 1000)
	require.True(res1.IsAccept())
	batch0 := p.ScheduleNextMicroblock(0, limits.MaxCostPerBlock, 0)
	require.Len(batch0, 1, "the read-only transaction should have scheduled")

	// While worker 0's microblock is still in flight (read-holding a),
	// worker 1 must not be allowed to write a.
	h2 := p.InsertInit()
	res2 := p.InsertFini(h2, txnInput(sig(2), []Address{a}, 1000), 1000)
	require.True(res2.IsAccept())
	batch1 := p.ScheduleNextMicroblock(1, limits.MaxCostPerBlock, 0)
	require.Empty(batch1, "a write against an in-flight read-held account must not schedule")

	// Once worker 0 completes, the write-account transaction must schedule.
	p.MicroblockComplete(0)
	batch1 = p.ScheduleNextMicroblock(1, limits.MaxCostPerBlock, 0)
	require.Len(batch1, 1)
	require.NoError(p.Verify())
}

func TestScheduleAllowsConcurrentReadsOfSameAccount(t *testing.T) {
	require := require.New(t)
	limits := DefaultLimits()
	p := newTestPack(t, limits)

	a := addr(1)

	h1 := p.InsertInit()
	res1 := p.InsertFini(h1, txnInputRW(sig(1), nil, []Address{a}, 1000), 1000)
	require.True(res1.IsAccept())
	batch0 := p.ScheduleNextMicroblock(0, limits.MaxCostPerBlock, 0)
	require.Len(batch0, 1)

	h2 := p.InsertInit()
	res2 := p.InsertFini(h2, txnInputRW(sig(2), nil, []Address{a}, 1000), 1000)
	require.True(res2.IsAccept())
	batch1 := p.ScheduleNextMicroblock(1, limits.MaxCostPerBlock, 0)
	require.Len(batch1, 1, "two in-flight microblocks may share-read the same account")

	p.MicroblockComplete(0)
	p.MicroblockComplete(1)
	require.NoError(p.Verify())
}

func TestRejectLogDedupsRepeatedSameSignatureReject(t *testing.T) {
	require := require.New(t)
	limits := DefaultLimits()
	p := newTestPack(t, limits)

	s := sig(9)
	h := p.InsertInit()
	res := p.InsertFini(h, txnInput(s, []Address{addr(9)}, 1000), 1000)
	require.True(res.IsAccept())

	// Re-submitting the identical signature is rejected as a duplicate on
	// every attempt, but logReject's cache must only log the first time.
	require.False(p.rejectLog.Contains([2]interface{}{s, InsertRejectDuplicate}))

	h2 := p.InsertInit()
	res2 := p.InsertFini(h2, txnInput(s, []Address{addr(9)}, 1000), 1000)
	require.Equal(InsertRejectDuplicate, res2)
	require.True(p.rejectLog.Contains([2]interface{}{s, InsertRejectDuplicate}))

	// A second identical resubmission hits the same cache key and must not
	// panic or grow the cache (Contains already true).
	h3 := p.InsertInit()
	res3 := p.InsertFini(h3, txnInput(s, []Address{addr(9)}, 1000), 1000)
	require.Equal(InsertRejectDuplicate, res3)
	require.Equal(1, p.rejectLog.Len())
}
