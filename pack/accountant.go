package pack

// accountant tracks the current block's cumulative consumption against the
// consensus-critical (and operational) budgets (§3, §4.4). Reset by
// end_block; account write-cost map and microblock count reset with it.
type accountant struct {
	limits Limits

	costTotal     uint64
	voteCostTotal uint64
	writeCost     map[Address]uint64
	dataBytes     uint64
	microblockCnt uint64
}

func newAccountant(limits Limits) *accountant {
	return &accountant{
		limits:    limits,
		writeCost: make(map[Address]uint64),
	}
}

// fits reports whether admitting txn (as part of the microblock currently
// being assembled, on top of the totals already committed for earlier
// acceptances in the same block) would stay within every budget. It does not mutate state; commit() does that once the caller has
// decided to accept.
func (b *accountant) fits(txn *TxnP) bool {
	if b.costTotal+txn.CostUnits > b.limits.MaxCostPerBlock {
		return false
	}
	if txn.IsSimpleVote && b.voteCostTotal+txn.CostUnits > b.limits.MaxVoteCostPerBlock {
		return false
	}
	if b.dataBytes+uint64(txn.DataBytes) > b.limits.MaxDataBytesPerBlock {
		return false
	}
	for _, a := range txn.WriteAccounts {
		if b.writeCost[a]+txn.CostUnits > b.limits.MaxWriteCostPerAcct {
			return false
		}
	}
	return true
}

// blockSaturated reports whether end_block conditions already hold for the
// microblock-count ceiling, meaning scheduling must return empty (§4.3).
func (b *accountant) blockSaturated() bool {
	return b.microblockCnt >= b.limits.MaxMicroblocksPerBlock
}

// commit records txn as accepted into the in-progress microblock.
func (b *accountant) commit(txn *TxnP) {
	b.costTotal += txn.CostUnits
	if txn.IsSimpleVote {
		b.voteCostTotal += txn.CostUnits
	}
	b.dataBytes += uint64(txn.DataBytes)
	for _, a := range txn.WriteAccounts {
		b.writeCost[a] += txn.CostUnits
	}
}

// commitMicroblock records that a non-empty microblock was produced,
// counting against the per-block microblock ceiling.
func (b *accountant) commitMicroblock() {
	b.microblockCnt++
}

// endBlock zeroes all per-block running totals, preserving configured
// limits (§4.6).
func (b *accountant) endBlock() {
	b.costTotal = 0
	b.voteCostTotal = 0
	b.dataBytes = 0
	b.microblockCnt = 0
	b.writeCost = make(map[Address]uint64)
}

// setBlockLimits applies a runtime shrink of the operational ceilings
// (max_microblocks_per_block, max_data_bytes_per_block). Growing them is not
// rejected, but only shrinking is the documented use (§4.4).
func (b *accountant) setBlockLimits(maxMicroblocks, maxDataBytes uint64) {
	b.limits.MaxMicroblocksPerBlock = maxMicroblocks
	b.limits.MaxDataBytesPerBlock = maxDataBytes
}
