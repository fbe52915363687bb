package pack

import "fmt"

// Limits holds Pack's configuration: the consensus-critical budgets that
// every validator on the network must agree on, plus the operational knobs
// a single validator may tune.
type Limits struct {
	// Consensus-critical -- changing these changes what blocks are valid.
	MaxCostPerBlock      uint64
	MaxVoteCostPerBlock  uint64
	MaxWriteCostPerAcct  uint64
	FeePerSignature      uint64
	MaxDataBytesPerBlock uint64

	// Operational -- tunable per validator without affecting consensus.
	MaxTxnPerMicroblock    uint32
	MaxMicroblocksPerBlock uint64
	PackDepth              int
	BankTileCnt            int
}

// DefaultLimits returns the consensus-critical constants from the external
// interface, with conservative operational defaults.
func DefaultLimits() Limits {
	return Limits{
		MaxCostPerBlock:      48_000_000,
		MaxVoteCostPerBlock:  36_000_000,
		MaxWriteCostPerAcct:  12_000_000,
		FeePerSignature:      5_000,
		MaxDataBytesPerBlock: 27_319_824,

		MaxTxnPerMicroblock:    1 << 16,
		MaxMicroblocksPerBlock: 1 << 20,
		PackDepth:              1 << 15,
		BankTileCnt:            4,
	}
}

// Validate checks the external-interface range constraints on the
// operational knobs (§6.1): max_txn_per_microblock in [0, 2^24],
// max_microblocks_per_block in [0, 10^12), pack_depth >= 4, bank_tile_cnt in
// [1, 62].
func (l Limits) Validate() error {
	const (
		maxTxnPerMicroblockCeil = 1 << 24
		maxMicroblocksCeil      = 1_000_000_000_000
	)
	if l.MaxTxnPerMicroblock > maxTxnPerMicroblockCeil {
		return fmt.Errorf("pack: max_txn_per_microblock %d exceeds %d", l.MaxTxnPerMicroblock, maxTxnPerMicroblockCeil)
	}
	if l.MaxMicroblocksPerBlock >= maxMicroblocksCeil {
		return fmt.Errorf("pack: max_microblocks_per_block %d exceeds %d", l.MaxMicroblocksPerBlock, maxMicroblocksCeil)
	}
	if l.PackDepth < 4 {
		return fmt.Errorf("pack: pack_depth %d below minimum 4", l.PackDepth)
	}
	if l.BankTileCnt < 1 || l.BankTileCnt > 62 {
		return fmt.Errorf("pack: bank_tile_cnt %d out of range [1, 62]", l.BankTileCnt)
	}
	return nil
}
