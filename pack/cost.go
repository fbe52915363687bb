package pack

import (
	"github.com/holiman/uint256"
)

// priorityScale is the fixed-point scale applied before the fee/cost
// division so integer priority retains precision; chosen to keep
// fee*priorityScale within uint256 headroom for any plausible fee.
const priorityScale = 1 << 20

// ComputeBudgetInput is the subset of a transaction's compute-budget
// instruction pack relevant to cost computation. A transaction with no such
// instruction uses the zero value (no compute-unit limit declared, no
// additional loaded-data cost).
type ComputeBudgetInput struct {
	Present           bool
	ComputeUnitLimit  uint64
	Malformed         bool
	LoadedDataBytes   uint32
}

// TxnInput is the raw shape a cost-model caller hands to ComputeCost: an
// already-sanitized (but not yet priced) transaction. Pack never parses wire
// bytes itself -- that is the sanitizer's job, out of scope here.
type TxnInput struct {
	FirstSignature Signature
	SigCount       uint8
	WriteAccounts  []Address
	ReadAccounts   []Address
	IsSimpleVote   bool
	UsesAddressLUT bool
	ComputeBudget  ComputeBudgetInput
}

// costConstants mirror the per-transaction cost weights. These are not
// consensus-critical budgets (those live in Limits) but the per-unit prices
// that sum into a transaction's CostUnits.
const (
	costPerSignature        = 720
	costPerInstructionBase  = 150
	costPerWriteLockAccount = 300
	costPerLoadedByte       = 8
)

// IsSysvarFunc classifies an account address as a protected sysvar account;
// writes to sysvars are always rejected. This is supplied by the account
// manager collaborator (out of scope here, spec.md §1), not computed by the
// cost model itself.
type IsSysvarFunc func(Address) bool

// ComputeCost prices a sanitized transaction input, returning the priced
// TxnP on success. On failure it returns a nil TxnP and the reject code
// identifying why the transaction can never be admitted regardless of pool
// state; the returned InsertResult is unused (zero value) when txn is
// non-nil.
func ComputeCost(in TxnInput, limits Limits, isSysvar IsSysvarFunc) (*TxnP, InsertResult) {
	total := in.accountCount()
	if total > maxAccountsPerTxn {
		return nil, InsertRejectAccountCnt
	}
	if hasDuplicateAccount(in.WriteAccounts, in.ReadAccounts) {
		return nil, InsertRejectDuplicateAcct
	}
	if in.UsesAddressLUT {
		return nil, InsertRejectAddrLUT
	}
	if isSysvar != nil {
		for _, a := range in.WriteAccounts {
			if isSysvar(a) {
				return nil, InsertRejectWritesSysvar
			}
		}
	}
	if in.ComputeBudget.Malformed {
		return nil, InsertRejectEstimationFail
	}

	cu := uint64(in.SigCount) * costPerSignature
	cu += costPerInstructionBase
	cu += uint64(len(in.WriteAccounts)) * costPerWriteLockAccount
	if in.ComputeBudget.Present {
		cu += in.ComputeBudget.ComputeUnitLimit
	}
	dataBytes := in.ComputeBudget.LoadedDataBytes
	cu += uint64(dataBytes) * costPerLoadedByte

	if cu > limits.MaxCostPerBlock {
		return nil, InsertRejectTooLarge
	}

	fee := uint64(in.SigCount) * limits.FeePerSignature

	priority := computePriority(fee, cu)

	return &TxnP{
		FirstSignature: in.FirstSignature,
		CostUnits:      cu,
		Fee:            fee,
		Priority:       priority,
		SigCount:       in.SigCount,
		WriteAccounts:  in.WriteAccounts,
		ReadAccounts:   in.ReadAccounts,
		DataBytes:      dataBytes,
		IsSimpleVote:   in.IsSimpleVote,
		SanitizeOK:     true,
		ExecuteOK:      true,
	}, InsertAcceptNonVoteAdd // placeholder; caller rewrites with vote/replace bits
}

// computePriority derives fee*priorityScale/cost using uint256 so a large
// fee never silently overflows a uint64 intermediate, matching the teacher's
// preference for fixed-width arithmetic over ad hoc overflow checks on the
// scheduling hot path.
func computePriority(fee, cost uint64) uint64 {
	if cost == 0 {
		cost = 1
	}
	f := uint256.NewInt(fee)
	f.Mul(f, uint256.NewInt(priorityScale))
	f.Div(f, uint256.NewInt(cost))
	if !f.IsUint64() {
		return ^uint64(0)
	}
	return f.Uint64()
}

// accountCount mirrors TxnP.accountCount for the pre-priced input shape.
func (in TxnInput) accountCount() int {
	return len(in.WriteAccounts) + len(in.ReadAccounts)
}

// hasDuplicateAccount reports whether any address appears more than once
// across the combined write and read sets.
func hasDuplicateAccount(writes, reads []Address) bool {
	seen := make(map[Address]struct{}, len(writes)+len(reads))
	for _, a := range writes {
		if _, ok := seen[a]; ok {
			return true
		}
		seen[a] = struct{}{}
	}
	for _, a := range reads {
		if _, ok := seen[a]; ok {
			return true
		}
		seen[a] = struct{}{}
	}
	return false
}

// comparePriority implements the strict total order on (priority,
// signature): higher priority first; ties broken by lexicographically
// lesser first signature sorting first (deterministic, not reversed).
func comparePriority(a, b *TxnP) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return lessSignature(a.FirstSignature, b.FirstSignature)
}

func lessSignature(a, b Signature) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
