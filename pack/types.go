// Package pack implements the transaction-scheduling pipeline: admission
// control, priority ordering, account-conflict detection, cost accounting
// against consensus-critical block budgets, and microblock assembly.
package pack

import (
	"fmt"

	"github.com/luxfi/geth/common"
)

// Address is a 20-byte account handle, matching go-ethereum's common.Address
// layout since the cost model and conflict graph key everything off it.
type Address = common.Address

// Signature is the first signature of a transaction, used as its identity
// key for dedup and delete_transaction lookups. Fixed-size, no dependency on
// any other package in this module, following the ids package's
// no-import-cycle convention for handle types.
type Signature [64]byte

// String returns the hex representation of the signature.
func (s Signature) String() string {
	return fmt.Sprintf("%x", s[:])
}

// slotHandle is the internal pool index identifying a resident transaction.
// It is never exposed outside pack/; callers only ever see a Signature or an
// InsertResult.
type slotHandle int32

const invalidHandle slotHandle = -1

// maxAccountsPerTxn is the hard cap on declared accounts per transaction
// (spec: "Maximum 64 accounts per transaction; duplicates ... are a hard
// reject").
const maxAccountsPerTxn = 64

// TxnP is a parsed transaction plus its computed scheduling metadata. The
// name mirrors the "txn_p" payload of the system this package reimplements:
// a pool-resident record, not the raw wire transaction.
type TxnP struct {
	FirstSignature Signature

	// CostUnits is the total computed scheduling cost, see cost.go.
	CostUnits uint64
	// Fee is signatures * FeePerSignature, in the same units as CostUnits.
	Fee uint64
	// Priority is fee*priorityScale/cost with a deterministic tie-break on
	// FirstSignature; higher sorts first.
	Priority uint64
	SigCount uint8

	// WriteAccounts and ReadAccounts are disjoint by construction: an
	// address declared as both is a cost-model reject (duplicate account).
	WriteAccounts []Address
	ReadAccounts  []Address

	// DataBytes is the loaded transaction size, counted against the
	// per-block data-bytes budget.
	DataBytes uint32

	ExpiresAt int64

	IsSimpleVote bool
	SanitizeOK   bool
	ExecuteOK    bool
}

// accountCount returns the number of distinct accounts this transaction
// touches, used against maxAccountsPerTxn.
func (t *TxnP) accountCount() int {
	return len(t.WriteAccounts) + len(t.ReadAccounts)
}
