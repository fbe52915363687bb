package pack

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeCostRejectsDuplicateAccount(t *testing.T) {
	require := require.New(t)
	dup := addr(1)
	in := TxnInput{
		FirstSignature: sig(1),
		SigCount:       1,
		WriteAccounts:  []Address{dup},
		ReadAccounts:   []Address{dup},
	}
	txn, reject := ComputeCost(in, DefaultLimits(), nil)
	require.Nil(txn)
	require.Equal(InsertRejectDuplicateAcct, reject)
}

func TestComputeCostRejectsAddressLUT(t *testing.T) {
	require := require.New(t)
	in := TxnInput{
		FirstSignature: sig(1),
		SigCount:       1,
		WriteAccounts:  []Address{addr(1)},
		UsesAddressLUT: true,
	}
	txn, reject := ComputeCost(in, DefaultLimits(), nil)
	require.Nil(txn)
	require.Equal(InsertRejectAddrLUT, reject)
}

func TestComputeCostRejectsMalformedComputeBudget(t *testing.T) {
	require := require.New(t)
	in := TxnInput{
		FirstSignature: sig(1),
		SigCount:       1,
		WriteAccounts:  []Address{addr(1)},
		ComputeBudget:  ComputeBudgetInput{Malformed: true},
	}
	txn, reject := ComputeCost(in, DefaultLimits(), nil)
	require.Nil(txn)
	require.Equal(InsertRejectEstimationFail, reject)
}

func TestComputeCostRejectsOverBlockCeiling(t *testing.T) {
	require := require.New(t)
	limits := DefaultLimits()
	limits.MaxCostPerBlock = 100
	in := TxnInput{
		FirstSignature: sig(1),
		SigCount:       1,
		WriteAccounts:  []Address{addr(1)},
	}
	txn, reject := ComputeCost(in, limits, nil)
	require.Nil(txn)
	require.Equal(InsertRejectTooLarge, reject)
}

func TestComputeCostPricesAffordableTxn(t *testing.T) {
	require := require.New(t)
	in := TxnInput{
		FirstSignature: sig(1),
		SigCount:       2,
		WriteAccounts:  []Address{addr(1), addr(2)},
		ComputeBudget:  ComputeBudgetInput{Present: true, ComputeUnitLimit: 1000},
	}
	txn, _ := ComputeCost(in, DefaultLimits(), nil)
	require.NotNil(txn)
	require.Equal(uint64(2)*720+costPerInstructionBase+2*costPerWriteLockAccount+1000, txn.CostUnits)
	require.Equal(uint64(2)*DefaultLimits().FeePerSignature, txn.Fee)
	require.True(txn.SanitizeOK)
	require.True(txn.ExecuteOK)
}

func TestComparePriorityOrdersByFeePerCostThenSignature(t *testing.T) {
	require := require.New(t)
	cheap := &TxnP{Priority: computePriority(5000, 1000), FirstSignature: sig(9)}
	expensive := &TxnP{Priority: computePriority(5000, 5000), FirstSignature: sig(1)}
	require.True(comparePriority(cheap, expensive))
	require.False(comparePriority(expensive, cheap))

	// Equal priority: lexicographically lesser signature sorts first.
	tie1 := &TxnP{Priority: 100, FirstSignature: sig(1)}
	tie2 := &TxnP{Priority: 100, FirstSignature: sig(2)}
	require.True(comparePriority(tie1, tie2))
	require.False(comparePriority(tie2, tie1))
}

func TestComputePriorityHandlesZeroCost(t *testing.T) {
	require := require.New(t)
	require.NotPanics(func() {
		p := computePriority(100, 0)
		require.Equal(uint64(100)*priorityScale, p)
	})
}
