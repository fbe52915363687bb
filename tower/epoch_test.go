package tower

import (
	"errors"
	"testing"

	"github.com/luxfi/validator-core/tower/ghost"
	"github.com/stretchr/testify/require"
)

func TestEpochUpdateSkipsZeroStakeButCountsItTowardTotal(t *testing.T) {
	require := require.New(t)
	staked := pubkey(2)
	zero := pubkey(3)
	acctMgr := &fakeAccountManager{accounts: []VoteAccountStake{
		{Voter: staked, Stake: 70},
		{Voter: zero, Stake: 0},
	}}
	tw := New(pubkey(1), ghost.New(0), acctMgr, &fakeBlockstore{})

	require.NoError(tw.EpochUpdate(nil))
	require.Equal(uint64(70), tw.TotalStake())
	require.Equal(uint64(70), tw.voteAccounts[staked])
	_, ok := tw.voteAccounts[zero]
	require.False(ok, "zero-stake accounts are not kept in the active set")
}

func TestEpochUpdatePropagatesAccountManagerError(t *testing.T) {
	require := require.New(t)
	wantErr := errors.New("snapshot unavailable")
	acctMgr := &fakeAccountManager{err: wantErr}
	tw := New(pubkey(1), ghost.New(0), acctMgr, &fakeBlockstore{})

	err := tw.EpochUpdate(nil)
	require.Error(err)
	require.True(errors.Is(err, wantErr))
}

func TestForkUpdateInsertsIntoGhostAndCreditsStake(t *testing.T) {
	require := require.New(t)
	voter := pubkey(2)
	acctMgr := &fakeAccountManager{
		towers: map[Pubkey]ClusterTower{
			voter: {Votes: []VoteEntry{{Slot: 10, Confirmation: 1}, {Slot: 20, Confirmation: 1}}},
		},
	}
	bs := &fakeBlockstore{parents: map[Slot]Slot{30: 0}}
	g := ghost.New(0)
	tw := New(pubkey(1), g, acctMgr, bs)
	tw.voteAccounts = map[Pubkey]uint64{voter: 55}

	require.NoError(tw.ForkUpdate(30))

	parent, ok := g.Parent(30)
	require.True(ok)
	require.Equal(Slot(0), parent)
	require.Equal(uint64(55), g.SubtreeWeight(20), "the voter's landed-vote tail (20) is credited its stake")
}

func TestForkUpdateSkipsVotersBehindRoot(t *testing.T) {
	require := require.New(t)
	voter := pubkey(2)
	acctMgr := &fakeAccountManager{
		towers: map[Pubkey]ClusterTower{
			voter: {Votes: []VoteEntry{{Slot: 1, Confirmation: 1}}},
		},
	}
	bs := &fakeBlockstore{parents: map[Slot]Slot{30: 10}}
	g := ghost.New(10)
	tw := New(pubkey(1), g, acctMgr, bs)
	tw.Init(nil, 10)
	tw.voteAccounts = map[Pubkey]uint64{voter: 55}

	require.NoError(tw.ForkUpdate(30))
	require.Equal(uint64(0), g.SubtreeWeight(1), "a landed-vote tail behind our root is never credited")
}

func TestForkUpdateErrorsWhenBlockstoreHasNoParent(t *testing.T) {
	require := require.New(t)
	tw := New(pubkey(1), ghost.New(0), &fakeAccountManager{}, &fakeBlockstore{})
	require.Error(tw.ForkUpdate(30))
}
