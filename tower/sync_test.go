package tower

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// §8 round-trip property: ToTowerSync followed by FromTowerSync reproduces
// the original vote stack and root exactly.
func TestToFromTowerSyncRoundTrip(t *testing.T) {
	require := require.New(t)
	tw := newTestTower()
	tw.Init([]VoteEntry{
		{Slot: 100, Confirmation: 4},
		{Slot: 150, Confirmation: 2},
		{Slot: 160, Confirmation: 1},
	}, 90)

	sync := tw.ToTowerSync([32]byte{1, 2, 3}, 1_700_000_000)
	require.Equal(Slot(90), sync.Root)
	require.Len(sync.Lockouts, 3)

	votes, root := FromTowerSync(sync)
	require.Equal(tw.Votes(), votes)
	require.Equal(tw.Root(), root)
}

func TestToTowerSyncEmptyStack(t *testing.T) {
	require := require.New(t)
	tw := newTestTower()
	tw.Init(nil, 5)

	sync := tw.ToTowerSync([32]byte{}, 0)
	require.Empty(sync.Lockouts)
	require.Equal(Slot(5), sync.Root)

	votes, root := FromTowerSync(sync)
	require.Empty(votes)
	require.Equal(Slot(5), root)
}

func TestClusterCompare(t *testing.T) {
	require := require.New(t)
	tw := newTestTower()
	tw.Vote(10)

	require.Equal(0, tw.ClusterCompare(ClusterTower{Votes: []VoteEntry{{Slot: 10, Confirmation: 1}}}))
	require.Equal(1, tw.ClusterCompare(ClusterTower{Votes: []VoteEntry{{Slot: 5, Confirmation: 1}}}))
	require.Equal(-1, tw.ClusterCompare(ClusterTower{Votes: []VoteEntry{{Slot: 20, Confirmation: 1}}}))
}

func TestClusterSyncAdoptsNonzeroClusterState(t *testing.T) {
	require := require.New(t)
	tw := newTestTower()
	tw.Vote(10)

	cluster := ClusterTower{Votes: []VoteEntry{{Slot: 50, Confirmation: 1}}, Root: 40}
	tw.ClusterSync(cluster)

	require.Equal(cluster.Votes, tw.Votes())
	require.Equal(Slot(40), tw.Root())
}

func TestClusterSyncIgnoresZeroClusterState(t *testing.T) {
	require := require.New(t)
	tw := newTestTower()
	tw.Vote(10)
	before := append([]VoteEntry(nil), tw.Votes()...)

	tw.ClusterSync(ClusterTower{})
	require.Equal(before, tw.Votes())
}
