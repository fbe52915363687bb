package tower

import "fmt"

// EpochUpdate rebuilds the (voter, stake) vote-account list from the
// current epoch's snapshot, skipping zero-stake accounts, and caches
// total_stake as the sum over all accounts including zero-stake ones
// (§4.12). epochCtx is opaque to Tower -- it is whatever the epoch/stake
// loader (out of scope per spec.md §1) needs to identify the snapshot.
func (t *Tower) EpochUpdate(epochCtx any) error {
	accounts, err := t.acctMgr.VoteAccounts(epochCtx)
	if err != nil {
		return fmt.Errorf("tower: epoch update: %w", err)
	}

	voteAccounts := make(map[Pubkey]uint64, len(accounts))
	var total uint64
	for _, a := range accounts {
		total += a.Stake
		if a.Stake == 0 {
			continue
		}
		voteAccounts[a.Voter] = a.Stake
	}
	t.voteAccounts = voteAccounts
	t.totalStake = total
	return nil
}

// ForkUpdate inserts forkHead into the ghost tree via its blockstore parent
// and, for every staked vote account whose landed-vote tail is at or past
// our root, credits that account's stake to the tail slot in ghost
// (§4.12).
func (t *Tower) ForkUpdate(forkHead Slot) error {
	parent, ok := t.blockstore.ParentSlot(forkHead)
	if !ok {
		return fmt.Errorf("tower: fork update: no parent for slot %d in blockstore", forkHead)
	}
	t.ghost.Insert(forkHead, parent)

	for voter, stake := range t.voteAccounts {
		cluster, ok := t.acctMgr.ClusterTower(voter)
		if !ok || len(cluster.Votes) == 0 {
			continue
		}
		tail := cluster.Votes[len(cluster.Votes)-1]
		if tail.Slot < t.root {
			continue
		}
		t.ghost.UpsertVote(voter, tail.Slot, stake)
	}
	return nil
}
