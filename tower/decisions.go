package tower

// LockoutCheck implements §4.8: a vote for fork H is only safe if every
// lockout that would survive the vote still covers an ancestor of H.
func (t *Tower) LockoutCheck(h Fork) bool {
	remaining := simulateRemaining(t.votes, h.Head)
	root := t.ghost.Root()
	for _, v := range remaining {
		if v.Slot <= root {
			// Ancestry against slots at or below the ghost root is assumed
			// satisfied (§4.8).
			continue
		}
		if !t.ghost.IsDescendant(v.Slot, h.Head) {
			return false
		}
	}
	return true
}

// SwitchCheck implements §4.9: switching away from the currently locked
// fork requires enough stake committed to forks that are siblings (not
// ancestors) of H, walking up to the ghost root.
func (t *Tower) SwitchCheck(h Fork) bool {
	if t.totalStake == 0 {
		return false
	}
	var siblingWeight uint64
	came := h.Head
	for {
		parent, ok := t.ghost.Parent(came)
		if !ok {
			break
		}
		for _, child := range t.ghost.Children(parent) {
			// Explicit "came from" exclusion: never re-enter the branch
			// already walked, per the design note on cyclic traversal
			// (§9) -- comparing against `came`, not pointer identity.
			if child == came {
				continue
			}
			siblingWeight += t.ghost.SubtreeWeight(child)
		}
		if parent == t.ghost.Root() {
			break
		}
		came = parent
	}
	switchPct := float64(siblingWeight) / float64(t.totalStake)
	return switchPct > SwitchPct
}

// ThresholdCheck implements §4.10: a vote for H passes threshold-check if
// the stake-weighted majority of the cluster's towers, simulated forward to
// H, still agree with our own threshold-depth vote.
func (t *Tower) ThresholdCheck(h Fork) bool {
	conceptual, depth := conceptualPostVoteStack(t.votes, h.Head)
	if depth < ThresholdDepth {
		// Stack shallower than threshold depth after simulation: passes
		// trivially (§4.10).
		return true
	}
	ourThresholdVote := conceptual[depth-ThresholdDepth]

	var tally uint64
	for voter, stake := range t.voteAccounts {
		if stake == 0 {
			continue
		}
		cluster, ok := t.acctMgr.ClusterTower(voter)
		if !ok {
			// An account-manager read failure skips this account, never
			// fatal. Nothing is logged for it.
			continue
		}
		theirConceptual, theirDepth := conceptualPostVoteStack(cluster.Votes, h.Head)
		if theirDepth < ThresholdDepth {
			continue
		}
		theirThresholdVote := theirConceptual[theirDepth-ThresholdDepth]
		if theirThresholdVote.Slot >= ourThresholdVote.Slot {
			tally += stake
		}
	}
	thresholdPct := float64(tally) / float64(t.totalStake)
	return thresholdPct > ThresholdPct
}

// conceptualPostVoteStack returns the stack that would result from voting
// at slot (the popped-and-doubled entries are irrelevant to threshold-check,
// only the resulting slot sequence matters) together with its depth,
// without mutating votes.
func conceptualPostVoteStack(votes []VoteEntry, slot Slot) ([]VoteEntry, int) {
	remaining := simulateRemaining(votes, slot)
	conceptual := make([]VoteEntry, len(remaining)+1)
	copy(conceptual, remaining)
	conceptual[len(remaining)] = VoteEntry{Slot: slot, Confirmation: 1}
	return conceptual, len(conceptual)
}
