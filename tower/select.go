package tower

// isStale reports whether our latest vote is behind the ghost root --
// meaning our lockout state is no longer relevant to the current frontier
// (the "is_stale" check used by reset_fork_select and vote_fork_select).
func (t *Tower) isStale() bool {
	latest, ok := t.LatestVoteSlot()
	if !ok {
		return true
	}
	return latest < t.ghost.Root()
}

// findFork returns the Fork in forks whose head equals slot, or ok=false.
func findFork(forks []Fork, slot Slot) (Fork, bool) {
	for _, f := range forks {
		if f.Head == slot {
			return f, true
		}
	}
	return Fork{}, false
}

// BestForkSelect returns the fork whose head is the ghost's single
// highest-weight frontier head (§4.11). It is a FatalError for that head to
// be missing from the candidate forks or the ghost's own frontier -- a
// corrupted fork-store/ghost relationship, not a recoverable condition.
func (t *Tower) BestForkSelect(forks []Fork) (Fork, error) {
	head := t.ghost.BestHead()
	inFrontier := false
	for _, s := range t.ghost.Frontier() {
		if s == head {
			inFrontier = true
			break
		}
	}
	if !inFrontier {
		return Fork{}, fatalf("ghost best head %d is not in the current frontier", head)
	}
	f, ok := findFork(forks, head)
	if !ok {
		return Fork{}, fatalf("ghost best head %d has no matching candidate fork", head)
	}
	return f, nil
}

// ResetForkSelect picks the fork the validator should build its next block
// on top of (§4.11). If the tower is empty or stale, that is always
// best_fork. Otherwise it is any frontier fork descending from the latest
// vote, preferring best_fork when it qualifies. ErrNoDescendantFork
// (wrapped in FatalError) is returned if no frontier fork qualifies, per
// §9's "fail loudly, recovery as future work" open question.
func (t *Tower) ResetForkSelect(forks []Fork) (Fork, error) {
	best, err := t.BestForkSelect(forks)
	if err != nil {
		return Fork{}, err
	}
	if t.Empty() || t.isStale() {
		return best, nil
	}

	latest, _ := t.LatestVoteSlot()
	if t.ghost.IsDescendant(latest, best.Head) {
		return best, nil
	}
	for _, f := range forks {
		if t.ghost.IsDescendant(latest, f.Head) {
			return f, nil
		}
	}
	return Fork{}, wrapFatal("none of the frontier forks matched our last vote fork", ErrNoDescendantFork)
}

// VoteForkSelect decides which fork, if any, to vote on (§4.11). An empty
// or stale tower always votes best_fork. Otherwise: if best_fork extends
// our latest vote, vote it iff threshold-check passes; if best_fork is on a
// different fork entirely, vote it iff both lockout-check and switch-check
// pass. ok is false when no vote should be cast this round.
func (t *Tower) VoteForkSelect(forks []Fork) (fork Fork, ok bool, err error) {
	best, err := t.BestForkSelect(forks)
	if err != nil {
		return Fork{}, false, err
	}
	if t.Empty() || t.isStale() {
		return best, true, nil
	}

	latest, _ := t.LatestVoteSlot()
	if t.ghost.IsDescendant(latest, best.Head) {
		if t.ThresholdCheck(best) {
			return best, true, nil
		}
		return Fork{}, false, nil
	}

	if t.LockoutCheck(best) && t.SwitchCheck(best) {
		return best, true, nil
	}
	return Fork{}, false, nil
}
