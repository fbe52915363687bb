package tower

// Tower is the local lockout state machine: a bounded vote stack plus the
// cached committed root and total stake needed to evaluate the safety
// checks in decisions.go. All operations are synchronous, non-blocking, and
// run on a single goroutine (§5) -- Tower carries no internal locking.
type Tower struct {
	identity Pubkey

	// votes is the stack, bottom-to-top: Slot strictly increasing,
	// Confirmation strictly decreasing, by §3's invariant.
	votes []VoteEntry
	root  Slot

	voteAccounts map[Pubkey]uint64 // non-zero-stake only, per epoch_update
	totalStake   uint64            // sum over ALL accounts, including zero-stake

	// Collaborators (§1 "out of scope, referenced only by the contracts
	// they expose"), wired once at construction and held for the tower's
	// lifetime rather than threaded through every call.
	ghost      Ghost
	acctMgr    AccountManager
	blockstore Blockstore
}

// New constructs an empty Tower for the given local vote account identity,
// wired to its external collaborators.
func New(identity Pubkey, ghost Ghost, acctMgr AccountManager, blockstore Blockstore) *Tower {
	return &Tower{
		identity:     identity,
		voteAccounts: make(map[Pubkey]uint64),
		ghost:        ghost,
		acctMgr:      acctMgr,
		blockstore:   blockstore,
	}
}

// Init seeds the tower from a prior persisted state (landed votes plus
// root), e.g. on validator restart. Equivalent to the external interface's
// init(vote_acc, ...).
func (t *Tower) Init(votes []VoteEntry, root Slot) {
	t.votes = append([]VoteEntry(nil), votes...)
	t.root = root
}

// Root returns the committed root slot.
func (t *Tower) Root() Slot { return t.root }

// TotalStake returns the cached total stake from the last epoch_update.
func (t *Tower) TotalStake() uint64 { return t.totalStake }

// Identity returns this tower's local vote account.
func (t *Tower) Identity() Pubkey { return t.identity }

// Empty reports whether the tower has no votes yet.
func (t *Tower) Empty() bool { return len(t.votes) == 0 }

// LatestVoteSlot returns the top of stack, or ok=false if the tower is
// empty.
func (t *Tower) LatestVoteSlot() (Slot, bool) {
	if len(t.votes) == 0 {
		return 0, false
	}
	return t.votes[len(t.votes)-1].Slot, true
}

// Votes returns the current stack, bottom-to-top. The returned slice must
// not be mutated by the caller.
func (t *Tower) Votes() []VoteEntry { return t.votes }

// simulateRemaining returns the stack that would remain after popping every
// entry whose lockout has expired against a proposed vote at slot, without
// mutating t (§4.7's simulate_vote, "pop from top while expired").
func simulateRemaining(votes []VoteEntry, slot Slot) []VoteEntry {
	n := len(votes)
	for n > 0 && votes[n-1].lockoutExpirationSlot() < slot {
		n--
	}
	return votes[:n]
}

// SimulateVote returns the post-vote depth a vote at slot would produce,
// without mutating the tower.
func (t *Tower) SimulateVote(slot Slot) int {
	return len(simulateRemaining(t.votes, slot)) + 1
}

// Vote applies a vote at slot: pops every lockout-expired entry, doubles
// the confirmation count of every entry "packed" against the new vote from
// the top down, then pushes (slot, 1). A vote at the current top slot is a
// no-op (§4.7).
func (t *Tower) Vote(slot Slot) {
	if top, ok := t.LatestVoteSlot(); ok && slot == top {
		return
	}

	remaining := simulateRemaining(t.votes, slot)
	t.votes = append([]VoteEntry(nil), remaining...)

	// Doubling walk: compare each entry's original confirmation count
	// (top-down) against the expected packed value before mutating it, so
	// a later comparison never sees an already-doubled count.
	prevConf := 0
	for i := len(t.votes) - 1; i >= 0; i-- {
		prevConf++
		if int(t.votes[i].Confirmation) != prevConf {
			break
		}
		t.votes[i].Confirmation++
	}

	t.votes = append(t.votes, VoteEntry{Slot: slot, Confirmation: 1})
}
