package tower

// Ghost is the weighted fork-weight tree Tower queries but never owns or
// mutates directly except through ForkUpdate's insert/upsert calls -- out
// of scope per spec.md §1, expressed here as the minimal mockable contract
// this package needs, following the teacher's BlockChain interface declared
// directly alongside its consumer in core/txpool/txpool.go rather than in a
// separate package.
type Ghost interface {
	// Root returns the ghost tree's current root slot.
	Root() Slot
	// BestHead returns the single highest-weight frontier fork head.
	BestHead() Slot
	// Frontier returns every current candidate fork head.
	Frontier() []Slot
	// IsDescendant reports whether descendant is slot-wise reachable from
	// ancestor by following parent links (ancestor == descendant counts as
	// a descendant).
	IsDescendant(ancestor, descendant Slot) bool
	// Parent returns slot's parent, or ok=false if slot is the root or
	// unknown.
	Parent(slot Slot) (parent Slot, ok bool)
	// Children returns every known child of slot.
	Children(slot Slot) []Slot
	// SubtreeWeight returns the aggregated stake weight credited to slot's
	// subtree (including slot itself).
	SubtreeWeight(slot Slot) uint64
	// Insert records that slot's parent is parentSlot (fork_update).
	Insert(slot, parentSlot Slot)
	// UpsertVote credits stake to slot on behalf of voter, removing any
	// stake previously credited to voter at a different slot (fork_update).
	UpsertVote(voter Pubkey, slot Slot, stake uint64)
}

// VoteAccountStake is one (address, staked amount) pair from the current
// epoch's weighted vote set (§3's "Vote-accounts snapshot").
type VoteAccountStake struct {
	Voter Pubkey
	Stake uint64
}

// ClusterTower is a peer's tower as seen by the account manager: the
// sequence of landed votes plus its root (§3's "Cluster tower").
type ClusterTower struct {
	Votes []VoteEntry
	Root  Slot
}

// AccountManager reads vote-account state: stake snapshots for epoch_update
// and peer cluster towers for threshold_check and fork_update. Out of
// scope per spec.md §1; Tower skips an account whose read fails, never
// treating it as fatal, and does not log the failure.
type AccountManager interface {
	// VoteAccounts returns every vote account's current stake for the given
	// epoch context.
	VoteAccounts(epochCtx any) ([]VoteAccountStake, error)
	// ClusterTower returns voter's current tower, or ok=false if unknown or
	// unreadable.
	ClusterTower(voter Pubkey) (tower ClusterTower, ok bool)
}

// Blockstore resolves a slot's parent, used by fork_update to insert a new
// fork head into the ghost tree. Out of scope per spec.md §1.
type Blockstore interface {
	ParentSlot(slot Slot) (parent Slot, ok bool)
}
