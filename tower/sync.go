package tower

// ClusterCompare compares this tower's latest vote slot against a peer
// cluster tower's latest landed vote slot, returning -1, 0, or 1 as this
// tower's vote is behind, equal to, or ahead of the cluster's (mirrors Go's
// Compare convention, e.g. time.Compare). Supplemented from
// fd_tower_cluster_cmp: spec.md's cluster_sync only describes replacing
// local state, not the comparison needed to decide whether a resync is
// warranted in the first place.
func (t *Tower) ClusterCompare(cluster ClusterTower) int {
	local, _ := t.LatestVoteSlot()
	var clusterLatest Slot
	if n := len(cluster.Votes); n > 0 {
		clusterLatest = cluster.Votes[n-1].Slot
	}
	switch {
	case local < clusterLatest:
		return -1
	case local > clusterLatest:
		return 1
	default:
		return 0
	}
}

// ClusterSync replaces this tower's local vote stack and root with a peer
// cluster tower's, but only if the cluster's latest landed vote slot is
// nonzero (i.e. the cluster tower actually has votes to adopt) -- used
// after a restart to recover local state from the broader cluster's view.
func (t *Tower) ClusterSync(cluster ClusterTower) {
	if n := len(cluster.Votes); n == 0 || cluster.Votes[n-1].Slot == 0 {
		return
	}
	t.votes = append([]VoteEntry(nil), cluster.Votes...)
	t.root = cluster.Root
}

// LockoutWire is one entry of a TowerSync's wire-form lockout list: the
// slot delta from the previous entry (root-relative for the first entry)
// plus the confirmation count, matching the wire encoding fd_tower.c's
// fd_tower_to_tower_sync produces.
type LockoutWire struct {
	OffsetFromPrevSlot uint64
	ConfirmationCount  uint8
}

// TowerSync is the wire form of a tower broadcast to the cluster: root,
// a caller-supplied timestamp, the bank hash being voted on, and the vote
// stack delta-encoded as LockoutWire entries.
type TowerSync struct {
	Root      Slot
	Timestamp int64
	BankHash  [32]byte
	Lockouts  []LockoutWire
}

// ToTowerSync serializes the current vote stack into wire form (§6.3).
func (t *Tower) ToTowerSync(bankHash [32]byte, timestamp int64) TowerSync {
	out := TowerSync{
		Root:      t.root,
		Timestamp: timestamp,
		BankHash:  bankHash,
		Lockouts:  make([]LockoutWire, len(t.votes)),
	}
	prev := t.root
	for i, v := range t.votes {
		out.Lockouts[i] = LockoutWire{
			OffsetFromPrevSlot: v.Slot - prev,
			ConfirmationCount:  v.Confirmation,
		}
		prev = v.Slot
	}
	return out
}

// FromTowerSync reconstructs a vote stack from its wire form, the inverse
// of ToTowerSync, used by the round-trip property in §8.
func FromTowerSync(sync TowerSync) (votes []VoteEntry, root Slot) {
	root = sync.Root
	votes = make([]VoteEntry, len(sync.Lockouts))
	prev := root
	for i, lw := range sync.Lockouts {
		slot := prev + lw.OffsetFromPrevSlot
		votes[i] = VoteEntry{Slot: slot, Confirmation: lw.ConfirmationCount}
		prev = slot
	}
	return votes, root
}
