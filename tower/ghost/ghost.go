// Package ghost is a minimal in-memory implementation of the fork-weight
// tree tower.Ghost describes. It is a reference/test double, not a
// consensus-critical component: spec.md §1 lists the ghost tree as an
// out-of-scope external collaborator, referenced only through the contract
// it exposes. This package exists so tests can exercise fork selection end
// to end without a live replay stage.
package ghost

import "github.com/luxfi/validator-core/tower"

type node struct {
	slot     tower.Slot
	parent   tower.Slot
	hasParent bool
	children []tower.Slot
}

// Ghost is the in-memory fork tree: parent/child links plus per-slot
// directly-credited stake weight (from UpsertVote), with subtree weight
// computed by walking descendants.
type Ghost struct {
	nodes map[tower.Slot]*node
	root  tower.Slot

	weight     map[tower.Slot]uint64 // stake directly credited to this exact slot
	creditedBy map[tower.Pubkey]credit
}

type credit struct {
	slot   tower.Slot
	amount uint64
}

var _ tower.Ghost = (*Ghost)(nil)

// New constructs a Ghost rooted at root. root need not be inserted via
// Insert; it is always considered present.
func New(root tower.Slot) *Ghost {
	g := &Ghost{
		nodes:      make(map[tower.Slot]*node),
		root:       root,
		weight:     make(map[tower.Slot]uint64),
		creditedBy: make(map[tower.Pubkey]credit),
	}
	g.nodes[root] = &node{slot: root}
	return g
}

func (g *Ghost) Root() tower.Slot { return g.root }

// Insert records that slot's parent is parentSlot, creating stub nodes for
// either side that aren't already known (fork_update may observe a fork
// head before its parent's own parent has been inserted).
func (g *Ghost) Insert(slot, parentSlot tower.Slot) {
	p := g.ensure(parentSlot)
	n := g.ensure(slot)
	if n.hasParent && n.parent == parentSlot {
		return
	}
	n.parent = parentSlot
	n.hasParent = true
	p.children = append(p.children, slot)
}

func (g *Ghost) ensure(slot tower.Slot) *node {
	n, ok := g.nodes[slot]
	if !ok {
		n = &node{slot: slot}
		g.nodes[slot] = n
	}
	return n
}

// Parent returns slot's parent slot, or ok=false if slot is the root or
// unknown.
func (g *Ghost) Parent(slot tower.Slot) (tower.Slot, bool) {
	n, ok := g.nodes[slot]
	if !ok || !n.hasParent {
		return 0, false
	}
	return n.parent, true
}

// Children returns every known child of slot.
func (g *Ghost) Children(slot tower.Slot) []tower.Slot {
	n, ok := g.nodes[slot]
	if !ok {
		return nil
	}
	return append([]tower.Slot(nil), n.children...)
}

// Frontier returns every leaf slot -- the current candidate fork heads.
func (g *Ghost) Frontier() []tower.Slot {
	var out []tower.Slot
	for slot, n := range g.nodes {
		if len(n.children) == 0 {
			out = append(out, slot)
		}
	}
	return out
}

// IsDescendant reports whether descendant is reachable from ancestor by
// following parent links; ancestor == descendant counts as true.
func (g *Ghost) IsDescendant(ancestor, descendant tower.Slot) bool {
	slot := descendant
	for {
		if slot == ancestor {
			return true
		}
		n, ok := g.nodes[slot]
		if !ok || !n.hasParent {
			return false
		}
		slot = n.parent
	}
}

// SubtreeWeight returns the aggregated stake credited to slot and every
// descendant of slot.
func (g *Ghost) SubtreeWeight(slot tower.Slot) uint64 {
	n, ok := g.nodes[slot]
	if !ok {
		return 0
	}
	total := g.weight[slot]
	for _, c := range n.children {
		total += g.SubtreeWeight(c)
	}
	return total
}

// BestHead returns the frontier slot with the greatest subtree weight,
// ties broken toward the higher slot number for determinism.
func (g *Ghost) BestHead() tower.Slot {
	var best tower.Slot
	var bestWeight uint64
	first := true
	for _, slot := range g.Frontier() {
		w := g.SubtreeWeight(slot)
		if first || w > bestWeight || (w == bestWeight && slot > best) {
			best = slot
			bestWeight = w
			first = false
		}
	}
	return best
}

// UpsertVote credits stake to slot on behalf of voter, removing any stake
// previously credited to voter at a different slot.
func (g *Ghost) UpsertVote(voter tower.Pubkey, slot tower.Slot, stake uint64) {
	if prev, ok := g.creditedBy[voter]; ok {
		if prev.slot == slot && prev.amount == stake {
			return
		}
		g.weight[prev.slot] -= prev.amount
	}
	g.ensure(slot)
	g.weight[slot] += stake
	g.creditedBy[voter] = credit{slot: slot, amount: stake}
}
