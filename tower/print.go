package tower

import (
	"fmt"
	"strings"
)

// String renders a radix-aligned table of the vote stack, top to bottom,
// one (slot, confirmation count) row per line, supplementing fd_tower.c's
// fd_tower_print debug dump. It is a diagnostic aid, never called on a
// scheduling hot path.
func (t *Tower) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "root=%d total_stake=%d\n", t.root, t.totalStake)
	fmt.Fprintf(&b, "%10s | %s\n", "slot", "conf")
	for i := len(t.votes) - 1; i >= 0; i-- {
		v := t.votes[i]
		fmt.Fprintf(&b, "%10d | %d\n", v.Slot, v.Confirmation)
	}
	return b.String()
}
