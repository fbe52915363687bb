// Package tower implements the Tower-BFT lockout state machine: a bounded
// vote stack with doubling-confirmation lockouts, the lockout/switch/
// threshold safety checks, and fork selection built on top of them.
package tower

import (
	"errors"
	"fmt"
)

// Slot identifies a position in the replayed chain.
type Slot = uint64

// Pubkey is a vote account's identity, a 32-byte key distinct from pack's
// 20-byte account addresses -- Tower and Pack are independently scoped
// subsystems that only communicate through the fork each decides to extend,
// never through a shared identifier type.
type Pubkey [32]byte

// String returns the hex representation of the key.
func (k Pubkey) String() string {
	return fmt.Sprintf("%x", k[:])
}

// VoteEntry is one lockout on the tower's stack: a voted slot together with
// its confirmation count. Lockout expires once a proposed new vote's slot
// exceeds slot + 2^confirmation (§4.7).
type VoteEntry struct {
	Slot          Slot
	Confirmation  uint8
}

// lockoutExpirationSlot returns the slot at which this vote's lockout
// expires: any proposed vote strictly greater than this value is no longer
// blocked by this entry.
func (v VoteEntry) lockoutExpirationSlot() Slot {
	return v.Slot + (1 << v.Confirmation)
}

// Fork is a candidate fork head as Tower sees it: the tip slot of a
// replayed chain. Forks are supplied by the caller (the out-of-scope fork
// store collaborator), never discovered by Tower itself.
type Fork struct {
	Head Slot
}

// Tower BFT constants (§6.3).
const (
	// ThresholdDepth is the stack depth counted back from the top whose
	// vote must be confirmed by cluster supermajority (threshold-check).
	ThresholdDepth = 8
	// ThresholdPct is the fraction of stake that must agree with our
	// threshold-depth vote for a new vote to pass threshold-check.
	ThresholdPct = 2.0 / 3.0
	// SwitchPct is the fraction of stake that must be on sibling forks for
	// a switch away from the latest-voted fork to be permitted.
	SwitchPct = 0.38

	// ShallowThresholdDepth and ShallowThresholdPct are carried from the
	// external interface constants but have no corresponding operation in
	// this subsystem's component design (§4.8-4.10 define only lockout,
	// switch, and threshold checks) -- see DESIGN.md.
	ShallowThresholdDepth = 4
	ShallowThresholdPct   = 0.38
)

// FatalError marks an invariant violation Tower cannot recover from on its
// own -- a corrupted ghost/frontier relationship, or no frontier fork
// descending from the latest vote. Library code never calls os.Exit;
// FatalError lets the embedding validator decide how to fail loudly, per
// §7 ("Fatal conditions ... terminate the process with a diagnostic" is the
// caller's responsibility, not this package's).
type FatalError struct {
	msg     string
	wrapped error
}

func (e *FatalError) Error() string { return e.msg }
func (e *FatalError) Unwrap() error { return e.wrapped }

func fatalf(format string, args ...any) error {
	return &FatalError{msg: fmt.Sprintf(format, args...)}
}

// wrapFatal builds a FatalError whose message is msg and whose Unwrap
// target is cause, so callers can errors.Is against a stable sentinel
// (e.g. ErrNoDescendantFork) while still reading a human message.
func wrapFatal(msg string, cause error) error {
	return &FatalError{msg: msg, wrapped: cause}
}

// ErrNoDescendantFork is the sentinel wrapped by the FatalError
// reset_fork_select raises when no frontier fork descends from the latest
// vote (§4.11, §9's open question: "fail loudly ... treat recovery as
// future work").
var ErrNoDescendantFork = errors.New("tower: no frontier fork descends from the latest vote")
