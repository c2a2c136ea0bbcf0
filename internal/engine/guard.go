package engine

import "sync/atomic"

// reentrancyGuard is a single boolean latch held for the duration of any
// value-moving operation. A call arriving while the latch is held — whether a
// nested callback from a ledger or an overlapping caller — is rejected
// instead of queued, matching the busy/free semantics of the original latch.
type reentrancyGuard struct {
	locked atomic.Bool
}

func (g *reentrancyGuard) enter() bool {
	return g.locked.CompareAndSwap(false, true)
}

func (g *reentrancyGuard) leave() {
	g.locked.Store(false)
}
