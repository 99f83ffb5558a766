package process

// Notes:
// - Only PIDs that cannot belong to a live process are used. Real group kills
//   are exercised by the snapshot integration tests when the browser closes.
// These are acceptable gaps: we test observable behavior, not syscall internals.

import "testing"

// ---------------------------------------------------------------------------
// TestKillProcessGroup - Harmless PIDs
// ---------------------------------------------------------------------------

func TestKillProcessGroup(t *testing.T) {
	t.Parallel()

	// 0 and negative values are ignored: -0 would address our own group.
	for _, pid := range []int{0, -1, 999999999} {
		KillProcessGroup(pid)
	}
}
