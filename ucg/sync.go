package ucg

import (
	"fmt"

	"github.com/Jon-Bright/mcom03clk/hwerr"
)

// SyncMode selects how SyncAndDisableBypass drives the sync register. Both
// sequences exist in shipped boot stages; which one a subsystem uses is board
// configuration.
type SyncMode int

const (
	// SyncMask writes the caller's sync mask, if any, before clearing bypass.
	SyncMask SyncMode = iota
	// SyncAccumulate ORs the channels leaving bypass into the sync register and
	// ignores the caller's sync mask.
	SyncAccumulate
)

var syncModeNames = []string{
	SyncMask:       "mask",
	SyncAccumulate: "accumulate",
}

func (m SyncMode) String() string {
	if int(m) >= 0 && int(m) < len(syncModeNames) {
		return syncModeNames[m]
	}
	return fmt.Sprintf("SyncMode(%d)", int(m))
}

// ParseSyncMode converts a configuration name to a SyncMode.
func ParseSyncMode(s string) (SyncMode, error) {
	for m, n := range syncModeNames {
		if n == s {
			return SyncMode(m), nil
		}
	}
	return SyncMask, fmt.Errorf("unknown sync mode %q: %w", s, hwerr.ErrInvalidParameter)
}

// SyncModeNames lists the names ParseSyncMode accepts.
func SyncModeNames() []string {
	return append([]string(nil), syncModeNames...)
}
