package soc

import (
	"fmt"

	"github.com/Jon-Bright/mcom03clk/hwerr"
)

// WatchdogMaxTimeout stretches WDT0 to its longest timeout if something before us
// enabled it, since it can't be disabled again. It then restarts the counter and
// returns ErrAlreadyInitialized, which callers treat as informational.
func (b *Board) WatchdogMaxTimeout() error {
	if b.wdt.Read32(WDT_CR)&WDT_CR_EN == 0 {
		return nil
	}
	b.wdt.Write32(WDT_TORR, WDT_TORR_MAX)
	b.wdt.Write32(WDT_CRR, WDT_CRR_KICK)
	return fmt.Errorf("WDT0 is already enabled: %w", hwerr.ErrAlreadyInitialized)
}
