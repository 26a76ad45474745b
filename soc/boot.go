package soc

import (
	"errors"
	"fmt"

	"github.com/Jon-Bright/mcom03clk/hwerr"
	"github.com/platinasystems/log"
)

func (b *Board) steps() map[string]func() error {
	return map[string]func() error{
		"top-clkgate":   b.TopClockGateAll,
		"wdt":           b.WatchdogMaxTimeout,
		"service":       b.ServiceSetClock,
		"top":           b.TopSetClock,
		"lsp0":          b.LSP0Enable,
		"lsp1":          b.LSP1SetClock,
		"hsp-refclk":    b.HSPRefClockSetup,
		"i2s-rstn":      b.I2SRSTNEnable,
		"debug-disable": b.DebugInterfaceDisable,
		"cpu":           b.CPUSetClock,
		"arm0": func() error {
			return b.StartARM0Core(b.cfg.TFAEntry)
		},
	}
}

// RunStep runs one named boot step. ErrAlreadyInitialized is logged, not returned.
func (b *Board) RunStep(name string) error {
	f, ok := b.steps()[name]
	if !ok {
		return fmt.Errorf("unknown boot step %q: %w", name, hwerr.ErrInvalidParameter)
	}
	start := b.clock.NowUS()
	err := f()
	if errors.Is(err, hwerr.ErrAlreadyInitialized) {
		log.Printf("notice: %v", err)
		err = nil
	}
	if err != nil {
		return fmt.Errorf("boot step %s failed: %w", name, err)
	}
	log.Printf("Boot step %s done after %dus", name, b.clock.NowUS()-start)
	return nil
}

// Boot runs the configured boot steps in order, stopping at the first failure.
func (b *Board) Boot() error {
	for _, s := range b.cfg.Boot {
		err := b.RunStep(s)
		if err != nil {
			return err
		}
	}
	log.Printf("Boot complete")
	return nil
}
