// Package pll programs the MCom-03 PLL control word and reads back its output frequency.
//
// Control word layout:
//
//	bits 7:0   SEL   multiplier select (select mode)
//	bit  9     MAN   manual mode
//	bits 13:10 OD    output divider - 1
//	bits 26:14 NF    feedback multiplier - 1
//	bits 30:27 NR    reference divider - 1
//	bit  31    LOCK  set by hardware once the loop has locked
package pll

import (
	"fmt"

	"github.com/Jon-Bright/mcom03clk/hwerr"
	"github.com/Jon-Bright/mcom03clk/mmio"
	"github.com/Jon-Bright/mcom03clk/poll"
)

const (
	PLL_SEL_MASK = 0xff
	PLL_MAN      = 1 << 9
	PLL_LOCK     = 1 << 31

	// Select values from PLL_SEL_SAT upwards all give PLL_MULT_MAX.
	PLL_SEL_SAT  = 0x73
	PLL_MULT_MAX = 116
)

func pllOD(val uint32) uint32 {
	return (val & 0xf) << 10
}

func pllNF(val uint32) uint32 {
	return (val & 0x1fff) << 14
}

func pllNR(val uint32) uint32 {
	return (val & 0xf) << 27
}

// Config is a manual mode setting. InpFreq and OutFreq are in Hz.
type Config struct {
	OD      uint32
	NF      uint32
	NR      uint32
	InpFreq uint32
	OutFreq uint32
}

func (c *Config) String() string {
	return fmt.Sprintf("od %d nf %d nr %d (%d Hz -> %d Hz)", c.OD, c.NF, c.NR, c.InpFreq, c.OutFreq)
}

// SetManualFreq switches the PLL at rf to manual mode with cfg's dividers in a single
// store, then waits for LOCK. maxRetries of 0 waits forever.
func SetManualFreq(rf mmio.RegisterFile, cfg *Config, maxRetries uint32) error {
	if rf == nil || cfg == nil {
		return fmt.Errorf("pll set: %w", hwerr.ErrNullArgument)
	}
	rf.Write32(0, 1|PLL_MAN|pllOD(cfg.OD)|pllNF(cfg.NF)|pllNR(cfg.NR))
	err := poll.Retry(maxRetries, func() bool {
		return rf.Read32(0)&PLL_LOCK != 0
	})
	if err != nil {
		return fmt.Errorf("pll didn't lock with od %d nf %d nr %d: %w", cfg.OD, cfg.NF, cfg.NR, err)
	}
	return nil
}

// mult decodes the multiplier from a control word. Manual mode divides stepwise,
// truncating after each division.
func mult(reg uint32) uint32 {
	if reg&PLL_MAN == 0 {
		sel := reg & PLL_SEL_MASK
		if sel >= PLL_SEL_SAT {
			return PLL_MULT_MAX
		}
		return sel + 1
	}
	od := (reg >> 10) & 0xf
	nf := (reg >> 14) & 0x1fff
	nr := (reg >> 27) & 0xf
	return (nf + 1) / (nr + 1) / (od + 1)
}

// GetMult returns the PLL's current multiplier.
func GetMult(rf mmio.RegisterFile) (uint32, error) {
	if rf == nil {
		return 0, fmt.Errorf("pll mult: %w", hwerr.ErrNullArgument)
	}
	return mult(rf.Read32(0)), nil
}

// GetFreq sets cfg.OutFreq from cfg.InpFreq and the PLL's current multiplier. In manual
// mode, cfg's dividers are filled in from the hardware too.
func GetFreq(rf mmio.RegisterFile, cfg *Config) error {
	if rf == nil || cfg == nil {
		return fmt.Errorf("pll get: %w", hwerr.ErrNullArgument)
	}
	reg := rf.Read32(0)
	if reg&PLL_MAN != 0 {
		cfg.OD = (reg >> 10) & 0xf
		cfg.NF = (reg >> 14) & 0x1fff
		cfg.NR = (reg >> 27) & 0xf
	}
	cfg.OutFreq = cfg.InpFreq * mult(reg)
	return nil
}
