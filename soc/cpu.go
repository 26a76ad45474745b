package soc

import (
	"github.com/Jon-Bright/mcom03clk/ppolicy"
	"github.com/platinasystems/log"
)

func rvbaddr(core uintptr) uintptr {
	return CPU_URB_RVBADDR + core*8
}

// StartARM0Core powers the A53 cluster and releases core 0 at entry. Every core's
// reset vector is set to entry, but only core 0 is powered.
func (b *Board) StartARM0Core(entry uint64) error {
	err := b.SetPolicy("a53sys", ppolicy.PP_ON, 0, 0)
	if err != nil {
		return err
	}
	for i := uintptr(0); i < CPU_CORE_MAX_NUMBER; i++ {
		b.cpuURB.Write32(rvbaddr(i), uint32(entry>>32))
		b.cpuURB.Write32(rvbaddr(i)+4, uint32(entry))
	}
	err = b.SetPolicy("core0", ppolicy.PP_ON, 0, 0)
	if err != nil {
		return err
	}
	log.Printf("ARM core 0 started at %#x", entry)
	return nil
}
