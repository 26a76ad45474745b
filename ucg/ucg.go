// Package ucg drives MCom-03 unified clock gate units. A unit has up to 16
// channels, each with its own control register, plus a shared bypass register
// and a shared sync register.
package ucg

import (
	"fmt"

	"github.com/Jon-Bright/mcom03clk/hwerr"
	"github.com/Jon-Bright/mcom03clk/mmio"
	"github.com/Jon-Bright/mcom03clk/poll"
)

const (
	UCG_CHANNELS    = 16
	UCG_MAX_CHANNEL = UCG_CHANNELS - 1

	UCG_BP_CTR   = 0x40
	UCG_SYNC_CLK = 0x44

	UCG_CTR_LPI_EN   = 1 << 0
	UCG_CTR_CLK_EN   = 1 << 1
	UCG_CTR_DIV_LOCK = 1 << 30

	UCG_DIV_MASK = 0xfffff
)

// FSM is the state a channel's hardware state machine reports in CTR bits 9:7.
type FSM uint32

const (
	FSM_STOPPED  FSM = 0
	FSM_CLK_EN   FSM = 1
	FSM_REQUEST  FSM = 2
	FSM_DENIED   FSM = 3
	FSM_EXIT     FSM = 4
	FSM_RUN      FSM = 6
	FSM_CONTINUE FSM = 7
)

var fsmNames = map[FSM]string{
	FSM_STOPPED:  "STOPPED",
	FSM_CLK_EN:   "CLK_EN",
	FSM_REQUEST:  "REQUEST",
	FSM_DENIED:   "DENIED",
	FSM_EXIT:     "EXIT",
	FSM_RUN:      "RUN",
	FSM_CONTINUE: "CONTINUE",
}

func (s FSM) String() string {
	if n, ok := fsmNames[s]; ok {
		return n
	}
	return fmt.Sprintf("FSM(%d)", uint32(s))
}

func ctrOff(ch uint32) uintptr {
	return uintptr(ch) * 4
}

func ctrFSM(ctr uint32) FSM {
	return FSM((ctr >> 7) & 0x7)
}

func ctrDiv(ctr uint32) uint32 {
	return (ctr >> 10) & UCG_DIV_MASK
}

func ucgDiv(div uint32) uint32 {
	return (div & UCG_DIV_MASK) << 10
}

// Unit is one clock gate unit.
type Unit struct {
	name string
	rf   mmio.RegisterFile
	sync SyncMode
}

// New returns the unit whose registers start at offset 0 of rf. name is only used in errors.
func New(name string, rf mmio.RegisterFile, sync SyncMode) *Unit {
	return &Unit{
		name: name,
		rf:   rf,
		sync: sync,
	}
}

func (u *Unit) String() string {
	return u.name
}

// Sync returns the unit's sync-and-disable variant.
func (u *Unit) Sync() SyncMode {
	return u.sync
}

func (u *Unit) check() error {
	if u == nil || u.rf == nil {
		return fmt.Errorf("ucg: %w", hwerr.ErrNullArgument)
	}
	return nil
}

func (u *Unit) checkChannel(ch uint32) error {
	err := u.check()
	if err != nil {
		return err
	}
	if ch > UCG_MAX_CHANNEL {
		return fmt.Errorf("%s channel %d: %w", u.name, ch, hwerr.ErrInvalidParameter)
	}
	return nil
}

func (u *Unit) checkMask(mask uint32) error {
	err := u.check()
	if err != nil {
		return err
	}
	if mask == 0 || mask>>UCG_CHANNELS != 0 {
		return fmt.Errorf("%s channel mask %X: %w", u.name, mask, hwerr.ErrInvalidParameter)
	}
	return nil
}

// EnableBypass puts every channel in mask that is currently RUN into bypass.
// Channels in any other state are left alone.
func (u *Unit) EnableBypass(mask uint32) error {
	err := u.checkMask(mask)
	if err != nil {
		return err
	}
	bp := u.rf.Read32(UCG_BP_CTR)
	for ch := uint32(0); ch < UCG_CHANNELS; ch++ {
		if mask&(1<<ch) == 0 {
			continue
		}
		if ctrFSM(u.rf.Read32(ctrOff(ch))) == FSM_RUN {
			bp |= 1 << ch
		}
	}
	u.rf.Write32(UCG_BP_CTR, bp)
	return nil
}

// SetDivider programs ch to divide by div and (re)enables it. A changed divider is
// stored on its own and must lock before the channel is enabled; the channel must
// then reach RUN. Both waits draw on the same maxRetries, and 0 waits forever.
func (u *Unit) SetDivider(ch, div, maxRetries uint32) error {
	err := u.checkChannel(ch)
	if err != nil {
		return err
	}
	off := ctrOff(ch)
	b := poll.NewBudget(maxRetries)
	if ctrDiv(u.rf.Read32(off)) != div {
		u.rf.Write32(off, ucgDiv(div))
		err = b.Until(func() bool {
			return u.rf.Read32(off)&UCG_CTR_DIV_LOCK != 0
		})
		if err != nil {
			return fmt.Errorf("%s channel %d divider %d didn't lock: %w", u.name, ch, div, err)
		}
	}
	ctr := u.rf.Read32(off)
	ctr |= UCG_CTR_CLK_EN
	ctr &^= UCG_CTR_LPI_EN
	u.rf.Write32(off, ctr)
	err = b.Until(func() bool {
		return ctrFSM(u.rf.Read32(off)) == FSM_RUN
	})
	if err != nil {
		return fmt.Errorf("%s channel %d didn't reach RUN: %w", u.name, ch, err)
	}
	return nil
}

// SyncAndDisableBypass takes the channels in mask out of bypass, pulsing the
// sync register as the unit's SyncMode says.
func (u *Unit) SyncAndDisableBypass(mask, syncMask uint32) error {
	err := u.checkMask(mask)
	if err != nil {
		return err
	}
	bp := u.rf.Read32(UCG_BP_CTR)
	clear := bp & mask
	switch u.sync {
	case SyncAccumulate:
		u.rf.Write32(UCG_SYNC_CLK, u.rf.Read32(UCG_SYNC_CLK)|clear)
	default:
		if syncMask != 0 {
			u.rf.Write32(UCG_SYNC_CLK, syncMask)
		}
	}
	u.rf.Write32(UCG_BP_CTR, bp&^clear)
	return nil
}

// State returns ch's raw divider field and whether it's enabled and running.
func (u *Unit) State(ch uint32) (uint32, bool, error) {
	err := u.checkChannel(ch)
	if err != nil {
		return 0, false, err
	}
	ctr := u.rf.Read32(ctrOff(ch))
	enabled := ctr&UCG_CTR_CLK_EN != 0 && ctrFSM(ctr) == FSM_RUN
	return ctrDiv(ctr), enabled, nil
}

// FSM returns ch's current state machine value.
func (u *Unit) FSM(ch uint32) (FSM, error) {
	err := u.checkChannel(ch)
	if err != nil {
		return 0, err
	}
	return ctrFSM(u.rf.Read32(ctrOff(ch))), nil
}

// Divider returns ch's divider. A stored 0 divides by 1.
func (u *Unit) Divider(ch uint32) (uint32, error) {
	err := u.checkChannel(ch)
	if err != nil {
		return 0, err
	}
	div := ctrDiv(u.rf.Read32(ctrOff(ch)))
	if div == 0 {
		div = 1
	}
	return div, nil
}
