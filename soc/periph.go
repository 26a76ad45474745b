package soc

import (
	"fmt"

	"github.com/Jon-Bright/mcom03clk/mmio"
	"github.com/Jon-Bright/mcom03clk/ppolicy"
	"github.com/Jon-Bright/mcom03clk/ucg"
)

// HSPRefClockSetup selects the high speed peripherals' default reference clock.
func (b *Board) HSPRefClockSetup() error {
	b.hspURB.Write32(HSP_URB_REFCLK, 0)
	return nil
}

// I2SRSTNEnable takes the LSP1 I2S clock unit out of reset.
func (b *Board) I2SRSTNEnable() error {
	return b.SetPolicy("i2s", ppolicy.PP_ON, 0, 0)
}

// rearm takes the channels of mask through bypass, reprogramming each with its
// current divider, if any of them is running.
func (b *Board) rearm(u *ucg.Unit, mask uint32) error {
	var divs [ucg.UCG_CHANNELS]uint32
	active := false
	for ch := uint32(0); ch < ucg.UCG_CHANNELS; ch++ {
		if mask&bit(ch) == 0 {
			continue
		}
		div, enabled, err := u.State(ch)
		if err != nil {
			return err
		}
		divs[ch] = div
		active = active || enabled
	}
	if !active {
		return nil
	}
	err := u.EnableBypass(mask)
	if err != nil {
		return err
	}
	for ch := uint32(0); ch < ucg.UCG_CHANNELS; ch++ {
		if mask&bit(ch) == 0 {
			continue
		}
		err = u.SetDivider(ch, divs[ch], b.cfg.Retries)
		if err != nil {
			return err
		}
	}
	return u.SyncAndDisableBypass(mask, mask)
}

// clearField zeroes the register at off if any bit of mask is set in it.
func clearField(rf mmio.RegisterFile, off uintptr, mask uint32) {
	if rf.Read32(off)&mask != 0 {
		rf.Write32(off, 0)
	}
}

// DebugInterfaceDisable closes the debug ports: the service JTAG clocks and the HSP
// debug clock are restarted if running, and every debug enable is cleared.
func (b *Board) DebugInterfaceDisable() error {
	serv, err := b.Unit(SUBSYS_SERVICE, 0)
	if err != nil {
		return err
	}
	err = b.rearm(serv, bit(SERVICE_UCG1_BPAM)|bit(SERVICE_UCG1_RISC0_TCK))
	if err != nil {
		return fmt.Errorf("couldn't restart %s debug clocks: %w", serv, err)
	}
	clearField(b.serviceURB, SERVICE_URB_TP_DBGEN, DBG_TP_MASK)
	clearField(b.serviceURB, SERVICE_URB_SDR_DBGEN, DBG_SDR_MASK)
	clearField(b.serviceURB, SERVICE_URB_SP_DBGEN, DBG_SP_MASK)
	clearField(b.serviceURB, SERVICE_URB_S_DBGEN, DBG_S_MASK)
	clearField(b.serviceURB, SERVICE_URB_UST_DBGEN, DBG_UST_MASK)

	hsp, err := b.Unit(SUBSYS_HSP, 1)
	if err != nil {
		return err
	}
	err = b.rearm(hsp, bit(HSP_UCG1_CLK_DBG))
	if err != nil {
		return fmt.Errorf("couldn't restart %s debug clock: %w", hsp, err)
	}
	clearField(b.hspURB, HSP_URB_DBG_CTR, HSP_DBG_CTR_MASK)
	return nil
}
