// Package ppolicy moves MCom-03 power domains between power policies. The
// interconnect clocks feeding a domain are held in UCG bypass while its
// power state changes.
package ppolicy

import (
	"fmt"

	"github.com/Jon-Bright/mcom03clk/hwerr"
	"github.com/Jon-Bright/mcom03clk/mmio"
	"github.com/Jon-Bright/mcom03clk/poll"
	"github.com/Jon-Bright/mcom03clk/ucg"
	"github.com/platinasystems/log"
)

// Policy is a 5-bit power policy code.
type Policy uint32

const (
	PP_OFF        Policy = 0x01
	PP_WARM_RESET Policy = 0x08
	PP_ON         Policy = 0x10
	PP_MASK              = 0x1f

	// The status register follows the policy register.
	PP_STATUS = 0x4
)

var policyNames = map[Policy]string{
	PP_OFF:        "OFF",
	PP_WARM_RESET: "WARM_RESET",
	PP_ON:         "ON",
}

func (p Policy) String() string {
	if n, ok := policyNames[p]; ok {
		return n
	}
	return fmt.Sprintf("Policy(%02X)", uint32(p))
}

// Status returns the policy a domain currently reports.
func Status(rf mmio.RegisterFile) (Policy, error) {
	if rf == nil {
		return 0, fmt.Errorf("ppolicy status: %w", hwerr.ErrNullArgument)
	}
	return Policy(rf.Read32(PP_STATUS) & PP_MASK), nil
}

// Sequencer changes power policies, bypassing the two interconnect UCG units' channels around each change.
type Sequencer struct {
	top0  *ucg.Unit
	top1  *ucg.Unit
	clock *poll.Clock

	// IntervalUS is the first pause between status reads.
	IntervalUS uint32
	// SettleUS is waited after a change when the caller asks for it, for regulators
	// that report power good too early.
	SettleUS uint32
}

func NewSequencer(top0, top1 *ucg.Unit, clock *poll.Clock) *Sequencer {
	return &Sequencer{
		top0:  top0,
		top1:  top1,
		clock: clock,
	}
}

// Set moves the domain whose policy register is at offset 0 of rf to policy. Channels in
// bp0 of interconnect unit 0 and bp1 of unit 1 that are running are put into bypass
// for the change and always released afterwards. If the domain doesn't report the new
// policy within timeoutUS (0 waits forever), ErrTimeout is returned, and a domain that
// was being switched on is sent OFF again.
func (s *Sequencer) Set(rf mmio.RegisterFile, policy Policy, bp0, bp1, timeoutUS uint32, delay bool) error {
	if rf == nil {
		return fmt.Errorf("ppolicy set: %w", hwerr.ErrNullArgument)
	}
	policy &= PP_MASK
	if Policy(rf.Read32(PP_STATUS)&PP_MASK) == policy {
		return nil
	}
	if bp0 != 0 {
		err := s.top0.EnableBypass(bp0)
		if err != nil {
			return fmt.Errorf("couldn't bypass %s: %w", s.top0, err)
		}
	}
	if bp1 != 0 {
		err := s.top1.EnableBypass(bp1)
		if err != nil {
			s.release(bp0, 0) // Ignore error, return the first one
			return fmt.Errorf("couldn't bypass %s: %w", s.top1, err)
		}
	}

	rf.Write32(0, uint32(policy))
	status, err := s.clock.Poll(func() uint32 {
		return rf.Read32(PP_STATUS)
	}, func(val uint32) bool {
		return Policy(val&PP_MASK) == policy
	}, s.IntervalUS, timeoutUS)
	if err != nil {
		err = fmt.Errorf("power policy %v not reached, status %02X: %w", policy, status&PP_MASK, err)
		if policy == PP_ON {
			log.Printf("warning: %v, switching back OFF", err)
			rf.Write32(0, uint32(PP_OFF))
		}
	}

	if delay {
		s.clock.DelayUS(s.SettleUS)
	}

	rerr := s.release(bp0, bp1)
	if err == nil {
		err = rerr
	}
	return err
}

func (s *Sequencer) release(bp0, bp1 uint32) error {
	var err error
	if bp0 != 0 {
		te := s.top0.SyncAndDisableBypass(bp0, bp0)
		if te != nil {
			err = fmt.Errorf("couldn't release bypass on %s: %w", s.top0, te)
		}
	}
	if bp1 != 0 {
		te := s.top1.SyncAndDisableBypass(bp1, bp1)
		if te != nil && err == nil {
			err = fmt.Errorf("couldn't release bypass on %s: %w", s.top1, te)
		}
	}
	return err
}
