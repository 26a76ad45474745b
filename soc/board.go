// Package soc sequences the MCom-03 clock tree and power domains: subsystem
// clock recipes, the service subsystem's power helpers, the OTP dump and the
// XIP boot order. Everything hangs off a Board.
package soc

import (
	"fmt"

	"github.com/Jon-Bright/mcom03clk/config"
	"github.com/Jon-Bright/mcom03clk/hwerr"
	"github.com/Jon-Bright/mcom03clk/mmio"
	"github.com/Jon-Bright/mcom03clk/poll"
	"github.com/Jon-Bright/mcom03clk/ppolicy"
	"github.com/Jon-Bright/mcom03clk/ucg"
	"github.com/platinasystems/log"
)

// Subsystem identifies a group of UCG units.
type Subsystem int

const (
	SUBSYS_SERVICE Subsystem = iota
	SUBSYS_CPU
	SUBSYS_TOP
	SUBSYS_LSP0
	SUBSYS_LSP1
	SUBSYS_HSP
	SUBSYS_DDR
)

type subsysUnits struct {
	name    string
	base    uintptr
	gap     uintptr
	maxUnit uint32
}

var subsystems = map[Subsystem]subsysUnits{
	SUBSYS_SERVICE: {"service", SERVICE_UCG1_BASE, 0, 0},
	SUBSYS_CPU:     {"cpu", CPU_UCG_BASE, 0, 0},
	SUBSYS_TOP:     {"top", TOP_UCG0_BASE, TOP_UCG_GAP, 1},
	SUBSYS_LSP0:    {"lsp0", LSP0_UCG2_BASE, 0, 0},
	SUBSYS_LSP1:    {"lsp1", LSP1_UCG_BASE, 0, 0},
	SUBSYS_HSP:     {"hsp", HSP_UCG0_BASE, HSP_UCG_GAP, 3},
	SUBSYS_DDR:     {"ddr", DDR_SYS_UCG0_BASE, DDR_UCG_GAP, 1},
}

func (s Subsystem) String() string {
	if su, ok := subsystems[s]; ok {
		return su.name
	}
	return fmt.Sprintf("Subsystem(%d)", int(s))
}

// ParseSubsystem converts a subsystem name, as used in configuration, to a Subsystem.
func ParseSubsystem(name string) (Subsystem, error) {
	for s, su := range subsystems {
		if su.name == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown subsystem %q: %w", name, hwerr.ErrInvalidParameter)
}

// Board is the state of one boot stage driving one SoC. It isn't safe for concurrent use.
type Board struct {
	bus   mmio.Bus
	plat  mmio.Platform
	cfg   *config.Config
	clock *poll.Clock
	seq   *ppolicy.Sequencer

	serviceURB mmio.RegisterFile
	cpuURB     mmio.RegisterFile
	topURB     mmio.RegisterFile
	lsp1URB    mmio.RegisterFile
	hspURB     mmio.RegisterFile
	wdt        mmio.RegisterFile
	otp        mmio.RegisterFile

	// Set while the core clock can't be read and Count is taken to run at XTI
	xtiFallback bool

	// One-shot latches, cleared only by ResetLatches
	lsp0Enabled bool
	otpRead     bool
	otpWords    [OTP_WORDS]uint32
}

// NewBoard maps the register blocks the sequencer uses. counterHz gives the rate
// of plat's Count register; if it's nil, Count is taken to run at the service core clock.
func NewBoard(bus mmio.Bus, plat mmio.Platform, cfg *config.Config, counterHz func() uint32) (*Board, error) {
	if bus == nil || plat == nil || cfg == nil {
		return nil, fmt.Errorf("new board: %w", hwerr.ErrNullArgument)
	}
	b := &Board{
		bus:  bus,
		plat: plat,
		cfg:  cfg,
	}
	blocks := []struct {
		rf   *mmio.RegisterFile
		phys uintptr
		size int
	}{
		{&b.serviceURB, SERVICE_URB_BASE, SERVICE_URB_SIZE},
		{&b.cpuURB, CPU_URB_BASE, CPU_URB_SIZE},
		{&b.topURB, TOP_URB_BASE, 4},
		{&b.lsp1URB, LSP1_URB_BASE, 0x10},
		{&b.hspURB, HSP_URB_BASE, HSP_URB_SIZE},
		{&b.wdt, SERVICE_WDT0_BASE, WDT_SIZE},
		{&b.otp, SERVICE_OTP_BASE, OTP_SIZE},
	}
	for _, blk := range blocks {
		rf, err := bus.Map(blk.phys, blk.size)
		if err != nil {
			return nil, fmt.Errorf("couldn't map registers at %08X: %v", blk.phys, err)
		}
		*blk.rf = rf
	}

	if counterHz == nil {
		counterHz = b.counterAtCoreClock
	}
	b.clock = poll.NewClock(plat, counterHz)
	b.clock.MaxIntervalUS = cfg.Poll.MaxIntervalUS

	top0, err := b.Unit(SUBSYS_TOP, 0)
	if err != nil {
		return nil, err
	}
	top1, err := b.Unit(SUBSYS_TOP, 1)
	if err != nil {
		return nil, err
	}
	b.seq = ppolicy.NewSequencer(top0, top1, b.clock)
	b.seq.IntervalUS = cfg.Poll.IntervalUS
	b.seq.SettleUS = cfg.PPolicy.SettleUS
	return b, nil
}

func (b *Board) counterAtCoreClock() uint32 {
	hz, err := b.ServiceCoreClock()
	if err != nil || hz == 0 {
		if !b.xtiFallback {
			log.Printf("warning: no service core clock (%v), timing with XTI", err)
			b.xtiFallback = true
		}
		return b.cfg.XTIHz
	}
	if b.xtiFallback {
		log.Printf("notice: service core clock back at %d Hz", hz)
		b.xtiFallback = false
	}
	return hz
}

// Clock returns the board's time source.
func (b *Board) Clock() *poll.Clock {
	return b.clock
}

// ResetLatches forgets that LSP0 was enabled and that OTP was read.
func (b *Board) ResetLatches() {
	b.lsp0Enabled = false
	b.otpRead = false
}

// Unit returns UCG unit id of subsys. Ids above the subsystem's last unit are rejected.
func (b *Board) Unit(subsys Subsystem, id uint32) (*ucg.Unit, error) {
	su, ok := subsystems[subsys]
	if !ok {
		return nil, fmt.Errorf("%v: %w", subsys, hwerr.ErrInvalidParameter)
	}
	if id > su.maxUnit {
		return nil, fmt.Errorf("%s has no ucg%d: %w", su.name, id, hwerr.ErrInvalidParameter)
	}
	phys := su.base + su.gap*uintptr(id)
	rf, err := b.bus.Map(phys, UCG_SIZE)
	if err != nil {
		return nil, fmt.Errorf("couldn't map %s ucg%d at %08X: %v", su.name, id, phys, err)
	}
	return ucg.New(fmt.Sprintf("%s ucg%d", su.name, id), rf, b.cfg.SyncMode(su.name)), nil
}

// Domain returns the policy register of a named power domain.
func (b *Board) Domain(name string) (mmio.RegisterFile, error) {
	switch name {
	case "cpu":
		return mmio.Window(b.serviceURB, SERVICE_URB_CPU_PPOLICY), nil
	case "sdr":
		return mmio.Window(b.serviceURB, SERVICE_URB_SDR_PPOLICY), nil
	case "lsp0":
		return mmio.Window(b.serviceURB, SERVICE_URB_LSP0_PPOLICY), nil
	case "lsp1":
		return mmio.Window(b.serviceURB, SERVICE_URB_LSP1_PPOLICY), nil
	case "risc0":
		return mmio.Window(b.serviceURB, SERVICE_URB_RISC0_PPOLICY), nil
	case "a53sys":
		return mmio.Window(b.cpuURB, CPU_URB_A53SYS), nil
	case "core0":
		return mmio.Window(b.cpuURB, 0), nil
	case "i2s":
		return mmio.Window(b.lsp1URB, LSP1_URB_I2S_UCG_RSTN_PPOL), nil
	}
	return nil, fmt.Errorf("unknown power domain %q: %w", name, hwerr.ErrInvalidParameter)
}

// SetPolicy moves a named power domain to p, holding the running interconnect
// channels in bp0 (TOP UCG0) and bp1 (TOP UCG1) in bypass meanwhile.
func (b *Board) SetPolicy(domain string, p ppolicy.Policy, bp0, bp1 uint32) error {
	rf, err := b.Domain(domain)
	if err != nil {
		return err
	}
	start := b.clock.NowUS()
	err = b.seq.Set(rf, p, bp0, bp1, b.cfg.PPolicy.TimeoutUS, b.cfg.Settles(domain))
	if err != nil {
		return fmt.Errorf("couldn't set %s power policy %v: %w", domain, p, err)
	}
	log.Printf("Power policy %s %v after %dus", domain, p, b.clock.NowUS()-start)
	return nil
}

// PolicyStatus returns the policy a named domain reports.
func (b *Board) PolicyStatus(domain string) (ppolicy.Policy, error) {
	rf, err := b.Domain(domain)
	if err != nil {
		return 0, err
	}
	return ppolicy.Status(rf)
}
