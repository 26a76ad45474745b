package soc

import (
	"fmt"

	"github.com/Jon-Bright/mcom03clk/hwerr"
	"github.com/Jon-Bright/mcom03clk/mmio"
	"github.com/Jon-Bright/mcom03clk/pll"
	"github.com/Jon-Bright/mcom03clk/ucg"
	"github.com/platinasystems/log"
)

type recipeUnit struct {
	subsys Subsystem
	id     uint32
	mask   uint32
	sync   uint32
}

type channelDiv struct {
	unit int // Index into recipe.units
	ch   uint32
	div  uint32
}

type pllStep struct {
	reg     func(b *Board) mmio.RegisterFile
	nf, od  uint32
	forever bool
}

// A recipe reprograms a subsystem's clocks: bypass its units, set its PLL, set the
// channel dividers in order, then sync and leave bypass.
type recipe struct {
	name     string
	units    []recipeUnit
	pll      *pllStep
	channels []channelDiv
	check    func(r *recipe) error
}

// The core channel always comes first: the other dividers are relative to it.
var serviceRecipe = recipe{
	name:  "service",
	units: []recipeUnit{{SUBSYS_SERVICE, 0, SERVICE_UCG1_ALL, SERVICE_UCG1_SYNC}},
	pll: &pllStep{
		reg: func(b *Board) mmio.RegisterFile { return mmio.Window(b.serviceURB, SERVICE_URB_PLLCNFG) },
		nf:  131,
		od:  5,
	},
	channels: []channelDiv{
		{0, SERVICE_UCG1_CORE, 1},
		{0, SERVICE_UCG1_APB, 6},
		{0, SERVICE_UCG1_QSPI0, 1},
		{0, SERVICE_UCG1_BPAM, 1},
		{0, SERVICE_UCG1_RISC0, 1},
		{0, SERVICE_UCG1_MFBSP0, 6},
		{0, SERVICE_UCG1_MFBSP1, 6},
		{0, SERVICE_UCG1_MAILBOX0, 6},
		{0, SERVICE_UCG1_PVTCTR, 6},
		{0, SERVICE_UCG1_I2C4, 6},
		{0, SERVICE_UCG1_TRNG, 6},
		{0, SERVICE_UCG1_SPIOTP, 6},
		{0, SERVICE_UCG1_I2C4_EXT, 12},
		{0, SERVICE_UCG1_QSPI0_EXT, 22},
	},
	check: checkAPBDivider,
}

var topRecipe = recipe{
	name: "top",
	units: []recipeUnit{
		{SUBSYS_TOP, 0, TOP_UCG0_ALL, TOP_UCG0_ALL},
		{SUBSYS_TOP, 1, TOP_UCG1_ALL, TOP_UCG1_ALL},
	},
	pll: &pllStep{
		reg: func(b *Board) mmio.RegisterFile { return mmio.Window(b.topURB, TOP_URB_PLL) },
		nf:  87,
		od:  1,
	},
	channels: []channelDiv{
		{0, TOP_UCG0_DDR_CPU, 2},
		{0, TOP_UCG0_DDR_DP, 6},
		{0, TOP_UCG0_DDR_VPU, 4},
		{0, TOP_UCG0_DDR_GPU, 4},
		{0, TOP_UCG0_DDR_ISP, 6},
		{0, TOP_UCG0_CPU_ACP, 4},
		{0, TOP_UCG0_DDR_LSP0, 12},
		{0, TOP_UCG0_AXI_COH_COMM, 2},
		{1, TOP_UCG1_AXI_SLOW_COMM, 30},
		{1, TOP_UCG1_AXI_FAST_COMM, 8},
		{1, TOP_UCG1_DDR_SDR_DSP, 2},
		{1, TOP_UCG1_DDR_SDR_PCIE, 4},
		{1, TOP_UCG1_DDR_LSP1, 12},
		{1, TOP_UCG1_DDR_SERVICE, 8},
		{1, TOP_UCG1_DDR_HSP, 6},
	},
}

var cpuRecipe = recipe{
	name:  "cpu",
	units: []recipeUnit{{SUBSYS_CPU, 0, CPU_UCG_ALL, CPU_UCG_ALL}},
	pll: &pllStep{
		reg:     func(b *Board) mmio.RegisterFile { return mmio.Window(b.cpuURB, CPU_URB_PLLCNFG) },
		nf:      85,
		od:      1,
		forever: true,
	},
	channels: []channelDiv{
		// Core must stay at 1
		{0, CPU_UCG_CORE, 1},
		{0, CPU_UCG_SYS, 4},
		{0, CPU_UCG_DBUS, 2},
	},
}

var lsp0Recipe = recipe{
	name:     "lsp0",
	units:    []recipeUnit{{SUBSYS_LSP0, 0, LSP0_UCG2_ALL, LSP0_UCG2_ALL}},
	channels: []channelDiv{{0, LSP0_UCG2_GPIO0, 1}},
}

var lsp1Recipe = recipe{
	name:  "lsp1",
	units: []recipeUnit{{SUBSYS_LSP1, 0, LSP1_UCG_ALL, LSP1_UCG_ALL}},
	channels: []channelDiv{
		{0, LSP1_UCG_GPIO1, 1},
		{0, LSP1_UCG_UART0, 1},
		{0, LSP1_UCG_TIMERS, 1},
	},
}

func (r *recipe) divider(ch uint32) uint32 {
	for _, c := range r.channels {
		if c.unit == 0 && c.ch == ch {
			return c.div
		}
	}
	return 0
}

// The APB clock has to be an integer fraction of the core clock.
func checkAPBDivider(r *recipe) error {
	core := r.divider(SERVICE_UCG1_CORE)
	apb := r.divider(SERVICE_UCG1_APB)
	if core == 0 || apb%core != 0 {
		return fmt.Errorf("apb divider %d isn't a multiple of core divider %d: %w", apb, core, hwerr.ErrInvalidParameter)
	}
	return nil
}

func (b *Board) run(r *recipe) error {
	if r.check != nil {
		err := r.check(r)
		if err != nil {
			return fmt.Errorf("%s clocks: %w", r.name, err)
		}
	}
	units := make([]*ucg.Unit, len(r.units))
	for i, ru := range r.units {
		u, err := b.Unit(ru.subsys, ru.id)
		if err != nil {
			return err
		}
		units[i] = u
	}
	for i, u := range units {
		err := u.EnableBypass(r.units[i].mask)
		if err != nil {
			return fmt.Errorf("couldn't bypass %s: %w", u, err)
		}
	}
	if r.pll != nil {
		retries := b.cfg.Retries
		if r.pll.forever {
			retries = 0
		}
		rf := r.pll.reg(b)
		cfg := &pll.Config{NF: r.pll.nf, OD: r.pll.od, InpFreq: b.cfg.XTIHz}
		err := pll.SetManualFreq(rf, cfg, retries)
		if err != nil {
			return fmt.Errorf("couldn't set %s pll: %w", r.name, err)
		}
		err = pll.GetFreq(rf, cfg)
		if err != nil {
			return err
		}
		logPLL(r.name, cfg)
	}
	for _, c := range r.channels {
		err := units[c.unit].SetDivider(c.ch, c.div, b.cfg.Retries)
		if err != nil {
			return err
		}
	}
	for i, u := range units {
		err := u.SyncAndDisableBypass(r.units[i].mask, r.units[i].sync)
		if err != nil {
			return fmt.Errorf("couldn't release %s: %w", u, err)
		}
	}
	log.Printf("%s clocks set", r.name)
	return nil
}

// ServiceSetClock runs the service subsystem at 594 MHz.
func (b *Board) ServiceSetClock() error {
	return b.run(&serviceRecipe)
}

// TopSetClock runs the interconnect at 1188 MHz.
func (b *Board) TopSetClock() error {
	return b.run(&topRecipe)
}

// CPUSetClock powers the ARM cluster and runs it at 1161 MHz.
func (b *Board) CPUSetClock() error {
	err := b.EnableARMCPU()
	if err != nil {
		return err
	}
	return b.run(&cpuRecipe)
}

// LSP0Enable powers LSP0 and starts GPIO0. Only the first successful call does anything.
func (b *Board) LSP0Enable() error {
	if b.lsp0Enabled {
		return nil
	}
	err := b.EnableLSP0()
	if err != nil {
		return err
	}
	err = b.run(&lsp0Recipe)
	if err != nil {
		return err
	}
	b.lsp0Enabled = true
	return nil
}

// LSP1SetClock powers LSP1 and starts GPIO1, UART0 and the timers.
func (b *Board) LSP1SetClock() error {
	err := b.EnableLSP1()
	if err != nil {
		return err
	}
	return b.run(&lsp1Recipe)
}

// Recipes maps recipe names to their entry points.
func (b *Board) Recipes() map[string]func() error {
	return map[string]func() error{
		"service": b.ServiceSetClock,
		"top":     b.TopSetClock,
		"cpu":     b.CPUSetClock,
		"lsp0":    b.LSP0Enable,
		"lsp1":    b.LSP1SetClock,
	}
}
