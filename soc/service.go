package soc

import (
	"fmt"

	"github.com/Jon-Bright/mcom03clk/mmio"
	"github.com/Jon-Bright/mcom03clk/pll"
	"github.com/Jon-Bright/mcom03clk/ppolicy"
	"github.com/platinasystems/log"
)

// TopClockGateAll opens every top level clock gate.
func (b *Board) TopClockGateAll() error {
	mmio.SetBits(b.serviceURB, SERVICE_URB_TOP_CLKGATE, TOP_CLKGATE_ALL)
	return nil
}

func (b *Board) enableDomain(domain string, bp0, bp1, gate uint32) error {
	err := b.SetPolicy(domain, ppolicy.PP_ON, bp0, bp1)
	if err != nil {
		return err
	}
	if gate != 0 {
		mmio.SetBits(b.serviceURB, SERVICE_URB_TOP_CLKGATE, gate)
	}
	return nil
}

// EnableARMCPU powers the CPU subsystem and opens its clock gate.
func (b *Board) EnableARMCPU() error {
	bp0 := bit(TOP_UCG0_DDR_CPU) | bit(TOP_UCG0_CPU_ACP) | bit(TOP_UCG0_AXI_COH_COMM)
	bp1 := bit(TOP_UCG1_AXI_SLOW_COMM) | bit(TOP_UCG1_AXI_FAST_COMM)
	return b.enableDomain("cpu", bp0, bp1, TOP_CLKGATE_CPU)
}

// DisableARMCPU closes the CPU clock gate and powers the subsystem off.
func (b *Board) DisableARMCPU() error {
	mmio.ClrBits(b.serviceURB, SERVICE_URB_TOP_CLKGATE, TOP_CLKGATE_CPU)
	return b.SetPolicy("cpu", ppolicy.PP_OFF, 0, 0)
}

// EnableLSP0 powers low speed peripheral subsystem 0 and opens its clock gate.
func (b *Board) EnableLSP0() error {
	return b.enableDomain("lsp0", bit(TOP_UCG0_DDR_LSP0), bit(TOP_UCG1_AXI_SLOW_COMM), TOP_CLKGATE_LSP0)
}

// EnableLSP1 powers low speed peripheral subsystem 1 and opens its clock gate.
func (b *Board) EnableLSP1() error {
	return b.enableDomain("lsp1", 0, bit(TOP_UCG1_DDR_LSP1)|bit(TOP_UCG1_AXI_SLOW_COMM), TOP_CLKGATE_LSP1)
}

// EnableSDR powers the SDR subsystem and opens its clock gate.
func (b *Board) EnableSDR() error {
	bp1 := bit(TOP_UCG1_AXI_SLOW_COMM) | bit(TOP_UCG1_AXI_FAST_COMM) |
		bit(TOP_UCG1_DDR_SDR_DSP) | bit(TOP_UCG1_DDR_SDR_PCIE)
	return b.enableDomain("sdr", 0, bp1, TOP_CLKGATE_SDR)
}

// DisableRISC0 powers off the service subsystem's RISC0 core.
func (b *Board) DisableRISC0() error {
	return b.SetPolicy("risc0", ppolicy.PP_OFF, 0, 0)
}

// ServicePLL returns the service PLL's current configuration.
func (b *Board) ServicePLL() (*pll.Config, error) {
	cfg := &pll.Config{InpFreq: b.cfg.XTIHz}
	err := pll.GetFreq(mmio.Window(b.serviceURB, SERVICE_URB_PLLCNFG), cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (b *Board) serviceClock(ch uint32) (uint32, error) {
	cfg, err := b.ServicePLL()
	if err != nil {
		return 0, err
	}
	u, err := b.Unit(SUBSYS_SERVICE, 0)
	if err != nil {
		return 0, err
	}
	div, err := u.Divider(ch)
	if err != nil {
		return 0, fmt.Errorf("couldn't read %s channel %d divider: %w", u, ch, err)
	}
	return cfg.OutFreq / div, nil
}

// ServiceCoreClock returns the service core frequency in Hz.
func (b *Board) ServiceCoreClock() (uint32, error) {
	return b.serviceClock(SERVICE_UCG1_CORE)
}

// ServiceAPBClock returns the service APB frequency in Hz.
func (b *Board) ServiceAPBClock() (uint32, error) {
	return b.serviceClock(SERVICE_UCG1_APB)
}

// TopPLL returns the interconnect PLL's current configuration.
func (b *Board) TopPLL() (*pll.Config, error) {
	cfg := &pll.Config{InpFreq: b.cfg.XTIHz}
	err := pll.GetFreq(mmio.Window(b.topURB, TOP_URB_PLL), cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// CPUPLL returns the ARM cluster PLL's current configuration.
func (b *Board) CPUPLL() (*pll.Config, error) {
	cfg := &pll.Config{InpFreq: b.cfg.XTIHz}
	err := pll.GetFreq(mmio.Window(b.cpuURB, CPU_URB_PLLCNFG), cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func logPLL(name string, cfg *pll.Config) {
	log.Printf("%s PLL: %v", name, cfg)
}
