package soc

import (
	"testing"

	"github.com/Jon-Bright/mcom03clk/config"
	"github.com/Jon-Bright/mcom03clk/mmio"
	"github.com/Jon-Bright/mcom03clk/pll"
	"github.com/Jon-Bright/mcom03clk/ppolicy"
	"github.com/Jon-Bright/mcom03clk/ucg"
)

// sim models just enough of an MCom-03 on a FakeBus: clock channels lock and
// run when enabled, PLLs lock when written and power domains report the policy
// they were given.
type sim struct {
	bus *mmio.FakeBus
	fp  *mmio.FakePlatform
	cfg *config.Config
	b   *Board

	lock  bool
	run   bool
	power bool
	pll   bool

	ucgBases []uintptr
	domains  map[uintptr]bool
	plls     map[uintptr]bool
}

func newSim() *sim {
	s := &sim{
		bus:   mmio.NewFakeBus(),
		fp:    mmio.NewFakePlatform(10),
		cfg:   config.Default(),
		lock:  true,
		run:   true,
		power: true,
		pll:   true,
		domains: map[uintptr]bool{
			SERVICE_URB_BASE + SERVICE_URB_CPU_PPOLICY:   true,
			SERVICE_URB_BASE + SERVICE_URB_SDR_PPOLICY:   true,
			SERVICE_URB_BASE + SERVICE_URB_LSP0_PPOLICY:  true,
			SERVICE_URB_BASE + SERVICE_URB_LSP1_PPOLICY:  true,
			SERVICE_URB_BASE + SERVICE_URB_RISC0_PPOLICY: true,
			CPU_URB_BASE + CPU_URB_A53SYS:                true,
			CPU_URB_BASE:                                 true,
			LSP1_URB_BASE + LSP1_URB_I2S_UCG_RSTN_PPOL:   true,
		},
		plls: map[uintptr]bool{
			SERVICE_URB_BASE + SERVICE_URB_PLLCNFG: true,
			TOP_URB_BASE + TOP_URB_PLL:             true,
			CPU_URB_BASE + CPU_URB_PLLCNFG:         true,
		},
	}
	for _, su := range subsystems {
		for id := uint32(0); id <= su.maxUnit; id++ {
			s.ucgBases = append(s.ucgBases, su.base+su.gap*uintptr(id))
		}
	}
	// Out of reset, every channel runs undivided and every domain is off.
	for _, base := range s.ucgBases {
		for ch := uintptr(0); ch < ucg.UCG_CHANNELS; ch++ {
			s.bus.Set(base+ch*4, ucg.UCG_CTR_CLK_EN|uint32(ucg.FSM_RUN)<<7)
		}
	}
	for reg := range s.domains {
		s.bus.Set(reg+ppolicy.PP_STATUS, uint32(ppolicy.PP_OFF))
	}
	s.bus.Set(SERVICE_URB_BASE+SERVICE_URB_OTP_FLAG, OTP_FLAG_BD_DONE)
	s.bus.WriteHook = s.write
	return s
}

func (s *sim) ctr(off uintptr) bool {
	for _, base := range s.ucgBases {
		if off >= base && off < base+ucg.UCG_BP_CTR {
			return true
		}
	}
	return false
}

func (s *sim) write(off uintptr, val uint32) uint32 {
	switch {
	case s.ctr(off):
		val &^= ucg.UCG_CTR_DIV_LOCK | 0x7<<7
		if s.lock {
			val |= ucg.UCG_CTR_DIV_LOCK
		}
		if s.run && val&ucg.UCG_CTR_CLK_EN != 0 {
			val |= uint32(ucg.FSM_RUN) << 7
		}
	case s.plls[off]:
		val &^= pll.PLL_LOCK
		if s.pll {
			val |= pll.PLL_LOCK
		}
	case s.domains[off]:
		if s.power {
			s.bus.Set(off+ppolicy.PP_STATUS, val&ppolicy.PP_MASK)
		}
	}
	return val
}

// board builds the Board, timing with a 1 MHz counter.
func (s *sim) board(t *testing.T) *Board {
	b, err := NewBoard(s.bus, s.fp, s.cfg, func() uint32 { return 1000000 })
	if err != nil {
		t.Fatalf("new board got: %v, want nil", err)
	}
	s.b = b
	return b
}

func (s *sim) status(domain uintptr) ppolicy.Policy {
	return ppolicy.Policy(s.bus.Get(domain+ppolicy.PP_STATUS) & ppolicy.PP_MASK)
}

func (s *sim) freq(reg uintptr) uint32 {
	cfg := &pll.Config{InpFreq: s.cfg.XTIHz}
	pll.GetFreq(mmio.Window(s.bus, reg), cfg) // Ignore error
	return cfg.OutFreq
}

// ctrWrites returns the channels written in the unit at base, in order. Back to back
// writes to one channel count once.
func (s *sim) ctrWrites(base uintptr) []uint32 {
	var chs []uint32
	for _, a := range s.bus.Log() {
		if a.Off < base || a.Off >= base+ucg.UCG_BP_CTR {
			continue
		}
		ch := uint32(a.Off-base) / 4
		if len(chs) > 0 && chs[len(chs)-1] == ch {
			continue
		}
		chs = append(chs, ch)
	}
	return chs
}

// firstWrite returns the index in the write log of the first write to off, -1 if none.
func (s *sim) firstWrite(off uintptr) int {
	for i, a := range s.bus.Log() {
		if a.Off == off {
			return i
		}
	}
	return -1
}
