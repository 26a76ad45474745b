package ppolicy

import (
	"errors"
	"testing"

	"github.com/Jon-Bright/mcom03clk/hwerr"
	"github.com/Jon-Bright/mcom03clk/mmio"
	"github.com/Jon-Bright/mcom03clk/poll"
	"github.com/Jon-Bright/mcom03clk/ucg"
)

const (
	ppReg   = 0x100
	top0Reg = 0x1000
	top1Reg = 0x2000
)

type harness struct {
	f       *mmio.Fake
	fp      *mmio.FakePlatform
	seq     *Sequencer
	pp      mmio.RegisterFile
	respond bool
	// bypass registers as seen when the policy was written
	bpAtWrite [2]uint32
}

func newHarness(respond bool) *harness {
	h := &harness{
		f:       mmio.NewFake(),
		fp:      mmio.NewFakePlatform(10),
		respond: respond,
	}
	for ch := uintptr(0); ch < ucg.UCG_CHANNELS; ch++ {
		h.f.Set(top0Reg+ch*4, uint32(ucg.FSM_RUN)<<7|ucg.UCG_CTR_CLK_EN)
		h.f.Set(top1Reg+ch*4, uint32(ucg.FSM_RUN)<<7|ucg.UCG_CTR_CLK_EN)
	}
	h.f.Set(ppReg+PP_STATUS, uint32(PP_OFF))
	h.f.WriteHook = func(off uintptr, val uint32) uint32 {
		if off == ppReg {
			h.bpAtWrite[0] = h.f.Get(top0Reg + ucg.UCG_BP_CTR)
			h.bpAtWrite[1] = h.f.Get(top1Reg + ucg.UCG_BP_CTR)
			if h.respond {
				h.f.Set(ppReg+PP_STATUS, val)
			}
		}
		return val
	}
	top0 := ucg.New("top0", mmio.Window(h.f, top0Reg), ucg.SyncMask)
	top1 := ucg.New("top1", mmio.Window(h.f, top1Reg), ucg.SyncMask)
	clock := poll.NewClock(h.fp, func() uint32 { return 1000000 })
	h.seq = NewSequencer(top0, top1, clock)
	h.seq.SettleUS = 500
	h.pp = mmio.Window(h.f, ppReg)
	return h
}

func (h *harness) policyWrites() []uint32 {
	var ws []uint32
	for _, a := range h.f.Log() {
		if a.Off == ppReg {
			ws = append(ws, a.Val)
		}
	}
	return ws
}

func TestSetOn(t *testing.T) {
	h := newHarness(true)
	err := h.seq.Set(h.pp, PP_ON, 0xB0, 0x05, 1000, false)
	if err != nil {
		t.Fatalf("set got: %v, want nil", err)
	}
	if h.bpAtWrite[0] != 0xB0 || h.bpAtWrite[1] != 0x05 {
		t.Errorf("bypass at policy write got: %02X %02X, want B0 05", h.bpAtWrite[0], h.bpAtWrite[1])
	}
	if got := h.f.Get(top0Reg + ucg.UCG_BP_CTR); got != 0 {
		t.Errorf("top0 bypass after set got: %02X, want 0", got)
	}
	if got := h.f.Get(top1Reg + ucg.UCG_SYNC_CLK); got != 0x05 {
		t.Errorf("top1 sync after set got: %02X, want 05", got)
	}
	p, err := Status(h.pp)
	if err != nil || p != PP_ON {
		t.Errorf("status got: %v (%v), want ON", p, err)
	}
}

func TestSetIdempotent(t *testing.T) {
	h := newHarness(true)
	for i := 0; i < 2; i++ {
		err := h.seq.Set(h.pp, PP_ON, 0x10, 0x01, 1000, false)
		if err != nil {
			t.Fatalf("set %d got: %v, want nil", i, err)
		}
	}
	if ws := h.policyWrites(); len(ws) != 1 {
		t.Errorf("policy writes got: %v, want one", ws)
	}
	if n := h.f.Writes(top0Reg + ucg.UCG_BP_CTR); n != 2 {
		t.Errorf("top0 bypass writes got: %d, want 2 from the first call", n)
	}
}

func TestSetOnTimeout(t *testing.T) {
	h := newHarness(false)
	err := h.seq.Set(h.pp, PP_ON, 0x10, 0x01, 100, false)
	if !errors.Is(err, hwerr.ErrTimeout) {
		t.Errorf("set got: %v, want timeout", err)
	}
	ws := h.policyWrites()
	if len(ws) != 2 || ws[0] != uint32(PP_ON) || ws[1] != uint32(PP_OFF) {
		t.Errorf("policy writes got: %v, want ON then OFF", ws)
	}
	if got := h.f.Get(top0Reg + ucg.UCG_BP_CTR); got != 0 {
		t.Errorf("top0 bypass after failed set got: %02X, want 0", got)
	}
	if got := h.f.Get(top1Reg + ucg.UCG_BP_CTR); got != 0 {
		t.Errorf("top1 bypass after failed set got: %02X, want 0", got)
	}
}

func TestSetOffTimeout(t *testing.T) {
	h := newHarness(false)
	h.f.Set(ppReg+PP_STATUS, uint32(PP_ON))
	err := h.seq.Set(h.pp, PP_OFF, 0, 0, 100, false)
	if !errors.Is(err, hwerr.ErrTimeout) {
		t.Errorf("set got: %v, want timeout", err)
	}
	if ws := h.policyWrites(); len(ws) != 1 || ws[0] != uint32(PP_OFF) {
		t.Errorf("policy writes got: %v, want only OFF", ws)
	}
	if h.f.Writes(top0Reg+ucg.UCG_BP_CTR) != 0 || h.f.Writes(top1Reg+ucg.UCG_BP_CTR) != 0 {
		t.Errorf("zero masks touched bypass: %v", h.f.Log())
	}
}

func TestSetDelay(t *testing.T) {
	h := newHarness(true)
	before := h.fp.Regs[mmio.Count]
	err := h.seq.Set(h.pp, PP_WARM_RESET, 0, 0x40, 0, true)
	if err != nil {
		t.Fatalf("set got: %v, want nil", err)
	}
	if got := h.fp.Regs[mmio.Count] - before; got < 500 {
		t.Errorf("settle waited %d ticks, want at least 500", got)
	}
}

func TestSetBadMask(t *testing.T) {
	h := newHarness(true)
	err := h.seq.Set(h.pp, PP_ON, 0x10, 0x10000, 100, false)
	if !errors.Is(err, hwerr.ErrInvalidParameter) {
		t.Errorf("set got: %v, want invalid parameter", err)
	}
	if ws := h.policyWrites(); len(ws) != 0 {
		t.Errorf("policy writes got: %v, want none", ws)
	}
	if got := h.f.Get(top0Reg + ucg.UCG_BP_CTR); got != 0 {
		t.Errorf("top0 left in bypass: %02X", got)
	}
}

func TestSetNull(t *testing.T) {
	h := newHarness(true)
	if err := h.seq.Set(nil, PP_ON, 0, 0, 0, false); !errors.Is(err, hwerr.ErrNullArgument) {
		t.Errorf("set got: %v, want null argument", err)
	}
	if _, err := Status(nil); !errors.Is(err, hwerr.ErrNullArgument) {
		t.Errorf("status got: %v, want null argument", err)
	}
}

func TestPolicyString(t *testing.T) {
	tests := []struct {
		p    Policy
		want string
	}{
		{PP_OFF, "OFF"},
		{PP_WARM_RESET, "WARM_RESET"},
		{PP_ON, "ON"},
		{Policy(0x02), "Policy(02)"},
	}
	for _, test := range tests {
		if got := test.p.String(); got != test.want {
			t.Errorf("policy %02X got: %q, want %q", uint32(test.p), got, test.want)
		}
	}
}
