package ucg

import (
	"errors"
	"testing"

	"github.com/Jon-Bright/mcom03clk/hwerr"
	"github.com/Jon-Bright/mcom03clk/mmio"
)

// FakeUCG behaves like a unit's channels: a stored divider locks at once when
// lock is set, and CLK_EN moves the channel to RUN when run is set.
type FakeUCG struct {
	*mmio.Fake
	lock bool
	run  bool
}

func newFakeUCG(lock, run bool) *FakeUCG {
	fu := &FakeUCG{Fake: mmio.NewFake(), lock: lock, run: run}
	fu.WriteHook = func(off uintptr, val uint32) uint32 {
		if off >= UCG_BP_CTR {
			return val
		}
		val &^= UCG_CTR_DIV_LOCK | 0x7<<7
		if fu.lock {
			val |= UCG_CTR_DIV_LOCK
		}
		if fu.run && val&UCG_CTR_CLK_EN != 0 {
			val |= uint32(FSM_RUN) << 7
		}
		return val
	}
	return fu
}

func (fu *FakeUCG) setFSM(ch uint32, s FSM) {
	off := ctrOff(ch)
	fu.Set(off, fu.Get(off)&^(0x7<<7)|uint32(s)<<7)
}

func TestDividerRoundTrip(t *testing.T) {
	for ch := uint32(0); ch <= UCG_MAX_CHANNEL; ch++ {
		for _, div := range []uint32{0, 1, 2, 6, 22, 0xfffff} {
			fu := newFakeUCG(true, true)
			u := New("test", fu, SyncMask)
			err := u.SetDivider(ch, div, 10)
			if err != nil {
				t.Errorf("set ch %d div %d got: %v, want nil", ch, div, err)
				continue
			}
			want := div
			if div == 0 {
				want = 1
			}
			got, err := u.Divider(ch)
			if err != nil || got != want {
				t.Errorf("ch %d div %d read back: %d (%v), want %d", ch, div, got, err, want)
			}
			raw, enabled, err := u.State(ch)
			if err != nil || raw != div || !enabled {
				t.Errorf("ch %d div %d state got: %d %v (%v), want %d true", ch, div, raw, enabled, err, div)
			}
		}
	}
}

func TestSetDividerSequence(t *testing.T) {
	fu := newFakeUCG(true, true)
	fu.Set(ctrOff(3), UCG_CTR_LPI_EN|ucgDiv(4))
	u := New("test", fu, SyncMask)
	err := u.SetDivider(3, 8, 10)
	if err != nil {
		t.Fatalf("set got: %v, want nil", err)
	}
	log := fu.Log()
	if len(log) != 2 {
		t.Fatalf("set wrote %v, want two writes", log)
	}
	if log[0].Val != ucgDiv(8) {
		t.Errorf("divider store got: %08X, want %08X", log[0].Val, ucgDiv(8))
	}
	if log[1].Val&UCG_CTR_CLK_EN == 0 || log[1].Val&UCG_CTR_LPI_EN != 0 {
		t.Errorf("enable store got: %08X, want CLK_EN set and LPI_EN clear", log[1].Val)
	}

	// Same divider: no divider store, enable is still asserted.
	fu.ResetCounts()
	err = u.SetDivider(3, 8, 10)
	if err != nil {
		t.Fatalf("second set got: %v, want nil", err)
	}
	if log := fu.Log(); len(log) != 1 || log[0].Val&UCG_CTR_CLK_EN == 0 {
		t.Errorf("second set wrote %v, want one enable write", log)
	}
}

func TestSetDividerLockTimeout(t *testing.T) {
	fu := newFakeUCG(false, true)
	u := New("test", fu, SyncMask)
	err := u.SetDivider(5, 6, 9)
	if !errors.Is(err, hwerr.ErrTimeout) {
		t.Errorf("set got: %v, want timeout", err)
	}
	// One read to compare the divider, then exactly 9 polls.
	if fu.Reads(ctrOff(5)) != 10 || fu.Writes(ctrOff(5)) != 1 {
		t.Errorf("set got: %d reads %d writes, want 10 and 1", fu.Reads(ctrOff(5)), fu.Writes(ctrOff(5)))
	}
}

func TestSetDividerRunTimeout(t *testing.T) {
	fu := newFakeUCG(true, false)
	u := New("test", fu, SyncMask)
	err := u.SetDivider(5, 6, 9)
	if !errors.Is(err, hwerr.ErrTimeout) {
		t.Errorf("set got: %v, want timeout", err)
	}
	// Compare, one successful lock poll, read for the enable write, then 9 polls.
	if fu.Reads(ctrOff(5)) != 12 || fu.Writes(ctrOff(5)) != 2 {
		t.Errorf("set got: %d reads %d writes, want 12 and 2", fu.Reads(ctrOff(5)), fu.Writes(ctrOff(5)))
	}
}

func TestSetDividerSharedRetries(t *testing.T) {
	fu := newFakeUCG(false, false)
	polls := 0
	fu.ReadHook = func(off uintptr, val uint32) uint32 {
		polls++
		// compare read, then lock asserts on the third lock poll
		if polls == 4 {
			return val | UCG_CTR_DIV_LOCK
		}
		return val
	}
	u := New("test", fu, SyncMask)
	err := u.SetDivider(0, 2, 5)
	if !errors.Is(err, hwerr.ErrTimeout) {
		t.Errorf("set got: %v, want timeout", err)
	}
	// 1 compare + 3 lock polls + 1 enable read + 3 run polls
	if polls != 8 {
		t.Errorf("set got: %d reads, want 8", polls)
	}
}

func TestSetDividerForever(t *testing.T) {
	fu := newFakeUCG(true, false)
	polls := 0
	fu.ReadHook = func(off uintptr, val uint32) uint32 {
		polls++
		if polls >= 3000 {
			return val | uint32(FSM_RUN)<<7
		}
		return val
	}
	u := New("test", fu, SyncMask)
	err := u.SetDivider(1, 1, 0)
	if err != nil {
		t.Errorf("set got: %v, want nil", err)
	}
}

func TestEnableBypass(t *testing.T) {
	tests := []struct {
		running uint32
		mask    uint32
		initBP  uint32
		want    uint32
	}{
		{0xFFFF, 0x00FF, 0, 0x00FF},
		{0x00F0, 0x00FF, 0, 0x00F0},
		{0x0000, 0xFFFF, 0, 0x0000},
		{0x8001, 0x8000, 0x0001, 0x8001},
		{0x01F5, 0x01F5, 0, 0x01F5},
		{0x0005, 0x0007, 0x0100, 0x0105},
	}
	for _, test := range tests {
		fu := newFakeUCG(true, true)
		for ch := uint32(0); ch < UCG_CHANNELS; ch++ {
			if test.running&(1<<ch) != 0 {
				fu.setFSM(ch, FSM_RUN)
			} else {
				fu.setFSM(ch, FSM_REQUEST)
			}
		}
		fu.Set(UCG_BP_CTR, test.initBP)
		u := New("test", fu, SyncMask)
		err := u.EnableBypass(test.mask)
		if err != nil {
			t.Errorf("bypass %04X got: %v, want nil", test.mask, err)
		}
		if got := fu.Get(UCG_BP_CTR); got != test.want {
			t.Errorf("bypass running %04X mask %04X got: %04X, want %04X", test.running, test.mask, got, test.want)
		}
		if fu.Writes(UCG_BP_CTR) != 1 {
			t.Errorf("bypass wrote BP %d times, want once", fu.Writes(UCG_BP_CTR))
		}
	}
}

func TestInvalidMasks(t *testing.T) {
	for _, mask := range []uint32{0, 0x10000, 0x1FFFF, 0x80000000} {
		for _, sync := range []SyncMode{SyncMask, SyncAccumulate} {
			fu := newFakeUCG(true, true)
			u := New("test", fu, sync)
			if err := u.EnableBypass(mask); !errors.Is(err, hwerr.ErrInvalidParameter) {
				t.Errorf("bypass %X got: %v, want invalid parameter", mask, err)
			}
			if err := u.SyncAndDisableBypass(mask, 0xFFF); !errors.Is(err, hwerr.ErrInvalidParameter) {
				t.Errorf("sync %v %X got: %v, want invalid parameter", sync, mask, err)
			}
			if len(fu.Log()) != 0 {
				t.Errorf("mask %X wrote %v", mask, fu.Log())
			}
		}
	}
}

func TestInvalidChannel(t *testing.T) {
	fu := newFakeUCG(true, true)
	u := New("test", fu, SyncMask)
	if err := u.SetDivider(16, 1, 1); !errors.Is(err, hwerr.ErrInvalidParameter) {
		t.Errorf("set ch 16 got: %v, want invalid parameter", err)
	}
	if _, err := u.Divider(16); !errors.Is(err, hwerr.ErrInvalidParameter) {
		t.Errorf("divider ch 16 got: %v, want invalid parameter", err)
	}
	if _, _, err := u.State(100); !errors.Is(err, hwerr.ErrInvalidParameter) {
		t.Errorf("state ch 100 got: %v, want invalid parameter", err)
	}
	if _, err := u.FSM(16); !errors.Is(err, hwerr.ErrInvalidParameter) {
		t.Errorf("fsm ch 16 got: %v, want invalid parameter", err)
	}
	if len(fu.Log()) != 0 {
		t.Errorf("invalid channel wrote %v", fu.Log())
	}
}

func TestNullUnit(t *testing.T) {
	var u *Unit
	if err := u.EnableBypass(1); !errors.Is(err, hwerr.ErrNullArgument) {
		t.Errorf("bypass on nil got: %v, want null argument", err)
	}
	if err := New("empty", nil, SyncMask).SetDivider(0, 1, 1); !errors.Is(err, hwerr.ErrNullArgument) {
		t.Errorf("set on empty unit got: %v, want null argument", err)
	}
	if _, err := u.Divider(0); !errors.Is(err, hwerr.ErrNullArgument) {
		t.Errorf("divider on nil got: %v, want null argument", err)
	}
}

func TestSyncMask(t *testing.T) {
	tests := []struct {
		bp       uint32
		mask     uint32
		syncMask uint32
		wantBP   uint32
		wantSync []uint32
	}{
		{0x0FFF, 0xFFFF, 0x0FFF, 0x0000, []uint32{0x0FFF}},
		{0x00FF, 0x000F, 0x0000, 0x00F0, nil},
		{0x0007, 0x0007, 0x0007, 0x0000, []uint32{0x0007}},
		{0x0000, 0x01F5, 0x01F5, 0x0000, []uint32{0x01F5}},
	}
	for _, test := range tests {
		fu := newFakeUCG(true, true)
		fu.Set(UCG_BP_CTR, test.bp)
		u := New("test", fu, SyncMask)
		err := u.SyncAndDisableBypass(test.mask, test.syncMask)
		if err != nil {
			t.Errorf("sync %04X got: %v, want nil", test.mask, err)
		}
		if got := fu.Get(UCG_BP_CTR); got != test.wantBP {
			t.Errorf("sync bp %04X mask %04X got: %04X, want %04X", test.bp, test.mask, got, test.wantBP)
		}
		var syncs []uint32
		last := -1
		for i, a := range fu.Log() {
			switch a.Off {
			case UCG_SYNC_CLK:
				syncs = append(syncs, a.Val)
			case UCG_BP_CTR:
				last = i
			}
		}
		if len(syncs) != len(test.wantSync) || (len(syncs) == 1 && syncs[0] != test.wantSync[0]) {
			t.Errorf("sync bp %04X mask %04X sync writes got: %v, want %v", test.bp, test.mask, syncs, test.wantSync)
		}
		if last != len(fu.Log())-1 {
			t.Errorf("bypass wasn't cleared last: %v", fu.Log())
		}
	}
}

func TestSyncAccumulate(t *testing.T) {
	fu := newFakeUCG(true, true)
	fu.Set(UCG_BP_CTR, 0x00F3)
	fu.Set(UCG_SYNC_CLK, 0x0100)
	u := New("test", fu, SyncAccumulate)
	err := u.SyncAndDisableBypass(0x000F, 0xFFFF)
	if err != nil {
		t.Fatalf("sync got: %v, want nil", err)
	}
	if got := fu.Get(UCG_SYNC_CLK); got != 0x0103 {
		t.Errorf("sync register got: %04X, want %04X", got, 0x0103)
	}
	if got := fu.Get(UCG_BP_CTR); got != 0x00F0 {
		t.Errorf("bypass got: %04X, want %04X", got, 0x00F0)
	}
}

func TestParseSyncMode(t *testing.T) {
	tests := []struct {
		name string
		want SyncMode
		err  error
	}{
		{"mask", SyncMask, nil},
		{"accumulate", SyncAccumulate, nil},
		{"both", SyncMask, hwerr.ErrInvalidParameter},
	}
	for _, test := range tests {
		got, err := ParseSyncMode(test.name)
		if got != test.want || !errors.Is(err, test.err) {
			t.Errorf("parse %q got: %v (%v), want %v (%v)", test.name, got, err, test.want, test.err)
		}
		if err == nil && got.String() != test.name {
			t.Errorf("%v.String() got: %q, want %q", got, got.String(), test.name)
		}
	}
}

func TestFSMString(t *testing.T) {
	if got := FSM_RUN.String(); got != "RUN" {
		t.Errorf("FSM_RUN got: %q, want RUN", got)
	}
	if got := FSM(5).String(); got != "FSM(5)" {
		t.Errorf("FSM(5) got: %q, want FSM(5)", got)
	}
}
