package mmio

import (
	"github.com/platinasystems/log"
	"golang.org/x/sys/unix"
)

// ControlReg names a core control register.
type ControlReg int

const (
	Count   ControlReg = iota // free running cycle counter, CP0 $9
	Compare                   // timer compare, CP0 $11
)

// Platform is the small set of core operations the drivers need beyond register access.
type Platform interface {
	ReadControl(reg ControlReg) uint32
	WriteControl(reg ControlReg, val uint32)
	// Barrier orders every preceding register access before any following one.
	Barrier()
}

// Flusher is implemented by buses that buffer writes, like DevMem.
type Flusher interface {
	Flush() error
}

// Host implements Platform for a Linux host driving the SoC through /dev/mem.
// Its Count register ticks at a fixed rate taken from CLOCK_MONOTONIC_RAW.
type Host struct {
	hz      uint64
	base    int64
	offset  uint32
	compare uint32
	flusher Flusher
}

// NewHost returns a Host whose Count ticks at tickHz. f may be nil.
func NewHost(tickHz uint32, f Flusher) *Host {
	h := &Host{
		hz:      uint64(tickHz),
		flusher: f,
	}
	h.base = h.now()
	return h
}

func (h *Host) now() int64 {
	var ts unix.Timespec
	unix.ClockGettime(unix.CLOCK_MONOTONIC_RAW, &ts) // Ignore error
	return ts.Nano()
}

func (h *Host) ReadControl(reg ControlReg) uint32 {
	switch reg {
	case Count:
		ns := uint64(h.now() - h.base)
		ticks := ns/1e9*h.hz + ns%1e9*h.hz/1e9
		return h.offset + uint32(ticks)
	case Compare:
		return h.compare
	}
	return 0
}

func (h *Host) WriteControl(reg ControlReg, val uint32) {
	switch reg {
	case Count:
		h.base = h.now()
		h.offset = val
	case Compare:
		h.compare = val
	}
}

func (h *Host) Barrier() {
	if h.flusher == nil {
		return
	}
	err := h.flusher.Flush()
	if err != nil {
		log.Printf("warning: barrier flush failed: %v", err)
	}
}
