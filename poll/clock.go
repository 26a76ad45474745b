package poll

import (
	"time"

	"github.com/Jon-Bright/mcom03clk/hwerr"
	"github.com/Jon-Bright/mcom03clk/mmio"
	"github.com/jpillora/backoff"
)

// Clock measures time with the core's 32-bit cycle counter. The core clock
// changes while the service subsystem is being set up, so each new run of
// ticks is converted to microseconds at the rate hz reports when it's read.
// Microseconds already counted are never rescaled.
type Clock struct {
	p     mmio.Platform
	hz    func() uint32
	last  uint32
	ticks uint64
	us    uint64
	frac  uint64 // Leftover tick*1e6 product, below one µs at the last rate

	// MaxIntervalUS caps the growing pause between reads in Poll. Below the
	// requested interval, the interval stays fixed.
	MaxIntervalUS uint32
}

func NewClock(p mmio.Platform, hz func() uint32) *Clock {
	return &Clock{
		p:    p,
		hz:   hz,
		last: p.ReadControl(mmio.Count),
	}
}

// Ticks returns the cycles counted since the Clock was created. It must be
// called at least once per counter wrap to stay accurate.
func (c *Clock) Ticks() uint64 {
	now := c.p.ReadControl(mmio.Count)
	d := uint64(now - c.last)
	c.last = now
	c.ticks += d
	hz := c.rate()
	acc := c.frac + d*1000000
	c.us += acc / hz
	c.frac = acc % hz
	return c.ticks
}

func (c *Clock) rate() uint64 {
	hz := uint64(c.hz())
	if hz == 0 {
		hz = 1
	}
	return hz
}

// NowUS returns microseconds since the Clock was created. It never decreases.
func (c *Clock) NowUS() uint64 {
	c.Ticks()
	return c.us
}

// DelayUS busy-waits for us microseconds.
func (c *Clock) DelayUS(us uint32) {
	ticks := uint64(us) * c.rate() / 1000000
	start := c.Ticks()
	for c.Ticks()-start < ticks {
	}
}

// Poll calls read until pred accepts the value, returning the last value read.
// A timeoutUS of 0 polls forever. Once the deadline has passed, the value is
// read one final time before ErrTimeout is returned. Between reads, Poll waits
// intervalUS, doubling up to MaxIntervalUS; an interval of 0 spins.
func (c *Clock) Poll(read func() uint32, pred func(uint32) bool, intervalUS, timeoutUS uint32) (uint32, error) {
	var b *backoff.Backoff
	if intervalUS != 0 {
		min := time.Duration(intervalUS) * time.Microsecond
		max := time.Duration(c.MaxIntervalUS) * time.Microsecond
		if max < min {
			max = min
		}
		b = &backoff.Backoff{
			Min:    min,
			Max:    max,
			Factor: 2,
			Jitter: false,
		}
	}
	deadline := c.NowUS() + uint64(timeoutUS)
	for {
		val := read()
		if pred(val) {
			return val, nil
		}
		if timeoutUS != 0 && c.NowUS() > deadline {
			val = read()
			if pred(val) {
				return val, nil
			}
			return val, hwerr.ErrTimeout
		}
		if b != nil {
			c.DelayUS(uint32(b.Duration() / time.Microsecond))
		}
	}
}
