// Package poll implements the waits used while clocks and power domains settle:
// retry-counted polls and deadline polls driven by the core's cycle counter.
package poll

import (
	"github.com/Jon-Bright/mcom03clk/hwerr"
)

// Retry evaluates cond until it returns true. With max == 0 it never gives up;
// otherwise cond is evaluated at most max times before ErrTimeout is returned.
func Retry(max uint32, cond func() bool) error {
	return NewBudget(max).Until(cond)
}

// Budget is a retry counter shared by consecutive waits of one operation.
type Budget struct {
	forever bool
	left    uint32
}

// NewBudget returns a Budget of max attempts; 0 means unbounded.
func NewBudget(max uint32) *Budget {
	return &Budget{forever: max == 0, left: max}
}

// Until evaluates cond until it returns true, spending one attempt on every false result.
func (b *Budget) Until(cond func() bool) error {
	if !b.forever && b.left == 0 {
		return hwerr.ErrTimeout
	}
	for !cond() {
		if b.forever {
			continue
		}
		b.left--
		if b.left == 0 {
			return hwerr.ErrTimeout
		}
	}
	return nil
}
