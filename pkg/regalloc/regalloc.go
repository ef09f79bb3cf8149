// Package regalloc hands out the general purpose registers x1..x28.
package regalloc

import (
	"fmt"

	"funcc/pkg/diag"
	"funcc/pkg/isa"
)

// Tracer receives one line per allocation and release.
type Tracer interface {
	Tracef(format string, args ...any)
}

// Allocator always returns the lowest free register.
type Allocator struct {
	used  [isa.RR]bool
	trace Tracer
}

// New returns an allocator with every register free. trace may be nil.
func New(trace Tracer) *Allocator {
	return &Allocator{trace: trace}
}

func (a *Allocator) Alloc(reason string) (isa.Reg, error) {
	for i := 1; i < len(a.used); i++ {
		if !a.used[i] {
			a.used[i] = true
			if a.trace != nil {
				a.trace.Tracef("ALLOC: %d %s", i, reason)
			}
			return isa.Reg(i), nil
		}
	}
	return 0, fmt.Errorf("allocating %s: %w", reason, diag.ErrRegistersExhausted)
}

// Free releases r. Releasing a register that is not held is a bug in the
// caller.
func (a *Allocator) Free(r isa.Reg) {
	if r == isa.Zero || int(r) >= len(a.used) {
		panic(fmt.Sprintf("regalloc: %s is not allocatable", r))
	}
	if !a.used[r] {
		panic(fmt.Sprintf("regalloc: double release of %s", r))
	}
	a.used[r] = false
	if a.trace != nil {
		a.trace.Tracef("RELEASE: %d", int(r))
	}
}

// Live lists the held registers in ascending order.
func (a *Allocator) Live() []isa.Reg {
	var regs []isa.Reg
	for i := 1; i < len(a.used); i++ {
		if a.used[i] {
			regs = append(regs, isa.Reg(i))
		}
	}
	return regs
}

func (a *Allocator) InUse(r isa.Reg) bool {
	return int(r) < len(a.used) && a.used[r]
}

// Capacity is the number of allocatable registers.
func (a *Allocator) Capacity() int { return len(a.used) - 1 }
