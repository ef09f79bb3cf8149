// Package isa writes the textual instruction stream for the 32-register
// target machine and implements its calling convention.
package isa

import "strconv"

type Reg uint8

// Reserved registers. Everything between Zero and RR is general purpose.
const (
	Zero Reg = 0
	RR   Reg = 29
	FP   Reg = 30
	SP   Reg = 31

	NumRegs = 32
)

func (r Reg) String() string { return "x" + strconv.Itoa(int(r)) }

// ParseReg accepts the "xN" spelling used in listings.
func ParseReg(s string) (Reg, bool) {
	if len(s) < 2 || s[0] != 'x' {
		return 0, false
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 0 || n >= NumRegs {
		return 0, false
	}
	return Reg(n), true
}

// Scratch hands out temporaries for the pseudo-instructions that need one.
type Scratch interface {
	Alloc(reason string) (Reg, error)
	Free(r Reg)
}

// Immediates that fit in 21 signed bits load in one word; the rest take a
// lui/addi pair.
const (
	immLimit  = 1 << 20
	LabelLoad = 2
)

// LoadWidth is the number of words "li d, imm" occupies.
func LoadWidth(imm int32) int {
	if imm >= immLimit || imm < -immLimit {
		return 2
	}
	return 1
}
