package isa

import (
	"strconv"
	"strings"
)

type pendingCall struct {
	jalAddr int
	patch   int
}

const retPlaceholder = "?"

// CallStart opens a frame: it captures the return address, pushes it and the
// caller's FP, then points FP at the new top of stack. Arguments are pushed
// by the caller afterwards so the i-th argument lands at FP-i.
//
// The return address is patched in by the matching CallEnd, once the size of
// the argument pushes is known.
func (w *Writer) CallStart(regs Scratch) error {
	r, err := regs.Alloc("return address")
	if err != nil {
		return err
	}
	defer regs.Free(r)

	jal := w.addr
	w.Jal(r, 0)
	patch := w.emit(1, "addi %s, %s, %s", r, r, retPlaceholder)
	w.Push(r)
	w.Push(FP)
	w.Mov(FP, SP)
	w.pending = append(w.pending, pendingCall{jalAddr: jal, patch: patch})
	return nil
}

// CallEnd jumps to the address held in target and resolves the return
// address of the innermost open CallStart to the instruction after the jump.
func (w *Writer) CallEnd(target Reg) {
	if len(w.pending) == 0 {
		panic("isa: CallEnd without CallStart")
	}
	pc := w.pending[len(w.pending)-1]
	w.pending = w.pending[:len(w.pending)-1]

	w.Jalr(Zero, target, 0)
	off := w.addr - (pc.jalAddr + 1)
	line := w.lines[pc.patch]
	w.lines[pc.patch] = strings.TrimSuffix(line, retPlaceholder) + strconv.Itoa(off)
}

// PendingCalls reports how many CallStart sequences are still unmatched.
func (w *Writer) PendingCalls() int { return len(w.pending) }

// Ret tears down the current frame and jumps back to the caller.
func (w *Writer) Ret(regs Scratch) error {
	w.Mov(SP, FP)
	w.Pop(FP)
	r, err := regs.Alloc("return jump")
	if err != nil {
		return err
	}
	w.Pop(r)
	w.Jalr(Zero, r, 0)
	regs.Free(r)
	return nil
}
