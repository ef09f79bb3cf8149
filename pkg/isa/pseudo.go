package isa

// Mov copies s into d.
func (w *Writer) Mov(d, s Reg) { w.Addi(d, s, 0) }

// Push decrements SP and stores src at the new top of stack.
func (w *Writer) Push(src Reg) {
	w.Addi(SP, SP, -1)
	w.Sw(SP, 0, src)
}

// Pop loads the top of stack into d and increments SP.
func (w *Writer) Pop(d Reg) {
	w.Lw(d, SP, 0)
	w.Addi(SP, SP, 1)
}

// GetArg loads the frame slot at FP-offset.
func (w *Writer) GetArg(d Reg, offset int) {
	w.Lw(d, FP, -int32(offset))
}

// PutArg stores s into the frame slot at FP-offset.
func (w *Writer) PutArg(s Reg, offset int) {
	w.Sw(FP, -int32(offset), s)
}

// PushString lays str out below SP one character per word, terminated by a
// zero word, and moves SP onto the first character. It returns the number
// of stack slots consumed.
func (w *Writer) PushString(regs Scratch, str string) (int, error) {
	r, err := regs.Alloc("push string")
	if err != nil {
		return 0, err
	}
	defer regs.Free(r)

	n := len(str)
	w.Addi(r, Zero, 0)
	w.Sw(SP, -1, r)
	for i := 0; i < n; i++ {
		w.Addi(r, Zero, int32(str[n-1-i]))
		w.Sw(SP, int32(-i-2), r)
	}
	w.Addi(SP, SP, -int32(n+1))
	return n + 1, nil
}
