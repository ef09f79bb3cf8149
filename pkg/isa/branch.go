package isa

// Label-targeted branches. The machine only branches by small numeric
// offsets, so each one is the complementary short branch hopping over an
// unconditional jump to the label.

const skipJump = 1

func (w *Writer) BeqLabel(s1, s2 Reg, label string) {
	w.Bne(s1, s2, skipJump)
	w.JalLabel(Zero, label)
}

func (w *Writer) BneLabel(s1, s2 Reg, label string) {
	w.Beq(s1, s2, skipJump)
	w.JalLabel(Zero, label)
}

func (w *Writer) BltLabel(s1, s2 Reg, label string) {
	w.Bge(s1, s2, skipJump)
	w.JalLabel(Zero, label)
}

func (w *Writer) BgeLabel(s1, s2 Reg, label string) {
	w.Blt(s1, s2, skipJump)
	w.JalLabel(Zero, label)
}

// Jump transfers control to label unconditionally.
func (w *Writer) Jump(label string) { w.JalLabel(Zero, label) }
