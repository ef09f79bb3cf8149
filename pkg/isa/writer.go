package isa

import (
	"fmt"
	"strings"
)

// Writer buffers the emitted program and tracks the address of the next
// instruction. Comments and labels do not occupy addresses.
type Writer struct {
	lines   []string
	addr    int
	pending []pendingCall

	// Debug enables "# ..." commentary, AllocTrace the allocator's lines.
	Debug      bool
	AllocTrace bool
}

func NewWriter() *Writer {
	return &Writer{}
}

// Addr is the address the next instruction will be placed at.
func (w *Writer) Addr() int { return w.addr }

func (w *Writer) String() string {
	if len(w.lines) == 0 {
		return ""
	}
	return strings.Join(w.lines, "\n") + "\n"
}

// Lines returns a copy of the buffered output.
func (w *Writer) Lines() []string {
	return append([]string(nil), w.lines...)
}

func (w *Writer) emit(words int, format string, args ...any) int {
	w.lines = append(w.lines, fmt.Sprintf(format, args...))
	w.addr += words
	return len(w.lines) - 1
}

func (w *Writer) Label(name string) {
	w.lines = append(w.lines, name+":")
}

func (w *Writer) Comment(format string, args ...any) {
	if w.Debug {
		w.lines = append(w.lines, "# "+fmt.Sprintf(format, args...))
	}
}

// Tracef records allocator activity.
func (w *Writer) Tracef(format string, args ...any) {
	if w.AllocTrace {
		w.lines = append(w.lines, "# "+fmt.Sprintf(format, args...))
	}
}

func (w *Writer) rrr(op string, d, s1, s2 Reg) {
	w.emit(1, "%s %s, %s, %s", op, d, s1, s2)
}

func (w *Writer) rri(op string, d, s Reg, imm int32) {
	w.emit(1, "%s %s, %s, %d", op, d, s, imm)
}

func (w *Writer) Lui(d Reg, imm int32)         { w.emit(1, "lui %s, %d", d, imm) }
func (w *Writer) Addi(d, s Reg, imm int32)     { w.rri("addi", d, s, imm) }
func (w *Writer) Xori(d, s Reg, imm int32)     { w.rri("xori", d, s, imm) }
func (w *Writer) Li(d Reg, imm int32)          { w.emit(LoadWidth(imm), "li %s, %d", d, imm) }
func (w *Writer) LiLabel(d Reg, label string)  { w.emit(LabelLoad, "li %s, %s", d, label) }
func (w *Writer) Add(d, s1, s2 Reg)            { w.rrr("add", d, s1, s2) }
func (w *Writer) Sub(d, s1, s2 Reg)            { w.rrr("sub", d, s1, s2) }
func (w *Writer) Xor(d, s1, s2 Reg)            { w.rrr("xor", d, s1, s2) }
func (w *Writer) Srl(d, s1, s2 Reg)            { w.rrr("srl", d, s1, s2) }
func (w *Writer) Sra(d, s1, s2 Reg)            { w.rrr("sra", d, s1, s2) }
func (w *Writer) Or(d, s1, s2 Reg)             { w.rrr("or", d, s1, s2) }
func (w *Writer) And(d, s1, s2 Reg)            { w.rrr("and", d, s1, s2) }
func (w *Writer) Mul(d, s1, s2 Reg)            { w.rrr("mul", d, s1, s2) }
func (w *Writer) Div(d, s1, s2 Reg)            { w.rrr("div", d, s1, s2) }
func (w *Writer) Rem(d, s1, s2 Reg)            { w.rrr("rem", d, s1, s2) }
func (w *Writer) Sll(d, s1, s2 Reg)            { w.rrr("sll", d, s1, s2) }
func (w *Writer) Slt(d, s1, s2 Reg)            { w.rrr("slt", d, s1, s2) }
func (w *Writer) Seq(d, s1, s2 Reg)            { w.rrr("seq", d, s1, s2) }
func (w *Writer) Sne(d, s1, s2 Reg)            { w.rrr("sne", d, s1, s2) }
func (w *Writer) Sge(d, s1, s2 Reg)            { w.rrr("sge", d, s1, s2) }
func (w *Writer) Lw(d, base Reg, imm int32)    { w.rri("lw", d, base, imm) }
func (w *Writer) Jalr(d, s Reg, imm int32)     { w.rri("jalr", d, s, imm) }
func (w *Writer) Jal(d Reg, imm int32)         { w.emit(1, "jal %s, %d", d, imm) }
func (w *Writer) JalLabel(d Reg, label string) { w.emit(1, "jal %s, %s", d, label) }
func (w *Writer) Ebreak()                      { w.emit(1, "ebreak") }
func (w *Writer) Eread(d Reg)                  { w.emit(1, "eread %s", d) }
func (w *Writer) Ewrite(s Reg)                 { w.emit(1, "ewrite %s", s) }

// Sw stores src at base+imm. Operands are written base, offset, source.
func (w *Writer) Sw(base Reg, imm int32, src Reg) {
	w.emit(1, "sw %s, %d, %s", base, imm, src)
}

// Numeric branches. The offset counts instructions after the branch.
func (w *Writer) Beq(s1, s2 Reg, off int32) { w.rri("beq", s1, s2, off) }
func (w *Writer) Bne(s1, s2 Reg, off int32) { w.rri("bne", s1, s2, off) }
func (w *Writer) Blt(s1, s2 Reg, off int32) { w.rri("blt", s1, s2, off) }
func (w *Writer) Bge(s1, s2 Reg, off int32) { w.rri("bge", s1, s2, off) }
