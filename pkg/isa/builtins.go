package isa

// Builtin entry labels.
const (
	WriteLabel = "WRITE"
	ReadLabel  = "READ"
)

// EmitWrite emits the body of the output routine: print its one argument.
// It returns the routine's entry address.
func (w *Writer) EmitWrite(regs Scratch) (int, error) {
	w.Label(WriteLabel)
	addr := w.addr
	r, err := regs.Alloc("write argument")
	if err != nil {
		return 0, err
	}
	w.GetArg(r, 1)
	w.Ewrite(r)
	regs.Free(r)
	return addr, w.Ret(regs)
}

// EmitRead emits the input routine, which returns the value read in RR.
func (w *Writer) EmitRead(regs Scratch) (int, error) {
	w.Label(ReadLabel)
	addr := w.addr
	w.Eread(RR)
	return addr, w.Ret(regs)
}
