package codegen

import (
	"funcc/pkg/diag"
	"funcc/pkg/isa"
	"funcc/pkg/types"
)

// The operation library lowers one operator each. Operands must already sit
// in registers; every operation allocates a fresh result register and leaves
// the operands to the caller. Type errors carry no location here, the call
// site attaches one.

func expect(t types.Type, want types.Type) error {
	if !t.Equal(want) {
		return diag.Unexpected(want, t, diag.Location{})
	}
	return nil
}

type rrrEmitter func(w *isa.Writer, d, s1, s2 isa.Reg)

func binary(w *isa.Writer, regs isa.Scratch, a, b ExprResult, operand, result types.Type, reason string, emit rrrEmitter) (ExprResult, error) {
	if err := expect(a.Type, operand); err != nil {
		return ExprResult{}, err
	}
	if err := expect(b.Type, operand); err != nil {
		return ExprResult{}, err
	}
	r, err := regs.Alloc(reason)
	if err != nil {
		return ExprResult{}, err
	}
	emit(w, r, a.Reg, b.Reg)
	return ExprResult{Type: result, Reg: r}, nil
}

// Add computes a + b over ints.
func Add(w *isa.Writer, regs isa.Scratch, a, b ExprResult) (ExprResult, error) {
	return binary(w, regs, a, b, types.IntType, types.IntType, "add", (*isa.Writer).Add)
}

// Sub computes a - b over ints.
func Sub(w *isa.Writer, regs isa.Scratch, a, b ExprResult) (ExprResult, error) {
	return binary(w, regs, a, b, types.IntType, types.IntType, "sub", (*isa.Writer).Sub)
}

// Mul computes a * b over ints.
func Mul(w *isa.Writer, regs isa.Scratch, a, b ExprResult) (ExprResult, error) {
	return binary(w, regs, a, b, types.IntType, types.IntType, "mul", (*isa.Writer).Mul)
}

// Div computes the truncated quotient a / b.
func Div(w *isa.Writer, regs isa.Scratch, a, b ExprResult) (ExprResult, error) {
	return binary(w, regs, a, b, types.IntType, types.IntType, "div", (*isa.Writer).Div)
}

// Rem computes a % b with the sign of a.
func Rem(w *isa.Writer, regs isa.Scratch, a, b ExprResult) (ExprResult, error) {
	return binary(w, regs, a, b, types.IntType, types.IntType, "rem", (*isa.Writer).Rem)
}

// Less yields the bool a < b for int operands.
func Less(w *isa.Writer, regs isa.Scratch, a, b ExprResult) (ExprResult, error) {
	return binary(w, regs, a, b, types.IntType, types.BoolType, "less", (*isa.Writer).Slt)
}

// Greater is a >= b and a != b.
func Greater(w *isa.Writer, regs isa.Scratch, a, b ExprResult) (ExprResult, error) {
	res, err := binary(w, regs, a, b, types.IntType, types.BoolType, "greater", (*isa.Writer).Sge)
	if err != nil {
		return ExprResult{}, err
	}
	ne, err := regs.Alloc("greater ne")
	if err != nil {
		regs.Free(res.Reg)
		return ExprResult{}, err
	}
	w.Sne(ne, a.Reg, b.Reg)
	w.And(res.Reg, res.Reg, ne)
	regs.Free(ne)
	return res, nil
}

// Equal compares two ints for equality.
func Equal(w *isa.Writer, regs isa.Scratch, a, b ExprResult) (ExprResult, error) {
	return binary(w, regs, a, b, types.IntType, types.BoolType, "eq", (*isa.Writer).Seq)
}

// NotEqual compares two ints for inequality.
func NotEqual(w *isa.Writer, regs isa.Scratch, a, b ExprResult) (ExprResult, error) {
	return binary(w, regs, a, b, types.IntType, types.BoolType, "neq", (*isa.Writer).Sne)
}

// And is the logical and of two bools.
func And(w *isa.Writer, regs isa.Scratch, a, b ExprResult) (ExprResult, error) {
	return binary(w, regs, a, b, types.BoolType, types.BoolType, "and", (*isa.Writer).And)
}

// Or is the logical or of two bools.
func Or(w *isa.Writer, regs isa.Scratch, a, b ExprResult) (ExprResult, error) {
	return binary(w, regs, a, b, types.BoolType, types.BoolType, "or", (*isa.Writer).Or)
}

// Negate computes 0 - a.
func Negate(w *isa.Writer, regs isa.Scratch, a ExprResult) (ExprResult, error) {
	if err := expect(a.Type, types.IntType); err != nil {
		return ExprResult{}, err
	}
	r, err := regs.Alloc("negate")
	if err != nil {
		return ExprResult{}, err
	}
	w.Sub(r, isa.Zero, a.Reg)
	return ExprResult{Type: types.IntType, Reg: r}, nil
}

// Not flips a boolean held as 0 or 1.
func Not(w *isa.Writer, regs isa.Scratch, a ExprResult) (ExprResult, error) {
	if err := expect(a.Type, types.BoolType); err != nil {
		return ExprResult{}, err
	}
	r, err := regs.Alloc("not")
	if err != nil {
		return ExprResult{}, err
	}
	w.Xori(r, a.Reg, 1)
	return ExprResult{Type: types.BoolType, Reg: r}, nil
}
