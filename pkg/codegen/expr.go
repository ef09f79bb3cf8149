package codegen

import (
	"fmt"

	"funcc/pkg/ast"
	"funcc/pkg/diag"
	"funcc/pkg/isa"
	"funcc/pkg/types"
)

type binaryOp func(w *isa.Writer, regs isa.Scratch, a, b ExprResult) (ExprResult, error)

var binaryOps = map[ast.BinOp]binaryOp{
	ast.Plus:     Add,
	ast.Minus:    Sub,
	ast.Mul:      Mul,
	ast.Div:      Div,
	ast.Mod:      Rem,
	ast.Less:     Less,
	ast.Greater:  Greater,
	ast.Equal:    Equal,
	ast.NotEqual: NotEqual,
	ast.And:      And,
	ast.Or:       Or,
}

func (cg *CodeGen) genExpr(e ast.Expr) (ExprResult, error) {
	switch n := e.(type) {

	case *ast.IntLiteral:
		r, err := cg.alloc("int literal")
		if err != nil {
			return ExprResult{}, err
		}
		cg.w.Li(r, n.Value)
		return ExprResult{Type: types.IntType, Reg: r}, nil

	case *ast.BoolLiteral:
		r, err := cg.alloc("bool literal")
		if err != nil {
			return ExprResult{}, err
		}
		var v int32
		if n.Value {
			v = 1
		}
		cg.w.Li(r, v)
		return ExprResult{Type: types.BoolType, Reg: r}, nil

	case *ast.StringLiteral:
		slots, err := cg.w.PushString(cg.regs, n.Value)
		if err != nil {
			return ExprResult{}, err
		}
		cg.stackHeight += slots
		r, err := cg.alloc("string pointer")
		if err != nil {
			return ExprResult{}, err
		}
		cg.w.Mov(r, isa.SP)
		return ExprResult{Type: types.StringType, Reg: r}, nil

	case *ast.Identifier:
		sym, err := cg.lookup(n.Name, n.Loc)
		if err != nil {
			return ExprResult{}, err
		}
		r, err := cg.alloc("load " + n.Name)
		if err != nil {
			return ExprResult{}, err
		}
		cg.load(sym, r)
		return ExprResult{Type: sym.Type.Clone(), Reg: r}, nil

	case *ast.Binop:
		return cg.genBinop(n)

	case *ast.Unop:
		operand, err := cg.genExpr(n.Operand)
		if err != nil {
			return ExprResult{}, err
		}
		defer cg.free(operand.Reg)
		var res ExprResult
		if n.Op == ast.Neg {
			res, err = Negate(cg.w, cg.regs, operand)
		} else {
			res, err = Not(cg.w, cg.regs, operand)
		}
		if err != nil {
			return ExprResult{}, diag.Retag(err, n.Loc)
		}
		return res, nil

	case *ast.Subscript:
		base, err := cg.genTyped(n.Target, types.StringType)
		if err != nil {
			return ExprResult{}, err
		}
		defer cg.free(base.Reg)
		idx, err := cg.genTyped(n.Index, types.IntType)
		if err != nil {
			return ExprResult{}, err
		}
		defer cg.free(idx.Reg)
		r, err := cg.alloc("subscript")
		if err != nil {
			return ExprResult{}, err
		}
		cg.w.Add(r, base.Reg, idx.Reg)
		cg.w.Lw(r, r, 0)
		return ExprResult{Type: types.IntType, Reg: r}, nil

	case *ast.FunctionCall:
		return cg.genCall(n)

	default:
		return ExprResult{}, fmt.Errorf("codegen: unknown expression node %T", e)
	}
}

// genTyped generates e and checks its type, releasing the register on a
// mismatch.
func (cg *CodeGen) genTyped(e ast.Expr, want types.Type) (ExprResult, error) {
	res, err := cg.genExpr(e)
	if err != nil {
		return ExprResult{}, err
	}
	if !res.Type.Equal(want) {
		cg.free(res.Reg)
		return ExprResult{}, diag.Unexpected(want, res.Type, e.Pos())
	}
	return res, nil
}

func (cg *CodeGen) genBinop(n *ast.Binop) (ExprResult, error) {
	op, ok := binaryOps[n.Op]
	if !ok {
		return ExprResult{}, fmt.Errorf("codegen: unknown operator %s", n.Op)
	}
	left, err := cg.genExpr(n.Left)
	if err != nil {
		return ExprResult{}, err
	}
	right, err := cg.genExpr(n.Right)
	if err != nil {
		cg.free(left.Reg)
		return ExprResult{}, err
	}
	res, err := op(cg.w, cg.regs, left, right)
	cg.free(left.Reg, right.Reg)
	if err != nil {
		return ExprResult{}, diag.Retag(err, n.Loc)
	}
	return res, nil
}

// genCall evaluates the callee and the arguments, spills every other live
// register, runs the call sequence and restores the spilled registers.
func (cg *CodeGen) genCall(n *ast.FunctionCall) (ExprResult, error) {
	callee, err := cg.genExpr(n.Func)
	if err != nil {
		return ExprResult{}, err
	}
	if !callee.Type.IsFunction() {
		cg.free(callee.Reg)
		return ExprResult{}, diag.Unexpected(types.Type{Kind: types.Function}, callee.Type, n.Func.Pos())
	}
	params := callee.Type.Params()
	if len(params) != len(n.Args) {
		cg.free(callee.Reg)
		return ExprResult{}, diag.Syntaxf(n.Loc, "wrong number of arguments, expected: %d, but got %d", len(params), len(n.Args))
	}

	args := make([]ExprResult, 0, len(n.Args))
	release := func() {
		cg.free(callee.Reg)
		for _, a := range args {
			cg.free(a.Reg)
		}
	}
	for i, a := range n.Args {
		res, err := cg.genTyped(a, params[i])
		if err != nil {
			release()
			return ExprResult{}, err
		}
		args = append(args, res)
	}

	saved := cg.spillSet(callee, args)
	for _, r := range saved {
		cg.w.Push(r)
	}
	if err := cg.w.CallStart(cg.regs); err != nil {
		release()
		return ExprResult{}, err
	}
	for _, a := range args {
		cg.w.Push(a.Reg)
		cg.free(a.Reg)
	}
	cg.w.CallEnd(callee.Reg)
	cg.free(callee.Reg)

	r, err := cg.alloc("call result")
	if err != nil {
		return ExprResult{}, err
	}
	cg.w.Mov(r, isa.RR)
	for i := len(saved) - 1; i >= 0; i-- {
		cg.w.Pop(saved[i])
	}
	return ExprResult{Type: callee.Type.Return(), Reg: r}, nil
}

// spillSet lists the live registers a call must preserve: everything except
// the callee and argument registers the call consumes.
func (cg *CodeGen) spillSet(callee ExprResult, args []ExprResult) []isa.Reg {
	consumed := map[isa.Reg]bool{callee.Reg: true}
	for _, a := range args {
		consumed[a.Reg] = true
	}
	var saved []isa.Reg
	for _, r := range cg.regs.Live() {
		if !consumed[r] {
			saved = append(saved, r)
		}
	}
	return saved
}
