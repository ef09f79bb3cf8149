package codegen

import (
	"fmt"

	"funcc/pkg/ast"
	"funcc/pkg/diag"
	"funcc/pkg/isa"
	"funcc/pkg/types"
)

func (cg *CodeGen) genStmt(s ast.Stmt) error {
	switch n := s.(type) {

	case *ast.Block:
		return cg.genBlock(n)

	case *ast.Assign:
		return cg.genAssign(n)

	case *ast.SubscriptAssign:
		return cg.genSubscriptAssign(n)

	case *ast.If:
		return cg.genIf(n)

	case *ast.While:
		return cg.genWhile(n)

	case *ast.Return:
		return cg.genReturn(n)

	case *ast.FunctionCall:
		cg.w.Comment("call: %s", n)
		res, err := cg.genCall(n)
		if err != nil {
			return err
		}
		cg.free(res.Reg)
		return nil

	default:
		return fmt.Errorf("codegen: unknown statement node %T", s)
	}
}

// genBlock opens a scope for the block. Slots pushed inside the block are
// released on the way out so SP agrees with stackHeight again.
func (cg *CodeGen) genBlock(b *ast.Block) error {
	cg.syms.EnterScope()
	height := cg.stackHeight
	for _, s := range b.Stmts {
		if err := cg.genStmt(s); err != nil {
			return err
		}
	}
	if n := cg.stackHeight - height; n > 0 {
		cg.w.Addi(isa.SP, isa.SP, int32(n))
	}
	cg.stackHeight = height
	cg.syms.ExitScope()
	return nil
}

func (cg *CodeGen) genAssign(n *ast.Assign) error {
	var sym *Symbol
	if n.IsDecl() {
		if n.Type.Kind == types.Void {
			return diag.Syntaxf(n.Loc, "variable '%s' declared void", n.Name)
		}
		cg.w.Comment("declare %s", n)
		cg.w.Push(isa.Zero)
		cg.stackHeight++
		sym = &Symbol{
			Name:    n.Name,
			Type:    n.Type.Clone(),
			Storage: Storage{Kind: Stack, Offset: cg.stackHeight},
			Loc:     n.Loc,
		}
		if err := cg.syms.Add(sym); err != nil {
			return err
		}
	} else {
		var err error
		if sym, err = cg.lookup(n.Name, n.Loc); err != nil {
			return err
		}
	}

	if n.Value == nil {
		return nil
	}
	res, err := cg.genExpr(n.Value)
	if err != nil {
		return err
	}
	defer cg.free(res.Reg)
	if !res.Type.Equal(sym.Type) {
		return diag.Unexpected(sym.Type, res.Type, n.Value.Pos())
	}
	return cg.store(sym, res.Reg)
}

func (cg *CodeGen) genSubscriptAssign(n *ast.SubscriptAssign) error {
	base, err := cg.genTyped(n.Target, types.StringType)
	if err != nil {
		return err
	}
	defer cg.free(base.Reg)
	idx, err := cg.genTyped(n.Index, types.IntType)
	if err != nil {
		return err
	}
	defer cg.free(idx.Reg)
	val, err := cg.genTyped(n.Value, types.IntType)
	if err != nil {
		return err
	}
	defer cg.free(val.Reg)

	addr, err := cg.alloc("subscript address")
	if err != nil {
		return err
	}
	cg.w.Add(addr, base.Reg, idx.Reg)
	cg.w.Sw(addr, 0, val.Reg)
	cg.free(addr)
	return nil
}

func (cg *CodeGen) genIf(n *ast.If) error {
	cg.w.Comment("if (%s)", n.Cond)
	cond, err := cg.genTyped(n.Cond, types.BoolType)
	if err != nil {
		return err
	}
	idx := cg.nextLabelIndex()
	elseLabel := label(ifElsePrefix, idx)
	endLabel := label(ifEndPrefix, idx)

	cg.w.BeqLabel(cond.Reg, isa.Zero, elseLabel)
	cg.free(cond.Reg)

	if err := cg.genBlock(n.Then); err != nil {
		return err
	}
	if n.Else != nil {
		cg.w.Jump(endLabel)
	}
	cg.w.Label(elseLabel)
	if n.Else != nil {
		if err := cg.genBlock(n.Else); err != nil {
			return err
		}
	}
	cg.w.Label(endLabel)
	return nil
}

func (cg *CodeGen) genWhile(n *ast.While) error {
	idx := cg.nextLabelIndex()
	startLabel := label(whileStartPrefix, idx)
	endLabel := label(whileEndPrefix, idx)

	cg.w.Label(startLabel)
	cg.w.Comment("while (%s)", n.Cond)
	height := cg.stackHeight
	cond, err := cg.genTyped(n.Cond, types.BoolType)
	if err != nil {
		return err
	}
	// The condition runs once per iteration; string slots it pushed are
	// dropped before branching so every iteration starts from the same SP.
	if pushed := cg.stackHeight - height; pushed > 0 {
		cg.w.Addi(isa.SP, isa.SP, int32(pushed))
		cg.stackHeight = height
	}
	cg.w.BeqLabel(cond.Reg, isa.Zero, endLabel)
	cg.free(cond.Reg)

	if err := cg.genBlock(n.Body); err != nil {
		return err
	}
	cg.w.Jump(startLabel)
	cg.w.Label(endLabel)
	return nil
}

func (cg *CodeGen) genReturn(n *ast.Return) error {
	want := types.VoidType
	if cg.function != nil {
		want = cg.function.Ret
	}

	if n.Value != nil {
		res, err := cg.genTyped(n.Value, want)
		if err != nil {
			return err
		}
		cg.w.Mov(isa.RR, res.Reg)
		cg.free(res.Reg)
	} else if want.Kind != types.Void {
		return diag.Unexpected(want, types.VoidType, n.Loc)
	}
	return cg.w.Ret(cg.regs)
}

func (cg *CodeGen) lookup(name string, loc diag.Location) (*Symbol, error) {
	sym, err := cg.syms.Find(name)
	if err != nil {
		return nil, &diag.SymbolNotFoundError{Name: name, Loc: loc}
	}
	return sym, nil
}

// load places the value of sym in d.
func (cg *CodeGen) load(sym *Symbol, d isa.Reg) {
	switch sym.Storage.Kind {
	case Stack:
		cg.w.GetArg(d, sym.Storage.Offset)
	case Absolute:
		cg.w.Li(d, int32(sym.Storage.Address))
	case Deferred:
		cg.w.LiLabel(d, sym.Storage.Label)
	}
}

// store writes src into the location of sym.
func (cg *CodeGen) store(sym *Symbol, src isa.Reg) error {
	if sym.Storage.Kind == Stack {
		cg.w.PutArg(src, sym.Storage.Offset)
		return nil
	}
	addr, err := cg.alloc("store address")
	if err != nil {
		return err
	}
	cg.load(sym, addr)
	cg.w.Sw(addr, 0, src)
	cg.free(addr)
	return nil
}
