// Package codegen lowers a FunC syntax tree to the target's textual
// instruction stream.
package codegen

import (
	"fmt"

	"funcc/pkg/ast"
	"funcc/pkg/diag"
	"funcc/pkg/isa"
	"funcc/pkg/regalloc"
	"funcc/pkg/symtable"
	"funcc/pkg/types"
)

// Options control the generated stream. The zero value of a field selects
// its default.
type Options struct {
	// Debug annotates the stream with "# ..." comments, AllocTrace with the
	// allocator's ALLOC and RELEASE lines.
	Debug      bool
	AllocTrace bool
	// StackTop is the initial value of SP and FP.
	StackTop int32
	// EntryLabel names the program entry point.
	EntryLabel string
}

// DefaultOptions places the stack at 1<<16 and enters at _START.
func DefaultOptions() Options {
	return Options{StackTop: 1 << 16, EntryLabel: "_START"}
}

// Names under which the builtins are visible to programs.
const (
	BuiltinPrint = "print"
	BuiltinWrite = "write"
	BuiltinRead  = "read"
)

// CodeGen is the state threaded through one generation run.
type CodeGen struct {
	opts Options
	w    *isa.Writer
	regs *regalloc.Allocator
	syms *symtable.Table[*Symbol]

	// stackHeight is the number of slots between FP and SP in the current
	// function.
	stackHeight int
	labelIndex  int
	function    *ast.Function
	defined     map[string]bool
}

func newCodeGen(opts Options) *CodeGen {
	if opts.EntryLabel == "" {
		opts.EntryLabel = DefaultOptions().EntryLabel
	}
	if opts.StackTop == 0 {
		opts.StackTop = DefaultOptions().StackTop
	}
	w := isa.NewWriter()
	w.Debug = opts.Debug
	w.AllocTrace = opts.AllocTrace
	return &CodeGen{
		opts:    opts,
		w:       w,
		regs:    regalloc.New(w),
		syms:    symtable.New[*Symbol](),
		defined: make(map[string]bool),
	}
}

func (cg *CodeGen) nextLabelIndex() int {
	n := cg.labelIndex
	cg.labelIndex++
	return n
}

func (cg *CodeGen) alloc(reason string) (isa.Reg, error) {
	return cg.regs.Alloc(reason)
}

func (cg *CodeGen) free(regs ...isa.Reg) {
	for _, r := range regs {
		cg.regs.Free(r)
	}
}

// Generate lowers prog and returns the complete instruction stream. Nothing
// is returned on error.
func Generate(prog *ast.Program, opts Options) (string, error) {
	cg := newCodeGen(opts)
	if err := cg.genProgram(prog); err != nil {
		return "", err
	}
	return cg.w.String(), nil
}

func (cg *CodeGen) genProgram(prog *ast.Program) error {
	if err := cg.genPrologue(); err != nil {
		return err
	}
	if err := cg.genBuiltins(); err != nil {
		return err
	}
	for _, f := range prog.Functions {
		if err := cg.genFunction(f); err != nil {
			return err
		}
	}
	for _, f := range prog.Functions {
		if !f.IsPrototype() {
			continue
		}
		if !cg.defined[f.Name] {
			return &diag.GlobalSyntaxError{Reason: fmt.Sprintf("function '%s' declared but never defined", f.Name)}
		}
	}
	if !cg.defined["main"] {
		return &diag.GlobalSyntaxError{Reason: "undefined reference to 'main'"}
	}
	return nil
}

// genPrologue sets up the stack, calls main and halts when it returns.
func (cg *CodeGen) genPrologue() error {
	cg.w.Label(cg.opts.EntryLabel)
	cg.w.Li(isa.SP, cg.opts.StackTop)
	cg.w.Li(isa.FP, cg.opts.StackTop)
	r, err := cg.alloc("main address")
	if err != nil {
		return err
	}
	defer cg.free(r)
	cg.w.LiLabel(r, "main")
	if err := cg.w.CallStart(cg.regs); err != nil {
		return err
	}
	cg.w.CallEnd(r)
	cg.w.Ebreak()
	return nil
}

func (cg *CodeGen) genBuiltins() error {
	writeAddr, err := cg.w.EmitWrite(cg.regs)
	if err != nil {
		return err
	}
	readAddr, err := cg.w.EmitRead(cg.regs)
	if err != nil {
		return err
	}
	builtins := []*Symbol{
		{Name: BuiltinPrint, Type: types.Func(types.VoidType, types.IntType), Storage: Storage{Kind: Absolute, Address: writeAddr}},
		{Name: BuiltinWrite, Type: types.Func(types.VoidType, types.IntType), Storage: Storage{Kind: Absolute, Address: writeAddr}},
		{Name: BuiltinRead, Type: types.Func(types.IntType), Storage: Storage{Kind: Absolute, Address: readAddr}},
	}
	for _, b := range builtins {
		if err := cg.syms.Add(b); err != nil {
			return err
		}
		cg.defined[b.Name] = true
	}
	return nil
}

func (cg *CodeGen) genFunction(f *ast.Function) error {
	ftype := f.Type()
	if err := cg.checkSignature(f); err != nil {
		return err
	}

	prev, lookupErr := cg.syms.Find(f.Name)
	declared := lookupErr == nil && cg.syms.Depth() == 0

	if f.IsPrototype() {
		if declared {
			if !prev.Type.Equal(ftype) || prev.Storage.Kind != Deferred {
				return &diag.SymbolRedeclaredError{Name: f.Name, Original: prev.Loc, Loc: f.Loc}
			}
			return nil
		}
		return cg.syms.Add(&Symbol{Name: f.Name, Type: ftype, Storage: Storage{Kind: Deferred, Label: f.Name}, Loc: f.Loc})
	}

	switch {
	case declared && cg.defined[f.Name] && prev.Storage.Kind != Deferred:
		return &diag.SymbolRedeclaredError{Name: f.Name, Original: prev.Loc, Loc: f.Loc}
	case declared && cg.defined[f.Name]:
		return diag.Syntaxf(f.Loc, "multiple definition of function '%s'", f.Name)
	case declared && !prev.Type.Equal(ftype):
		return &diag.SymbolRedeclaredError{Name: f.Name, Original: prev.Loc, Loc: f.Loc}
	case !declared:
		sym := &Symbol{Name: f.Name, Type: ftype, Storage: Storage{Kind: Absolute, Address: cg.w.Addr()}, Loc: f.Loc}
		if err := cg.syms.Add(sym); err != nil {
			return err
		}
	}
	cg.defined[f.Name] = true

	cg.w.Comment("Enter function %s", f.Name)
	cg.w.Label(f.Name)
	if err := cg.enterFunction(f); err != nil {
		return err
	}
	if err := cg.genBlock(f.Body); err != nil {
		return err
	}
	if err := cg.w.Ret(cg.regs); err != nil {
		return err
	}

	cg.syms.ExitScope()
	cg.function = nil
	cg.w.Comment("Exit function %s", f.Name)
	return nil
}

// enterFunction opens the parameter scope of f. Argument i sits at FP-i.
func (cg *CodeGen) enterFunction(f *ast.Function) error {
	cg.function = f
	cg.syms.EnterScope()
	cg.stackHeight = len(f.Params)
	for i, p := range f.Params {
		sym := &Symbol{Name: p.Name, Type: p.Type, Storage: Storage{Kind: Stack, Offset: i + 1}, Loc: p.Loc}
		if err := cg.syms.Add(sym); err != nil {
			return err
		}
	}
	return nil
}

func (cg *CodeGen) checkSignature(f *ast.Function) error {
	if f.Name == cg.opts.EntryLabel || ReservedLabel(f.Name) {
		return diag.Syntaxf(f.Loc, "function name '%s' is reserved", f.Name)
	}
	if f.Name == "main" && len(f.Params) > 0 {
		return diag.Syntaxf(f.Loc, "main must not take parameters")
	}
	for _, p := range f.Params {
		if p.Type.Kind == types.Void {
			return diag.Syntaxf(p.Loc, "parameter '%s' declared void", p.Name)
		}
	}
	return nil
}
