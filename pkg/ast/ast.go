// Package ast defines the FunC syntax tree. Expressions and statements are
// closed families: every node implements Expr or Stmt (a call implements
// both) and code walking the tree switches on the concrete type.
package ast

import (
	"fmt"
	"strings"

	"funcc/pkg/diag"
	"funcc/pkg/types"
)

type Node interface {
	Pos() diag.Location
	String() string
}

// Expr is implemented by every node that produces a value.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by every node that can appear in a block.
type Stmt interface {
	Node
	stmtNode()
}

type BinOp int

const (
	Plus BinOp = iota
	Minus
	Mul
	Div
	Mod
	Less
	Greater
	Equal
	NotEqual
	And
	Or
)

var binOpNames = [...]string{
	Plus: "+", Minus: "-", Mul: "*", Div: "/", Mod: "%",
	Less: "<", Greater: ">", Equal: "==", NotEqual: "!=",
	And: "&&", Or: "||",
}

func (op BinOp) String() string { return binOpNames[op] }

type UnOp int

const (
	Neg UnOp = iota
	Not
)

func (op UnOp) String() string {
	if op == Neg {
		return "-"
	}
	return "!"
}

//  Expression nodes

type IntLiteral struct {
	Value int32
	Loc   diag.Location
}

func (*IntLiteral) exprNode()            {}
func (l *IntLiteral) Pos() diag.Location { return l.Loc }
func (l *IntLiteral) String() string     { return fmt.Sprintf("%d", l.Value) }

type BoolLiteral struct {
	Value bool
	Loc   diag.Location
}

func (*BoolLiteral) exprNode()            {}
func (l *BoolLiteral) Pos() diag.Location { return l.Loc }
func (l *BoolLiteral) String() string     { return fmt.Sprintf("%t", l.Value) }

type StringLiteral struct {
	Value string
	Loc   diag.Location
}

func (*StringLiteral) exprNode()            {}
func (l *StringLiteral) Pos() diag.Location { return l.Loc }
func (l *StringLiteral) String() string     { return fmt.Sprintf("%q", l.Value) }

// Identifier is a read of a named variable or function.
type Identifier struct {
	Name string
	Loc  diag.Location
}

func (*Identifier) exprNode()            {}
func (i *Identifier) Pos() diag.Location { return i.Loc }
func (i *Identifier) String() string     { return i.Name }

// Binop is Left Op Right. Both sides are always evaluated.
type Binop struct {
	Op    BinOp
	Left  Expr
	Right Expr
	Loc   diag.Location
}

func (*Binop) exprNode()            {}
func (b *Binop) Pos() diag.Location { return b.Loc }
func (b *Binop) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

type Unop struct {
	Op      UnOp
	Operand Expr
	Loc     diag.Location
}

func (*Unop) exprNode()            {}
func (u *Unop) Pos() diag.Location { return u.Loc }
func (u *Unop) String() string     { return fmt.Sprintf("(%s%s)", u.Op, u.Operand) }

// Subscript reads one character of a string: Target[Index].
type Subscript struct {
	Target Expr
	Index  Expr
	Loc    diag.Location
}

func (*Subscript) exprNode()            {}
func (s *Subscript) Pos() diag.Location { return s.Loc }
func (s *Subscript) String() string     { return fmt.Sprintf("%s[%s]", s.Target, s.Index) }

// FunctionCall is both an expression and, on its own line, a statement.
type FunctionCall struct {
	Func Expr
	Args []Expr
	Loc  diag.Location
}

func (*FunctionCall) exprNode()            {}
func (*FunctionCall) stmtNode()            {}
func (c *FunctionCall) Pos() diag.Location { return c.Loc }
func (c *FunctionCall) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Func, strings.Join(args, ", "))
}

//  Statement nodes

// Assign stores Value into Name. With a Type it also declares Name in the
// current scope, and Value may then be nil.
//
//	int x = 1;   Assign{Type: int, Name: "x", Value: 1}
//	x = 2;       Assign{Name: "x", Value: 2}
type Assign struct {
	Type  *types.Type
	Name  string
	Value Expr
	Loc   diag.Location
}

func (*Assign) stmtNode()            {}
func (a *Assign) Pos() diag.Location { return a.Loc }
func (a *Assign) IsDecl() bool       { return a.Type != nil }
func (a *Assign) String() string {
	s := a.Name
	if a.Type != nil {
		s = a.Type.String() + " " + s
	}
	if a.Value != nil {
		s += " = " + a.Value.String()
	}
	return s
}

// SubscriptAssign writes one character: Target[Index] = Value.
type SubscriptAssign struct {
	Target Expr
	Index  Expr
	Value  Expr
	Loc    diag.Location
}

func (*SubscriptAssign) stmtNode()            {}
func (s *SubscriptAssign) Pos() diag.Location { return s.Loc }
func (s *SubscriptAssign) String() string {
	return fmt.Sprintf("%s[%s] = %s", s.Target, s.Index, s.Value)
}

type Block struct {
	Stmts []Stmt
	Loc   diag.Location
}

func (*Block) stmtNode()            {}
func (b *Block) Pos() diag.Location { return b.Loc }
func (b *Block) String() string     { return fmt.Sprintf("{ %d statements }", len(b.Stmts)) }

// If has an optional Else block.
type If struct {
	Cond Expr
	Then *Block
	Else *Block
	Loc  diag.Location
}

func (*If) stmtNode()            {}
func (i *If) Pos() diag.Location { return i.Loc }
func (i *If) String() string {
	if i.Else != nil {
		return fmt.Sprintf("if (%s) %s else %s", i.Cond, i.Then, i.Else)
	}
	return fmt.Sprintf("if (%s) %s", i.Cond, i.Then)
}

type While struct {
	Cond Expr
	Body *Block
	Loc  diag.Location
}

func (*While) stmtNode()            {}
func (w *While) Pos() diag.Location { return w.Loc }
func (w *While) String() string     { return fmt.Sprintf("while (%s) %s", w.Cond, w.Body) }

// Return carries an optional Value.
type Return struct {
	Value Expr
	Loc   diag.Location
}

func (*Return) stmtNode()            {}
func (r *Return) Pos() diag.Location { return r.Loc }
func (r *Return) String() string {
	if r.Value == nil {
		return "return"
	}
	return "return " + r.Value.String()
}

//  Top level

type Param struct {
	Name string
	Type types.Type
	Loc  diag.Location
}

func (p *Param) Pos() diag.Location { return p.Loc }
func (p *Param) String() string     { return p.Type.String() + " " + p.Name }

// Function is a definition, or a prototype when Body is nil.
type Function struct {
	Name   string
	Params []*Param
	Ret    types.Type
	Body   *Block
	Loc    diag.Location
}

func (f *Function) Pos() diag.Location { return f.Loc }
func (f *Function) IsPrototype() bool  { return f.Body == nil }

// Type is the function's full type.
func (f *Function) Type() types.Type {
	params := make([]types.Type, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Type
	}
	return types.Func(f.Ret, params...)
}

func (f *Function) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("%s %s(%s)", f.Ret, f.Name, strings.Join(params, ", "))
}

type Program struct {
	Functions []*Function
}

func (p *Program) String() string {
	var sb strings.Builder
	for _, f := range p.Functions {
		sb.WriteString(f.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
