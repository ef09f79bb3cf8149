// Package types describes the FunC type language: three scalar kinds, void,
// and function types carrying their full signature.
package types

import "strings"

type Kind int

const (
	Int Kind = iota
	String
	Bool
	Void
	Function
)

var kindNames = [...]string{
	Int:      "int",
	String:   "string",
	Bool:     "bool",
	Void:     "void",
	Function: "function",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Type is treated as an immutable value. For functions, Signature lists the
// parameter types followed by the return type; a function without parameters
// starts with a single Void.
type Type struct {
	Kind      Kind
	Signature []Type
}

var (
	IntType    = Type{Kind: Int}
	StringType = Type{Kind: String}
	BoolType   = Type{Kind: Bool}
	VoidType   = Type{Kind: Void}
)

// Func builds a function type from its parameters and return type.
func Func(ret Type, params ...Type) Type {
	sig := make([]Type, 0, len(params)+1)
	if len(params) == 0 {
		sig = append(sig, VoidType)
	}
	for _, p := range params {
		sig = append(sig, p.Clone())
	}
	sig = append(sig, ret.Clone())
	return Type{Kind: Function, Signature: sig}
}

func (t Type) IsFunction() bool { return t.Kind == Function }

// Params returns the declared parameter types, hiding the leading Void of a
// parameterless signature.
func (t Type) Params() []Type {
	if t.Kind != Function || len(t.Signature) == 0 {
		return nil
	}
	params := t.Signature[:len(t.Signature)-1]
	if len(params) == 1 && params[0].Kind == Void {
		return nil
	}
	return params
}

// Return is the result type of a function, or Void for anything else.
func (t Type) Return() Type {
	if t.Kind != Function || len(t.Signature) == 0 {
		return VoidType
	}
	return t.Signature[len(t.Signature)-1]
}

// Equal compares kinds and, for functions, signatures element by element.
func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind {
		return false
	}
	if t.Kind != Function {
		return true
	}
	if len(t.Signature) != len(other.Signature) {
		return false
	}
	for i := range t.Signature {
		if !t.Signature[i].Equal(other.Signature[i]) {
			return false
		}
	}
	return true
}

func (t Type) Clone() Type {
	if t.Signature == nil {
		return Type{Kind: t.Kind}
	}
	sig := make([]Type, len(t.Signature))
	for i, s := range t.Signature {
		sig[i] = s.Clone()
	}
	return Type{Kind: t.Kind, Signature: sig}
}

// String renders scalars by name and functions as "(a-b-ret)".
func (t Type) String() string {
	if t.Kind != Function {
		return t.Kind.String()
	}
	if len(t.Signature) == 0 {
		return "function"
	}
	parts := make([]string, len(t.Signature))
	for i, s := range t.Signature {
		parts[i] = s.String()
	}
	return "(" + strings.Join(parts, "-") + ")"
}
