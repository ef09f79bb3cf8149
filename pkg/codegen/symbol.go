package codegen

import (
	"fmt"

	"funcc/pkg/diag"
	"funcc/pkg/isa"
	"funcc/pkg/types"
)

// ExprResult is the value of a generated expression: its type and the
// register holding it. The consumer of a result frees its register.
type ExprResult struct {
	Type types.Type
	Reg  isa.Reg
}

type StorageKind int

const (
	// Stack slots live at FP-Offset.
	Stack StorageKind = iota
	// Absolute symbols are code addresses known at generation time.
	Absolute
	// Deferred symbols are code addresses only the assembler knows, named
	// by Label. Function prototypes use them.
	Deferred
)

type Storage struct {
	Kind    StorageKind
	Offset  int
	Address int
	Label   string
}

func (s Storage) String() string {
	switch s.Kind {
	case Stack:
		return fmt.Sprintf("stack(%d)", s.Offset)
	case Absolute:
		return fmt.Sprintf("abs(%d)", s.Address)
	default:
		return fmt.Sprintf("label(%s)", s.Label)
	}
}

type Symbol struct {
	Name    string
	Type    types.Type
	Storage Storage
	Loc     diag.Location
}

func (s *Symbol) SymbolName() string        { return s.Name }
func (s *Symbol) DeclaredAt() diag.Location { return s.Loc }

func (s *Symbol) String() string {
	return fmt.Sprintf("%s %s @ %s", s.Type, s.Name, s.Storage)
}
