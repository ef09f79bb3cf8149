// Package symtable implements a lexically scoped symbol stack. Scopes are
// delimited by markers on a single list so that entering and leaving a scope
// is a push and a truncation.
package symtable

import (
	"fmt"
	"strings"

	"funcc/pkg/diag"
)

// Entry is anything that can be bound to a name.
type Entry interface {
	SymbolName() string
	DeclaredAt() diag.Location
}

type slot[S Entry] struct {
	sym   S
	delim bool
}

type Table[S Entry] struct {
	slots []slot[S]
}

func New[S Entry]() *Table[S] {
	return &Table[S]{}
}

func (t *Table[S]) EnterScope() {
	t.slots = append(t.slots, slot[S]{delim: true})
}

// ExitScope drops every symbol declared since the matching EnterScope.
func (t *Table[S]) ExitScope() {
	for i := len(t.slots) - 1; i >= 0; i-- {
		if t.slots[i].delim {
			clear(t.slots[i:])
			t.slots = t.slots[:i]
			return
		}
	}
	panic("symtable: ExitScope without EnterScope")
}

// Add binds sym in the current scope. Shadowing an outer scope is allowed;
// a second binding in the same scope is not.
func (t *Table[S]) Add(sym S) error {
	name := sym.SymbolName()
	for i := len(t.slots) - 1; i >= 0 && !t.slots[i].delim; i-- {
		if prev := t.slots[i].sym; prev.SymbolName() == name {
			return &diag.SymbolRedeclaredError{
				Name:     name,
				Original: prev.DeclaredAt(),
				Loc:      sym.DeclaredAt(),
			}
		}
	}
	t.slots = append(t.slots, slot[S]{sym: sym})
	return nil
}

// Find returns the innermost binding of name.
func (t *Table[S]) Find(name string) (S, error) {
	for i := len(t.slots) - 1; i >= 0; i-- {
		if s := t.slots[i]; !s.delim && s.sym.SymbolName() == name {
			return s.sym, nil
		}
	}
	var zero S
	return zero, &diag.SymbolNotFoundError{Name: name}
}

// Depth is the number of open scopes.
func (t *Table[S]) Depth() int {
	n := 0
	for _, s := range t.slots {
		if s.delim {
			n++
		}
	}
	return n
}

// Len counts visible bindings, shadowed ones included.
func (t *Table[S]) Len() int {
	return len(t.slots) - t.Depth()
}

func (t *Table[S]) String() string {
	var sb strings.Builder
	depth := 0
	for _, s := range t.slots {
		if s.delim {
			depth++
			fmt.Fprintf(&sb, "%s--\n", strings.Repeat("  ", depth-1))
			continue
		}
		fmt.Fprintf(&sb, "%s%s\n", strings.Repeat("  ", depth), s.sym.SymbolName())
	}
	return sb.String()
}
