// Package diag holds the compiler's error taxonomy, source locations and the
// console rendering of diagnostics.
package diag

import (
	"errors"
	"fmt"

	"funcc/pkg/types"
)

// Exit codes reported by the command line driver.
const (
	ExitOK     = 0
	ExitSyntax = 1
	ExitSymbol = 2
	ExitType   = 3
	ExitParams = 4
	ExitOther  = 5
)

var ErrRegistersExhausted = errors.New("no free registers left")

type UnexpectedTypeError struct {
	Expected types.Type
	Actual   types.Type
	Loc      Location
}

func (e *UnexpectedTypeError) Error() string {
	return fmt.Sprintf("%s: expected %s but received %s", e.Loc, e.Expected, e.Actual)
}

type SymbolRedeclaredError struct {
	Name     string
	Original Location
	Loc      Location
}

func (e *SymbolRedeclaredError) Error() string {
	return fmt.Sprintf("%s: redeclaration of '%s' (first declared at %s)", e.Loc, e.Name, e.Original)
}

type SymbolNotFoundError struct {
	Name string
	Loc  Location
}

func (e *SymbolNotFoundError) Error() string {
	if e.Loc.IsZero() {
		return fmt.Sprintf("'%s' was not declared in this scope", e.Name)
	}
	return fmt.Sprintf("%s: '%s' was not declared in this scope", e.Loc, e.Name)
}

type SyntaxError struct {
	Reason string
	Loc    Location
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Loc, e.Reason)
}

// GlobalSyntaxError is a syntax error that belongs to no particular node.
type GlobalSyntaxError struct {
	Reason string
}

func (e *GlobalSyntaxError) Error() string { return e.Reason }

func Syntaxf(loc Location, format string, args ...any) error {
	return &SyntaxError{Reason: fmt.Sprintf(format, args...), Loc: loc}
}

func Unexpected(expected, actual types.Type, loc Location) error {
	return &UnexpectedTypeError{Expected: expected.Clone(), Actual: actual.Clone(), Loc: loc}
}

// Retag moves a type error raised without context onto loc. Other errors are
// returned unchanged.
func Retag(err error, loc Location) error {
	var ute *UnexpectedTypeError
	if !errors.As(err, &ute) {
		return err
	}
	cp := *ute
	cp.Loc = loc
	return &cp
}

// ExitCode maps an error onto the driver's process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var (
		syn  *SyntaxError
		gsyn *GlobalSyntaxError
		red  *SymbolRedeclaredError
		nf   *SymbolNotFoundError
		ute  *UnexpectedTypeError
	)
	switch {
	case errors.As(err, &syn), errors.As(err, &gsyn):
		return ExitSyntax
	case errors.As(err, &red), errors.As(err, &nf):
		return ExitSymbol
	case errors.As(err, &ute):
		return ExitType
	default:
		return ExitOther
	}
}

// LocationOf extracts the source position carried by err, if any.
func LocationOf(err error) (Location, bool) {
	var (
		syn *SyntaxError
		red *SymbolRedeclaredError
		nf  *SymbolNotFoundError
		ute *UnexpectedTypeError
	)
	var loc Location
	switch {
	case errors.As(err, &syn):
		loc = syn.Loc
	case errors.As(err, &red):
		loc = red.Loc
	case errors.As(err, &nf):
		loc = nf.Loc
	case errors.As(err, &ute):
		loc = ute.Loc
	}
	return loc, !loc.IsZero()
}

// Kind names the error family for banners.
func Kind(err error) string {
	switch ExitCode(err) {
	case ExitSyntax:
		return "Syntax"
	case ExitSymbol:
		return "Symbol"
	case ExitType:
		return "Type"
	case ExitParams:
		return "Usage"
	default:
		return "Internal"
	}
}
