// Package compiler wires the front end, the code generator and the listing
// checker into a single pipeline.
package compiler

import (
	"fmt"

	"funcc/pkg/ast"
	"funcc/pkg/codegen"
	"funcc/pkg/listing"
	"funcc/pkg/parser"
)

// Result holds everything a successful compilation produced.
type Result struct {
	Program  *ast.Program
	Assembly string
	Listing  *listing.Listing
}

// Compile parses src, generates code and checks the emitted listing. Errors
// from parsing and generation are returned as they are so callers can map
// them to exit codes; a listing that fails verification is an internal error.
func Compile(file, src string, opts codegen.Options) (*Result, error) {
	prog, err := parser.ParseSource(file, src)
	if err != nil {
		return nil, err
	}

	assembly, err := codegen.Generate(prog, opts)
	if err != nil {
		return nil, err
	}

	lst, err := listing.Parse(assembly)
	if err != nil {
		return nil, fmt.Errorf("internal error: generated listing: %w", err)
	}
	if err := lst.Verify(); err != nil {
		return nil, fmt.Errorf("internal error: generated listing: %w", err)
	}

	return &Result{Program: prog, Assembly: assembly, Listing: lst}, nil
}
