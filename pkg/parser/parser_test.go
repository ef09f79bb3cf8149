package parser

import (
	"errors"
	"strings"
	"testing"

	"funcc/pkg/ast"
	"funcc/pkg/diag"
	"funcc/pkg/types"
)

func parseOK(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := ParseSource("test.fc", src)
	if err != nil {
		t.Fatalf("ParseSource failed: %v", err)
	}
	return prog
}

func body(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	prog := parseOK(t, "void main() {"+src+"}")
	return prog.Functions[0].Body.Stmts
}

func TestParseStatements(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"declaration", "int x = 10;", "int x = 10"},
		{"bare declaration", "string s;", "string s"},
		{"function typed local", "(int-int) f = inc;", "(int-int) f = inc"},
		{"assignment", "x = 20;", "x = 20"},
		{"subscript assignment", "s[1] = 65;", "s[1] = 65"},
		{"call", "print(1, x);", "print(1, x)"},
		{"call through parens", "(f)(2);", "f(2)"},
		{"curried call", "g(1)(2);", "g(1)(2)"},
		{"precedence", "x = 1 + 2 * 3;", "x = (1 + (2 * 3))"},
		{"left assoc", "x = 1 - 2 - 3;", "x = ((1 - 2) - 3)"},
		{"logic", "b = a < 1 || c > 2 && !d;", "b = ((a < 1) || ((c > 2) && (!d)))"},
		{"equality", "b = x == y != z;", "b = ((x == y) != z)"},
		{"unary minus", "x = -y % 4;", "x = ((-y) % 4)"},
		{"subscript read", "x = s[i + 1];", "x = s[(i + 1)]"},
		{"return value", "return x;", "return x"},
		{"bare return", "return;", "return"},
		{"string literal", `string s = "ok";`, `string s = "ok"`},
		{"booleans", "bool b = true;", "bool b = true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := body(t, tt.input)
			if len(stmts) != 1 {
				t.Fatalf("got %d statements, want 1", len(stmts))
			}
			if got := stmts[0].String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseControlFlow(t *testing.T) {
	stmts := body(t, `
		if (x > 0) { x = 1; } else if (x < 0) { x = 2; } else { x = 3; }
		while (b) { b = false; }
		{ int y; }
	`)
	if len(stmts) != 3 {
		t.Fatalf("got %d statements", len(stmts))
	}
	ifs, ok := stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("first statement is %T", stmts[0])
	}
	if ifs.Else == nil || len(ifs.Else.Stmts) != 1 {
		t.Fatalf("else-if not wrapped in a block: %+v", ifs.Else)
	}
	if inner, ok := ifs.Else.Stmts[0].(*ast.If); !ok || inner.Else == nil {
		t.Fatalf("nested if lost its else: %+v", ifs.Else.Stmts[0])
	}
	if _, ok := stmts[1].(*ast.While); !ok {
		t.Errorf("second statement is %T", stmts[1])
	}
	if _, ok := stmts[2].(*ast.Block); !ok {
		t.Errorf("third statement is %T", stmts[2])
	}
}

func TestParseFunctions(t *testing.T) {
	prog := parseOK(t, `
		int add(int a, int b);
		int add(int a, int b) { return a + b; }
		(int-int) pick(bool which, (int-int) f) { return f; }
		void main(void) {}
	`)
	if len(prog.Functions) != 4 {
		t.Fatalf("got %d functions", len(prog.Functions))
	}
	proto := prog.Functions[0]
	if !proto.IsPrototype() {
		t.Error("prototype parsed with a body")
	}
	if got := proto.Type().String(); got != "(int-int-int)" {
		t.Errorf("add type = %s", got)
	}
	pick := prog.Functions[2]
	want := types.Func(types.Func(types.IntType, types.IntType), types.BoolType, types.Func(types.IntType, types.IntType))
	if !pick.Type().Equal(want) {
		t.Errorf("pick type = %s, want %s", pick.Type(), want)
	}
	if main := prog.Functions[3]; len(main.Params) != 0 || main.Type().String() != "(void-void)" {
		t.Errorf("main = %s : %s", main, main.Type())
	}
}

func TestParseLocations(t *testing.T) {
	prog := parseOK(t, "int main() {\n  return 1 + true;\n}")
	ret := prog.Functions[0].Body.Stmts[0].(*ast.Return)
	bin := ret.Value.(*ast.Binop)
	loc := bin.Pos()
	if loc.Line != 2 || loc.Col != 10 || loc.EndCol != 18 {
		t.Errorf("binop location = %+v", loc)
	}
	if loc.File != "test.fc" {
		t.Errorf("file = %q", loc.File)
	}
	if prog.Functions[0].Loc.Line != 1 {
		t.Errorf("function location = %+v", prog.Functions[0].Loc)
	}
}

func TestParserErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"missing semicolon", "void main() { x = 1 }", "expected ;"},
		{"missing brace", "void main() { x = 1;", "missing '}'"},
		{"assign to literal", "void main() { 1 = 2; }", "cannot assign"},
		{"non-call statement", "void main() { x + 1; }", "must be a function call"},
		{"bad type", "void main() { (int) f; }", "function type"},
		{"top-level statement", "x = 1;", "expected type"},
		{"int overflow", "void main() { x = 99999999999; }", "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSource("", tt.input)
			var syn *diag.SyntaxError
			if !errors.As(err, &syn) {
				t.Fatalf("expected SyntaxError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not mention %q", err, tt.msg)
			}
			if syn.Loc.IsZero() {
				t.Error("error has no location")
			}
		})
	}
}
