package compiler

import (
	"strings"
	"testing"

	"funcc/pkg/codegen"
	"funcc/pkg/diag"
)

func TestCompilePipeline(t *testing.T) {
	src := `
		int fib(int n) {
			if (n < 2) { return n; }
			return fib(n - 1) + fib(n - 2);
		}
		void main() { print(fib(read())); }
	`
	res, err := Compile("fib.fc", src, codegen.DefaultOptions())
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if len(res.Program.Functions) != 2 {
		t.Errorf("program has %d functions", len(res.Program.Functions))
	}
	if _, ok := res.Listing.Labels["fib"]; !ok {
		t.Error("fib label missing from listing")
	}
	if !strings.HasPrefix(res.Assembly, "_START:\n") {
		t.Errorf("assembly does not start at the entry label:\n%s", res.Assembly)
	}
}

func TestCompileErrorsKeepTheirKind(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code int
	}{
		{"lexer", "void main() { $ }", diag.ExitSyntax},
		{"parser", "void main() { return }", diag.ExitSyntax},
		{"symbol", "void main() { y = 1; }", diag.ExitSymbol},
		{"type", "void main() { int x = \"s\"; }", diag.ExitType},
		{"reserved label", "void WRITE() {} void main() { WRITE(); }", diag.ExitSyntax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile("e.fc", tt.src, codegen.DefaultOptions())
			if got := diag.ExitCode(err); got != tt.code {
				t.Errorf("ExitCode = %d, want %d (%v)", got, tt.code, err)
			}
		})
	}
}
