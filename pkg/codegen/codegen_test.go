package codegen

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"funcc/pkg/ast"
	"funcc/pkg/diag"
	"funcc/pkg/listing"
	"funcc/pkg/parser"
)

func compile(t *testing.T, src string) string {
	t.Helper()
	prog, err := parser.ParseSource("test.fc", src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	code, err := Generate(prog, DefaultOptions())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return code
}

func compileErr(t *testing.T, src string) error {
	t.Helper()
	prog, err := parser.ParseSource("test.fc", src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	code, err := Generate(prog, DefaultOptions())
	if err == nil {
		t.Fatalf("expected an error, got code:\n%s", code)
	}
	if code != "" {
		t.Errorf("partial output escaped on error")
	}
	return err
}

func assertContains(t *testing.T, code, expected string) {
	t.Helper()
	if !strings.Contains(code, expected) {
		t.Errorf("expected code to contain %q, but it didn't.\nCode:\n%s", expected, code)
	}
}

func assertNotContains(t *testing.T, code, unexpected string) {
	t.Helper()
	if strings.Contains(code, unexpected) {
		t.Errorf("expected code not to contain %q.\nCode:\n%s", unexpected, code)
	}
}

// assertOrder checks that each snippet appears after the previous one.
func assertOrder(t *testing.T, code string, snippets ...string) {
	t.Helper()
	rest := code
	for _, s := range snippets {
		i := strings.Index(rest, s)
		if i < 0 {
			t.Fatalf("%q missing or out of order.\nCode:\n%s", s, code)
		}
		rest = rest[i+len(s):]
	}
}

func verify(t *testing.T, code string) *listing.Listing {
	t.Helper()
	lst, err := listing.Parse(code)
	if err != nil {
		t.Fatalf("listing.Parse failed: %v\n%s", err, code)
	}
	if err := lst.Verify(); err != nil {
		t.Fatalf("listing.Verify failed: %v\n%s", err, code)
	}
	return lst
}

func TestProgramSkeleton(t *testing.T) {
	code := compile(t, "void main() {}")
	assertOrder(t, code,
		"_START:\n",
		"li x31, 65536\n",
		"li x30, 65536\n",
		"li x1, main\n",
		"jal x2, 0\naddi x2, x2, 7\n",
		"jalr x0, x1, 0\n",
		"ebreak\n",
		"WRITE:\n",
		"READ:\neread x29\n",
		"main:\n",
	)
	lst := verify(t, code)
	if lst.Labels["WRITE"] != 13 || lst.Labels["READ"] != 21 || lst.Labels["main"] != 28 {
		t.Errorf("labels = %v", lst.Labels)
	}
}

func TestBuiltinCall(t *testing.T) {
	code := compile(t, "void main() { print(42); write(read()); }")
	assertContains(t, code, "li x1, 13\nli x2, 42\njal x3, 0\naddi x3, x3, 9\n")
	assertContains(t, code, "jalr x0, x1, 0\naddi x1, x29, 0\n")
	// read() is at 21; the pending write callee in x1 is spilled around it.
	assertContains(t, code, "li x2, 21\naddi x31, x31, -1\nsw x31, 0, x1\njal x3, 0\naddi x3, x3, 7\n")
	verify(t, code)
}

func TestParametersAndLocals(t *testing.T) {
	code := compile(t, `
		int f(int a, int b) {
			int c = a + b;
			return c;
		}
		void main() { print(f(1, 2)); }
	`)
	assertOrder(t, code,
		"f:\n",
		"addi x31, x31, -1\nsw x31, 0, x0\n",
		"lw x1, x30, -1\n",
		"lw x2, x30, -2\n",
		"add x3, x1, x2\n",
		"sw x30, -3, x3\n",
		"lw x1, x30, -3\n",
		"addi x29, x1, 0\n",
		"addi x31, x30, 0\n",
	)
	verify(t, code)
}

func TestSpillAroundCall(t *testing.T) {
	code := compile(t, `
		int id(int v) { return v; }
		int main() { int a = 1; int b = a + id(2); return b; }
	`)
	assertOrder(t, code,
		"main:\n",
		"lw x1, x30, -1\n",
		"li x3, 2\n",
		"addi x31, x31, -1\nsw x31, 0, x1\n",
		"jal x4, 0\naddi x4, x4, 9\n",
		"sw x31, 0, x3\n",
		"jalr x0, x2, 0\n",
		"addi x2, x29, 0\n",
		"lw x1, x31, 0\naddi x31, x31, 1\n",
		"add x3, x1, x2\n",
		"sw x30, -2, x3\n",
	)
	verify(t, code)
}

func TestRegistersReleasedAfterProgram(t *testing.T) {
	src := `
		int sq(int x) { return x * x; }
		bool odd(int x) { return x % 2 != 0; }
		int main() {
			int i = 0;
			string s = "abc";
			while (i < 3) {
				if (odd(sq(i)) && !(i > 1)) { s[i] = s[i] + 1; } else { print(-i); }
				i = i + 1;
			}
			return s[0];
		}
	`
	prog, err := parser.ParseSource("t.fc", src)
	if err != nil {
		t.Fatal(err)
	}
	cg := newCodeGen(DefaultOptions())
	if err := cg.genProgram(prog); err != nil {
		t.Fatalf("genProgram failed: %v", err)
	}
	if live := cg.regs.Live(); len(live) != 0 {
		t.Errorf("registers still allocated: %v", live)
	}
	if cg.w.PendingCalls() != 0 {
		t.Errorf("unterminated call sequences: %d", cg.w.PendingCalls())
	}
	verify(t, cg.w.String())
}

func TestIfElseLowering(t *testing.T) {
	code := compile(t, `
		void main() {
			int x = read();
			if (x > 0) { print(1); } else { print(2); }
			if (x < 0) { print(3); }
		}
	`)
	assertOrder(t, code,
		"bne x3, x0, 1\njal x0, IF_ELSE_0\n",
		"jal x0, IF_END_0\nIF_ELSE_0:\n",
		"IF_END_0:\n",
		"bne x3, x0, 1\njal x0, IF_ELSE_1\n",
		"IF_ELSE_1:\nIF_END_1:\n",
	)
	verify(t, code)
}

func TestWhileLowering(t *testing.T) {
	code := compile(t, `
		void main() {
			int i = 3;
			while (i > 0) { int t = i; i = t - 1; }
		}
	`)
	assertOrder(t, code,
		"WHILE_START_0:\n",
		"jal x0, WHILE_END_0\n",
		"sw x30, -2, x1\n",
		"addi x31, x31, 1\njal x0, WHILE_START_0\nWHILE_END_0:\n",
	)
	verify(t, code)
}

func TestStrings(t *testing.T) {
	code := compile(t, `
		void main() {
			string s = "hi";
			int c = s[1];
			s[0] = 72;
		}
	`)
	assertOrder(t, code,
		"addi x1, x0, 0\nsw x31, -1, x1\n",
		"addi x1, x0, 105\nsw x31, -2, x1\n",
		"addi x1, x0, 104\nsw x31, -3, x1\n",
		"addi x31, x31, -3\n",
		"addi x1, x31, 0\n",
		"sw x30, -1, x1\n",
		"add x3, x1, x2\nlw x3, x3, 0\nsw x30, -5, x3\n",
		"add x4, x1, x2\nsw x4, 0, x3\n",
		// two locals plus three string slots leave with the block
		"addi x31, x31, 5\n",
	)
	verify(t, code)
}

func TestFunctionValues(t *testing.T) {
	code := compile(t, `
		int inc(int x) { return x + 1; }
		void main() {
			(int-int) f = inc;
			print(f(41));
		}
	`)
	assertOrder(t, code,
		"inc:\n",
		"main:\n",
		"sw x30, -1, x1\n",
		"lw x2, x30, -1\n",
		"jalr x0, x2, 0\n",
	)
	verify(t, code)
}

func TestPrototypesAllowForwardCalls(t *testing.T) {
	code := compile(t, `
		int later(int x);
		void main() { print(later(1)); }
		int later(int x) { return x; }
	`)
	assertContains(t, code, "li x2, later\n")
	verify(t, code)
}

func TestReturnAddressesAcrossProgram(t *testing.T) {
	code := compile(t, `
		int zero() { return 0; }
		int one(int a) { return a; }
		int two(int a, int b) { return a + b; }
		int three(int a, int b, int c) { return a + b + c; }
		int main() {
			return three(two(one(zero()), 1), "xy"[0], three(1, 2, 3));
		}
	`)
	lst := verify(t, code)
	sites, err := lst.ReturnSites()
	if err != nil {
		t.Fatal(err)
	}
	// main from the prologue plus five calls
	if len(sites) != 6 {
		t.Fatalf("found %d call sites, want 6", len(sites))
	}
	for _, s := range sites {
		if !s.OK() {
			t.Errorf("call at line %d returns to %d, want %d", s.Line, s.ReturnAddr, s.AfterJalr)
		}
	}
}

func TestTraceChannels(t *testing.T) {
	prog, err := parser.ParseSource("t.fc", "void main() { print(1); }")
	if err != nil {
		t.Fatal(err)
	}
	plain, err := Generate(prog, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	assertNotContains(t, plain, "#")

	opts := DefaultOptions()
	opts.Debug = true
	opts.AllocTrace = true
	traced, err := Generate(prog, opts)
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, traced, "# ALLOC: 1 main address\n")
	assertContains(t, traced, "# RELEASE: 1\n")
	assertContains(t, traced, "# Enter function main\n")

	// Comments never shift addresses.
	a := verify(t, plain)
	b := verify(t, traced)
	if a.Size != b.Size || a.Labels["main"] != b.Labels["main"] {
		t.Errorf("trace output changed layout: %d/%d vs %d/%d", a.Size, a.Labels["main"], b.Size, b.Labels["main"])
	}
}

func TestCustomEntry(t *testing.T) {
	prog, err := parser.ParseSource("t.fc", "void main() {}")
	if err != nil {
		t.Fatal(err)
	}
	code, err := Generate(prog, Options{StackTop: 4096, EntryLabel: "BOOT"})
	if err != nil {
		t.Fatal(err)
	}
	assertOrder(t, code, "BOOT:\n", "li x31, 4096\n", "li x30, 4096\n")
}

func TestLabelLookalikesAreNotReserved(t *testing.T) {
	code := compile(t, `
		void IF_END() {}
		void WHILE_END_x() {}
		void write_0() {}
		void main() { IF_END(); WHILE_END_x(); write_0(); if (true) {} }
	`)
	verify(t, code)

	prog, err := parser.ParseSource("t.fc", "void _START() {} void main() { _START(); }")
	if err != nil {
		t.Fatal(err)
	}
	code, err = Generate(prog, Options{EntryLabel: "BOOT"})
	if err != nil {
		t.Fatalf("_START is free under a custom entry label: %v", err)
	}
	verify(t, code)
}

func TestReservedLabel(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"WRITE", true},
		{"READ", true},
		{"IF_ELSE_3", true},
		{"IF_END_0", true},
		{"WHILE_START_10", true},
		{"WHILE_END_7", true},
		{"IF_END_", false},
		{"IF_END_x", false},
		{"WHILE_END_1a", false},
		{"main", false},
		{"write", false},
	}
	for _, tt := range tests {
		if got := ReservedLabel(tt.name); got != tt.want {
			t.Errorf("ReservedLabel(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  int
		msg   string
	}{
		{"undeclared", "void main() { x = 1; }", diag.ExitSymbol, "'x' was not declared"},
		{"out of scope", "void main() { { int x; } x = 1; }", diag.ExitSymbol, "'x' was not declared"},
		{"redeclared", "void main() { int x; int x; }", diag.ExitSymbol, "redeclaration of 'x'"},
		{"builtin redefined", "void print(int a) {} void main() {}", diag.ExitSymbol, "redeclaration of 'print'"},
		{"assign mismatch", "void main() { int x = true; }", diag.ExitType, "expected int but received bool"},
		{"if condition", "void main() { if (1) {} }", diag.ExitType, "expected bool but received int"},
		{"while condition", `void main() { while ("s") {} }`, diag.ExitType, "expected bool but received string"},
		{"return mismatch", "int main() { return true; }", diag.ExitType, "expected int but received bool"},
		{"missing return value", "int main() { return; }", diag.ExitType, "expected int but received void"},
		{"value from void", "void main() { return 1; }", diag.ExitType, "expected void but received int"},
		{"call non-function", "void main() { int x = 1; x(); }", diag.ExitType, "expected function but received int"},
		{"subscript int", "void main() { int x = 1; int y = x[0]; }", diag.ExitType, "expected string but received int"},
		{"string index", `void main() { string s = "a"; int y = s[true]; }`, diag.ExitType, "expected int but received bool"},
		{"arity", "void f(int a) {} void main() { f(1, 2); }", diag.ExitSyntax, "wrong number of arguments, expected: 1, but got 2"},
		{"void variable", "void main() { void v; }", diag.ExitSyntax, "declared void"},
		{"double definition", "int f(); int f() { return 1; } int f() { return 2; } void main() {}", diag.ExitSyntax, "multiple definition"},
		{"prototype mismatch", "int f(int a); bool f(int a) { return true; } void main() {}", diag.ExitSymbol, "redeclaration of 'f'"},
		{"prototype never defined", "int f(int a); void main() {}", diag.ExitSyntax, "never defined"},
		{"missing main", "int f() { return 1; }", diag.ExitSyntax, "undefined reference to 'main'"},
		{"main with params", "void main(int a) {}", diag.ExitSyntax, "main must not take parameters"},
		{"builtin label", "void WRITE() {} void main() { WRITE(); }", diag.ExitSyntax, "function name 'WRITE' is reserved"},
		{"read label prototype", "int READ(); void main() {}", diag.ExitSyntax, "function name 'READ' is reserved"},
		{"if label", "void IF_END_0() {} void main() {}", diag.ExitSyntax, "function name 'IF_END_0' is reserved"},
		{"while label", "void WHILE_START_12() {} void main() {}", diag.ExitSyntax, "is reserved"},
		{"entry label", "void _START() {} void main() {}", diag.ExitSyntax, "function name '_START' is reserved"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := compileErr(t, tt.input)
			if got := diag.ExitCode(err); got != tt.code {
				t.Errorf("ExitCode = %d, want %d (%v)", got, tt.code, err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not mention %q", err, tt.msg)
			}
		})
	}
}

func TestOperatorErrorsCarryOperatorLocation(t *testing.T) {
	src := "int main() { return 1 + true; }"
	err := compileErr(t, src)
	var ute *diag.UnexpectedTypeError
	if !errors.As(err, &ute) {
		t.Fatalf("expected UnexpectedTypeError, got %v", err)
	}
	if ute.Loc.Line != 1 || ute.Loc.Col != strings.Index(src, "1 +")+1 {
		t.Errorf("location = %v", ute.Loc)
	}

	src = "void main() { bool b = -true; }"
	err = compileErr(t, src)
	if !errors.As(err, &ute) || ute.Loc.Col != strings.Index(src, "-true")+1 {
		t.Errorf("unary error location = %v", err)
	}
}

func TestArgumentErrorCarriesArgumentLocation(t *testing.T) {
	src := "void f(int a) {} void main() { f(true); }"
	err := compileErr(t, src)
	var ute *diag.UnexpectedTypeError
	if !errors.As(err, &ute) {
		t.Fatalf("expected UnexpectedTypeError, got %v", err)
	}
	if ute.Loc.Col != strings.Index(src, "true")+1 {
		t.Errorf("location = %v", ute.Loc)
	}
}

func TestShadowingInInnerBlock(t *testing.T) {
	code := compile(t, `
		void main() {
			int x = 1;
			{ bool x = true; print(1); }
			x = 2;
		}
	`)
	assertOrder(t, code, "sw x30, -1, x1\n", "sw x30, -2, x1\n", "addi x31, x31, 1\n", "sw x30, -1, x1\n")
}

func TestRegisterExhaustion(t *testing.T) {
	// Right-nested additions keep every left operand live.
	expr := "1"
	for i := 0; i < 30; i++ {
		expr = "1 + (" + expr + ")"
	}
	err := compileErr(t, "int main() { return "+expr+"; }")
	if !errors.Is(err, diag.ErrRegistersExhausted) {
		t.Fatalf("expected ErrRegistersExhausted, got %v", err)
	}
	if diag.ExitCode(err) != diag.ExitOther {
		t.Errorf("ExitCode = %d", diag.ExitCode(err))
	}
}

// spDelta sums the SP adjustments on the lines strictly between from and to.
func spDelta(t *testing.T, code, from, to string) int {
	t.Helper()
	total, inside := 0, false
	for _, line := range strings.Split(code, "\n") {
		switch {
		case line == from:
			inside = true
		case line == to:
			return total
		case inside && strings.HasPrefix(line, "addi x31, x31, "):
			k, err := strconv.Atoi(strings.TrimPrefix(line, "addi x31, x31, "))
			if err != nil {
				t.Fatalf("bad SP adjustment %q", line)
			}
			total += k
		}
	}
	t.Fatalf("span %q..%q not found.\nCode:\n%s", from, to, code)
	return 0
}

func TestWhileConditionStringsReleased(t *testing.T) {
	code := compile(t, `
		void main() {
			int n = 0;
			while ("abc"[n] != 0) { int z; n = n + 1; }
			print(n);
		}
	`)
	assertOrder(t, code,
		"WHILE_START_0:\n",
		"addi x31, x31, -4\n",
		"addi x31, x31, 4\nbne ",
		"jal x0, WHILE_END_0\n",
	)
	// One trip around the loop leaves SP where it started.
	if d := spDelta(t, code, "WHILE_START_0:", "jal x0, WHILE_START_0"); d != 0 {
		t.Errorf("loop iteration moves SP by %d", d)
	}
	verify(t, code)
}

func TestGenerationIsDeterministic(t *testing.T) {
	src := `
		int twice(int x);
		int fib(int n) {
			if (n < 2) { return n; }
			return fib(n - 1) + fib(n - 2);
		}
		void main() {
			string s = "go";
			int i = 0;
			while (i < fib(read()) && s[0] != 0) { print(twice(i)); i = i + 1; }
		}
		int twice(int x) { return x * 2; }
	`
	var outputs []string
	for i := 0; i < 2; i++ {
		prog, err := parser.ParseSource("t.fc", src)
		if err != nil {
			t.Fatal(err)
		}
		code, err := Generate(prog, DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		outputs = append(outputs, code)
	}
	if outputs[0] != outputs[1] {
		t.Errorf("two generations of the same source differ:\n%s\n---\n%s", outputs[0], outputs[1])
	}
}

// TestStatementsReleaseRegisters generates a body one statement at a time
// and checks that no statement leaves a register held or the frame height
// changed.
func TestStatementsReleaseRegisters(t *testing.T) {
	src := `
		int sq(int x) { return x * x; }
		void body(int a, string s) {
			int i = a;
			bool b = !(i > 3) || i == 0;
			s[0] = s[1] + sq(i);
			if (b && a != 2) { print(-i); } else { write(i % 2); }
			while (i < sq(a) && "stop"[0] != 0) { int t = i; i = t + 1; }
			print(sq(sq(i)) / 2);
			return;
		}
	`
	prog, err := parser.ParseSource("t.fc", src)
	if err != nil {
		t.Fatal(err)
	}
	cg := newCodeGen(DefaultOptions())
	if err := cg.genBuiltins(); err != nil {
		t.Fatal(err)
	}
	if err := cg.genFunction(prog.Functions[0]); err != nil {
		t.Fatal(err)
	}

	f := prog.Functions[1]
	cg.w.Label(f.Name)
	if err := cg.enterFunction(f); err != nil {
		t.Fatal(err)
	}
	for _, stmt := range f.Body.Stmts {
		height := cg.stackHeight
		if err := cg.genStmt(stmt); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
		if live := cg.regs.Live(); len(live) != 0 {
			t.Errorf("%s: registers still held: %v", stmt, live)
		}
		want := height
		if a, ok := stmt.(*ast.Assign); ok && a.IsDecl() {
			want++
		}
		if cg.stackHeight != want {
			t.Errorf("%s: stack height %d, want %d", stmt, cg.stackHeight, want)
		}
	}
}
