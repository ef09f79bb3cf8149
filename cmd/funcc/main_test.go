package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"funcc/pkg/diag"
)

func writeSource(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheckExitCodes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int
	}{
		{"ok", "void main() { print(1); }", diag.ExitOK},
		{"syntax", "void main() { print(1) }", diag.ExitSyntax},
		{"symbol", "void main() { print(x); }", diag.ExitSymbol},
		{"type", "void main() { print(true); }", diag.ExitType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSource(t, "prog.fc", tt.src)
			if got := run([]string{"funcc", "check", path}); got != tt.want {
				t.Errorf("exit code = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBuildWritesNextToSource(t *testing.T) {
	path := writeSource(t, "prog.fc", "int main() { return read() + 1; }")
	if got := run([]string{"funcc", "build", path}); got != diag.ExitOK {
		t.Fatalf("exit code = %d", got)
	}
	out, err := os.ReadFile(strings.TrimSuffix(path, ".fc") + ".s")
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if !strings.Contains(string(out), "main:\n") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestMissingSource(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.fc")
	if got := run([]string{"funcc", "check", missing}); got != diag.ExitParams {
		t.Errorf("exit code = %d, want %d", got, diag.ExitParams)
	}
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	if got := run([]string{"funcc", "init", dir}); got != diag.ExitOK {
		t.Fatalf("exit code = %d", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "funcc.toml")); err != nil {
		t.Errorf("config not created: %v", err)
	}
}
