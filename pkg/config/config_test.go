package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.StackTop != 1<<16 || cfg.EntryLabel != "_START" || cfg.Debug || cfg.AllocTrace {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestParseValues(t *testing.T) {
	doc := `
[output]
debug = true
alloc-trace = true
path = "out.s"

[machine]
stack-top = 4096
entry-label = "BOOT"
`
	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !cfg.Debug || !cfg.AllocTrace || cfg.OutputPath != "out.s" || cfg.StackTop != 4096 || cfg.EntryLabel != "BOOT" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	opts := cfg.Options()
	if !opts.Debug || !opts.AllocTrace || opts.StackTop != 4096 || opts.EntryLabel != "BOOT" {
		t.Errorf("unexpected options: %+v", opts)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		msg  string
	}{
		{"negative stack", "[machine]\nstack-top = -1", "stack-top"},
		{"bad label", "[machine]\nentry-label = \"1x\"", "not a valid label"},
		{"colliding label", "[machine]\nentry-label = \"main\"", "collides"},
		{"builtin label", "[machine]\nentry-label = \"READ\"", "collides"},
		{"loop label", "[machine]\nentry-label = \"WHILE_END_0\"", "collides"},
		{"syntax", "[machine\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil || !strings.Contains(err.Error(), tt.msg) {
				t.Fatalf("expected error containing %q, got %v", tt.msg, err)
			}
		})
	}
}

func TestInitAndFind(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Find(dir)
	if err != nil {
		t.Fatalf("Find without file failed: %v", err)
	}
	if cfg.EntryLabel != "_START" {
		t.Errorf("defaults not returned: %+v", cfg)
	}

	path, err := Init(dir)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if path != filepath.Join(dir, FileName) {
		t.Errorf("Init wrote %s", path)
	}
	if _, err := Init(dir); err == nil {
		t.Error("second Init overwrote the file")
	}

	cfg, err = Find(dir)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("round trip changed config: %+v", cfg)
	}

	os.WriteFile(path, []byte("[machine]\nstack-top = 0\n"), 0o644)
	if _, err := Find(dir); err == nil || !strings.Contains(err.Error(), path) {
		t.Errorf("invalid file not reported with its path: %v", err)
	}
}
