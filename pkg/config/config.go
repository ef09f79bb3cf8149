// Package config loads the optional funcc.toml build settings.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"unicode"

	"github.com/pelletier/go-toml"

	"funcc/pkg/codegen"
)

// FileName is looked up next to the source file when no path is given.
const FileName = "funcc.toml"

type tomlOutput struct {
	Debug      bool   `toml:"debug"`
	AllocTrace bool   `toml:"alloc-trace"`
	Path       string `toml:"path"`
}

type tomlMachine struct {
	StackTop   int64  `toml:"stack-top"`
	EntryLabel string `toml:"entry-label"`
}

type tomlFile struct {
	Output  tomlOutput  `toml:"output"`
	Machine tomlMachine `toml:"machine"`
}

// Config is the validated build configuration.
type Config struct {
	Debug      bool
	AllocTrace bool
	OutputPath string
	StackTop   int32
	EntryLabel string
}

func Default() *Config {
	opts := codegen.DefaultOptions()
	return &Config{StackTop: opts.StackTop, EntryLabel: opts.EntryLabel}
}

// Options converts the configuration for the code generator.
func (c *Config) Options() codegen.Options {
	return codegen.Options{
		Debug:      c.Debug,
		AllocTrace: c.AllocTrace,
		StackTop:   c.StackTop,
		EntryLabel: c.EntryLabel,
	}
}

// Parse decodes and validates a configuration document. Missing keys keep
// their defaults.
func Parse(buff []byte) (*Config, error) {
	def := Default()
	tf := &tomlFile{
		Machine: tomlMachine{StackTop: int64(def.StackTop), EntryLabel: def.EntryLabel},
	}
	if err := toml.Unmarshal(buff, tf); err != nil {
		return nil, err
	}

	if tf.Machine.StackTop <= 0 || tf.Machine.StackTop > 1<<31-1 {
		return nil, fmt.Errorf("machine.stack-top must be a positive 32-bit value, got %d", tf.Machine.StackTop)
	}
	if !isLabel(tf.Machine.EntryLabel) {
		return nil, fmt.Errorf("machine.entry-label '%s' is not a valid label", tf.Machine.EntryLabel)
	}
	if tf.Machine.EntryLabel == "main" || codegen.ReservedLabel(tf.Machine.EntryLabel) {
		return nil, fmt.Errorf("machine.entry-label '%s' collides with a generated label", tf.Machine.EntryLabel)
	}

	return &Config{
		Debug:      tf.Output.Debug,
		AllocTrace: tf.Output.AllocTrace,
		OutputPath: tf.Output.Path,
		StackTop:   int32(tf.Machine.StackTop),
		EntryLabel: tf.Machine.EntryLabel,
	}, nil
}

// Load reads the configuration at path.
func Load(path string) (*Config, error) {
	buff, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(buff)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Find loads funcc.toml from dir, or returns the defaults when there is none.
func Find(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Encode renders cfg as a configuration document.
func Encode(cfg *Config) ([]byte, error) {
	tf := &tomlFile{
		Output:  tomlOutput{Debug: cfg.Debug, AllocTrace: cfg.AllocTrace, Path: cfg.OutputPath},
		Machine: tomlMachine{StackTop: int64(cfg.StackTop), EntryLabel: cfg.EntryLabel},
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(tf); err != nil {
		return nil, fmt.Errorf("error encoding TOML %s", err.Error())
	}
	return buf.Bytes(), nil
}

// Init writes a default funcc.toml into dir. An existing file is left alone.
func Init(dir string) (string, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("%s already exists", path)
	}
	buff, err := Encode(Default())
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, buff, 0o644); err != nil {
		return "", fmt.Errorf("error creating config file: %s", err.Error())
	}
	return path, nil
}

func isLabel(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}
