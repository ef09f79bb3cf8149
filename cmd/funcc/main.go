package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ComedicChimera/olive"

	"funcc/pkg/compiler"
	"funcc/pkg/config"
	"funcc/pkg/diag"
	"funcc/pkg/utils"
)

const version = "0.3.0"

func main() {
	os.Exit(run(os.Args))
}

// run executes the command line and returns the process exit code.
func run(args []string) int {
	cli := olive.NewCLI("funcc", "funcc compiles FunC programs to register machine assembly", true)

	buildCmd := cli.AddSubcommand("build", "compile a source file", true)
	buildCmd.AddPrimaryArg("source", "the FunC source file", true)
	buildCmd.AddStringArg("output", "o", "the output path (default: <source>.s)", false)
	buildCmd.AddStringArg("config", "c", "the funcc.toml to use", false)
	buildCmd.AddFlag("debug", "d", "annotate the output with debug comments")
	buildCmd.AddFlag("alloc", "a", "trace register allocation in the output")
	buildCmd.AddFlag("stdout", "s", "write the program to standard output")

	checkCmd := cli.AddSubcommand("check", "compile a source file without writing output", true)
	checkCmd.AddPrimaryArg("source", "the FunC source file", true)
	checkCmd.AddStringArg("config", "c", "the funcc.toml to use", false)

	initCmd := cli.AddSubcommand("init", "write a default funcc.toml", true)
	initCmd.AddPrimaryArg("dir", "the directory to initialize", false)

	cli.AddSubcommand("version", "print the funcc version", false)

	result, err := olive.ParseArgs(cli, args)
	if err != nil {
		diag.PrintError("CLI Usage Error", err)
		return diag.ExitParams
	}

	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "build":
		return execBuildCommand(subResult, true)
	case "check":
		return execBuildCommand(subResult, false)
	case "init":
		return execInitCommand(subResult)
	case "version":
		diag.PrintInfo("funcc Version", version)
	}
	return diag.ExitOK
}

func stringArg(result *olive.ArgParseResult, name string) string {
	if v, ok := result.Arguments[name]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func loadConfig(result *olive.ArgParseResult, srcDir string) (*config.Config, error) {
	if path := stringArg(result, "config"); path != "" {
		return config.Load(path)
	}
	return config.Find(srcDir)
}

// compileSource loads the configuration and compiles the source named on the
// command line. A non-zero code means the failure has been reported.
func compileSource(result *olive.ArgParseResult, flags bool) (*compiler.Result, *config.Config, string, int) {
	srcRelPath, _ := result.PrimaryArg()
	srcPath, srcDir, err := utils.GetPathInfo(srcRelPath)
	if err != nil {
		diag.PrintError("Path Error", err)
		return nil, nil, "", diag.ExitParams
	}

	cfg, err := loadConfig(result, srcDir)
	if err != nil {
		diag.PrintError("Config Error", err)
		return nil, nil, "", diag.ExitParams
	}
	if flags {
		cfg.Debug = cfg.Debug || result.HasFlag("debug")
		cfg.AllocTrace = cfg.AllocTrace || result.HasFlag("alloc")
	}

	src, err := os.ReadFile(srcPath)
	if err != nil {
		diag.PrintError("File Error", err)
		return nil, nil, "", diag.ExitParams
	}

	res, err := compiler.Compile(filepath.Base(srcPath), string(src), cfg.Options())
	if err != nil {
		diag.Report(err, srcPath, string(src))
		return nil, nil, "", diag.ExitCode(err)
	}
	return res, cfg, srcPath, diag.ExitOK
}

// execBuildCommand compiles the source named on the command line and, when
// write is set, saves the program.
func execBuildCommand(result *olive.ArgParseResult, write bool) int {
	res, cfg, srcPath, code := compileSource(result, write)
	if code != diag.ExitOK {
		return code
	}

	if !write {
		diag.PrintSuccess("Check", fmt.Sprintf("%s: %d instructions, %d labels", filepath.Base(srcPath), res.Listing.Size, len(res.Listing.Labels)))
		return diag.ExitOK
	}

	if result.HasFlag("stdout") {
		fmt.Print(res.Assembly)
		return diag.ExitOK
	}

	outPath := stringArg(result, "output")
	if outPath == "" {
		outPath = cfg.OutputPath
	}
	if outPath == "" {
		outPath = utils.OutputPath(srcPath, ".s")
	}
	if err := os.WriteFile(outPath, []byte(res.Assembly), 0o644); err != nil {
		diag.PrintError("Output Error", err)
		return diag.ExitOther
	}
	diag.PrintSuccess("Built", outPath)
	return diag.ExitOK
}

func execInitCommand(result *olive.ArgParseResult) int {
	dir, ok := result.PrimaryArg()
	if !ok || dir == "" {
		dir = "."
	}
	path, err := config.Init(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			diag.PrintError("Path Error", err)
			return diag.ExitParams
		}
		diag.PrintError("Config Error", err)
		return diag.ExitOther
	}
	diag.PrintSuccess("Created", path)
	return diag.ExitOK
}
