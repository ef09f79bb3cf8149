package diag

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = pterm.FgLightBlue
	InfoStyleBG    = pterm.NewStyle(pterm.BgLightBlue, pterm.FgBlack)
)

func PrintError(tag string, err error) {
	ErrorStyleBG.Print(tag)
	ErrorColorFG.Println(" " + err.Error())
}

func PrintInfo(tag, msg string) {
	InfoStyleBG.Print(tag)
	InfoColorFG.Println(" " + msg)
}

func PrintSuccess(tag, msg string) {
	SuccessStyleBG.Print(tag)
	SuccessColorFG.Println(" " + msg)
}

// Report prints a banner for err followed by the offending source line when
// the error carries a location.
func Report(err error, file, src string) {
	fmt.Print("\n-- ")
	kind := Kind(err) + " Error"
	ErrorStyleBG.Print(kind)
	fmt.Print(" ")

	name := filepath.Base(file)
	width := pterm.GetTerminalWidth() / 2
	if width > 50 {
		width = 50
	}
	if dashes := width - len(name) - len(kind) - 1; dashes > 0 {
		fmt.Print(strings.Repeat("-", dashes) + " ")
	}
	InfoColorFG.Println(name)

	fmt.Println(err.Error())
	if loc, ok := LocationOf(err); ok {
		fmt.Println()
		Excerpt(os.Stdout, src, loc)
	}
	fmt.Println()
}

// Excerpt writes the source line at loc with carets under the span.
func Excerpt(w io.Writer, src string, loc Location) {
	lines := strings.Split(src, "\n")
	if loc.Line < 1 || loc.Line > len(lines) {
		return
	}
	text := strings.TrimRight(lines[loc.Line-1], "\r")
	prefix := fmt.Sprintf("%4d | ", loc.Line)
	fmt.Fprintln(w, prefix+text)

	start := loc.Col
	if start < 1 {
		start = 1
	}
	end := start + 1
	if loc.EndLine <= loc.Line && loc.EndCol > start {
		end = loc.EndCol
	}
	if loc.EndLine > loc.Line {
		end = len(text) + 1
	}
	pad := strings.Repeat(" ", len(prefix)+start-1)
	fmt.Fprintln(w, pad+strings.Repeat("^", end-start))
}
