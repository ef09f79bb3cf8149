package diag

import "fmt"

// Location is a source span. Lines and columns start at 1; a zero Line means
// the position is unknown.
type Location struct {
	File    string
	Line    int
	Col     int
	EndLine int
	EndCol  int
}

func (l Location) IsZero() bool { return l.Line == 0 }

// String follows the "file:line.col-endcol" convention.
func (l Location) String() string {
	if l.IsZero() {
		return "<unknown>"
	}
	s := fmt.Sprintf("%d.%d", l.Line, l.Col)
	switch {
	case l.EndLine > l.Line:
		s += fmt.Sprintf("-%d.%d", l.EndLine, l.EndCol)
	case l.EndCol > l.Col:
		s += fmt.Sprintf("-%d", l.EndCol)
	}
	if l.File != "" {
		s = l.File + ":" + s
	}
	return s
}

// Span joins two locations into one covering both.
func Span(from, to Location) Location {
	end := to.EndLine
	endCol := to.EndCol
	if end == 0 {
		end, endCol = to.Line, to.Col
	}
	return Location{File: from.File, Line: from.Line, Col: from.Col, EndLine: end, EndCol: endCol}
}
