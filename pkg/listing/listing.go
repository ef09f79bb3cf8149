// Package listing reads back the textual instruction stream: it assigns
// addresses, builds the label table and checks that every operand is well
// formed and every referenced label exists. It does not encode instructions.
package listing

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"funcc/pkg/isa"
)

type shape int

const (
	shapeNone    shape = iota // ebreak
	shapeReg                  // eread d
	shapeRRR                  // add d, s1, s2
	shapeRRI                  // addi d, s, imm
	shapeRIR                  // sw base, imm, src
	shapeRI                   // lui d, imm
	shapeRTarget              // li d, imm|label ; jal d, imm|label
)

var shapes = map[string]shape{
	"ebreak": shapeNone,
	"eread":  shapeReg,
	"ewrite": shapeReg,
	"add":    shapeRRR,
	"sub":    shapeRRR,
	"xor":    shapeRRR,
	"srl":    shapeRRR,
	"sra":    shapeRRR,
	"or":     shapeRRR,
	"and":    shapeRRR,
	"mul":    shapeRRR,
	"div":    shapeRRR,
	"rem":    shapeRRR,
	"sll":    shapeRRR,
	"slt":    shapeRRR,
	"seq":    shapeRRR,
	"sne":    shapeRRR,
	"sge":    shapeRRR,
	"addi":   shapeRRI,
	"xori":   shapeRRI,
	"lw":     shapeRRI,
	"jalr":   shapeRRI,
	"beq":    shapeRRI,
	"bne":    shapeRRI,
	"blt":    shapeRRI,
	"bge":    shapeRRI,
	"sw":     shapeRIR,
	"lui":    shapeRI,
	"li":     shapeRTarget,
	"jal":    shapeRTarget,
}

var operandCount = map[shape]int{
	shapeNone: 0, shapeReg: 1, shapeRRR: 3, shapeRRI: 3, shapeRIR: 3, shapeRI: 2, shapeRTarget: 2,
}

// Line is one instruction or label definition.
type Line struct {
	No       int
	Label    string
	Mnemonic string
	Operands []string
	Addr     int
	Words    int
}

func (l Line) String() string {
	if l.Label != "" {
		return l.Label + ":"
	}
	if len(l.Operands) == 0 {
		return l.Mnemonic
	}
	return l.Mnemonic + " " + strings.Join(l.Operands, ", ")
}

type Listing struct {
	Lines  []Line
	Labels map[string]int
	// Size is the address one past the last instruction.
	Size int
}

// Parse runs the first pass over text: it splits lines, validates operand
// shapes and assigns addresses.
func Parse(text string) (*Listing, error) {
	lst := &Listing{Labels: make(map[string]int)}
	addr := 0
	for i, raw := range strings.Split(text, "\n") {
		no := i + 1
		line := strings.TrimSpace(stripComments(raw))
		if line == "" {
			continue
		}

		if strings.HasSuffix(line, ":") {
			label := strings.TrimSuffix(line, ":")
			if !isIdentifier(label) {
				return nil, fmt.Errorf("line %d: invalid label '%s'", no, label)
			}
			if _, dup := lst.Labels[label]; dup {
				return nil, fmt.Errorf("line %d: duplicate label '%s'", no, label)
			}
			lst.Labels[label] = addr
			lst.Lines = append(lst.Lines, Line{No: no, Label: label, Addr: addr})
			continue
		}

		l, err := parseInstruction(line, no)
		if err != nil {
			return nil, err
		}
		l.Addr = addr
		addr += l.Words
		lst.Lines = append(lst.Lines, l)
	}
	lst.Size = addr
	return lst, nil
}

func parseInstruction(line string, no int) (Line, error) {
	fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
	l := Line{No: no, Mnemonic: strings.ToLower(fields[0]), Operands: fields[1:], Words: 1}

	sh, ok := shapes[l.Mnemonic]
	if !ok {
		return l, fmt.Errorf("line %d: unknown instruction '%s'", no, fields[0])
	}
	if want := operandCount[sh]; len(l.Operands) != want {
		return l, fmt.Errorf("line %d: %s expects %d operands, got %d", no, l.Mnemonic, want, len(l.Operands))
	}

	ops := l.Operands
	var err error
	switch sh {
	case shapeReg:
		err = checkRegs(no, ops[0])
	case shapeRRR:
		err = checkRegs(no, ops...)
	case shapeRRI:
		if err = checkRegs(no, ops[0], ops[1]); err == nil {
			_, err = parseImmediate(no, ops[2])
		}
	case shapeRIR:
		if err = checkRegs(no, ops[0], ops[2]); err == nil {
			_, err = parseImmediate(no, ops[1])
		}
	case shapeRI:
		if err = checkRegs(no, ops[0]); err == nil {
			_, err = parseImmediate(no, ops[1])
		}
	case shapeRTarget:
		if err = checkRegs(no, ops[0]); err != nil {
			break
		}
		if isIdentifier(ops[1]) {
			if l.Mnemonic == "li" {
				l.Words = isa.LabelLoad
			}
			break
		}
		var imm int32
		if imm, err = parseImmediate(no, ops[1]); err == nil && l.Mnemonic == "li" {
			l.Words = isa.LoadWidth(imm)
		}
	}
	return l, err
}

// Target returns the label operand of a li or jal, if it has one.
func (l Line) Target() (string, bool) {
	if (l.Mnemonic == "li" || l.Mnemonic == "jal") && len(l.Operands) == 2 && isIdentifier(l.Operands[1]) {
		return l.Operands[1], true
	}
	return "", false
}

// Check verifies that every label operand refers to a defined label.
func (lst *Listing) Check() error {
	for _, l := range lst.Lines {
		if target, ok := l.Target(); ok {
			if _, defined := lst.Labels[target]; !defined {
				return fmt.Errorf("line %d: undefined label '%s'", l.No, target)
			}
		}
	}
	return nil
}

// Instructions returns the lines that occupy memory.
func (lst *Listing) Instructions() []Line {
	var out []Line
	for _, l := range lst.Lines {
		if l.Label == "" {
			out = append(out, l)
		}
	}
	return out
}

func checkRegs(no int, ops ...string) error {
	for _, op := range ops {
		if _, ok := isa.ParseReg(op); !ok {
			return fmt.Errorf("line %d: invalid register '%s'", no, op)
		}
	}
	return nil
}

func parseImmediate(no int, s string) (int32, error) {
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("line %d: invalid immediate '%s'", no, s)
	}
	return int32(v), nil
}

func stripComments(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
