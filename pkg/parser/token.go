package parser

import (
	"fmt"

	"funcc/pkg/diag"
)

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	IDENTIFIER
	INTEGER
	STRING

	// Keywords
	INT
	STRING_KW
	BOOL
	VOID
	TRUE
	FALSE
	IF
	ELSE
	WHILE
	RETURN

	// Delimiters
	LBRACE
	RBRACE
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	SEMICOLON
	COMMA

	// Operators
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	BANG
	ASSIGN
	EQ
	NEQ
	LT
	GT
	AND_LOGICAL
	OR_LOGICAL
)

var tokenNames = [...]string{
	EOF:         "EOF",
	IDENTIFIER:  "IDENTIFIER",
	INTEGER:     "INTEGER",
	STRING:      "STRING",
	INT:         "int",
	STRING_KW:   "string",
	BOOL:        "bool",
	VOID:        "void",
	TRUE:        "true",
	FALSE:       "false",
	IF:          "if",
	ELSE:        "else",
	WHILE:       "while",
	RETURN:      "return",
	LBRACE:      "{",
	RBRACE:      "}",
	LPAREN:      "(",
	RPAREN:      ")",
	LBRACKET:    "[",
	RBRACKET:    "]",
	SEMICOLON:   ";",
	COMMA:       ",",
	PLUS:        "+",
	MINUS:       "-",
	STAR:        "*",
	SLASH:       "/",
	PERCENT:     "%",
	BANG:        "!",
	ASSIGN:      "=",
	EQ:          "==",
	NEQ:         "!=",
	LT:          "<",
	GT:          ">",
	AND_LOGICAL: "&&",
	OR_LOGICAL:  "||",
}

func (t TokenType) String() string {
	if int(t) < len(tokenNames) && tokenNames[t] != "" {
		return tokenNames[t]
	}
	return fmt.Sprintf("Token(%d)", int(t))
}

// Token is a single lexical unit. Col is the 1-based column of the first
// rune, EndCol the column just past the last one.
type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
	Col    int
	EndCol int
	File   string
}

func (t Token) Loc() diag.Location {
	return diag.Location{File: t.File, Line: t.Line, Col: t.Col, EndLine: t.Line, EndCol: t.EndCol}
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %d:%d", t.Type, t.Lexeme, t.Line, t.Col)
}
