package parser

import (
	"strings"
	"unicode"

	"funcc/pkg/diag"
)

var keywords = map[string]TokenType{
	"int":    INT,
	"string": STRING_KW,
	"bool":   BOOL,
	"void":   VOID,
	"true":   TRUE,
	"false":  FALSE,
	"if":     IF,
	"else":   ELSE,
	"while":  WHILE,
	"return": RETURN,
}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	file string
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
	col  int // 1-based column of the next rune
}

func newLexer(file, src string) *Lexer {
	return &Lexer{file: file, src: []rune(src), line: 1, col: 1}
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) here() diag.Location {
	return diag.Location{File: l.file, Line: l.line, Col: l.col, EndLine: l.line, EndCol: l.col + 1}
}

// token builds a token that started at (line, col) and ends at the current
// position.
func (l *Lexer) token(tt TokenType, lexeme string, line, col int) Token {
	end := l.col
	if l.line != line {
		end = col + 1
	}
	return Token{Type: tt, Lexeme: lexeme, Line: line, Col: col, EndCol: end, File: l.file}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

// skipLineComment discards everything up to end-of-line. The opening "//"
// must already have been consumed.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
}

// skipBlockComment discards everything up to and including "*/".
func (l *Lexer) skipBlockComment(start diag.Location) error {
	for l.pos < len(l.src) {
		if l.peek() == '*' && l.peek2() == '/' {
			l.advance()
			l.advance()
			return nil
		}
		l.advance()
	}
	return diag.Syntaxf(start, "unterminated block comment")
}

func (l *Lexer) scanIdent() Token {
	line, col := l.line, l.col
	start := l.pos
	for l.pos < len(l.src) {
		r := l.peek()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	tt := IDENTIFIER
	if kw, ok := keywords[lexeme]; ok {
		tt = kw
	}
	return l.token(tt, lexeme, line, col)
}

func (l *Lexer) scanInt() Token {
	line, col := l.line, l.col
	start := l.pos
	for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
		l.advance()
	}
	return l.token(INTEGER, string(l.src[start:l.pos]), line, col)
}

// scanString collects a "..." literal and resolves its escapes. Strings are
// stored one byte per word, so only ASCII is accepted.
func (l *Lexer) scanString() (Token, error) {
	line, col := l.line, l.col
	open := l.here()
	l.advance() // opening quote

	var sb strings.Builder
	for {
		r := l.peek()
		switch {
		case l.pos >= len(l.src) || r == '\n':
			return Token{}, diag.Syntaxf(open, "unterminated string literal")
		case r == '"':
			l.advance()
			return l.token(STRING, sb.String(), line, col), nil
		case r == '\\':
			esc := l.here()
			l.advance()
			switch next := l.advance(); next {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '0':
				sb.WriteByte(0)
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			default:
				return Token{}, diag.Syntaxf(esc, "unknown escape sequence \\%c", next)
			}
		case r > unicode.MaxASCII:
			return Token{}, diag.Syntaxf(l.here(), "non-ASCII character %q in string literal", r)
		default:
			sb.WriteRune(l.advance())
		}
	}
}

// Lex turns src into a token slice terminated by EOF. file is only used for
// locations.
func Lex(file, src string) ([]Token, error) {
	l := newLexer(file, src)
	var tokens []Token

	for {
		l.skipWhitespace()
		if l.pos >= len(l.src) {
			break
		}
		line, col := l.line, l.col
		r := l.peek()

		switch {
		case r == '/' && l.peek2() == '/':
			l.advance()
			l.advance()
			l.skipLineComment()
			continue
		case r == '/' && l.peek2() == '*':
			start := l.here()
			l.advance()
			l.advance()
			if err := l.skipBlockComment(start); err != nil {
				return nil, err
			}
			continue
		case unicode.IsLetter(r) || r == '_':
			tokens = append(tokens, l.scanIdent())
			continue
		case unicode.IsDigit(r):
			tokens = append(tokens, l.scanInt())
			continue
		case r == '"':
			tok, err := l.scanString()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			continue
		}

		// Two-rune operators first.
		two := string([]rune{r, l.peek2()})
		if tt, ok := twoRuneOps[two]; ok {
			l.advance()
			l.advance()
			tokens = append(tokens, l.token(tt, two, line, col))
			continue
		}
		if tt, ok := oneRuneOps[r]; ok {
			l.advance()
			tokens = append(tokens, l.token(tt, string(r), line, col))
			continue
		}
		return nil, diag.Syntaxf(l.here(), "unexpected character %q", r)
	}

	tokens = append(tokens, Token{Type: EOF, Line: l.line, Col: l.col, EndCol: l.col + 1, File: file})
	return tokens, nil
}

var twoRuneOps = map[string]TokenType{
	"==": EQ,
	"!=": NEQ,
	"&&": AND_LOGICAL,
	"||": OR_LOGICAL,
}

var oneRuneOps = map[rune]TokenType{
	'{': LBRACE,
	'}': RBRACE,
	'(': LPAREN,
	')': RPAREN,
	'[': LBRACKET,
	']': RBRACKET,
	';': SEMICOLON,
	',': COMMA,
	'+': PLUS,
	'-': MINUS,
	'*': STAR,
	'/': SLASH,
	'%': PERCENT,
	'!': BANG,
	'=': ASSIGN,
	'<': LT,
	'>': GT,
}
