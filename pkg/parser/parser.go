// Package parser turns FunC source into an ast.Program.
package parser

import (
	"strconv"

	"funcc/pkg/ast"
	"funcc/pkg/diag"
	"funcc/pkg/types"
)

// Parser consumes the flat token slice produced by Lex and builds the tree.
//
// Grammar:
//
//	program   = function* EOF
//	function  = type IDENTIFIER "(" [param ("," param)*] ")" (block | ";")
//	param     = type IDENTIFIER
//	type      = "int" | "string" | "bool" | "void" | "(" type ("-" type)* ")"
//	block     = "{" statement* "}"
//	statement = block | if | while | return | decl | exprStmt
//	if        = "if" "(" expression ")" block ["else" (block | if)]
//	while     = "while" "(" expression ")" block
//	return    = "return" [expression] ";"
//	decl      = type IDENTIFIER ["=" expression] ";"
//	exprStmt  = expression ["=" expression] ";"
//	expression = logical_or
//	logical_or  = logical_and ("||" logical_and)*
//	logical_and = equality ("&&" equality)*
//	equality    = relational (("==" | "!=") relational)*
//	relational  = additive (("<" | ">") additive)*
//	additive    = multiplicative (("+" | "-") multiplicative)*
//	multiplicative = unary (("*" | "/" | "%") unary)*
//	unary      = ("-" | "!") unary | postfix
//	postfix    = primary ("(" args ")" | "[" expression "]")*
//	primary    = INTEGER | "true" | "false" | STRING | IDENTIFIER | "(" expression ")"
type Parser struct {
	tokens []Token
	pos    int
}

func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

func (p *Parser) errorf(tok Token, format string, args ...any) error {
	return diag.Syntaxf(tok.Loc(), format, args...)
}

func (p *Parser) peek() Token { return p.peekAt(0) }

func (p *Parser) peekAt(offset int) Token {
	if p.pos+offset >= len(p.tokens) {
		if len(p.tokens) > 0 {
			last := p.tokens[len(p.tokens)-1]
			return Token{Type: EOF, Line: last.Line, Col: last.Col, EndCol: last.EndCol, File: last.File}
		}
		return Token{Type: EOF}
	}
	return p.tokens[p.pos+offset]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// previous is the last consumed token, used to close spans.
func (p *Parser) previous() Token {
	if p.pos == 0 {
		return p.peek()
	}
	return p.tokens[p.pos-1]
}

func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.peek()
	if tok.Type != tt {
		return tok, p.errorf(tok, "expected %s, got %s (%q)", tt, tok.Type, tok.Lexeme)
	}
	return p.advance(), nil
}

func (p *Parser) spanFrom(start Token) diag.Location {
	return diag.Span(start.Loc(), p.previous().Loc())
}

// Parse builds the program from a token slice produced by Lex.
func Parse(tokens []Token) (*ast.Program, error) {
	p := NewParser(tokens)
	prog := &ast.Program{}
	for p.peek().Type != EOF {
		f, err := p.parseFunction()
		if err != nil {
			return nil, err
		}
		prog.Functions = append(prog.Functions, f)
	}
	return prog, nil
}

// ParseSource lexes and parses src in one step.
func ParseSource(file, src string) (*ast.Program, error) {
	tokens, err := Lex(file, src)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

// isTypeStart reports whether a type begins offset tokens ahead. A "(" only
// starts a type when a type keyword follows it, possibly after more "(".
func (p *Parser) isTypeStart(offset int) bool {
	for {
		switch p.peekAt(offset).Type {
		case INT, STRING_KW, BOOL, VOID:
			return true
		case LPAREN:
			offset++
		default:
			return false
		}
	}
}

func (p *Parser) parseType() (types.Type, error) {
	tok := p.advance()
	switch tok.Type {
	case INT:
		return types.IntType, nil
	case STRING_KW:
		return types.StringType, nil
	case BOOL:
		return types.BoolType, nil
	case VOID:
		return types.VoidType, nil
	case LPAREN:
		var sig []types.Type
		for {
			t, err := p.parseType()
			if err != nil {
				return types.Type{}, err
			}
			sig = append(sig, t)
			if p.peek().Type != MINUS {
				break
			}
			p.advance()
		}
		if _, err := p.expect(RPAREN); err != nil {
			return types.Type{}, err
		}
		if len(sig) < 2 {
			return types.Type{}, p.errorf(tok, "function type needs a parameter list and a return type")
		}
		return types.Type{Kind: types.Function, Signature: sig}, nil
	default:
		return types.Type{}, p.errorf(tok, "expected type, got %s (%q)", tok.Type, tok.Lexeme)
	}
}

func (p *Parser) parseFunction() (*ast.Function, error) {
	start := p.peek()
	ret, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}

	f := &ast.Function{Name: name.Lexeme, Ret: ret}
	if p.peek().Type == VOID && p.peekAt(1).Type == RPAREN {
		p.advance()
	}
	for p.peek().Type != RPAREN {
		if len(f.Params) > 0 {
			if _, err := p.expect(COMMA); err != nil {
				return nil, err
			}
		}
		pstart := p.peek()
		ptype, err := p.parseType()
		if err != nil {
			return nil, err
		}
		pname, err := p.expect(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		f.Params = append(f.Params, &ast.Param{Name: pname.Lexeme, Type: ptype, Loc: p.spanFrom(pstart)})
	}
	p.advance() // )
	f.Loc = p.spanFrom(start)

	if p.peek().Type == SEMICOLON {
		p.advance()
		return f, nil
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	f.Body = body
	return f, nil
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	start, err := p.expect(LBRACE)
	if err != nil {
		return nil, err
	}
	b := &ast.Block{}
	for p.peek().Type != RBRACE {
		if p.peek().Type == EOF {
			return nil, p.errorf(p.peek(), "unexpected end of input, missing '}'")
		}
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, s)
	}
	p.advance()
	b.Loc = p.spanFrom(start)
	return b, nil
}

func (p *Parser) parseStatement() (ast.Stmt, error) {
	switch tok := p.peek(); {
	case tok.Type == LBRACE:
		return p.parseBlock()
	case tok.Type == IF:
		return p.parseIf()
	case tok.Type == WHILE:
		return p.parseWhile()
	case tok.Type == RETURN:
		return p.parseReturn()
	case p.isTypeStart(0):
		return p.parseDecl()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseCond() (ast.Expr, error) {
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	start := p.advance()
	cond, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	n := &ast.If{Cond: cond, Then: then}
	if p.peek().Type == ELSE {
		p.advance()
		if p.peek().Type == IF {
			// else if: wrap the nested if in its own block.
			nested, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			n.Else = &ast.Block{Stmts: []ast.Stmt{nested}, Loc: nested.Pos()}
		} else {
			if n.Else, err = p.parseBlock(); err != nil {
				return nil, err
			}
		}
	}
	n.Loc = p.spanFrom(start)
	return n, nil
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	start := p.advance()
	cond, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.While{Cond: cond, Body: body, Loc: p.spanFrom(start)}, nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	start := p.advance()
	n := &ast.Return{}
	if p.peek().Type != SEMICOLON {
		v, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		n.Value = v
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	n.Loc = p.spanFrom(start)
	return n, nil
}

func (p *Parser) parseDecl() (ast.Stmt, error) {
	start := p.peek()
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	n := &ast.Assign{Type: &t, Name: name.Lexeme}
	if p.peek().Type == ASSIGN {
		p.advance()
		if n.Value, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	n.Loc = p.spanFrom(start)
	return n, nil
}

func (p *Parser) parseExprStmt() (ast.Stmt, error) {
	start := p.peek()
	lhs, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if p.peek().Type == ASSIGN {
		eq := p.advance()
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
		loc := p.spanFrom(start)
		switch target := lhs.(type) {
		case *ast.Identifier:
			return &ast.Assign{Name: target.Name, Value: value, Loc: loc}, nil
		case *ast.Subscript:
			return &ast.SubscriptAssign{Target: target.Target, Index: target.Index, Value: value, Loc: loc}, nil
		default:
			return nil, p.errorf(eq, "cannot assign to %s", lhs)
		}
	}

	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	call, ok := lhs.(*ast.FunctionCall)
	if !ok {
		return nil, diag.Syntaxf(lhs.Pos(), "expression statement must be a function call")
	}
	return call, nil
}

// Expressions

func (p *Parser) parseExpression() (ast.Expr, error) {
	return p.parseLogicalOr()
}

// parseBinary parses one left-associative precedence level.
func (p *Parser) parseBinary(ops map[TokenType]ast.BinOp, next func(*Parser) (ast.Expr, error)) (ast.Expr, error) {
	start := p.peek()
	expr, err := next(p)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := ops[p.peek().Type]
		if !ok {
			return expr, nil
		}
		p.advance()
		right, err := next(p)
		if err != nil {
			return nil, err
		}
		expr = &ast.Binop{Op: op, Left: expr, Right: right, Loc: p.spanFrom(start)}
	}
}

var (
	orOps  = map[TokenType]ast.BinOp{OR_LOGICAL: ast.Or}
	andOps = map[TokenType]ast.BinOp{AND_LOGICAL: ast.And}
	eqOps  = map[TokenType]ast.BinOp{EQ: ast.Equal, NEQ: ast.NotEqual}
	relOps = map[TokenType]ast.BinOp{LT: ast.Less, GT: ast.Greater}
	addOps = map[TokenType]ast.BinOp{PLUS: ast.Plus, MINUS: ast.Minus}
	mulOps = map[TokenType]ast.BinOp{STAR: ast.Mul, SLASH: ast.Div, PERCENT: ast.Mod}
)

func (p *Parser) parseLogicalOr() (ast.Expr, error) {
	return p.parseBinary(orOps, (*Parser).parseLogicalAnd)
}

func (p *Parser) parseLogicalAnd() (ast.Expr, error) {
	return p.parseBinary(andOps, (*Parser).parseEquality)
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	return p.parseBinary(eqOps, (*Parser).parseRelational)
}

func (p *Parser) parseRelational() (ast.Expr, error) {
	return p.parseBinary(relOps, (*Parser).parseAdditive)
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	return p.parseBinary(addOps, (*Parser).parseMultiplicative)
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	return p.parseBinary(mulOps, (*Parser).parseUnary)
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	start := p.peek()
	var op ast.UnOp
	switch start.Type {
	case MINUS:
		op = ast.Neg
	case BANG:
		op = ast.Not
	default:
		return p.parsePostfix()
	}
	p.advance()
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &ast.Unop{Op: op, Operand: operand, Loc: p.spanFrom(start)}, nil
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	start := p.peek()
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Type {
		case LPAREN:
			p.advance()
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			expr = &ast.FunctionCall{Func: expr, Args: args, Loc: p.spanFrom(start)}
		case LBRACKET:
			p.advance()
			idx, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RBRACKET); err != nil {
				return nil, err
			}
			expr = &ast.Subscript{Target: expr, Index: idx, Loc: p.spanFrom(start)}
		default:
			return expr, nil
		}
	}
}

// parseCallArgs parses arguments after the opening "(" up to and including ")".
func (p *Parser) parseCallArgs() ([]ast.Expr, error) {
	var args []ast.Expr
	for p.peek().Type != RPAREN {
		if len(args) > 0 {
			if _, err := p.expect(COMMA); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	p.advance()
	return args, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.advance()
	switch tok.Type {
	case INTEGER:
		v, err := strconv.ParseInt(tok.Lexeme, 10, 32)
		if err != nil {
			return nil, p.errorf(tok, "integer literal %s out of range", tok.Lexeme)
		}
		return &ast.IntLiteral{Value: int32(v), Loc: tok.Loc()}, nil
	case TRUE, FALSE:
		return &ast.BoolLiteral{Value: tok.Type == TRUE, Loc: tok.Loc()}, nil
	case STRING:
		return &ast.StringLiteral{Value: tok.Lexeme, Loc: tok.Loc()}, nil
	case IDENTIFIER:
		return &ast.Identifier{Name: tok.Lexeme, Loc: tok.Loc()}, nil
	case LPAREN:
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	case EOF:
		return nil, p.errorf(tok, "unexpected end of input")
	default:
		return nil, p.errorf(tok, "unexpected %s (%q)", tok.Type, tok.Lexeme)
	}
}
