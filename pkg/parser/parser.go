package parser

import (
	"fmt"

	"github.com/AaronC81/conker/pkg/ast"
)

// ParseError reports a syntax error, naming the line and what the
// parser was expecting when it found something else.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Parser is a straightforward recursive-descent parser over the flat
// token stream a Lexer produces. It holds no state beyond its position
// in that stream.
type Parser struct {
	toks []Token
	pos  int
}

// Parse lexes and parses src into a program.
func Parse(src string) (*ast.Program, error) {
	toks, err := Lex(src)
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks}
	return p.parseProgram()
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for p.this().Kind != TokEOF {
		switch p.this().Kind {
		case TokNewLine:
			p.advance()
		case TokKwTask:
			task, err := p.parseTaskDef()
			if err != nil {
				return nil, err
			}
			prog.Tasks = append(prog.Tasks, task)
		default:
			return nil, p.unexpected("a task definition")
		}
	}
	return prog, nil
}

func (p *Parser) parseTaskDef() (*ast.TaskDef, error) {
	p.advance() // 'task'
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}

	def := &ast.TaskDef{Name: name, Multiplicity: 1}
	if p.this().Kind == TokLBracket {
		p.advance()
		n, err := p.expectInteger()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRBracket); err != nil {
			return nil, err
		}
		def.Multiplicity = int(n)
		def.IsMulti = true
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	def.Body = body
	return def, nil
}

// parseBlock expects the current position to be just before the
// NewLine that introduces an indented block, consumes through the
// matching Dedent, and returns the statements found in between.
func (p *Parser) parseBlock() (*ast.Block, error) {
	if _, err := p.expect(TokNewLine); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokIndent); err != nil {
		return nil, err
	}

	block := &ast.Block{}
	for p.this().Kind != TokDedent {
		p.skipNewLines()
		if p.this().Kind == TokDedent {
			break
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
		p.skipNewLines()
	}
	p.advance() // Dedent
	return block, nil
}

func (p *Parser) skipNewLines() {
	for p.this().Kind == TokNewLine {
		p.advance()
	}
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.this().Kind {
	case TokKwLoop:
		return p.parseLoop()
	case TokKwWhile:
		return p.parseWhile()
	case TokKwIf:
		return p.parseIf()
	case TokKwExit:
		p.advance()
		return &ast.Exit{}, nil
	default:
		return p.parseAssignmentSendOrReceive()
	}
}

func (p *Parser) parseLoop() (ast.Statement, error) {
	p.advance()
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Loop{Body: body}, nil
}

func (p *Parser) parseWhile() (ast.Statement, error) {
	p.advance()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.While{Cond: cond, Body: body}, nil
}

func (p *Parser) parseIf() (ast.Statement, error) {
	p.advance()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.If{Cond: cond, Then: then}

	// An `else` sits at the same indentation level as the `if`, i.e.
	// right after the block's Dedent has already been consumed; skip
	// any blank lines between the two before checking.
	save := p.pos
	p.skipNewLines()
	if p.this().Kind == TokKwElse {
		p.advance()
		elseBlock, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Else = elseBlock
	} else {
		p.pos = save
	}
	return stmt, nil
}

// parseAssignmentSendOrReceive handles the three statement forms that
// start with an expression or a bare target name: `name = expr`,
// `expr -> channel`, and `target <- channel-spec`.
func (p *Parser) parseAssignmentSendOrReceive() (ast.Statement, error) {
	// `target <- ...` needs one token of lookahead past a bare name
	// before we commit to parsing a full expression.
	if p.this().Kind == TokIdentifier && p.peekTok().Kind == TokReceiveArrow {
		target := p.this().Text
		p.advance()
		p.advance()
		spec, err := p.parseChannelSpec()
		if err != nil {
			return nil, err
		}
		return &ast.Receive{Target: target, Channel: spec}, nil
	}

	left, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	switch p.this().Kind {
	case TokAssign:
		id, ok := left.(*ast.Identifier)
		if !ok {
			return nil, &ParseError{Line: p.this().Line, Message: "left side of '=' must be a name"}
		}
		p.advance()
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Target: id.Name, Value: value}, nil

	case TokSendArrow:
		p.advance()
		channel, err := p.parseChannelExpr()
		if err != nil {
			return nil, err
		}
		return &ast.Send{Value: left, Channel: channel}, nil

	default:
		return nil, p.unexpected("'=', '->', or '<-'")
	}
}

func (p *Parser) parseChannelSpec() (ast.ChannelSpec, error) {
	if p.this().Kind == TokQuestion {
		p.advance()
		name, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		return &ast.BindingChannel{Name: name}, nil
	}
	expr, err := p.parseChannelExpr()
	if err != nil {
		return nil, err
	}
	return &ast.ExplicitChannel{Expr: expr}, nil
}

// parseChannelExpr parses the expression naming a channel: almost
// always a bare or indexed task/local reference, but a parenthesized
// expression is accepted too since any expression resolving to a
// ChannelRef is legal there.
func (p *Parser) parseChannelExpr() (ast.Expression, error) {
	return p.parsePrimary()
}

//-----------------------------------------------------------------------------
// Expression grammar, precedence climbing low to high:
// comparison -> additive -> multiplicative -> unary -> primary
//-----------------------------------------------------------------------------

func (p *Parser) parseExpr() (ast.Expression, error) { return p.parseComparison() }

func (p *Parser) parseComparison() (ast.Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := comparisonOp(p.this().Kind)
		if !ok {
			return left, nil
		}
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch p.this().Kind {
		case TokAdd:
			op = "+"
		case TokSub:
			op = "-"
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch p.this().Kind {
		case TokMul:
			op = "*"
		case TokDiv:
			op = "/"
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	if p.this().Kind == TokSub {
		p.advance()
		n, err := p.expectInteger()
		if err != nil {
			return nil, err
		}
		return &ast.IntegerLiteral{Value: -n}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	tok := p.this()
	switch tok.Kind {
	case TokInteger:
		p.advance()
		return &ast.IntegerLiteral{Value: tok.Int}, nil

	case TokKwTrue:
		p.advance()
		return &ast.BooleanLiteral{Value: true}, nil

	case TokKwFalse:
		p.advance()
		return &ast.BooleanLiteral{Value: false}, nil

	case TokKwNull:
		p.advance()
		return &ast.NullLiteral{}, nil

	case TokIdentifier:
		p.advance()
		if p.this().Kind == TokLBracket {
			p.advance()
			index, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokRBracket); err != nil {
				return nil, err
			}
			return &ast.IndexExpr{Task: tok.Text, Index: index}, nil
		}
		return &ast.Identifier{Name: tok.Text}, nil

	case TokLParen:
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRParen); err != nil {
			return nil, err
		}
		return expr, nil

	default:
		return nil, p.unexpected("an expression")
	}
}

func comparisonOp(k TokenKind) (string, bool) {
	switch k {
	case TokLt:
		return "<", true
	case TokGt:
		return ">", true
	case TokLtEq:
		return "<=", true
	case TokGtEq:
		return ">=", true
	case TokEq:
		return "==", true
	case TokNotEq:
		return "!=", true
	default:
		return "", false
	}
}

//-----------------------------------------------------------------------------
// Token stream helpers
//-----------------------------------------------------------------------------

func (p *Parser) this() Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos]
}

func (p *Parser) peekTok() Token {
	if p.pos+1 >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+1]
}

func (p *Parser) advance() { p.pos++ }

func (p *Parser) expect(k TokenKind) (Token, error) {
	if p.this().Kind != k {
		return Token{}, p.unexpected(k.String())
	}
	t := p.this()
	p.advance()
	return t, nil
}

func (p *Parser) expectIdentifier() (string, error) {
	t, err := p.expect(TokIdentifier)
	if err != nil {
		return "", err
	}
	return t.Text, nil
}

func (p *Parser) expectInteger() (int64, error) {
	t, err := p.expect(TokInteger)
	if err != nil {
		return 0, err
	}
	return t.Int, nil
}

func (p *Parser) unexpected(want string) error {
	return &ParseError{
		Line:    p.this().Line,
		Message: fmt.Sprintf("expected %s, found %s", want, describe(p.this())),
	}
}

func describe(t Token) string {
	if t.Kind == TokIdentifier || t.Kind == TokInteger {
		return fmt.Sprintf("%s %q", t.Kind, t.Text)
	}
	return t.Kind.String()
}
