// Package parser implements a recursive-descent parser: precedence
// climbing over the expression grammar, panic-mode recovery on syntax
// errors.
package parser

import (
	"strconv"

	"github.com/theSherwood/wacc/internal/arena"
	"github.com/theSherwood/wacc/internal/ast"
	"github.com/theSherwood/wacc/internal/diag"
	"github.com/theSherwood/wacc/internal/lexer"
	"github.com/theSherwood/wacc/internal/token"
)

// tokenSource is the subset of *lexer.Lexer the parser needs, so tests can
// feed it a canned token sequence.
type tokenSource interface {
	Next() token.Token
}

// Parser consumes tokens from a lexer and produces an AST rooted at a
// Program node.
type Parser struct {
	file    string
	source  string
	lex     tokenSource
	diags   *diag.List
	pools   *ast.Pools
	current token.Token
}

// New constructs a Parser reading from lex, reporting into diags and
// allocating nodes from a.
func New(file, source string, lex *lexer.Lexer, diags *diag.List, a *arena.Arena) *Parser {
	p := &Parser{
		file:   file,
		source: source,
		lex:    lex,
		diags:  diags,
		pools:  ast.NewPools(a),
	}
	p.current = p.lex.Next()
	return p
}

func (p *Parser) pos() ast.Position {
	return ast.Position{Line: p.current.Line, Column: p.current.Column}
}

func (p *Parser) advance() {
	p.current = p.lex.Next()
}

func (p *Parser) match(k token.Kind) bool {
	if p.current.Kind == k {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) reportf(id int, message, suggestion string) {
	if p.diags == nil {
		return
	}
	p.diags.Append(diag.Diagnostic{
		ID:         id,
		Severity:   diag.Syntax,
		Location:   diag.Location{File: p.file, Line: p.current.Line, Column: p.current.Column},
		Message:    message,
		Suggestion: suggestion,
		Context:    diag.SourceLine(p.source, p.current.Line),
	})
}

func (p *Parser) reportSemantic(id int, message, suggestion string) {
	if p.diags == nil {
		return
	}
	p.diags.Append(diag.Diagnostic{
		ID:         id,
		Severity:   diag.Semantic,
		Location:   diag.Location{File: p.file, Line: p.current.Line, Column: p.current.Column},
		Message:    message,
		Suggestion: suggestion,
		Context:    diag.SourceLine(p.source, p.current.Line),
	})
}

// synchronize implements panic-mode recovery: skip tokens until the next
// `;`, `{`, `}`, or EOF, without consuming it.
func (p *Parser) synchronize() {
	for p.current.Kind != token.EOF {
		switch p.current.Kind {
		case token.Semicolon, token.LBrace, token.RBrace:
			return
		}
		p.advance()
	}
}

// ParseProgram parses a complete program, or returns nil if the function
// definition could not be recovered from.
func (p *Parser) ParseProgram() *ast.Program {
	progPos := p.pos()
	fn := p.parseFunction()
	if fn == nil {
		return nil
	}

	if p.current.Kind != token.EOF {
		p.reportf(diag.SyntaxUnexpectedToken, "expected end of file", "remove extra tokens")
		return nil
	}

	prog := p.pools.NewProgram(progPos)
	prog.Function = fn
	return prog
}

// parseFunction accepts only the form `int IDENT ( ) { stmt* }`.
func (p *Parser) parseFunction() *ast.Function {
	if !p.match(token.KeywordInt) {
		p.reportf(diag.SyntaxExpectedToken, "expected 'int'", "add 'int' keyword")
		p.synchronize()
		return nil
	}

	if p.current.Kind != token.Identifier {
		p.reportf(diag.SyntaxExpectedToken, "expected function name", "add a function name")
		p.synchronize()
		return nil
	}
	fnPos := p.pos()
	name := p.current.Lexeme
	p.advance()

	if !p.match(token.LParen) {
		p.reportf(diag.SyntaxMissingParen, "expected '('", "add opening parenthesis")
		p.synchronize()
		return nil
	}
	if !p.match(token.RParen) {
		p.reportf(diag.SyntaxMissingParen, "expected ')'", "add closing parenthesis")
		p.synchronize()
		return nil
	}
	if !p.match(token.LBrace) {
		p.reportf(diag.SyntaxMissingBrace, "expected '{'", "add opening brace")
		p.synchronize()
		return nil
	}

	var stmts []ast.Stmt
	for p.current.Kind != token.RBrace && p.current.Kind != token.EOF {
		before := p.current
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		} else {
			p.synchronize()
			if p.current == before {
				p.advance()
			}
		}
	}

	if !p.match(token.RBrace) {
		p.reportf(diag.SyntaxMissingBrace, "expected '}'", "add closing brace")
		p.synchronize()
		return nil
	}

	fn := p.pools.NewFunction(fnPos, name)
	fn.Body = stmts
	return fn
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.current.Kind {
	case token.KeywordInt:
		return p.parseDeclaration()
	case token.KeywordIf:
		return p.parseIfStatement()
	case token.KeywordWhile:
		return p.parseWhileStatement()
	case token.KeywordDo:
		return p.parseDoWhileStatement()
	case token.KeywordBreak:
		return p.parseBreakStatement()
	case token.KeywordContinue:
		return p.parseContinueStatement()
	case token.LBrace:
		return p.parseCompoundStatement()
	case token.KeywordReturn:
		return p.parseReturnStatement()
	}

	pos := p.pos()
	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	if !p.match(token.Semicolon) {
		p.reportf(diag.SyntaxMissingSemicolon, "expected ';' after expression", "add a semicolon")
		return nil
	}
	return p.pools.NewExprStmt(pos, expr)
}

func (p *Parser) parseReturnStatement() ast.Stmt {
	pos := p.pos()
	p.advance() // 'return'

	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	if !p.match(token.Semicolon) {
		p.reportf(diag.SyntaxMissingSemicolon, "expected ';'", "add a semicolon")
		p.synchronize()
		return nil
	}
	return p.pools.NewReturnStmt(pos, expr)
}

func (p *Parser) parseDeclaration() ast.Stmt {
	pos := p.pos()
	p.advance() // 'int'

	if p.current.Kind != token.Identifier {
		p.reportf(diag.SyntaxExpectedToken, "expected identifier after type", "add a variable name")
		return nil
	}
	name := p.current.Lexeme
	p.advance()

	var init ast.Expr
	if p.match(token.Assign) {
		init = p.parseExpression()
		if init == nil {
			return nil
		}
	}

	if !p.match(token.Semicolon) {
		p.reportf(diag.SyntaxMissingSemicolon, "expected ';' after declaration", "add a semicolon")
		return nil
	}

	return p.pools.NewVarDecl(pos, name, init)
}

// checkDependentStatement rejects an if/loop whose dependent statement is
// a raw variable declaration (e.g. `if (c) int x = 1;`): such a variable
// has no observable scope since it isn't wrapped in braces.
func (p *Parser) checkDependentStatement(stmt ast.Stmt) {
	if _, ok := stmt.(*ast.VarDecl); ok {
		p.reportSemantic(diag.SemDependentStatementDecl,
			"variable declared as a dependent statement has no observable scope",
			"wrap the declaration in braces")
	}
}

func (p *Parser) parseIfStatement() ast.Stmt {
	pos := p.pos()
	p.advance() // 'if'

	if !p.match(token.LParen) {
		p.reportf(diag.SyntaxMissingParen, "expected '(' after 'if'", "add '('")
		return nil
	}
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	if !p.match(token.RParen) {
		p.reportf(diag.SyntaxMissingParen, "expected ')' after if condition", "add ')'")
		return nil
	}

	then := p.parseStatement()
	if then == nil {
		return nil
	}
	p.checkDependentStatement(then)

	var els ast.Stmt
	if p.match(token.KeywordElse) {
		els = p.parseStatement()
		if els == nil {
			return nil
		}
		p.checkDependentStatement(els)
	}

	return p.pools.NewIfStmt(pos, cond, then, els)
}

func (p *Parser) parseWhileStatement() ast.Stmt {
	pos := p.pos()
	p.advance() // 'while'

	if !p.match(token.LParen) {
		p.reportf(diag.SyntaxMissingParen, "expected '(' after 'while'", "add '('")
		return nil
	}
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	if !p.match(token.RParen) {
		p.reportf(diag.SyntaxMissingParen, "expected ')' after while condition", "add ')'")
		return nil
	}

	body := p.parseStatement()
	if body == nil {
		return nil
	}
	p.checkDependentStatement(body)

	return p.pools.NewWhileStmt(pos, cond, body)
}

func (p *Parser) parseDoWhileStatement() ast.Stmt {
	pos := p.pos()
	p.advance() // 'do'

	body := p.parseStatement()
	if body == nil {
		return nil
	}
	p.checkDependentStatement(body)

	if !p.match(token.KeywordWhile) {
		p.reportf(diag.SyntaxExpectedToken, "expected 'while' after do-body", "add 'while' keyword")
		return nil
	}
	if !p.match(token.LParen) {
		p.reportf(diag.SyntaxMissingParen, "expected '(' after 'while'", "add '('")
		return nil
	}
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	if !p.match(token.RParen) {
		p.reportf(diag.SyntaxMissingParen, "expected ')' after do-while condition", "add ')'")
		return nil
	}
	if !p.match(token.Semicolon) {
		p.reportf(diag.SyntaxMissingSemicolon, "expected ';' after do-while", "add a semicolon")
		return nil
	}

	return p.pools.NewDoWhileStmt(pos, body, cond)
}

func (p *Parser) parseBreakStatement() ast.Stmt {
	pos := p.pos()
	p.advance() // 'break'
	if !p.match(token.Semicolon) {
		p.reportf(diag.SyntaxMissingSemicolon, "expected ';' after 'break'", "add a semicolon")
		return nil
	}
	return p.pools.NewBreakStmt(pos)
}

func (p *Parser) parseContinueStatement() ast.Stmt {
	pos := p.pos()
	p.advance() // 'continue'
	if !p.match(token.Semicolon) {
		p.reportf(diag.SyntaxMissingSemicolon, "expected ';' after 'continue'", "add a semicolon")
		return nil
	}
	return p.pools.NewContinueStmt(pos)
}

func (p *Parser) parseCompoundStatement() ast.Stmt {
	pos := p.pos()
	p.advance() // '{'

	var stmts []ast.Stmt
	for p.current.Kind != token.RBrace && p.current.Kind != token.EOF {
		before := p.current
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		} else {
			p.synchronize()
			if p.current == before {
				p.advance()
			}
		}
	}

	if !p.match(token.RBrace) {
		p.reportf(diag.SyntaxMissingBrace, "expected '}'", "add closing brace")
		return nil
	}

	return p.pools.NewCompoundStmt(pos, stmts)
}

// --- expression grammar, lowest to highest precedence ---

func (p *Parser) parseExpression() ast.Expr {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() ast.Expr {
	pos := p.pos()
	left := p.parseTernary()
	if left == nil {
		return nil
	}

	if p.match(token.Assign) {
		right := p.parseAssignment() // right-associative
		if right == nil {
			return nil
		}
		ref, ok := left.(*ast.VarRef)
		if !ok {
			p.reportSemantic(diag.SemInvalidAssignment, "invalid assignment target", "target must be a variable")
			return nil
		}
		return p.pools.NewAssignment(pos, ref.Name, right)
	}

	return left
}

func (p *Parser) parseTernary() ast.Expr {
	pos := p.pos()
	cond := p.parseLogicalOr()
	if cond == nil {
		return nil
	}

	if p.match(token.Question) {
		then := p.parseExpression()
		if then == nil {
			return nil
		}
		if !p.match(token.Colon) {
			p.reportf(diag.SyntaxExpectedToken, "expected ':' in ternary expression", "add ':'")
			return nil
		}
		els := p.parseTernary() // right-associative
		if els == nil {
			return nil
		}
		return p.pools.NewTernaryExpr(pos, cond, then, els)
	}

	return cond
}

func (p *Parser) parseLogicalOr() ast.Expr {
	left := p.parseLogicalAnd()
	if left == nil {
		return nil
	}
	for p.current.Kind == token.OrOr {
		pos := p.pos()
		p.advance()
		right := p.parseLogicalAnd()
		if right == nil {
			return nil
		}
		left = p.pools.NewBinaryOp(pos, ast.LogicalOr, left, right)
	}
	return left
}

func (p *Parser) parseLogicalAnd() ast.Expr {
	left := p.parseEquality()
	if left == nil {
		return nil
	}
	for p.current.Kind == token.AndAnd {
		pos := p.pos()
		p.advance()
		right := p.parseEquality()
		if right == nil {
			return nil
		}
		left = p.pools.NewBinaryOp(pos, ast.LogicalAnd, left, right)
	}
	return left
}

func (p *Parser) parseEquality() ast.Expr {
	left := p.parseRelational()
	if left == nil {
		return nil
	}
	for p.current.Kind == token.Eq || p.current.Kind == token.NotEq {
		pos := p.pos()
		op := binaryOpFor(p.current.Kind)
		p.advance()
		right := p.parseRelational()
		if right == nil {
			return nil
		}
		left = p.pools.NewBinaryOp(pos, op, left, right)
	}
	return left
}

func (p *Parser) parseRelational() ast.Expr {
	left := p.parseAdditive()
	if left == nil {
		return nil
	}
	for isRelational(p.current.Kind) {
		pos := p.pos()
		op := binaryOpFor(p.current.Kind)
		p.advance()
		right := p.parseAdditive()
		if right == nil {
			return nil
		}
		left = p.pools.NewBinaryOp(pos, op, left, right)
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	if left == nil {
		return nil
	}
	for p.current.Kind == token.Plus || p.current.Kind == token.Minus {
		pos := p.pos()
		op := binaryOpFor(p.current.Kind)
		p.advance()
		right := p.parseMultiplicative()
		if right == nil {
			return nil
		}
		left = p.pools.NewBinaryOp(pos, op, left, right)
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	if left == nil {
		return nil
	}
	for p.current.Kind == token.Star || p.current.Kind == token.Slash || p.current.Kind == token.Percent {
		pos := p.pos()
		op := binaryOpFor(p.current.Kind)
		p.advance()
		right := p.parseUnary()
		if right == nil {
			return nil
		}
		left = p.pools.NewBinaryOp(pos, op, left, right)
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	if p.current.Kind == token.Bang || p.current.Kind == token.Tilde || p.current.Kind == token.Minus {
		pos := p.pos()
		op := unaryOpFor(p.current.Kind)
		p.advance()
		operand := p.parseUnary() // right-associative
		if operand == nil {
			return nil
		}
		return p.pools.NewUnaryOp(pos, op, operand)
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() ast.Expr {
	if p.current.Kind == token.IntLiteral {
		pos := p.pos()
		value, err := strconv.ParseInt(p.current.Lexeme, 10, 32)
		if err != nil {
			p.reportf(diag.LexNumberTooLarge, "integer literal out of range", "")
			p.advance()
			return nil
		}
		p.advance()

		if p.current.Kind == token.LParen {
			p.reportSemantic(diag.SemInvalidCall, "missing operator before parenthesis", "insert an operator like '+' or '*'")
			p.advance()
			return nil
		}

		return p.pools.NewIntLiteral(pos, int32(value))
	}

	if p.current.Kind == token.Identifier {
		pos := p.pos()
		name := p.current.Lexeme
		p.advance()
		return p.pools.NewVarRef(pos, name)
	}

	if p.match(token.LParen) {
		expr := p.parseExpression()
		if expr == nil {
			return nil
		}
		if !p.match(token.RParen) {
			p.reportf(diag.SyntaxMissingParen, "expected ')'", "add closing parenthesis")
			return nil
		}
		return expr
	}

	p.reportf(diag.SyntaxExpectedExpression, "expected expression", "add an integer literal or parenthesized expression")
	p.synchronize()
	return nil
}

func isRelational(k token.Kind) bool {
	switch k {
	case token.Lt, token.Gt, token.LtEq, token.GtEq:
		return true
	}
	return false
}

func binaryOpFor(k token.Kind) ast.BinaryOperator {
	switch k {
	case token.Plus:
		return ast.Add
	case token.Minus:
		return ast.Sub
	case token.Star:
		return ast.Mul
	case token.Slash:
		return ast.Div
	case token.Percent:
		return ast.Rem
	case token.Eq:
		return ast.Eq
	case token.NotEq:
		return ast.NotEq
	case token.Lt:
		return ast.Lt
	case token.Gt:
		return ast.Gt
	case token.LtEq:
		return ast.LtEq
	case token.GtEq:
		return ast.GtEq
	case token.AndAnd:
		return ast.LogicalAnd
	case token.OrOr:
		return ast.LogicalOr
	}
	panic("parser: not a binary operator token")
}

func unaryOpFor(k token.Kind) ast.UnaryOperator {
	switch k {
	case token.Minus:
		return ast.Neg
	case token.Bang:
		return ast.LogicalNot
	case token.Tilde:
		return ast.BitwiseNot
	}
	panic("parser: not a unary operator token")
}
