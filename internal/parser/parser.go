package parser

import (
	"fmt"
	"strconv"

	"sandpit/internal/ast"
	"sandpit/internal/lexer"
	"sandpit/internal/token"
)

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Diagnostic is a structured parse error: what the parser expected and
// what it found. The parser stops at the first one (no error recovery).
type Diagnostic struct {
	Line     int
	Col      int
	Expected string
	Found    string
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s", d.Line, d.Col, d.Message)
}

type Parser struct {
	l      *lexer.Lexer
	errors []string
	diags  []Diagnostic

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

/* -------------------- precedence -------------------- */

const (
	_ int = iota
	LOWEST
	ORPREC  // or
	ANDPREC // and
	NOTPREC // not X
	COMPARE // == != < <= > >= in, not in
	SUM     // + -
	PRODUCT // * / // %
	PREFIX  // -X
	INDEX   // a[i], f(x)
)

var precedences = map[token.Type]int{
	token.OR:       ORPREC,
	token.AND:      ANDPREC,
	token.EQ:       COMPARE,
	token.NE:       COMPARE,
	token.LT:       COMPARE,
	token.LE:       COMPARE,
	token.GT:       COMPARE,
	token.GE:       COMPARE,
	token.IN:       COMPARE,
	token.NOT:      COMPARE, // infix 'not' only as part of 'not in'
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.STAR:     PRODUCT,
	token.SLASH:    PRODUCT,
	token.FLOORDIV: PRODUCT,
	token.PERCENT:  PRODUCT,
	token.LBRACKET: INDEX,
	token.LPAREN:   INDEX,
}

/* -------------------- constructor -------------------- */

func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:              l,
		errors:         []string{},
		diags:          []Diagnostic{},
		prefixParseFns: map[token.Type]prefixParseFn{},
		infixParseFns:  map[token.Type]infixParseFn{},
	}

	// read two tokens, so cur and peek are set
	p.nextToken()
	p.nextToken()

	// Prefix parsers
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(token.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(token.NONE, p.parseNoneLiteral)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.LBRACKET, p.parseListLiteral)
	p.registerPrefix(token.LBRACE, p.parseDictLiteral)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.NOT, p.parseNotExpression)

	// Infix parsers
	for _, tt := range []token.Type{
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.FLOORDIV, token.PERCENT,
		token.EQ, token.NE, token.LT, token.LE, token.GT, token.GE,
		token.AND, token.OR, token.IN,
	} {
		p.registerInfix(tt, p.parseInfixExpression)
	}
	p.registerInfix(token.NOT, p.parseNotInExpression)
	p.registerInfix(token.LBRACKET, p.parseIndexExpression)
	p.registerInfix(token.LPAREN, p.parseCallExpression)

	return p
}

func (p *Parser) registerPrefix(t token.Type, fn prefixParseFn) { p.prefixParseFns[t] = fn }
func (p *Parser) registerInfix(t token.Type, fn infixParseFn)   { p.infixParseFns[t] = fn }

func (p *Parser) Errors() []string          { return p.errors }
func (p *Parser) Diagnostics() []Diagnostic { return p.diags }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
	if p.peekToken.Type == token.ILLEGAL && len(p.errors) == 0 {
		p.diagAt(p.peekToken, "expression", string(p.peekToken.Type), p.peekToken.Literal)
	}
}

/* -------------------- program -------------------- */

// ParseProgram parses until EOF or the first error; malformed input fails
// fast with no recovery.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{Statements: []ast.Statement{}}

	for p.curToken.Type != token.EOF && len(p.errors) == 0 {
		if p.curToken.Type == token.NEWLINE {
			p.nextToken()
			continue
		}

		stmt := p.parseStatement()
		if stmt == nil || len(p.errors) > 0 {
			break
		}
		program.Statements = append(program.Statements, stmt)

		p.nextToken()
	}

	return program
}

/* -------------------- statements -------------------- */

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.DEF:
		return p.parseDefStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForInStatement()
	case token.INDENT:
		p.errorAt(p.curToken, "unexpected indent")
		return nil
	default:
		return p.parseSimpleStatement()
	}
}

// parseSimpleStatement parses the statements legal in an inline suite.
func (p *Parser) parseSimpleStatement() ast.Statement {
	switch p.curToken.Type {
	case token.RETURN:
		return p.parseReturnStatement()
	case token.BREAK:
		return &ast.BreakStatement{Token: p.curToken}
	case token.CONTINUE:
		return &ast.ContinueStatement{Token: p.curToken}
	case token.PASS:
		return &ast.PassStatement{Token: p.curToken}
	case token.DEF, token.IF, token.WHILE, token.FOR:
		p.errorAt(p.curToken, fmt.Sprintf("compound statement not allowed here: %s", p.curToken.Literal))
		return nil
	default:
		return p.parseExpressionOrAssignStatement()
	}
}

func (p *Parser) parseDefStatement() ast.Statement {
	stmt := &ast.DefStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	stmt.Parameters = p.parseFunctionParameters()
	if stmt.Parameters == nil {
		return nil
	}

	if !p.expectPeek(token.COLON) {
		return nil
	}
	stmt.Body = p.parseSuite()
	if stmt.Body == nil {
		return nil
	}

	return stmt
}

func (p *Parser) parseFunctionParameters() []*ast.Identifier {
	params := []*ast.Identifier{}

	if p.peekToken.Type == token.RPAREN {
		p.nextToken()
		return params
	}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	params = append(params, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})

	for p.peekToken.Type == token.COMMA {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		params = append(params, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return params
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}

	if p.peekToken.Type == token.NEWLINE || p.peekToken.Type == token.EOF || p.peekToken.Type == token.DEDENT {
		return stmt
	}

	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}

	if !p.expectPeek(token.COLON) {
		return nil
	}
	stmt.Consequence = p.parseSuite()
	if stmt.Consequence == nil {
		return nil
	}

	switch p.peekToken.Type {
	case token.ELIF:
		p.nextToken()
		alt := p.parseIfStatement()
		if alt == nil {
			return nil
		}
		stmt.Alternative = alt
	case token.ELSE:
		p.nextToken()
		if !p.expectPeek(token.COLON) {
			return nil
		}
		alt := p.parseSuite()
		if alt == nil {
			return nil
		}
		stmt.Alternative = alt
	}

	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}

	if !p.expectPeek(token.COLON) {
		return nil
	}
	stmt.Body = p.parseSuite()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseForInStatement() ast.Statement {
	stmt := &ast.ForInStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Var = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(token.IN) {
		return nil
	}

	p.nextToken()
	stmt.Iterable = p.parseExpression(LOWEST)
	if stmt.Iterable == nil {
		return nil
	}

	if !p.expectPeek(token.COLON) {
		return nil
	}
	stmt.Body = p.parseSuite()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

// parseSuite parses the body after a ':'. Either an indented block, or a
// single simple statement on the same line. On return the current token
// is the closing DEDENT (block form) or the NEWLINE after the inline
// statement, so callers can look one token ahead for elif/else.
func (p *Parser) parseSuite() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}

	if p.peekToken.Type == token.NEWLINE {
		p.nextToken() // NEWLINE
		if !p.expectPeek(token.INDENT) {
			return nil
		}
		p.nextToken() // first token of the first statement

		for p.curToken.Type != token.DEDENT && p.curToken.Type != token.EOF {
			if p.curToken.Type == token.NEWLINE {
				p.nextToken()
				continue
			}
			stmt := p.parseStatement()
			if stmt == nil || len(p.errors) > 0 {
				return nil
			}
			block.Statements = append(block.Statements, stmt)
			p.nextToken()
		}
		if p.curToken.Type != token.DEDENT {
			p.errorAt(p.curToken, "expected dedent to close block")
			return nil
		}
		return block
	}

	// inline suite: `if cond: stmt`
	p.nextToken()
	stmt := p.parseSimpleStatement()
	if stmt == nil {
		return nil
	}
	block.Statements = append(block.Statements, stmt)

	if p.peekToken.Type == token.NEWLINE {
		p.nextToken()
	}
	return block
}

var assignOps = map[token.Type]bool{
	token.ASSIGN:         true,
	token.PLUS_ASSIGN:    true,
	token.MINUS_ASSIGN:   true,
	token.STAR_ASSIGN:    true,
	token.SLASH_ASSIGN:   true,
	token.PERCENT_ASSIGN: true,
}

func (p *Parser) parseExpressionOrAssignStatement() ast.Statement {
	first := p.curToken
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}

	if assignOps[p.peekToken.Type] {
		switch expr.(type) {
		case *ast.Identifier, *ast.IndexExpression:
		default:
			p.errorAt(p.peekToken, "cannot assign to this expression")
			return nil
		}

		p.nextToken() // the assignment operator
		op := p.curToken

		p.nextToken()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}

		return &ast.AssignStatement{
			Token:  op,
			Target: expr,
			Op:     op.Type,
			Value:  value,
		}
	}

	return &ast.ExpressionStatement{Token: first, Expression: expr}
}

/* -------------------- expressions -------------------- */

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	left := prefix()

	for left != nil && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}

	return left
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	v, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.errorAt(p.curToken, fmt.Sprintf("could not parse %q as integer", p.curToken.Literal))
		return nil
	}
	return &ast.IntegerLiteral{Token: p.curToken, Value: v}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	v, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.errorAt(p.curToken, fmt.Sprintf("could not parse %q as float", p.curToken.Literal))
		return nil
	}
	return &ast.FloatLiteral{Token: p.curToken, Value: v}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curToken.Type == token.TRUE}
}

func (p *Parser) parseNoneLiteral() ast.Expression {
	return &ast.NoneLiteral{Token: p.curToken}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expr := &ast.PrefixExpression{Token: p.curToken, Operator: p.curToken.Literal}
	p.nextToken()
	expr.Right = p.parseExpression(PREFIX)
	if expr.Right == nil {
		return nil
	}
	return expr
}

// parseNotExpression binds looser than comparisons: `not a == b` reads as
// `not (a == b)`.
func (p *Parser) parseNotExpression() ast.Expression {
	expr := &ast.PrefixExpression{Token: p.curToken, Operator: "not"}
	p.nextToken()
	expr.Right = p.parseExpression(NOTPREC)
	if expr.Right == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expr := &ast.InfixExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Literal,
	}
	precedence := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	if expr.Right == nil {
		return nil
	}
	return expr
}

// parseNotInExpression handles the two-word operator `not in`.
func (p *Parser) parseNotInExpression(left ast.Expression) ast.Expression {
	tok := p.curToken // 'not'
	if !p.expectPeek(token.IN) {
		return nil
	}
	p.nextToken()
	right := p.parseExpression(COMPARE)
	if right == nil {
		return nil
	}
	return &ast.InfixExpression{Token: tok, Left: left, Operator: "not in", Right: right}
}

func (p *Parser) parseListLiteral() ast.Expression {
	lit := &ast.ListLiteral{Token: p.curToken}
	lit.Elements = p.parseExpressionList(token.RBRACKET)
	if lit.Elements == nil {
		return nil
	}
	return lit
}

func (p *Parser) parseDictLiteral() ast.Expression {
	lit := &ast.DictLiteral{Token: p.curToken}

	for p.peekToken.Type != token.RBRACE {
		p.nextToken()
		key := p.parseExpression(LOWEST)
		if key == nil {
			return nil
		}
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		lit.Entries = append(lit.Entries, ast.DictEntry{Key: key, Value: value})

		if p.peekToken.Type != token.RBRACE && !p.expectPeek(token.COMMA) {
			return nil
		}
	}

	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return lit
}

func (p *Parser) parseExpressionList(end token.Type) []ast.Expression {
	list := []ast.Expression{}

	if p.peekToken.Type == end {
		p.nextToken()
		return list
	}

	p.nextToken()
	first := p.parseExpression(LOWEST)
	if first == nil {
		return nil
	}
	list = append(list, first)

	for p.peekToken.Type == token.COMMA {
		p.nextToken()
		p.nextToken()
		next := p.parseExpression(LOWEST)
		if next == nil {
			return nil
		}
		list = append(list, next)
	}

	if !p.expectPeek(end) {
		return nil
	}
	return list
}

// parseIndexExpression parses both a[i] and slices a[lo:hi].
func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	tok := p.curToken // '['
	var low, high ast.Expression

	if p.peekToken.Type == token.COLON {
		p.nextToken() // ':'
	} else {
		p.nextToken()
		low = p.parseExpression(LOWEST)
		if low == nil {
			return nil
		}
		if p.peekToken.Type == token.RBRACKET {
			p.nextToken()
			return &ast.IndexExpression{Token: tok, Left: left, Index: low}
		}
		if !p.expectPeek(token.COLON) {
			return nil
		}
	}

	// current token is ':'
	if p.peekToken.Type != token.RBRACKET {
		p.nextToken()
		high = p.parseExpression(LOWEST)
		if high == nil {
			return nil
		}
	}
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return &ast.SliceExpression{Token: tok, Left: left, Low: low, High: high}
}

func (p *Parser) parseCallExpression(fn ast.Expression) ast.Expression {
	expr := &ast.CallExpression{Token: p.curToken, Function: fn}
	expr.Arguments = p.parseExpressionList(token.RPAREN)
	if expr.Arguments == nil {
		return nil
	}
	return expr
}

/* -------------------- errors -------------------- */

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekToken.Type == t {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t token.Type) {
	p.diagAt(p.peekToken, string(t), string(p.peekToken.Type),
		fmt.Sprintf("expected next token to be %s, got %s instead", t, p.peekToken.Type))
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	found := string(tok.Type)
	msg := fmt.Sprintf("unexpected token %s", found)
	if tok.Type == token.ILLEGAL {
		msg = tok.Literal
	}
	p.diagAt(tok, "expression", found, msg)
}

func (p *Parser) errorAt(tok token.Token, msg string) {
	p.diagAt(tok, "", string(tok.Type), msg)
}

func (p *Parser) diagAt(tok token.Token, expected, found, msg string) {
	p.diags = append(p.diags, Diagnostic{
		Line:     tok.Line,
		Col:      tok.Col,
		Expected: expected,
		Found:    found,
		Message:  msg,
	})
	p.errors = append(p.errors, fmt.Sprintf("%d:%d: %s", tok.Line, tok.Col, msg))
}
