package lexer

import (
	"fmt"
	"unicode"

	"sandpit/internal/token"
)

const tabWidth = 8

// Error is a structured lexical error. The lexer also emits an ILLEGAL
// token at the same position so the parser fails fast.
type Error struct {
	Line   int
	Col    int
	Reason string
}

func (e Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Reason)
}

type Lexer struct {
	input string

	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination

	line int // 1-based
	col  int // 1-based column of current char

	atLineStart  bool
	indents      []int // indentation stack, always starts with 0
	pending      []token.Token
	bracketDepth int // inside ( [ { newlines and indentation are ignored
	eofNewline   bool

	errors []Error
}

func New(input string) *Lexer {
	l := &Lexer{
		input:       input,
		line:        1,
		col:         0, // readChar() advances to col=1 for the first char
		atLineStart: true,
		indents:     []int{0},
	}
	l.readChar()
	return l
}

// Errors returns the lexical errors recorded so far, in source order.
func (l *Lexer) Errors() []Error { return l.errors }

func (l *Lexer) NextToken() token.Token {
	if len(l.pending) > 0 {
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return tok
	}

	if l.atLineStart && l.bracketDepth == 0 {
		if tok, ok := l.scanIndentation(); ok {
			return tok
		}
	}

	// Skip spaces/tabs and comments, but NOT newlines.
	for {
		l.skipBlanks()
		if l.ch == '#' {
			l.skipComment()
			continue
		}
		break
	}

	// NEWLINE terminates a logical line, except inside brackets.
	if l.ch == '\n' {
		if l.bracketDepth > 0 {
			l.readChar()
			return l.NextToken()
		}
		tok := l.newToken(token.NEWLINE, "\n", l.line, l.col)
		l.readChar()
		l.atLineStart = true
		return tok
	}

	if l.ch == 0 {
		return l.finish()
	}

	startLine, startCol := l.line, l.col

	switch l.ch {
	case '(':
		l.bracketDepth++
		return l.emit(token.LPAREN, "(", startLine, startCol)
	case ')':
		if l.bracketDepth > 0 {
			l.bracketDepth--
		}
		return l.emit(token.RPAREN, ")", startLine, startCol)
	case '[':
		l.bracketDepth++
		return l.emit(token.LBRACKET, "[", startLine, startCol)
	case ']':
		if l.bracketDepth > 0 {
			l.bracketDepth--
		}
		return l.emit(token.RBRACKET, "]", startLine, startCol)
	case '{':
		l.bracketDepth++
		return l.emit(token.LBRACE, "{", startLine, startCol)
	case '}':
		if l.bracketDepth > 0 {
			l.bracketDepth--
		}
		return l.emit(token.RBRACE, "}", startLine, startCol)
	case ',':
		return l.emit(token.COMMA, ",", startLine, startCol)
	case ':':
		return l.emit(token.COLON, ":", startLine, startCol)

	case '+':
		if l.peekChar() == '=' {
			l.readChar()
			return l.emit(token.PLUS_ASSIGN, "+=", startLine, startCol)
		}
		return l.emit(token.PLUS, "+", startLine, startCol)
	case '-':
		if l.peekChar() == '=' {
			l.readChar()
			return l.emit(token.MINUS_ASSIGN, "-=", startLine, startCol)
		}
		return l.emit(token.MINUS, "-", startLine, startCol)
	case '*':
		if l.peekChar() == '=' {
			l.readChar()
			return l.emit(token.STAR_ASSIGN, "*=", startLine, startCol)
		}
		return l.emit(token.STAR, "*", startLine, startCol)
	case '/':
		if l.peekChar() == '/' {
			l.readChar()
			return l.emit(token.FLOORDIV, "//", startLine, startCol)
		}
		if l.peekChar() == '=' {
			l.readChar()
			return l.emit(token.SLASH_ASSIGN, "/=", startLine, startCol)
		}
		return l.emit(token.SLASH, "/", startLine, startCol)
	case '%':
		if l.peekChar() == '=' {
			l.readChar()
			return l.emit(token.PERCENT_ASSIGN, "%=", startLine, startCol)
		}
		return l.emit(token.PERCENT, "%", startLine, startCol)

	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			return l.emit(token.EQ, "==", startLine, startCol)
		}
		return l.emit(token.ASSIGN, "=", startLine, startCol)
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			return l.emit(token.NE, "!=", startLine, startCol)
		}
		return l.illegal(startLine, startCol, "invalid character '!'")
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			return l.emit(token.LE, "<=", startLine, startCol)
		}
		return l.emit(token.LT, "<", startLine, startCol)
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			return l.emit(token.GE, ">=", startLine, startCol)
		}
		return l.emit(token.GT, ">", startLine, startCol)

	case '"', '\'':
		return l.readStringToken(startLine, startCol)
	}

	if isIdentStart(l.ch) {
		lit := l.readIdentifier()
		return l.newToken(token.LookupIdent(lit), lit, startLine, startCol)
	}

	if isDigit(l.ch) {
		return l.readNumberToken(startLine, startCol)
	}

	reason := fmt.Sprintf("invalid character %q", string(l.ch))
	l.readChar()
	return l.illegal(startLine, startCol, reason)
}

// scanIndentation measures leading whitespace at the start of a logical
// line and queues INDENT/DEDENT tokens against the indentation stack.
// Blank and comment-only lines produce nothing.
func (l *Lexer) scanIndentation() (token.Token, bool) {
	for {
		width := 0
		for l.ch == ' ' || l.ch == '\t' {
			if l.ch == '\t' {
				width += tabWidth - width%tabWidth
			} else {
				width++
			}
			l.readChar()
		}
		if l.ch == '\r' {
			l.readChar()
			continue
		}
		if l.ch == '#' {
			l.skipComment()
		}
		if l.ch == '\n' {
			l.readChar()
			continue
		}
		if l.ch == 0 {
			l.atLineStart = true
			return token.Token{}, false // finish() emits the closing dedents
		}

		l.atLineStart = false
		top := l.indents[len(l.indents)-1]
		switch {
		case width > top:
			l.indents = append(l.indents, width)
			return l.newToken(token.INDENT, "", l.line, 1), true
		case width < top:
			for len(l.indents) > 1 && l.indents[len(l.indents)-1] > width {
				l.indents = l.indents[:len(l.indents)-1]
				l.pending = append(l.pending, l.newToken(token.DEDENT, "", l.line, 1))
			}
			if l.indents[len(l.indents)-1] != width {
				return l.illegal(l.line, l.col, "unindent does not match any outer indentation level"), true
			}
			tok := l.pending[0]
			l.pending = l.pending[1:]
			return tok, true
		default:
			return token.Token{}, false
		}
	}
}

// finish emits the trailing NEWLINE (if the last line lacked one), then
// one DEDENT per open indentation level, then EOF forever.
func (l *Lexer) finish() token.Token {
	if !l.atLineStart && !l.eofNewline {
		l.eofNewline = true
		return l.newToken(token.NEWLINE, "\n", l.line, l.col+1)
	}
	if len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		return l.newToken(token.DEDENT, "", l.line, 1)
	}
	return l.newToken(token.EOF, "", l.line, l.col+1)
}

func (l *Lexer) emit(t token.Type, lit string, line, col int) token.Token {
	l.readChar()
	return l.newToken(t, lit, line, col)
}

func (l *Lexer) illegal(line, col int, reason string) token.Token {
	l.errors = append(l.errors, Error{Line: line, Col: col, Reason: reason})
	return l.newToken(token.ILLEGAL, reason, line, col)
}

func (l *Lexer) newToken(t token.Type, lit string, line, col int) token.Token {
	return token.Token{
		Type:    t,
		Literal: lit,
		Line:    line,
		Col:     col,
	}
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}

	l.ch = l.input[l.readPosition]
	l.position = l.readPosition
	l.readPosition++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) skipBlanks() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) skipComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	// Do not consume the newline; NextToken handles it.
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isIdentPart(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readNumberToken(startLine, startCol int) token.Token {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	isFloat := false
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	// "1.2.3" or "12abc" are single malformed literals, not two tokens.
	if (l.ch == '.' && isDigit(l.peekChar())) || isIdentStart(l.ch) {
		for isIdentPart(l.ch) || l.ch == '.' {
			l.readChar()
		}
		lit := l.input[start:l.position]
		return l.illegal(startLine, startCol, fmt.Sprintf("malformed number literal %q", lit))
	}

	lit := l.input[start:l.position]
	if isFloat {
		return l.newToken(token.FLOAT, lit, startLine, startCol)
	}
	return l.newToken(token.INT, lit, startLine, startCol)
}

func (l *Lexer) readStringToken(startLine, startCol int) token.Token {
	quote := l.ch
	l.readChar() // move past opening quote

	var b []byte
	for {
		if l.ch == 0 || l.ch == '\n' {
			return l.illegal(startLine, startCol, "unterminated string literal")
		}
		if l.ch == quote {
			break
		}

		if l.ch == '\\' {
			switch l.peekChar() {
			case '"':
				b = append(b, '"')
			case '\'':
				b = append(b, '\'')
			case '\\':
				b = append(b, '\\')
			case 'n':
				b = append(b, '\n')
			case 't':
				b = append(b, '\t')
			default:
				// Unknown escape: keep the backslash literally.
				b = append(b, l.ch)
				l.readChar()
				continue
			}
			l.readChar()
			l.readChar()
			continue
		}

		b = append(b, l.ch)
		l.readChar()
	}

	l.readChar() // consume closing quote
	return l.newToken(token.STRING, string(b), startLine, startCol)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= 128 && unicode.IsLetter(rune(ch)))
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
