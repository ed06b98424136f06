package ast

import (
	"bytes"
	"strings"

	"sandpit/internal/token"
)

type Node interface {
	TokenLiteral() string
	String() string
	Tok() token.Token
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

/* -------------------- program -------------------- */

type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) Tok() token.Token {
	if len(p.Statements) > 0 {
		return p.Statements[0].Tok()
	}
	return token.Token{}
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

/* -------------------- statements -------------------- */

type BlockStatement struct {
	Token      token.Token
	Statements []Statement
}

func (*BlockStatement) statementNode()          {}
func (b *BlockStatement) TokenLiteral() string  { return b.Token.Literal }
func (b *BlockStatement) Tok() token.Token      { return b.Token }
func (b *BlockStatement) String() string {
	var out bytes.Buffer
	for i, s := range b.Statements {
		if i > 0 {
			out.WriteString("; ")
		}
		out.WriteString(s.String())
	}
	return out.String()
}

type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

func (*ExpressionStatement) statementNode()         {}
func (s *ExpressionStatement) TokenLiteral() string { return s.Token.Literal }
func (s *ExpressionStatement) Tok() token.Token     { return s.Token }
func (s *ExpressionStatement) String() string {
	if s.Expression == nil {
		return ""
	}
	return s.Expression.String()
}

// AssignStatement covers plain and augmented assignment. Target is an
// Identifier or an IndexExpression; Op is "=" or one of "+= -= *= /= %=".
type AssignStatement struct {
	Token  token.Token // the operator token
	Target Expression
	Op     token.Type
	Value  Expression
}

func (*AssignStatement) statementNode()         {}
func (s *AssignStatement) TokenLiteral() string { return s.Token.Literal }
func (s *AssignStatement) Tok() token.Token     { return s.Token }
func (s *AssignStatement) String() string {
	return s.Target.String() + " " + string(s.Op) + " " + s.Value.String()
}

type IfStatement struct {
	Token       token.Token // 'if' or 'elif'
	Condition   Expression
	Consequence *BlockStatement
	Alternative Statement // *BlockStatement, *IfStatement (elif), or nil
}

func (*IfStatement) statementNode()         {}
func (s *IfStatement) TokenLiteral() string { return s.Token.Literal }
func (s *IfStatement) Tok() token.Token     { return s.Token }
func (s *IfStatement) String() string {
	var out bytes.Buffer
	out.WriteString("if ")
	out.WriteString(s.Condition.String())
	out.WriteString(": ")
	out.WriteString(s.Consequence.String())
	if s.Alternative != nil {
		out.WriteString(" else: ")
		out.WriteString(s.Alternative.String())
	}
	return out.String()
}

type WhileStatement struct {
	Token     token.Token
	Condition Expression
	Body      *BlockStatement
}

func (*WhileStatement) statementNode()         {}
func (s *WhileStatement) TokenLiteral() string { return s.Token.Literal }
func (s *WhileStatement) Tok() token.Token     { return s.Token }
func (s *WhileStatement) String() string {
	return "while " + s.Condition.String() + ": " + s.Body.String()
}

type ForInStatement struct {
	Token    token.Token
	Var      *Identifier
	Iterable Expression
	Body     *BlockStatement
}

func (*ForInStatement) statementNode()         {}
func (s *ForInStatement) TokenLiteral() string { return s.Token.Literal }
func (s *ForInStatement) Tok() token.Token     { return s.Token }
func (s *ForInStatement) String() string {
	return "for " + s.Var.String() + " in " + s.Iterable.String() + ": " + s.Body.String()
}

type DefStatement struct {
	Token      token.Token
	Name       *Identifier
	Parameters []*Identifier
	Body       *BlockStatement
}

func (*DefStatement) statementNode()         {}
func (s *DefStatement) TokenLiteral() string { return s.Token.Literal }
func (s *DefStatement) Tok() token.Token     { return s.Token }
func (s *DefStatement) String() string {
	params := make([]string, 0, len(s.Parameters))
	for _, p := range s.Parameters {
		params = append(params, p.String())
	}
	return "def " + s.Name.String() + "(" + strings.Join(params, ", ") + "): " + s.Body.String()
}

type ReturnStatement struct {
	Token token.Token
	Value Expression // nil for a bare return
}

func (*ReturnStatement) statementNode()         {}
func (s *ReturnStatement) TokenLiteral() string { return s.Token.Literal }
func (s *ReturnStatement) Tok() token.Token     { return s.Token }
func (s *ReturnStatement) String() string {
	if s.Value == nil {
		return "return"
	}
	return "return " + s.Value.String()
}

type BreakStatement struct {
	Token token.Token
}

func (*BreakStatement) statementNode()         {}
func (s *BreakStatement) TokenLiteral() string { return s.Token.Literal }
func (s *BreakStatement) Tok() token.Token     { return s.Token }
func (s *BreakStatement) String() string       { return "break" }

type ContinueStatement struct {
	Token token.Token
}

func (*ContinueStatement) statementNode()         {}
func (s *ContinueStatement) TokenLiteral() string { return s.Token.Literal }
func (s *ContinueStatement) Tok() token.Token     { return s.Token }
func (s *ContinueStatement) String() string       { return "continue" }

type PassStatement struct {
	Token token.Token
}

func (*PassStatement) statementNode()         {}
func (s *PassStatement) TokenLiteral() string { return s.Token.Literal }
func (s *PassStatement) Tok() token.Token     { return s.Token }
func (s *PassStatement) String() string       { return "pass" }

/* -------------------- expressions -------------------- */

type Identifier struct {
	Token token.Token
	Value string
}

func (*Identifier) expressionNode()        {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) Tok() token.Token     { return i.Token }
func (i *Identifier) String() string       { return i.Value }

type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (*IntegerLiteral) expressionNode()        {}
func (l *IntegerLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *IntegerLiteral) Tok() token.Token     { return l.Token }
func (l *IntegerLiteral) String() string       { return l.Token.Literal }

type FloatLiteral struct {
	Token token.Token
	Value float64
}

func (*FloatLiteral) expressionNode()        {}
func (l *FloatLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *FloatLiteral) Tok() token.Token     { return l.Token }
func (l *FloatLiteral) String() string       { return l.Token.Literal }

type StringLiteral struct {
	Token token.Token
	Value string
}

func (*StringLiteral) expressionNode()        {}
func (l *StringLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *StringLiteral) Tok() token.Token     { return l.Token }
func (l *StringLiteral) String() string       { return "'" + l.Value + "'" }

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (*BooleanLiteral) expressionNode()        {}
func (l *BooleanLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *BooleanLiteral) Tok() token.Token     { return l.Token }
func (l *BooleanLiteral) String() string       { return l.Token.Literal }

type NoneLiteral struct {
	Token token.Token
}

func (*NoneLiteral) expressionNode()        {}
func (l *NoneLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *NoneLiteral) Tok() token.Token     { return l.Token }
func (l *NoneLiteral) String() string       { return "None" }

type ListLiteral struct {
	Token    token.Token
	Elements []Expression
}

func (*ListLiteral) expressionNode()        {}
func (l *ListLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *ListLiteral) Tok() token.Token     { return l.Token }
func (l *ListLiteral) String() string {
	elems := make([]string, 0, len(l.Elements))
	for _, e := range l.Elements {
		elems = append(elems, e.String())
	}
	return "[" + strings.Join(elems, ", ") + "]"
}

type DictEntry struct {
	Key   Expression
	Value Expression
}

type DictLiteral struct {
	Token   token.Token
	Entries []DictEntry
}

func (*DictLiteral) expressionNode()        {}
func (l *DictLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *DictLiteral) Tok() token.Token     { return l.Token }
func (l *DictLiteral) String() string {
	entries := make([]string, 0, len(l.Entries))
	for _, e := range l.Entries {
		entries = append(entries, e.Key.String()+": "+e.Value.String())
	}
	return "{" + strings.Join(entries, ", ") + "}"
}

type PrefixExpression struct {
	Token    token.Token
	Operator string // "-" or "not"
	Right    Expression
}

func (*PrefixExpression) expressionNode()        {}
func (e *PrefixExpression) TokenLiteral() string { return e.Token.Literal }
func (e *PrefixExpression) Tok() token.Token     { return e.Token }
func (e *PrefixExpression) String() string {
	if e.Operator == "not" {
		return "(not " + e.Right.String() + ")"
	}
	return "(" + e.Operator + e.Right.String() + ")"
}

type InfixExpression struct {
	Token    token.Token
	Left     Expression
	Operator string // "+ - * / // % == != < <= > >= and or in not in"
	Right    Expression
}

func (*InfixExpression) expressionNode()        {}
func (e *InfixExpression) TokenLiteral() string { return e.Token.Literal }
func (e *InfixExpression) Tok() token.Token     { return e.Token }
func (e *InfixExpression) String() string {
	return "(" + e.Left.String() + " " + e.Operator + " " + e.Right.String() + ")"
}

type IndexExpression struct {
	Token token.Token // '['
	Left  Expression
	Index Expression
}

func (*IndexExpression) expressionNode()        {}
func (e *IndexExpression) TokenLiteral() string { return e.Token.Literal }
func (e *IndexExpression) Tok() token.Token     { return e.Token }
func (e *IndexExpression) String() string {
	return "(" + e.Left.String() + "[" + e.Index.String() + "])"
}

type SliceExpression struct {
	Token token.Token // '['
	Left  Expression
	Low   Expression // nil means from start
	High  Expression // nil means to end
}

func (*SliceExpression) expressionNode()        {}
func (e *SliceExpression) TokenLiteral() string { return e.Token.Literal }
func (e *SliceExpression) Tok() token.Token     { return e.Token }
func (e *SliceExpression) String() string {
	low, high := "", ""
	if e.Low != nil {
		low = e.Low.String()
	}
	if e.High != nil {
		high = e.High.String()
	}
	return "(" + e.Left.String() + "[" + low + ":" + high + "])"
}

type CallExpression struct {
	Token     token.Token // '('
	Function  Expression
	Arguments []Expression
}

func (*CallExpression) expressionNode()        {}
func (e *CallExpression) TokenLiteral() string { return e.Token.Literal }
func (e *CallExpression) Tok() token.Token     { return e.Token }
func (e *CallExpression) String() string {
	args := make([]string, 0, len(e.Arguments))
	for _, a := range e.Arguments {
		args = append(args, a.String())
	}
	return e.Function.String() + "(" + strings.Join(args, ", ") + ")"
}
