package object

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"sandpit/internal/ast"
)

type Type string

const (
	INTEGER_OBJ      Type = "INTEGER"
	FLOAT_OBJ        Type = "FLOAT"
	BOOLEAN_OBJ      Type = "BOOLEAN"
	STRING_OBJ       Type = "STRING"
	NONE_OBJ         Type = "NONE"
	LIST_OBJ         Type = "LIST"
	DICT_OBJ         Type = "DICT"
	FUNCTION_OBJ     Type = "FUNCTION"
	BUILTIN_OBJ      Type = "BUILTIN"
	HOST_BINDING_OBJ Type = "HOST_BINDING"
	RETURN_VALUE_OBJ Type = "RETURN_VALUE"
	BREAK_OBJ        Type = "BREAK"
	CONTINUE_OBJ     Type = "CONTINUE"
	ERROR_OBJ        Type = "ERROR"
)

// PyName maps an object type to the name scripts know it by.
func PyName(t Type) string {
	switch t {
	case INTEGER_OBJ:
		return "int"
	case FLOAT_OBJ:
		return "float"
	case BOOLEAN_OBJ:
		return "bool"
	case STRING_OBJ:
		return "str"
	case NONE_OBJ:
		return "NoneType"
	case LIST_OBJ:
		return "list"
	case DICT_OBJ:
		return "dict"
	case FUNCTION_OBJ, BUILTIN_OBJ, HOST_BINDING_OBJ:
		return "function"
	default:
		return strings.ToLower(string(t))
	}
}

type Object interface {
	Type() Type
	Inspect() string
}

type Integer struct{ Value int64 }

func (*Integer) Type() Type        { return INTEGER_OBJ }
func (i *Integer) Inspect() string { return strconv.FormatInt(i.Value, 10) }

type Float struct{ Value float64 }

func (*Float) Type() Type { return FLOAT_OBJ }
func (f *Float) Inspect() string {
	s := strconv.FormatFloat(f.Value, 'g', -1, 64)
	// Keep whole floats recognizable as floats, the way Python prints them.
	if !strings.ContainsAny(s, ".eE") && !strings.Contains(s, "Inf") && !strings.Contains(s, "NaN") {
		s += ".0"
	}
	return s
}

type Boolean struct{ Value bool }

func (*Boolean) Type() Type { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string {
	if b.Value {
		return "True"
	}
	return "False"
}

type String struct{ Value string }

func (*String) Type() Type        { return STRING_OBJ }
func (s *String) Inspect() string { return s.Value }

// Repr is the quoted form used inside containers and by repr().
func (s *String) Repr() string {
	return "'" + strings.ReplaceAll(strings.ReplaceAll(s.Value, `\`, `\\`), "'", `\'`) + "'"
}

type None struct{}

func (*None) Type() Type      { return NONE_OBJ }
func (*None) Inspect() string { return "None" }

type List struct {
	Elements []Object
}

func (*List) Type() Type { return LIST_OBJ }
func (l *List) Inspect() string {
	var out bytes.Buffer
	out.WriteString("[")
	for i, el := range l.Elements {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(reprOf(el))
	}
	out.WriteString("]")
	return out.String()
}

type Function struct {
	Name       string
	Parameters []*ast.Identifier
	Body       *ast.BlockStatement
	Env        *Environment
}

func (*Function) Type() Type { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	name := f.Name
	if name == "" {
		name = "<anon>"
	}
	return "<function " + name + ">"
}

type BuiltinFunction func(args ...Object) Object

// Builtin is a pure, in-sandbox function. It never reaches outside the
// process; anything effectful must be a HostBinding instead.
type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

func (*Builtin) Type() Type        { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string { return "<builtin " + b.Name + ">" }

// HostBinding is the sole bridge to the embedder. Fn receives already
// evaluated arguments and returns a result Object or an *Error.
type HostBinding struct {
	Name string
	Fn   func(args []Object) Object
}

func (*HostBinding) Type() Type        { return HOST_BINDING_OBJ }
func (h *HostBinding) Inspect() string { return "<capability " + h.Name + ">" }

/* -------------------- control signals -------------------- */

// ReturnValue, Break and Continue unwind the tree walk; they are resolved
// at call and loop boundaries and never reach the embedder.

type ReturnValue struct{ Value Object }

func (*ReturnValue) Type() Type         { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string { return rv.Value.Inspect() }

type Break struct{}

func (*Break) Type() Type      { return BREAK_OBJ }
func (*Break) Inspect() string { return "break" }

type Continue struct{}

func (*Continue) Type() Type      { return CONTINUE_OBJ }
func (*Continue) Inspect() string { return "continue" }

/* -------------------- errors -------------------- */

// ErrorKind is the failure taxonomy shared with the embedding API.
type ErrorKind string

const (
	LexErrorKind       ErrorKind = "LexError"
	ParseErrorKind     ErrorKind = "ParseError"
	SyntaxErrorKind    ErrorKind = "SyntaxError"
	NameErrorKind      ErrorKind = "NameError"
	TypeErrorKind      ErrorKind = "TypeError"
	ValueErrorKind     ErrorKind = "ValueError"
	IndexErrorKind     ErrorKind = "IndexError"
	KeyErrorKind       ErrorKind = "KeyError"
	ZeroDivisionKind   ErrorKind = "ZeroDivisionError"
	RecursionErrorKind ErrorKind = "RecursionError"
	ResourceKind       ErrorKind = "ResourceExceeded"
	HostErrorKind      ErrorKind = "HostError"
)

// Error aborts the evaluation session that raised it; the grammar has no
// construct that can catch one. Detail carries machine-readable context:
// the missing name, the operand kinds, or the exceeded limit kind.
type Error struct {
	Kind    ErrorKind
	Message string
	Detail  string
	Line    int
	Col     int
}

func (*Error) Type() Type { return ERROR_OBJ }
func (e *Error) Inspect() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func reprOf(o Object) string {
	if s, ok := o.(*String); ok {
		return s.Repr()
	}
	return o.Inspect()
}
