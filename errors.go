package sandpit

import (
	"fmt"

	"sandpit/internal/lexer"
	"sandpit/internal/object"
	"sandpit/internal/parser"
)

// ErrorKind is the public failure taxonomy. Every failure an evaluation can
// produce, from lexing through host calls, is one of these.
type ErrorKind string

const (
	LexError          ErrorKind = "LexError"
	ParseError        ErrorKind = "ParseError"
	SyntaxError       ErrorKind = "SyntaxError"
	NameError         ErrorKind = "NameError"
	TypeError         ErrorKind = "TypeError"
	ValueError        ErrorKind = "ValueError"
	IndexError        ErrorKind = "IndexError"
	KeyError          ErrorKind = "KeyError"
	ZeroDivisionError ErrorKind = "ZeroDivisionError"
	RecursionError    ErrorKind = "RecursionError"
	ResourceExceeded  ErrorKind = "ResourceExceeded"
	HostError         ErrorKind = "HostError"
)

// Error is the single error type returned by Parse and Evaluate. Detail
// carries machine-readable context: the missing name, the operand kinds,
// the exhausted limit kind, or the capability that failed. Session
// identifies which evaluation raised it when several run concurrently.
type Error struct {
	Kind    ErrorKind
	Message string
	Detail  string
	Line    int
	Col     int
	Session string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s (line %d, col %d)", e.Kind, e.Message, e.Line, e.Col)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func fromObjectError(obj *object.Error, session string) *Error {
	return &Error{
		Kind:    ErrorKind(obj.Kind),
		Message: obj.Message,
		Detail:  obj.Detail,
		Line:    obj.Line,
		Col:     obj.Col,
		Session: session,
	}
}

func fromLexError(le lexer.Error) *Error {
	return &Error{
		Kind:    LexError,
		Message: le.Reason,
		Line:    le.Line,
		Col:     le.Col,
	}
}

func fromDiagnostic(d parser.Diagnostic) *Error {
	e := &Error{
		Kind:    ParseError,
		Message: d.Message,
		Line:    d.Line,
		Col:     d.Col,
	}
	if d.Expected != "" {
		e.Detail = fmt.Sprintf("expected %s, found %s", d.Expected, d.Found)
	}
	return e
}
