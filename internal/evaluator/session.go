package evaluator

import (
	"io"

	"sandpit/internal/ast"
	"sandpit/internal/limits"
	"sandpit/internal/object"
	"sandpit/internal/token"
)

// Session owns the mutable state of one evaluation: its governor and its
// output sink. Sessions share nothing, so independent sessions may run on
// separate goroutines.
type Session struct {
	gov    *limits.Governor
	stdout io.Writer
}

func NewSession(gov *limits.Governor, stdout io.Writer) *Session {
	if stdout == nil {
		stdout = io.Discard
	}
	return &Session{gov: gov, stdout: stdout}
}

func (s *Session) Governor() *limits.Governor { return s.gov }

// Eval walks the program against env. The result is the value of the last
// expression statement, or an *object.Error.
func (s *Session) Eval(node ast.Node, env *object.Environment) object.Object {
	return eval(node, env, s, 0, 0)
}

func (s *Session) chargeStep(tok token.Token) *object.Error {
	if s == nil || s.gov == nil {
		return nil
	}
	if err := s.gov.ChargeStep(); err != nil {
		return limitErrorAt(tok, err)
	}
	return nil
}

func (s *Session) chargeMemory(tok token.Token, n int64) *object.Error {
	if s == nil || s.gov == nil {
		return nil
	}
	if err := s.gov.ChargeMemory(n); err != nil {
		return limitErrorAt(tok, err)
	}
	return nil
}
