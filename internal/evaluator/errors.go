package evaluator

import (
	"errors"
	"fmt"

	"sandpit/internal/limits"
	"sandpit/internal/object"
	"sandpit/internal/token"
)

func newErrorAt(tok token.Token, kind object.ErrorKind, format string, a ...any) *object.Error {
	return &object.Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, a...),
		Line:    tok.Line,
		Col:     tok.Col,
	}
}

func isError(obj object.Object) bool {
	if obj == nil {
		return false
	}
	return obj.Type() == object.ERROR_OBJ
}

// limitErrorAt converts a governor failure into the script-level error
// taxonomy: the depth budget surfaces as RecursionError, everything else
// as ResourceExceeded with the limit kind in Detail.
func limitErrorAt(tok token.Token, err error) *object.Error {
	var le *limits.LimitError
	if !errors.As(err, &le) {
		return newErrorAt(tok, object.ResourceKind, "%s", err.Error())
	}
	if le.Kind == limits.Depth {
		out := newErrorAt(tok, object.RecursionErrorKind, "%s", le.Error())
		out.Detail = string(le.Kind)
		return out
	}
	out := newErrorAt(tok, object.ResourceKind, "%s", le.Error())
	out.Detail = string(le.Kind)
	return out
}
