package evaluator

import (
	"math"
	"strings"

	"sandpit/internal/object"
	"sandpit/internal/token"
)

func evalPrefix(tok token.Token, op string, right object.Object) object.Object {
	switch op {
	case "-":
		switch r := right.(type) {
		case *object.Integer:
			return &object.Integer{Value: -r.Value}
		case *object.Float:
			return &object.Float{Value: -r.Value}
		}
		return typeErrorAt(tok, "unary -", right.Type())
	case "not":
		return nativeBool(!isTruthy(right))
	}
	return newErrorAt(tok, object.SyntaxErrorKind, "unknown prefix operator: %s", op)
}

// evalInfix is a closed match over operand kind pairs; no open-ended
// coercion. Mixed int/float arithmetic promotes to float.
func evalInfix(tok token.Token, op string, left, right object.Object, s *Session) object.Object {
	switch op {
	case "==":
		return nativeBool(valuesEqual(left, right))
	case "!=":
		return nativeBool(!valuesEqual(left, right))
	case "in":
		return evalMembership(tok, left, right, false)
	case "not in":
		return evalMembership(tok, left, right, true)
	}

	switch l := left.(type) {

	case *object.Integer:
		switch r := right.(type) {
		case *object.Integer:
			return evalIntegerInfix(tok, op, l.Value, r.Value)
		case *object.Float:
			return evalFloatInfix(tok, op, float64(l.Value), r.Value)
		}

	case *object.Float:
		switch r := right.(type) {
		case *object.Integer:
			return evalFloatInfix(tok, op, l.Value, float64(r.Value))
		case *object.Float:
			return evalFloatInfix(tok, op, l.Value, r.Value)
		}

	case *object.String:
		switch r := right.(type) {
		case *object.String:
			return evalStringInfix(tok, op, l, r, s)
		case *object.Integer:
			if op == "*" {
				return repeatString(tok, l, r.Value, s)
			}
		}

	case *object.List:
		switch r := right.(type) {
		case *object.List:
			if op == "+" {
				out := make([]object.Object, 0, len(l.Elements)+len(r.Elements))
				out = append(out, l.Elements...)
				out = append(out, r.Elements...)
				if errObj := s.chargeMemory(tok, object.CostList(len(out))); errObj != nil {
					return errObj
				}
				return &object.List{Elements: out}
			}
		case *object.Integer:
			if op == "*" {
				return repeatList(tok, l, r.Value, s)
			}
		}

	case *object.Boolean:
		// Booleans do not participate in arithmetic; this diverges from
		// CPython's bool-is-int on purpose.
	}

	return binOpTypeErrorAt(tok, op, left.Type(), right.Type())
}

func evalIntegerInfix(tok token.Token, op string, a, b int64) object.Object {
	switch op {
	case "+":
		return &object.Integer{Value: a + b}
	case "-":
		return &object.Integer{Value: a - b}
	case "*":
		return &object.Integer{Value: a * b}
	case "/":
		if b == 0 {
			return newErrorAt(tok, object.ZeroDivisionKind, "division by zero")
		}
		// True division always yields a float.
		return &object.Float{Value: float64(a) / float64(b)}
	case "//":
		if b == 0 {
			return newErrorAt(tok, object.ZeroDivisionKind, "integer division or modulo by zero")
		}
		q := a / b
		if a%b != 0 && (a < 0) != (b < 0) {
			q--
		}
		return &object.Integer{Value: q}
	case "%":
		if b == 0 {
			return newErrorAt(tok, object.ZeroDivisionKind, "integer division or modulo by zero")
		}
		r := a % b
		if r != 0 && (r < 0) != (b < 0) {
			r += b
		}
		return &object.Integer{Value: r}
	case "<":
		return nativeBool(a < b)
	case "<=":
		return nativeBool(a <= b)
	case ">":
		return nativeBool(a > b)
	case ">=":
		return nativeBool(a >= b)
	}
	return binOpTypeErrorAt(tok, op, object.INTEGER_OBJ, object.INTEGER_OBJ)
}

func evalFloatInfix(tok token.Token, op string, a, b float64) object.Object {
	switch op {
	case "+":
		return &object.Float{Value: a + b}
	case "-":
		return &object.Float{Value: a - b}
	case "*":
		return &object.Float{Value: a * b}
	case "/":
		if b == 0 {
			return newErrorAt(tok, object.ZeroDivisionKind, "float division by zero")
		}
		return &object.Float{Value: a / b}
	case "//":
		if b == 0 {
			return newErrorAt(tok, object.ZeroDivisionKind, "float floor division by zero")
		}
		return &object.Float{Value: math.Floor(a / b)}
	case "%":
		if b == 0 {
			return newErrorAt(tok, object.ZeroDivisionKind, "float modulo by zero")
		}
		r := math.Mod(a, b)
		if r != 0 && (r < 0) != (b < 0) {
			r += b
		}
		return &object.Float{Value: r}
	case "<":
		return nativeBool(a < b)
	case "<=":
		return nativeBool(a <= b)
	case ">":
		return nativeBool(a > b)
	case ">=":
		return nativeBool(a >= b)
	}
	return binOpTypeErrorAt(tok, op, object.FLOAT_OBJ, object.FLOAT_OBJ)
}

func evalStringInfix(tok token.Token, op string, l, r *object.String, s *Session) object.Object {
	switch op {
	case "+":
		if errObj := s.chargeMemory(tok, object.CostString(len(l.Value)+len(r.Value))); errObj != nil {
			return errObj
		}
		return &object.String{Value: l.Value + r.Value}
	case "<":
		return nativeBool(l.Value < r.Value)
	case "<=":
		return nativeBool(l.Value <= r.Value)
	case ">":
		return nativeBool(l.Value > r.Value)
	case ">=":
		return nativeBool(l.Value >= r.Value)
	}
	return binOpTypeErrorAt(tok, op, object.STRING_OBJ, object.STRING_OBJ)
}

func repeatString(tok token.Token, l *object.String, n int64, s *Session) object.Object {
	if n < 0 {
		n = 0
	}
	total := int64(len(l.Value)) * n
	if errObj := s.chargeMemory(tok, object.CostString(int(total))); errObj != nil {
		return errObj
	}
	return &object.String{Value: strings.Repeat(l.Value, int(n))}
}

func repeatList(tok token.Token, l *object.List, n int64, s *Session) object.Object {
	if n < 0 {
		n = 0
	}
	if errObj := s.chargeMemory(tok, object.CostList(len(l.Elements)*int(n))); errObj != nil {
		return errObj
	}
	out := make([]object.Object, 0, len(l.Elements)*int(n))
	for i := int64(0); i < n; i++ {
		out = append(out, l.Elements...)
	}
	return &object.List{Elements: out}
}

// valuesEqual never fails: values of unrelated kinds are simply unequal.
// Int and float compare numerically; bool equals only bool.
func valuesEqual(left, right object.Object) bool {
	switch l := left.(type) {
	case *object.Integer:
		switch r := right.(type) {
		case *object.Integer:
			return l.Value == r.Value
		case *object.Float:
			return float64(l.Value) == r.Value
		}
		return false
	case *object.Float:
		switch r := right.(type) {
		case *object.Integer:
			return l.Value == float64(r.Value)
		case *object.Float:
			return l.Value == r.Value
		}
		return false
	case *object.Boolean:
		r, ok := right.(*object.Boolean)
		return ok && l.Value == r.Value
	case *object.String:
		r, ok := right.(*object.String)
		return ok && l.Value == r.Value
	case *object.None:
		_, ok := right.(*object.None)
		return ok
	case *object.List:
		r, ok := right.(*object.List)
		if !ok || len(l.Elements) != len(r.Elements) {
			return false
		}
		for i := range l.Elements {
			if !valuesEqual(l.Elements[i], r.Elements[i]) {
				return false
			}
		}
		return true
	case *object.Dict:
		r, ok := right.(*object.Dict)
		if !ok || l.Len() != r.Len() {
			return false
		}
		for _, pair := range l.Pairs() {
			rv, found := r.Get(pair.Key)
			if !found || !valuesEqual(pair.Value, rv) {
				return false
			}
		}
		return true
	default:
		// Functions, builtins and host bindings compare by identity.
		return left == right
	}
}

func typeErrorAt(tok token.Token, op string, kind object.Type) *object.Error {
	errObj := newErrorAt(tok, object.TypeErrorKind,
		"bad operand type for %s: '%s'", op, object.PyName(kind))
	errObj.Detail = string(kind)
	return errObj
}

func binOpTypeErrorAt(tok token.Token, op string, left, right object.Type) *object.Error {
	errObj := newErrorAt(tok, object.TypeErrorKind,
		"unsupported operand type(s) for %s: '%s' and '%s'", op, object.PyName(left), object.PyName(right))
	errObj.Detail = string(left) + "," + string(right)
	return errObj
}
