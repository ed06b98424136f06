package evaluator

import (
	"strings"

	"sandpit/internal/ast"
	"sandpit/internal/object"
	"sandpit/internal/token"
)

func evalIndex(tok token.Token, left, index object.Object, s *Session) object.Object {
	switch l := left.(type) {

	case *object.List:
		idx, ok := index.(*object.Integer)
		if !ok {
			return newErrorAt(tok, object.TypeErrorKind,
				"list indices must be integers, not %s", object.PyName(index.Type()))
		}
		i, ok := normIndex(idx.Value, int64(len(l.Elements)))
		if !ok {
			return newErrorAt(tok, object.IndexErrorKind, "list index out of range")
		}
		return l.Elements[i]

	case *object.String:
		idx, ok := index.(*object.Integer)
		if !ok {
			return newErrorAt(tok, object.TypeErrorKind,
				"string indices must be integers, not %s", object.PyName(index.Type()))
		}
		runes := []rune(l.Value)
		i, ok := normIndex(idx.Value, int64(len(runes)))
		if !ok {
			return newErrorAt(tok, object.IndexErrorKind, "string index out of range")
		}
		ch := &object.String{Value: string(runes[i])}
		if errObj := s.chargeMemory(tok, object.CostString(len(ch.Value))); errObj != nil {
			return errObj
		}
		return ch

	case *object.Dict:
		if _, hashable := object.HashKeyOf(index); !hashable {
			return newErrorAt(tok, object.TypeErrorKind, "unhashable type: '%s'", object.PyName(index.Type()))
		}
		val, found := l.Get(index)
		if !found {
			errObj := newErrorAt(tok, object.KeyErrorKind, "%s", keyRepr(index))
			errObj.Detail = index.Inspect()
			return errObj
		}
		return val
	}

	return newErrorAt(tok, object.TypeErrorKind,
		"'%s' object is not subscriptable", object.PyName(left.Type()))
}

func setIndex(tok token.Token, base, index, val object.Object, s *Session) object.Object {
	switch b := base.(type) {

	case *object.List:
		idx, ok := index.(*object.Integer)
		if !ok {
			return newErrorAt(tok, object.TypeErrorKind,
				"list indices must be integers, not %s", object.PyName(index.Type()))
		}
		i, ok := normIndex(idx.Value, int64(len(b.Elements)))
		if !ok {
			return newErrorAt(tok, object.IndexErrorKind, "list assignment index out of range")
		}
		b.Elements[i] = val
		return NONE

	case *object.Dict:
		if _, exists := b.Get(index); !exists {
			if errObj := s.chargeMemory(tok, object.CostDictEntry()); errObj != nil {
				return errObj
			}
		}
		if !b.Set(index, val) {
			return newErrorAt(tok, object.TypeErrorKind, "unhashable type: '%s'", object.PyName(index.Type()))
		}
		return NONE
	}

	return newErrorAt(tok, object.TypeErrorKind,
		"'%s' object does not support item assignment", object.PyName(base.Type()))
}

func evalSlice(n *ast.SliceExpression, env *object.Environment, s *Session, loopDepth, fnDepth int) object.Object {
	left := eval(n.Left, env, s, loopDepth, fnDepth)
	if isError(left) {
		return left
	}

	bound := func(e ast.Expression) (int64, bool, object.Object) {
		if e == nil {
			return 0, false, nil
		}
		v := eval(e, env, s, loopDepth, fnDepth)
		if isError(v) {
			return 0, false, v
		}
		i, ok := v.(*object.Integer)
		if !ok {
			return 0, false, newErrorAt(n.Token, object.TypeErrorKind,
				"slice indices must be integers, not %s", object.PyName(v.Type()))
		}
		return i.Value, true, nil
	}

	low, hasLow, errObj := bound(n.Low)
	if errObj != nil {
		return errObj
	}
	high, hasHigh, errObj := bound(n.High)
	if errObj != nil {
		return errObj
	}

	switch l := left.(type) {
	case *object.List:
		lo, hi := sliceBounds(low, hasLow, high, hasHigh, int64(len(l.Elements)))
		out := make([]object.Object, hi-lo)
		copy(out, l.Elements[lo:hi])
		if memErr := s.chargeMemory(n.Token, object.CostList(len(out))); memErr != nil {
			return memErr
		}
		return &object.List{Elements: out}

	case *object.String:
		runes := []rune(l.Value)
		lo, hi := sliceBounds(low, hasLow, high, hasHigh, int64(len(runes)))
		str := string(runes[lo:hi])
		if memErr := s.chargeMemory(n.Token, object.CostString(len(str))); memErr != nil {
			return memErr
		}
		return &object.String{Value: str}
	}

	return newErrorAt(n.Token, object.TypeErrorKind,
		"'%s' object is not subscriptable", object.PyName(left.Type()))
}

func evalMembership(tok token.Token, needle, haystack object.Object, negate bool) object.Object {
	var found bool
	switch h := haystack.(type) {
	case *object.List:
		for _, el := range h.Elements {
			if valuesEqual(needle, el) {
				found = true
				break
			}
		}
	case *object.String:
		sub, ok := needle.(*object.String)
		if !ok {
			return newErrorAt(tok, object.TypeErrorKind,
				"'in <string>' requires string as left operand, not %s", object.PyName(needle.Type()))
		}
		found = strings.Contains(h.Value, sub.Value)
	case *object.Dict:
		if _, hashable := object.HashKeyOf(needle); !hashable {
			return newErrorAt(tok, object.TypeErrorKind, "unhashable type: '%s'", object.PyName(needle.Type()))
		}
		_, found = h.Get(needle)
	default:
		return newErrorAt(tok, object.TypeErrorKind,
			"argument of type '%s' is not iterable", object.PyName(haystack.Type()))
	}
	if negate {
		return nativeBool(!found)
	}
	return nativeBool(found)
}

// normIndex maps a possibly negative index onto [0, length); ok is false
// when it falls outside.
func normIndex(idx, length int64) (int64, bool) {
	if idx < 0 {
		idx += length
	}
	if idx < 0 || idx >= length {
		return 0, false
	}
	return idx, true
}

// sliceBounds clamps the way Python does: out-of-range slice bounds are
// legal and yield an empty or truncated result.
func sliceBounds(low int64, hasLow bool, high int64, hasHigh bool, length int64) (int64, int64) {
	lo := int64(0)
	hi := length
	if hasLow {
		lo = low
		if lo < 0 {
			lo += length
		}
		lo = clamp(lo, 0, length)
	}
	if hasHigh {
		hi = high
		if hi < 0 {
			hi += length
		}
		hi = clamp(hi, 0, length)
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

func clamp(x, lo, hi int64) int64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func keyRepr(key object.Object) string {
	if s, ok := key.(*object.String); ok {
		return s.Repr()
	}
	return key.Inspect()
}
