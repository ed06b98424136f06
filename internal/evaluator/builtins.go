package evaluator

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"sandpit/internal/object"
	"sandpit/internal/token"
)

// BuiltinNames lists every pure builtin, in a stable order.
func BuiltinNames() []string {
	return []string{
		"abs", "bool", "float", "int", "len", "max", "min",
		"print", "range", "repr", "sorted", "str", "sum",
	}
}

// NewBuiltins returns the pure builtin functions bound to a session. They
// allocate against the session's memory budget; the only one with an
// observable effect is print, which writes to the session sink the
// embedder chose (io.Discard by default).
func NewBuiltins(s *Session) map[string]*object.Builtin {
	b := map[string]*object.Builtin{}
	add := func(name string, fn object.BuiltinFunction) {
		b[name] = &object.Builtin{Name: name, Fn: fn}
	}

	add("len", func(args ...object.Object) object.Object {
		if err := wantArgs("len", 1, args); err != nil {
			return err
		}
		switch a := args[0].(type) {
		case *object.String:
			return &object.Integer{Value: int64(utf8.RuneCountInString(a.Value))}
		case *object.List:
			return &object.Integer{Value: int64(len(a.Elements))}
		case *object.Dict:
			return &object.Integer{Value: int64(a.Len())}
		}
		return builtinTypeError("object of type '%s' has no len()", object.PyName(args[0].Type()))
	})

	add("range", func(args ...object.Object) object.Object {
		if len(args) < 1 || len(args) > 3 {
			return builtinTypeError("range expected 1 to 3 arguments, got %d", len(args))
		}
		nums := make([]int64, len(args))
		for i, a := range args {
			n, ok := a.(*object.Integer)
			if !ok {
				return builtinTypeError("'%s' object cannot be interpreted as an integer", object.PyName(a.Type()))
			}
			nums[i] = n.Value
		}
		start, stop, step := int64(0), int64(0), int64(1)
		switch len(nums) {
		case 1:
			stop = nums[0]
		case 2:
			start, stop = nums[0], nums[1]
		case 3:
			start, stop, step = nums[0], nums[1], nums[2]
		}
		if step == 0 {
			return &object.Error{Kind: object.ValueErrorKind, Message: "range() arg 3 must not be zero"}
		}

		var out []object.Object
		if step > 0 {
			for v := start; v < stop; v += step {
				out = append(out, &object.Integer{Value: v})
			}
		} else {
			for v := start; v > stop; v += step {
				out = append(out, &object.Integer{Value: v})
			}
		}
		if errObj := s.chargeMemory(token.Token{}, object.CostList(len(out))); errObj != nil {
			return errObj
		}
		return &object.List{Elements: out}
	})

	add("str", func(args ...object.Object) object.Object {
		if err := wantArgs("str", 1, args); err != nil {
			return err
		}
		v := args[0].Inspect()
		if errObj := s.chargeMemory(token.Token{}, object.CostString(len(v))); errObj != nil {
			return errObj
		}
		return &object.String{Value: v}
	})

	add("repr", func(args ...object.Object) object.Object {
		if err := wantArgs("repr", 1, args); err != nil {
			return err
		}
		var v string
		if str, ok := args[0].(*object.String); ok {
			v = str.Repr()
		} else {
			v = args[0].Inspect()
		}
		if errObj := s.chargeMemory(token.Token{}, object.CostString(len(v))); errObj != nil {
			return errObj
		}
		return &object.String{Value: v}
	})

	add("int", func(args ...object.Object) object.Object {
		if err := wantArgs("int", 1, args); err != nil {
			return err
		}
		switch a := args[0].(type) {
		case *object.Integer:
			return a
		case *object.Float:
			return &object.Integer{Value: int64(math.Trunc(a.Value))}
		case *object.Boolean:
			if a.Value {
				return &object.Integer{Value: 1}
			}
			return &object.Integer{Value: 0}
		case *object.String:
			v, err := strconv.ParseInt(strings.TrimSpace(a.Value), 10, 64)
			if err != nil {
				return &object.Error{
					Kind:    object.ValueErrorKind,
					Message: fmt.Sprintf("invalid literal for int(): %q", a.Value),
				}
			}
			return &object.Integer{Value: v}
		}
		return builtinTypeError("int() argument must be a string or a number, not '%s'", object.PyName(args[0].Type()))
	})

	add("float", func(args ...object.Object) object.Object {
		if err := wantArgs("float", 1, args); err != nil {
			return err
		}
		switch a := args[0].(type) {
		case *object.Float:
			return a
		case *object.Integer:
			return &object.Float{Value: float64(a.Value)}
		case *object.Boolean:
			if a.Value {
				return &object.Float{Value: 1}
			}
			return &object.Float{Value: 0}
		case *object.String:
			v, err := strconv.ParseFloat(strings.TrimSpace(a.Value), 64)
			if err != nil {
				return &object.Error{
					Kind:    object.ValueErrorKind,
					Message: fmt.Sprintf("could not convert string to float: %q", a.Value),
				}
			}
			return &object.Float{Value: v}
		}
		return builtinTypeError("float() argument must be a string or a number, not '%s'", object.PyName(args[0].Type()))
	})

	add("bool", func(args ...object.Object) object.Object {
		if err := wantArgs("bool", 1, args); err != nil {
			return err
		}
		return nativeBool(isTruthy(args[0]))
	})

	add("abs", func(args ...object.Object) object.Object {
		if err := wantArgs("abs", 1, args); err != nil {
			return err
		}
		switch a := args[0].(type) {
		case *object.Integer:
			if a.Value < 0 {
				return &object.Integer{Value: -a.Value}
			}
			return a
		case *object.Float:
			return &object.Float{Value: math.Abs(a.Value)}
		}
		return builtinTypeError("bad operand type for abs(): '%s'", object.PyName(args[0].Type()))
	})

	add("min", func(args ...object.Object) object.Object {
		return pickExtreme("min", args, func(cmp int) bool { return cmp < 0 })
	})

	add("max", func(args ...object.Object) object.Object {
		return pickExtreme("max", args, func(cmp int) bool { return cmp > 0 })
	})

	add("sum", func(args ...object.Object) object.Object {
		if err := wantArgs("sum", 1, args); err != nil {
			return err
		}
		list, ok := args[0].(*object.List)
		if !ok {
			return builtinTypeError("'%s' object is not iterable", object.PyName(args[0].Type()))
		}
		intSum := int64(0)
		floatSum := 0.0
		isFloat := false
		for _, el := range list.Elements {
			switch v := el.(type) {
			case *object.Integer:
				intSum += v.Value
			case *object.Float:
				isFloat = true
				floatSum += v.Value
			default:
				return builtinTypeError("unsupported operand type(s) for +: 'int' and '%s'", object.PyName(el.Type()))
			}
		}
		if isFloat {
			return &object.Float{Value: floatSum + float64(intSum)}
		}
		return &object.Integer{Value: intSum}
	})

	add("sorted", func(args ...object.Object) object.Object {
		if err := wantArgs("sorted", 1, args); err != nil {
			return err
		}
		list, ok := args[0].(*object.List)
		if !ok {
			return builtinTypeError("'%s' object is not iterable", object.PyName(args[0].Type()))
		}
		out := make([]object.Object, len(list.Elements))
		copy(out, list.Elements)

		var bad *object.Error
		sort.SliceStable(out, func(i, j int) bool {
			cmp, err := compareValues(out[i], out[j])
			if err != nil && bad == nil {
				bad = err
			}
			return cmp < 0
		})
		if bad != nil {
			return bad
		}
		if errObj := s.chargeMemory(token.Token{}, object.CostList(len(out))); errObj != nil {
			return errObj
		}
		return &object.List{Elements: out}
	})

	add("print", func(args ...object.Object) object.Object {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, a.Inspect())
		}
		fmt.Fprintln(s.stdout, strings.Join(parts, " "))
		return NONE
	})

	return b
}

func wantArgs(name string, n int, args []object.Object) *object.Error {
	if len(args) == n {
		return nil
	}
	return builtinTypeError("%s() takes exactly %d argument (%d given)", name, n, len(args))
}

func builtinTypeError(format string, a ...any) *object.Error {
	return &object.Error{Kind: object.TypeErrorKind, Message: fmt.Sprintf(format, a...)}
}

func pickExtreme(name string, args []object.Object, take func(cmp int) bool) object.Object {
	items := args
	if len(args) == 1 {
		list, ok := args[0].(*object.List)
		if !ok {
			return builtinTypeError("'%s' object is not iterable", object.PyName(args[0].Type()))
		}
		items = list.Elements
	}
	if len(items) == 0 {
		return &object.Error{Kind: object.ValueErrorKind, Message: name + "() arg is an empty sequence"}
	}

	best := items[0]
	for _, el := range items[1:] {
		cmp, err := compareValues(el, best)
		if err != nil {
			return err
		}
		if take(cmp) {
			best = el
		}
	}
	return best
}

// compareValues orders numbers with numbers and strings with strings;
// anything else is a TypeError, like Python 3 comparisons.
func compareValues(a, b object.Object) (int, *object.Error) {
	an, aIsNum := numericValue(a)
	bn, bIsNum := numericValue(b)
	if aIsNum && bIsNum {
		switch {
		case an < bn:
			return -1, nil
		case an > bn:
			return 1, nil
		default:
			return 0, nil
		}
	}
	as, aIsStr := a.(*object.String)
	bs, bIsStr := b.(*object.String)
	if aIsStr && bIsStr {
		return strings.Compare(as.Value, bs.Value), nil
	}
	return 0, builtinTypeError("'<' not supported between instances of '%s' and '%s'",
		object.PyName(a.Type()), object.PyName(b.Type()))
}

func numericValue(o object.Object) (float64, bool) {
	switch v := o.(type) {
	case *object.Integer:
		return float64(v.Value), true
	case *object.Float:
		return v.Value, true
	}
	return 0, false
}
