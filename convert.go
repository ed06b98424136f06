package sandpit

import (
	"fmt"
	"sort"

	"sandpit/internal/object"
)

// toObject lifts a host value into the sandbox. Containers convert deep;
// anything the sandbox has no kind for is rejected rather than smuggled in
// as an opaque handle.
func toObject(v any) (object.Object, error) {
	switch x := v.(type) {
	case nil:
		return &object.None{}, nil
	case bool:
		return &object.Boolean{Value: x}, nil
	case int:
		return &object.Integer{Value: int64(x)}, nil
	case int32:
		return &object.Integer{Value: int64(x)}, nil
	case int64:
		return &object.Integer{Value: x}, nil
	case float32:
		return &object.Float{Value: float64(x)}, nil
	case float64:
		return &object.Float{Value: x}, nil
	case string:
		return &object.String{Value: x}, nil
	case []any:
		elems := make([]object.Object, len(x))
		for i, el := range x {
			o, err := toObject(el)
			if err != nil {
				return nil, err
			}
			elems[i] = o
		}
		return &object.List{Elements: elems}, nil
	case map[string]any:
		d := object.NewDict()
		for _, k := range sortedKeys(x) {
			val, err := toObject(x[k])
			if err != nil {
				return nil, err
			}
			d.Set(&object.String{Value: k}, val)
		}
		return d, nil
	case object.Object:
		return x, nil
	}
	return nil, fmt.Errorf("cannot convert %T into a sandbox value", v)
}

// fromObject lowers a sandbox value to the host. Functions, builtins and
// capability handles never cross outward; returning one is a TypeError, so
// scripts cannot leak callables to the embedder.
func fromObject(o object.Object) (any, error) {
	switch x := o.(type) {
	case *object.Integer:
		return x.Value, nil
	case *object.Float:
		return x.Value, nil
	case *object.Boolean:
		return x.Value, nil
	case *object.String:
		return x.Value, nil
	case *object.None, nil:
		return nil, nil
	case *object.List:
		out := make([]any, len(x.Elements))
		for i, el := range x.Elements {
			v, err := fromObject(el)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case *object.Dict:
		out := make(map[string]any, x.Len())
		for _, pair := range x.Pairs() {
			key, ok := pair.Key.(*object.String)
			if !ok {
				return nil, &Error{
					Kind:    TypeError,
					Message: fmt.Sprintf("dict with %s key cannot cross the host boundary", object.PyName(pair.Key.Type())),
					Detail:  string(pair.Key.Type()),
				}
			}
			v, err := fromObject(pair.Value)
			if err != nil {
				return nil, err
			}
			out[key.Value] = v
		}
		return out, nil
	case *object.Function, *object.Builtin, *object.HostBinding:
		return nil, &Error{
			Kind:    TypeError,
			Message: "a function cannot cross the host boundary",
			Detail:  string(o.Type()),
		}
	}
	return nil, fmt.Errorf("cannot convert %s out of the sandbox", o.Type())
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Go maps iterate in random order; sort so the dict scripts see is
	// deterministic.
	sort.Strings(keys)
	return keys
}
