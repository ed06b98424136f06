package object

// Environment frames form a child→parent chain. Functions capture the
// chain visible at definition time, so closures read from their defining
// scope regardless of the caller.
type Environment struct {
	store map[string]Object
	outer *Environment
}

func NewEnvironment() *Environment {
	return &Environment{store: map[string]Object{}}
}

func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

// Snapshot flattens the bindings visible from e into a single detached
// frame (inner shadows outer). A function definition captures such a
// snapshot, so later rebinding in the defining scope is not observed.
func (e *Environment) Snapshot() *Environment {
	snap := NewEnvironment()
	var walk func(env *Environment)
	walk = func(env *Environment) {
		if env == nil {
			return
		}
		walk(env.outer)
		for k, v := range env.store {
			snap.store[k] = v
		}
	}
	walk(e)
	return snap
}

func (e *Environment) Get(name string) (Object, bool) {
	obj, ok := e.store[name]
	if !ok && e.outer != nil {
		return e.outer.Get(name)
	}
	return obj, ok
}

// Set always binds in the current frame: assignment never mutates an
// enclosing scope (there is no global/nonlocal in this grammar).
func (e *Environment) Set(name string, val Object) Object {
	e.store[name] = val
	return val
}

func (e *Environment) Names() []string {
	out := make([]string, 0, len(e.store))
	for k := range e.store {
		out = append(out, k)
	}
	return out
}
