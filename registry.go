package sandpit

import (
	"fmt"
	"sync"

	"sandpit/internal/object"
)

// HostFunc is the shape of a capability the embedder exposes. Arguments
// arrive already lowered to host values; the return value is lifted back
// into the sandbox. A non-nil error surfaces to the script as HostError.
type HostFunc func(args ...any) (any, error)

// Registry holds the capabilities a script may call. Scripts reach the
// host through registry bindings and nothing else: no binding, no effect.
// The registry freezes when an evaluation first uses it, so concurrent
// sessions share an immutable view.
type Registry struct {
	mu       sync.Mutex
	frozen   bool
	bindings map[string]*object.HostBinding
	values   map[string]object.Object
}

func NewRegistry() *Registry {
	return &Registry{
		bindings: map[string]*object.HostBinding{},
		values:   map[string]object.Object{},
	}
}

// Bind registers fn under name. It fails once the registry is frozen or
// when the name is already taken.
func (r *Registry) Bind(name string, fn HostFunc) error {
	if fn == nil {
		return fmt.Errorf("bind %s: nil function", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("bind %s: registry is frozen", name)
	}
	if _, dup := r.bindings[name]; dup {
		return fmt.Errorf("bind %s: already bound", name)
	}
	if _, dup := r.values[name]; dup {
		return fmt.Errorf("bind %s: already bound", name)
	}
	r.bindings[name] = &object.HostBinding{
		Name: name,
		Fn:   wrapHostFunc(name, fn),
	}
	return nil
}

// BindValue registers a constant. The value is lifted once, at bind time,
// and scripts see it as a plain value, not a callable.
func (r *Registry) BindValue(name string, v any) error {
	obj, err := toObject(v)
	if err != nil {
		return fmt.Errorf("bind %s: %w", name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("bind %s: registry is frozen", name)
	}
	if _, dup := r.bindings[name]; dup {
		return fmt.Errorf("bind %s: already bound", name)
	}
	if _, dup := r.values[name]; dup {
		return fmt.Errorf("bind %s: already bound", name)
	}
	r.values[name] = obj
	return nil
}

func (r *Registry) Frozen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frozen
}

func (r *Registry) freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// install publishes every binding and bound value into the global frame
// of a session.
func (r *Registry) install(env *object.Environment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, hb := range r.bindings {
		env.Set(name, hb)
	}
	for name, v := range r.values {
		env.Set(name, v)
	}
}

// wrapHostFunc is the conversion shim around one capability: lower every
// argument, invoke exactly once, lift the result. Failures on either side
// of the call become script-level errors, never panics or silent nils.
func wrapHostFunc(name string, fn HostFunc) func(args []object.Object) object.Object {
	return func(args []object.Object) object.Object {
		hostArgs := make([]any, len(args))
		for i, a := range args {
			v, err := fromObject(a)
			if err != nil {
				if pub, ok := err.(*Error); ok {
					return &object.Error{Kind: object.ErrorKind(pub.Kind), Message: pub.Message, Detail: pub.Detail}
				}
				return &object.Error{Kind: object.TypeErrorKind, Message: err.Error()}
			}
			hostArgs[i] = v
		}

		result, err := fn(hostArgs...)
		if err != nil {
			return &object.Error{
				Kind:    object.HostErrorKind,
				Message: fmt.Sprintf("%s: %s", name, err.Error()),
				Detail:  name,
			}
		}

		obj, err := toObject(result)
		if err != nil {
			return &object.Error{
				Kind:    object.HostErrorKind,
				Message: fmt.Sprintf("%s returned an unconvertible value: %s", name, err.Error()),
				Detail:  name,
			}
		}
		return obj
	}
}
