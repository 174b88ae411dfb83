package runtime

import (
	"fmt"
	"sort"
	"sync"
)

// Environment provides lexical scoping for runtime values. Environments only
// point at their parent, so a chain can never form a cycle.
type Environment struct {
	mu     sync.RWMutex
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// UndefinedError reports a lookup or assignment of an undeclared name.
type UndefinedError struct {
	Name string
}

func (e *UndefinedError) Error() string {
	return fmt.Sprintf("Undefined variable '%s'.", e.Name)
}

// Parent exposes the lexical parent (nil when global).
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Snapshot returns a copy of the current bindings.
func (e *Environment) Snapshot() map[string]Value {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]Value, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out
}

// Define inserts or shadows a binding in the current scope.
func (e *Environment) Define(name string, value Value) {
	e.mu.Lock()
	e.values[name] = value
	e.mu.Unlock()
}

// Assign updates an existing binding in the first scope where it appears.
func (e *Environment) Assign(name string, value Value) error {
	for env := e; env != nil; env = env.parent {
		if env.set(name, value) {
			return nil
		}
	}
	return &UndefinedError{Name: name}
}

// Get retrieves a binding, searching outward through the scope chain.
func (e *Environment) Get(name string) (Value, error) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.lookup(name); ok {
			return v, nil
		}
	}
	return nil, &UndefinedError{Name: name}
}

// Ancestor walks exactly distance parents up. It returns nil when the chain
// is shorter than that.
func (e *Environment) Ancestor(distance int) *Environment {
	env := e
	for i := 0; i < distance && env != nil; i++ {
		env = env.parent
	}
	return env
}

// GetAt reads name from the environment distance hops up without searching
// further.
func (e *Environment) GetAt(distance int, name string) (Value, error) {
	env := e.Ancestor(distance)
	if env == nil {
		return nil, &UndefinedError{Name: name}
	}
	if v, ok := env.lookup(name); ok {
		return v, nil
	}
	return nil, &UndefinedError{Name: name}
}

// AssignAt writes name into the environment distance hops up.
func (e *Environment) AssignAt(distance int, name string, value Value) error {
	env := e.Ancestor(distance)
	if env == nil || !env.set(name, value) {
		return &UndefinedError{Name: name}
	}
	return nil
}

// Keys returns the bindings in sorted order (useful for determinism in tests).
func (e *Environment) Keys() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Extend returns a new child scope.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}

func (e *Environment) lookup(name string) (Value, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.values[name]
	return v, ok
}

func (e *Environment) set(name string, value Value) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.values[name]; !ok {
		return false
	}
	e.values[name] = value
	return true
}
