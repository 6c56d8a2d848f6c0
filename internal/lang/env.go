package lang

import "sort"

// Env is the single flat namespace of an evaluation
type Env struct {
	vars map[string]Value
}

// NewEnv creates an empty environment
func NewEnv() *Env {
	return &Env{vars: make(map[string]Value)}
}

// Get looks up name
func (e *Env) Get(name string) (Value, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// Has reports whether name is bound
func (e *Env) Has(name string) bool {
	_, ok := e.vars[name]
	return ok
}

// Define binds or rebinds name
func (e *Env) Define(name string, v Value) {
	e.vars[name] = v
}

// Names returns the bound names in sorted order
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
