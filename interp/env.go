package interp

// Env is the interpreter's variable environment. The language uses a single
// flat namespace: function calls snapshot the environment, overlay the
// callee's closure and parameters, and restore the snapshot afterward.
type Env struct {
	vars map[string]Value
}

func NewEnv() *Env {
	return &Env{vars: make(map[string]Value)}
}

// Get looks up a name.
func (e *Env) Get(name string) (Value, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// Set binds a name, creating or overwriting it.
func (e *Env) Set(name string, v Value) {
	e.vars[name] = v
}

// Has reports whether a name is bound.
func (e *Env) Has(name string) bool {
	_, ok := e.vars[name]
	return ok
}

// Len reports the number of bound names.
func (e *Env) Len() int { return len(e.vars) }

// Snapshot returns a copy of the current bindings.
func (e *Env) Snapshot() map[string]Value {
	snap := make(map[string]Value, len(e.vars))
	for k, v := range e.vars {
		snap[k] = v
	}
	return snap
}

// Restore replaces all bindings with a previously taken snapshot.
func (e *Env) Restore(snap map[string]Value) {
	e.vars = make(map[string]Value, len(snap))
	for k, v := range snap {
		e.vars[k] = v
	}
}

// Overlay merges bindings into the environment without clearing it.
func (e *Env) Overlay(vars map[string]Value) {
	for k, v := range vars {
		e.vars[k] = v
	}
}

// DiffKeys returns the names bound now that were absent from the snapshot,
// in no particular order. Module loading uses this to compute exports.
func (e *Env) DiffKeys(snap map[string]Value) []string {
	var names []string
	for k := range e.vars {
		if _, ok := snap[k]; !ok {
			names = append(names, k)
		}
	}
	return names
}
