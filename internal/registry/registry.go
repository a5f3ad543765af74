package registry

import "fmt"

// OpDef describes a single operation kind known to the graph builder.
type OpDef struct {
	// Kind is the unique op-kind name, e.g. "AssignVariableOp".
	Kind string
	// Stateful marks kinds whose side effects are not fully captured by
	// their data outputs.
	Stateful bool
	// Outputs lists the dtype names of the outputs an op of this kind
	// produces by default. A program may override them per op.
	Outputs []string
	// Description is free-form documentation carried from the manifest.
	Description string
}

// Registry holds all op-kind definitions for a single application instance.
// Constructing an operation whose kind is absent from the registry yields an
// unregistered operation, which the dependency pass always forces to run.
type Registry struct {
	defs map[string]*OpDef
}

// New creates a Registry pre-populated with the built-in op kinds.
func New() *Registry {
	r := &Registry{defs: make(map[string]*OpDef)}
	for _, def := range builtinDefs {
		r.defs[def.Kind] = def
	}
	return r
}

// Register adds a definition to the registry. Re-registering an existing
// kind is an error; built-ins cannot be silently redefined by a manifest.
func (r *Registry) Register(def *OpDef) error {
	if def.Kind == "" {
		return fmt.Errorf("op definition has empty kind")
	}
	if _, exists := r.defs[def.Kind]; exists {
		return fmt.Errorf("op kind %q is already registered", def.Kind)
	}
	r.defs[def.Kind] = def
	return nil
}

// Lookup returns the definition for a kind, if one is registered.
func (r *Registry) Lookup(kind string) (*OpDef, bool) {
	def, ok := r.defs[kind]
	return def, ok
}

// Len reports the number of registered kinds.
func (r *Registry) Len() int {
	return len(r.defs)
}
