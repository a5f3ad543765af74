package graph

import "fmt"

// DType tags the value type of a Tensor. Resource is the distinguished tag
// for identity-bearing handles to externally mutable state.
type DType int

const (
	Invalid DType = iota
	Bool
	Int32
	Int64
	Float
	Resource
	Variant
)

// String returns the lower-case dtype name used in HCL program files.
func (d DType) String() string {
	switch d {
	case Bool:
		return "bool"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float:
		return "float"
	case Resource:
		return "resource"
	case Variant:
		return "variant"
	default:
		return "invalid"
	}
}

// ParseDType converts a dtype name from a program or manifest file.
func ParseDType(name string) (DType, error) {
	switch name {
	case "bool":
		return Bool, nil
	case "int32":
		return Int32, nil
	case "int64":
		return Int64, nil
	case "float":
		return Float, nil
	case "resource":
		return Resource, nil
	case "variant":
		return Variant, nil
	default:
		return Invalid, fmt.Errorf("unknown dtype %q", name)
	}
}

// ContextKind distinguishes conditional scopes from iterative ones.
type ContextKind int

const (
	CondContext ContextKind = iota
	LoopContext
)

// Context represents one nested control-flow scope. Two operations are in
// the same branch iff their *Context pointers are identical; structural
// equality is never used.
type Context struct {
	kind  ContextKind
	name  string
	outer *Context
}

// NewCondContext creates a conditional-branch context nested in outer.
// A nil outer means the scope is entered from the outermost level.
func NewCondContext(name string, outer *Context) *Context {
	return &Context{kind: CondContext, name: name, outer: outer}
}

// NewLoopContext creates an iterative context nested in outer. Operations
// inside loop contexts are skipped by the dependency pass.
func NewLoopContext(name string, outer *Context) *Context {
	return &Context{kind: LoopContext, name: name, outer: outer}
}

// Kind reports whether this scope is conditional or iterative.
func (c *Context) Kind() ContextKind { return c.kind }

// Name returns the scope's diagnostic name.
func (c *Context) Name() string { return c.name }

// Outer returns the enclosing scope, or nil at the outermost level.
// Safe to call on a nil receiver.
func (c *Context) Outer() *Context {
	if c == nil {
		return nil
	}
	return c.outer
}

// InLoop reports whether this scope or any enclosing scope is iterative.
// Safe to call on a nil receiver.
func (c *Context) InLoop() bool {
	for cur := c; cur != nil; cur = cur.outer {
		if cur.kind == LoopContext {
			return true
		}
	}
	return false
}

// Tensor is a typed value produced by exactly one operation. Its identity
// is the integer handle, unique within the owning graph; resource handles
// are compared by this identity, never by value.
type Tensor struct {
	handle int
	op     *Operation
	index  int
	dtype  DType
}

// Handle returns the tensor's graph-unique identity.
func (t *Tensor) Handle() int { return t.handle }

// Op returns the operation that produces this tensor.
func (t *Tensor) Op() *Operation { return t.op }

// Index returns the tensor's position among its producer's outputs.
func (t *Tensor) Index() int { return t.index }

// DType returns the tensor's value-type tag.
func (t *Tensor) DType() DType { return t.dtype }

// Name returns a diagnostic name of the form "op_name:index".
func (t *Tensor) Name() string {
	return fmt.Sprintf("%s:%d", t.op.name, t.index)
}

// Operation is a single graph node. Operations are append-only: inputs and
// outputs are fixed at construction, only control inputs may be added later.
type Operation struct {
	handle     int
	kind       string
	name       string
	inputs     []*Tensor
	outputs    []*Tensor
	ctx        *Context
	stateful   bool
	registered bool
	artificial bool

	controlInputs []*Operation
	controlSet    map[int]struct{}
}

// Handle returns the operation's graph-unique identity.
func (o *Operation) Handle() int { return o.handle }

// Kind returns the op-kind name.
func (o *Operation) Kind() string { return o.kind }

// Name returns the operation's diagnostic name.
func (o *Operation) Name() string { return o.name }

// Inputs returns the ordered data inputs.
func (o *Operation) Inputs() []*Tensor { return o.inputs }

// Outputs returns the produced tensors.
func (o *Operation) Outputs() []*Tensor { return o.outputs }

// Context returns the enclosing control-flow scope, or nil.
func (o *Operation) Context() *Context { return o.ctx }

// Stateful reports whether the kind carries side effects beyond its outputs.
func (o *Operation) Stateful() bool { return o.stateful }

// Registered reports whether the kind was known to the registry at
// construction time.
func (o *Operation) Registered() bool { return o.registered }

// Artificial reports whether this merge was synthesized by the dependency
// pass rather than emitted by conditional lowering.
func (o *Operation) Artificial() bool { return o.artificial }

// ControlInputs returns the ordering-only predecessors of this operation.
func (o *Operation) ControlInputs() []*Operation { return o.controlInputs }

// AddControlInput records an ordering-only edge from dep to this operation.
// Self-edges and duplicates are ignored, which makes repeated passes over
// the same operations idempotent.
func (o *Operation) AddControlInput(dep *Operation) {
	if dep == nil || dep == o {
		return
	}
	if _, exists := o.controlSet[dep.handle]; exists {
		return
	}
	o.controlSet[dep.handle] = struct{}{}
	o.controlInputs = append(o.controlInputs, dep)
}
