// Package graph implements the append-only dataflow graph the dependency
// pass analyzes: an arena of operations and tensors addressed by integer
// handles, with control-flow contexts and control-only edges.
package graph

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vk/graphdeps/internal/registry"
)

// Graph is the ordered sequence of operations in construction order. It is
// built single-threaded; the dependency pass detects (rather than prevents)
// concurrent construction via the graph identity check at region close.
type Graph struct {
	id         uuid.UUID
	reg        *registry.Registry
	ops        []*Operation
	nextTensor int

	// autoDeps records whether a dependency-insertion region is active.
	// Nested regions inherit and restore the outer value.
	autoDeps bool
}

// New creates an empty graph bound to a kind registry.
func New(reg *registry.Registry) *Graph {
	return &Graph{
		id:  uuid.New(),
		reg: reg,
	}
}

// ID returns the graph's stable identity.
func (g *Graph) ID() uuid.UUID { return g.id }

// NumOperations returns the current operation count. Regions record this
// at open and analyze only operations constructed afterwards.
func (g *Graph) NumOperations() int { return len(g.ops) }

// Operations returns a snapshot of the operations constructed so far,
// in construction order.
func (g *Graph) Operations() []*Operation {
	out := make([]*Operation, len(g.ops))
	copy(out, g.ops)
	return out
}

// AutoControlDeps reports whether a dependency-insertion region is active.
func (g *Graph) AutoControlDeps() bool { return g.autoDeps }

// SetAutoControlDeps sets the region-active flag and returns the previous
// value so nested regions can restore it.
func (g *Graph) SetAutoControlDeps(active bool) bool {
	prev := g.autoDeps
	g.autoDeps = active
	return prev
}

// OpSpec describes an operation to construct.
type OpSpec struct {
	// Kind is the op-kind name; looked up in the registry to resolve the
	// stateful and registered flags.
	Kind string
	// Name is the diagnostic name; auto-generated when empty.
	Name string
	// Inputs are the ordered data inputs.
	Inputs []*Tensor
	// OutputDTypes overrides the registry's default output dtypes.
	OutputDTypes []DType
	// Ctx is the enclosing control-flow scope, nil for the outermost level.
	Ctx *Context
}

// AddOperation appends a new operation to the graph and returns it.
func (g *Graph) AddOperation(spec OpSpec) (*Operation, error) {
	if spec.Kind == "" {
		return nil, fmt.Errorf("operation has empty kind")
	}
	for i, in := range spec.Inputs {
		if in == nil {
			return nil, fmt.Errorf("operation %q: input %d is nil", spec.Kind, i)
		}
	}

	var stateful, registered bool
	var outputs []DType
	if def, ok := g.reg.Lookup(spec.Kind); ok {
		registered = true
		stateful = def.Stateful
		for _, name := range def.Outputs {
			d, err := ParseDType(name)
			if err != nil {
				return nil, fmt.Errorf("op kind %q: %w", spec.Kind, err)
			}
			outputs = append(outputs, d)
		}
	}
	if len(spec.OutputDTypes) > 0 {
		outputs = spec.OutputDTypes
	}

	op := &Operation{
		handle:     len(g.ops),
		kind:       spec.Kind,
		name:       spec.Name,
		inputs:     append([]*Tensor(nil), spec.Inputs...),
		ctx:        spec.Ctx,
		stateful:   stateful,
		registered: registered,
		controlSet: make(map[int]struct{}),
	}
	if op.name == "" {
		op.name = fmt.Sprintf("%s_%d", strings.ToLower(spec.Kind), op.handle)
	}
	for i, d := range outputs {
		op.outputs = append(op.outputs, &Tensor{
			handle: g.nextTensor,
			op:     op,
			index:  i,
			dtype:  d,
		})
		g.nextTensor++
	}

	g.ops = append(g.ops, op)
	return op, nil
}

// Identity appends an identity operation copying t and returns the copy.
// The copy inherits the producer's control-flow context and, having no
// outgoing data edge into anything upstream, is always safe to anchor
// control edges to after the fact.
func (g *Graph) Identity(t *Tensor) *Tensor {
	op, err := g.AddOperation(OpSpec{
		Kind:         "Identity",
		Inputs:       []*Tensor{t},
		OutputDTypes: []DType{t.dtype},
		Ctx:          t.op.ctx,
	})
	if err != nil {
		// Identity is a built-in kind and t is non-nil; this is unreachable.
		panic(err)
	}
	return op.outputs[0]
}

// Switch appends a branch-entry operation splitting data into a not-taken
// output (index 0) and a taken output (index 1). The switch lives in the
// branch context; its input is the pre-conditional value.
func (g *Graph) Switch(data, pred *Tensor, ctx *Context) (*Operation, error) {
	return g.AddOperation(OpSpec{
		Kind:         "Switch",
		Inputs:       []*Tensor{data, pred},
		OutputDTypes: []DType{data.dtype, data.dtype},
		Ctx:          ctx,
	})
}

// Merge appends a branch-exit operation joining branch-local values. Output
// 0 carries the value, output 1 the index of the input that produced it.
func (g *Graph) Merge(inputs []*Tensor, ctx *Context) (*Operation, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("merge requires at least one input")
	}
	return g.AddOperation(OpSpec{
		Kind:         "Merge",
		Inputs:       inputs,
		OutputDTypes: []DType{inputs[0].dtype, Int32},
		Ctx:          ctx,
	})
}

// ArtificialMerge appends a merge synthesized by the dependency pass. It is
// flagged so a later pass never absorbs it as a natural branch exit.
func (g *Graph) ArtificialMerge(inputs []*Tensor, ctx *Context) (*Operation, error) {
	op, err := g.Merge(inputs, ctx)
	if err != nil {
		return nil, err
	}
	op.artificial = true
	op.name = fmt.Sprintf("artificial_merge_%d", op.handle)
	return op, nil
}

// ControlEdge is one ordering-only edge: To must wait for From.
type ControlEdge struct {
	From *Operation
	To   *Operation
}

// ControlEdges enumerates every control edge in construction order of the
// dependent operation.
func (g *Graph) ControlEdges() []ControlEdge {
	var edges []ControlEdge
	for _, op := range g.ops {
		for _, dep := range op.controlInputs {
			edges = append(edges, ControlEdge{From: dep, To: op})
		}
	}
	return edges
}
