// Package builder lowers a parsed program model into a dataflow graph.
// Plain op blocks become operations; cond blocks are lowered the way
// structured conditionals are encoded in the graph: every tensor a branch
// accesses from outside is routed through a switch, and paired yields are
// joined back through natural merges in the enclosing scope.
package builder

import (
	"context"
	"fmt"

	"github.com/vk/graphdeps/internal/config"
	"github.com/vk/graphdeps/internal/ctxlog"
	"github.com/vk/graphdeps/internal/graph"
)

// Result carries what a program declares beyond the graph itself.
type Result struct {
	// Returns are the tensors listed in the program's `return` attribute,
	// resolved in file order.
	Returns []*graph.Tensor
}

// Build lowers prog into g, in program order.
func Build(ctx context.Context, prog *config.Program, g *graph.Graph) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: starting program lowering.", "statements", len(prog.Statements))

	b := &builder{g: g, symbols: make(map[string][]*graph.Tensor)}

	for _, stmt := range prog.Statements {
		switch {
		case stmt.Op != nil:
			if _, err := b.lowerOp(stmt.Op, nil); err != nil {
				return nil, err
			}
		case stmt.Cond != nil:
			if err := b.lowerCond(ctx, stmt.Cond); err != nil {
				return nil, err
			}
		}
	}

	result := &Result{}
	if prog.Return != nil {
		returns, err := b.resolveList(prog.Return, nil)
		if err != nil {
			return nil, fmt.Errorf("return: %w", err)
		}
		result.Returns = returns
	}

	logger.Debug("Build: program lowering complete.", "operations", g.NumOperations())
	return result, nil
}

// builder holds the symbol table of one lowering run. Names are flat:
// "op.<name>" for operation outputs, "cond.<name>" for merged yields.
type builder struct {
	g       *graph.Graph
	symbols map[string][]*graph.Tensor
}

// lowerOp appends one operation. scope is non-nil when the op sits inside
// a conditional arm.
func (b *builder) lowerOp(op *config.Op, scope *branchScope) (*graph.Operation, error) {
	key := "op." + op.Name
	if _, exists := b.symbols[key]; exists {
		return nil, fmt.Errorf("duplicate op name %q", op.Name)
	}

	inputs, err := b.resolveList(op.Inputs, scope)
	if err != nil {
		return nil, fmt.Errorf("op %q: %w", op.Name, err)
	}

	var outputs []graph.DType
	for _, name := range op.Outputs {
		d, err := graph.ParseDType(name)
		if err != nil {
			return nil, fmt.Errorf("op %q: %w", op.Name, err)
		}
		outputs = append(outputs, d)
	}

	var opCtx *graph.Context
	if scope != nil {
		opCtx = scope.ctx
	}

	created, err := b.g.AddOperation(graph.OpSpec{
		Kind:         op.Kind,
		Name:         op.Name,
		Inputs:       inputs,
		OutputDTypes: outputs,
		Ctx:          opCtx,
	})
	if err != nil {
		return nil, fmt.Errorf("op %q: %w", op.Name, err)
	}

	b.symbols[key] = created.Outputs()
	return created, nil
}
