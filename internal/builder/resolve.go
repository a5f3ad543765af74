package builder

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"

	"github.com/vk/graphdeps/internal/graph"
)

// resolveList resolves a tuple expression like `[op.a, op.b[1]]` into
// tensors, preserving element order. A nil expression resolves to nothing.
func (b *builder) resolveList(expr hcl.Expression, scope *branchScope) ([]*graph.Tensor, error) {
	if expr == nil {
		return nil, nil
	}
	elems, diags := hcl.ExprList(expr)
	if diags.HasErrors() {
		return nil, fmt.Errorf("expected a list of tensor references: %w", diags)
	}
	var tensors []*graph.Tensor
	for _, elem := range elems {
		t, err := b.resolveSingle(elem, scope)
		if err != nil {
			return nil, err
		}
		tensors = append(tensors, t)
	}
	return tensors, nil
}

// resolveSingle resolves one tensor reference expression.
func (b *builder) resolveSingle(expr hcl.Expression, scope *branchScope) (*graph.Tensor, error) {
	traversals := expr.Variables()
	if len(traversals) != 1 {
		return nil, fmt.Errorf("expected a single tensor reference, got %d", len(traversals))
	}
	t, err := b.resolveTraversal(traversals[0])
	if err != nil {
		return nil, err
	}
	if scope != nil {
		return b.enterBranch(t, scope)
	}
	return t, nil
}

// resolveTraversal maps a reference like `op.a`, `op.a[1]` or `cond.c[0]`
// to a tensor via the symbol table.
func (b *builder) resolveTraversal(traversal hcl.Traversal) (*graph.Tensor, error) {
	rootName := traversal.RootName()
	if rootName != "op" && rootName != "cond" {
		return nil, fmt.Errorf("unknown reference root %q (expected op or cond)", rootName)
	}
	if len(traversal) < 2 {
		return nil, fmt.Errorf("reference %q is missing a name", rootName)
	}
	nameAttr, ok := traversal[1].(hcl.TraverseAttr)
	if !ok {
		return nil, fmt.Errorf("malformed %s reference", rootName)
	}

	key := rootName + "." + nameAttr.Name
	outputs, found := b.symbols[key]
	if !found {
		return nil, fmt.Errorf("reference to undefined %s %q", rootName, nameAttr.Name)
	}

	if len(traversal) > 3 {
		return nil, fmt.Errorf("%s: reference has trailing steps after the output index", key)
	}
	index := 0
	if len(traversal) > 2 {
		idx, ok := traversal[2].(hcl.TraverseIndex)
		if !ok {
			return nil, fmt.Errorf("%s: expected an output index", key)
		}
		i, _ := idx.Key.AsBigFloat().Int64()
		index = int(i)
	}
	if index < 0 || index >= len(outputs) {
		return nil, fmt.Errorf("%s has no output %d (has %d)", key, index, len(outputs))
	}
	return outputs[index], nil
}
