package graph

import "fmt"

// DetectCycles checks the graph for any cycle through data or control
// edges. It returns a non-nil error naming the first operation found to be
// involved in a cycle.
func (g *Graph) DetectCycles() error {
	// Classic depth-first search with three sets of operations:
	// permanent: fully visited and known cycle-free.
	// temporary: currently on the recursion stack.
	// unvisited: everything else.
	permanent := make(map[int]bool)
	temporary := make(map[int]bool)

	var visit func(op *Operation) error
	visit = func(op *Operation) error {
		if permanent[op.handle] {
			return nil
		}
		if temporary[op.handle] {
			return fmt.Errorf("cycle detected involving operation %q", op.name)
		}

		temporary[op.handle] = true

		for _, in := range op.inputs {
			if err := visit(in.op); err != nil {
				return err
			}
		}
		for _, dep := range op.controlInputs {
			if err := visit(dep); err != nil {
				return err
			}
		}

		delete(temporary, op.handle)
		permanent[op.handle] = true
		return nil
	}

	for _, op := range g.ops {
		if !permanent[op.handle] {
			if err := visit(op); err != nil {
				return err
			}
		}
	}
	return nil
}
