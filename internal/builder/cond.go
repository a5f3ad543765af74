package builder

import (
	"context"
	"fmt"

	"github.com/vk/graphdeps/internal/config"
	"github.com/vk/graphdeps/internal/ctxlog"
	"github.com/vk/graphdeps/internal/graph"
)

// condScope is the per-conditional lowering state shared by both arms.
type condScope struct {
	pred    *graph.Tensor
	thenCtx *graph.Context
	elseCtx *graph.Context
	// switches memoizes the branch-entry switch per external tensor, so
	// both arms route the same outside value through one switch.
	switches map[int]*graph.Operation
}

// branchScope identifies which arm an op is being lowered into.
type branchScope struct {
	cond *condScope
	ctx  *graph.Context
	// taken selects the switch output this arm consumes: output 1 for the
	// then arm, output 0 for the else arm.
	taken bool
}

// lowerCond lowers one `cond` block: both arms in file order, then the
// merges for paired yields.
func (b *builder) lowerCond(ctx context.Context, cond *config.Cond) error {
	logger := ctxlog.FromContext(ctx)

	pred, err := b.resolveSingle(cond.Pred, nil)
	if err != nil {
		return fmt.Errorf("cond %q pred: %w", cond.Name, err)
	}

	cs := &condScope{
		pred:     pred,
		thenCtx:  graph.NewCondContext(cond.Name+"/then", nil),
		elseCtx:  graph.NewCondContext(cond.Name+"/else", nil),
		switches: make(map[int]*graph.Operation),
	}

	thenYields, err := b.lowerBranch(cond.Then, &branchScope{cond: cs, ctx: cs.thenCtx, taken: true})
	if err != nil {
		return fmt.Errorf("cond %q then: %w", cond.Name, err)
	}
	elseYields, err := b.lowerBranch(cond.Else, &branchScope{cond: cs, ctx: cs.elseCtx, taken: false})
	if err != nil {
		return fmt.Errorf("cond %q else: %w", cond.Name, err)
	}

	if len(thenYields) != len(elseYields) {
		return fmt.Errorf("cond %q: then yields %d values, else yields %d",
			cond.Name, len(thenYields), len(elseYields))
	}

	key := "cond." + cond.Name
	if _, exists := b.symbols[key]; exists {
		return fmt.Errorf("duplicate cond name %q", cond.Name)
	}

	var merged []*graph.Tensor
	for i := range thenYields {
		merge, err := b.g.Merge([]*graph.Tensor{thenYields[i], elseYields[i]}, nil)
		if err != nil {
			return fmt.Errorf("cond %q yield %d: %w", cond.Name, i, err)
		}
		merged = append(merged, merge.Outputs()[0])
	}
	b.symbols[key] = merged

	logger.Debug("Build: lowered conditional.",
		"cond", cond.Name, "switches", len(cs.switches), "merges", len(merged))
	return nil
}

// lowerBranch lowers one arm's ops and resolves its yields. A missing arm
// contributes nothing and yields nothing.
func (b *builder) lowerBranch(branch *config.Branch, scope *branchScope) ([]*graph.Tensor, error) {
	if branch == nil {
		return nil, nil
	}
	for _, op := range branch.Ops {
		if _, err := b.lowerOp(op, scope); err != nil {
			return nil, err
		}
	}
	yields, err := b.resolveList(branch.Yield, scope)
	if err != nil {
		return nil, fmt.Errorf("yield: %w", err)
	}
	return yields, nil
}

// enterBranch routes a tensor into an arm. Branch-local values pass
// through untouched; anything produced outside the conditional goes
// through the (shared, lazily created) switch for that tensor, and the
// arm consumes the output matching its branch.
func (b *builder) enterBranch(t *graph.Tensor, scope *branchScope) (*graph.Tensor, error) {
	producerCtx := t.Op().Context()
	if producerCtx == scope.cond.thenCtx || producerCtx == scope.cond.elseCtx {
		return t, nil
	}

	sw, ok := scope.cond.switches[t.Handle()]
	if !ok {
		var err error
		sw, err = b.g.Switch(t, scope.cond.pred, scope.ctx)
		if err != nil {
			return nil, err
		}
		scope.cond.switches[t.Handle()] = sw
	}

	if scope.taken {
		return sw.Outputs()[1], nil
	}
	return sw.Outputs()[0], nil
}
