package autodeps

import (
	"context"

	"github.com/vk/graphdeps/internal/ctxlog"
	"github.com/vk/graphdeps/internal/graph"
)

// sentinelHandle keys the last-user chain for stateful operations that have
// no resource inputs and no enclosing context. Real tensor handles are
// never negative, so the sentinel cannot collide.
const sentinelHandle = -1

// engine holds the working state of one dependency-insertion pass. It is
// created at region close, populated monotonically while scanning the new
// operations, and discarded once its must-run set is folded into the
// tracker.
type engine struct {
	g      *graph.Graph
	exempt map[string]struct{}

	// lastUser maps a resource tensor handle to the operation that used it
	// last in construction order.
	lastUser map[int]*graph.Operation
	// mustRun collects operations that must execute regardless of whether
	// anything consumes their outputs, keyed by operation handle.
	mustRun map[int]*graph.Operation
	// mergeFor maps a resource tensor handle to the merge that must wait
	// for every branch-local user of that resource. It doubles as the
	// memoization set for resolved switches.
	mergeFor map[int]*graph.Operation
}

func newEngine(g *graph.Graph, cfg Config) *engine {
	return &engine{
		g:        g,
		exempt:   cfg.exemptSet(),
		lastUser: make(map[int]*graph.Operation),
		mustRun:  make(map[int]*graph.Operation),
		mergeFor: make(map[int]*graph.Operation),
	}
}

// statefulNotExempt reports whether op is stateful for must-run purposes.
func (e *engine) statefulNotExempt(op *graph.Operation) bool {
	if !op.Stateful() {
		return false
	}
	_, exempt := e.exempt[op.Kind()]
	return !exempt
}

// run scans newOps in construction order, inserts control edges so resource
// uses are serialized per branch, and returns the accumulated must-run set.
//
// Uses of a resource are ordered by keeping, per resource handle, the last
// operation in construction order that used it. Conditionals route every
// externally accessed tensor through a switch and every joined result
// through a merge; switches are resolved lazily via resolveSwitch when a
// consumer of their output appears, and natural merges absorb all pending
// must-run obligations for their branch.
//
// Control inputs are only attached between operations sharing a control-flow
// context. Bridging contexts with a direct edge would drag a node from an
// untaken branch into the live branch and mark it dead; the switch/merge
// structure carries cross-context ordering instead.
func (e *engine) run(ctx context.Context, newOps []*graph.Operation) map[int]*graph.Operation {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Engine: starting dependency-insertion pass.", "new_ops", len(newOps))

	for _, op := range newOps {
		// Operations inside iterative constructs are out of scope for this
		// pass; skipping them is documented behavior, not an error.
		if op.Context().InLoop() {
			continue
		}

		// Candidate control inputs collected while examining resource
		// inputs; attached at the end after the same-context filter.
		candidates := make(map[int]*graph.Operation)

		// Unknown kinds and non-exempt stateful kinds must always run.
		if !op.Registered() || e.statefulNotExempt(op) {
			e.mustRun[op.Handle()] = op
		}

		// Resource switches are handled only through resolveSwitch, driven
		// by their downstream consumers.
		if op.Kind() == "Switch" && len(op.Inputs()) > 0 && op.Inputs()[0].DType() == graph.Resource {
			continue
		}

		// A natural merge closes a conditional: it absorbs every pending
		// obligation so that anything ordered after the merge is ordered
		// after the whole branch. Synthesized merges never absorb.
		if op.Kind() == "Merge" && !op.Artificial() {
			for _, pending := range e.mustRun {
				op.AddControlInput(pending)
				for _, in := range pending.Inputs() {
					if _, tracked := e.lastUser[in.Handle()]; tracked {
						e.lastUser[in.Handle()] = op
					}
				}
			}
			e.mustRun = map[int]*graph.Operation{op.Handle(): op}
			continue
		}

		resourceInputs := make(map[int]struct{})
		for _, in := range op.Inputs() {
			if in.DType() != graph.Resource {
				continue
			}

			// A repeated resource input would give the op a control
			// dependency on itself.
			if _, dup := resourceInputs[in.Handle()]; dup {
				continue
			}
			resourceInputs[in.Handle()] = struct{}{}

			if in.Op().Kind() == "Switch" {
				e.resolveSwitch(ctx, in.Op())
			}
			if last, ok := e.lastUser[in.Handle()]; ok && last.Context() == op.Context() {
				candidates[last.Handle()] = last
			}
			if merge, ok := e.mergeFor[in.Handle()]; ok {
				// The merge must wait for every branch-local consumer
				// before the resource is considered settled.
				merge.AddControlInput(op)
			}
			e.lastUser[in.Handle()] = op
		}

		// Legacy stateful kinds without resource handles are chained after
		// one another so their relative order survives.
		if e.statefulNotExempt(op) && len(resourceInputs) == 0 && op.Context() == nil {
			if prev, ok := e.lastUser[sentinelHandle]; ok {
				op.AddControlInput(prev)
			}
			e.lastUser[sentinelHandle] = op
		}

		for _, c := range candidates {
			if c.Context() == op.Context() {
				op.AddControlInput(c)
			}
		}
	}

	logger.Debug("Engine: pass complete.", "must_run", len(e.mustRun))
	return e.mustRun
}

// resolveSwitch handles a resource-consuming switch. Conditional lowering
// routes every externally accessed tensor through a switch and each branch
// result through a merge; a resource forwarded into a branch gets no merge
// of its own, so the engine synthesizes one over both switch outputs and
// places it in the switch's outer context, where it becomes visible once
// the conditional closes. The synthesized merge:
//
//  1. always runs, so the switch is resolved even if neither branch touches
//     the resource again;
//  2. waits for every branch-local user of the switch outputs (enforced as
//     consumers are scanned, via mergeFor);
//  3. stands in as the resource's last user, so anything after the
//     conditional waits for the taken branch to finish.
//
// Resolution is memoized by switch output handle; re-invoking on a resolved
// switch is a no-op. Chained switches (nested conditionals on the same
// resource) are resolved innermost-first by recursing on the input.
func (e *engine) resolveSwitch(ctx context.Context, sw *graph.Operation) {
	in := sw.Inputs()[0]
	if in.DType() == graph.Resource && in.Op().Kind() == "Switch" {
		e.resolveSwitch(ctx, in.Op())
	}

	out := sw.Outputs()[0]
	if _, resolved := e.mergeFor[out.Handle()]; resolved {
		return
	}

	merge, err := e.g.ArtificialMerge(sw.Outputs(), sw.Context().Outer())
	if err != nil {
		// Switch outputs are always non-empty; this is unreachable.
		panic(err)
	}
	ctxlog.FromContext(ctx).Debug("Engine: synthesized merge for switch.",
		"switch", sw.Name(), "merge", merge.Name())

	// The merge runs unconditionally.
	e.mustRun[merge.Handle()] = merge

	// Branch entry waits for the last pre-conditional use of the resource.
	if last, ok := e.lastUser[in.Handle()]; ok {
		sw.AddControlInput(last)
	}

	// The next use of the resource outside the conditional waits for the
	// merge, i.e. for the taken branch.
	e.lastUser[in.Handle()] = merge

	// If the switch input is itself tracked by a merge (a conditional
	// nested in a conditional), that outer merge cannot settle before this
	// one does.
	if prior, ok := e.mergeFor[in.Handle()]; ok {
		prior.AddControlInput(merge)
	}

	for _, o := range sw.Outputs() {
		e.mergeFor[o.Handle()] = merge
	}
}
