// Package autodeps inserts control-only ordering edges into a freshly
// constructed region of a dataflow graph so that program-order semantics
// are preserved for side-effecting operations. Code building a graph inside
// a tracker region behaves as if a sensible set of control dependencies had
// been written by hand: every non-exempt stateful operation in the region
// runs, and mutators of the same resource handle run in construction order,
// including across switch/merge-encoded conditionals.
//
// Creating variables inside a region is not supported (they would be
// reinitialized on every run), and operations inside iterative constructs
// are skipped entirely. Trackers are not safe for concurrent use.
package autodeps

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/vk/graphdeps/internal/ctxlog"
	"github.com/vk/graphdeps/internal/graph"
)

// ErrGraphChanged reports that the active graph's identity changed between
// Begin and End. The region's analysis is aborted and none of its edges are
// valid; construction must be single-threaded per region.
var ErrGraphChanged = errors.New("graph changed while inserting control dependencies")

// Tracker demarcates regions of graph construction and runs the
// dependency-insertion engine over each region at close.
type Tracker struct {
	cfg Config

	active    bool
	g         *graph.Graph
	graphID   uuid.UUID
	numOps    int
	savedAuto bool

	returned []*graph.Tensor

	// opsWhichMustRun accumulates across regions: return values declared in
	// any region are anchored to every must-run operation seen so far.
	opsWhichMustRun map[int]*graph.Operation
}

// NewTracker creates a tracker using the given exemption tables.
func NewTracker(cfg Config) *Tracker {
	return &Tracker{
		cfg:             cfg,
		opsWhichMustRun: make(map[int]*graph.Operation),
	}
}

// Begin opens a region on g: it records the current operation count and
// marks the graph as under automatic dependency insertion, remembering the
// previous setting so nested regions restore it.
func (t *Tracker) Begin(g *graph.Graph) error {
	if t.active {
		return fmt.Errorf("tracker region is already open")
	}
	t.active = true
	t.g = g
	t.graphID = g.ID()
	t.numOps = g.NumOperations()
	t.savedAuto = g.SetAutoControlDeps(true)
	t.returned = nil
	return nil
}

// MarkAsReturn declares value as a return value of the open region and
// returns a replacement to hand to callers. Each leaf tensor is copied
// through a new identity operation: anchoring control edges directly onto
// the original could close a cycle back through a stateful producer, while
// a fresh identity has no outgoing data edge into anything upstream.
//
// Accepted shapes: *graph.Tensor, graph.IndexedSlices, graph.Sparse, and
// graph.TensorList (only the flow token is copied).
func (t *Tracker) MarkAsReturn(value any) (any, error) {
	if !t.active {
		return nil, fmt.Errorf("MarkAsReturn called outside a tracker region")
	}
	switch v := value.(type) {
	case *graph.Tensor:
		return t.wrap(v), nil
	case graph.IndexedSlices:
		return graph.IndexedSlices{
			Values:     t.wrap(v.Values),
			Indices:    t.wrap(v.Indices),
			DenseShape: v.DenseShape,
		}, nil
	case graph.Sparse:
		return graph.Sparse{
			Indices:    t.wrap(v.Indices),
			Values:     t.wrap(v.Values),
			DenseShape: v.DenseShape,
		}, nil
	case graph.TensorList:
		return graph.TensorList{
			Handle: v.Handle,
			Flow:   t.wrap(v.Flow),
		}, nil
	default:
		return nil, fmt.Errorf("cannot mark %T as a return value", value)
	}
}

// wrap identity-copies a tensor and registers the copy as returned.
func (t *Tracker) wrap(tensor *graph.Tensor) *graph.Tensor {
	copied := t.g.Identity(tensor)
	t.returned = append(t.returned, copied)
	return copied
}

// End closes the region: it verifies the graph identity, restores the
// insertion-active flag, runs the engine over the operations constructed
// since Begin, folds the resulting must-run set into the tracker, and
// anchors every declared return value to the must-run operations sharing
// its control-flow context. It returns the region's must-run set in
// construction order.
func (t *Tracker) End(ctx context.Context, g *graph.Graph) ([]*graph.Operation, error) {
	if !t.active {
		return nil, fmt.Errorf("tracker region is not open")
	}
	if g == nil || g.ID() != t.graphID {
		return nil, fmt.Errorf("%w: region opened on graph %s", ErrGraphChanged, t.graphID)
	}
	t.active = false
	g.SetAutoControlDeps(t.savedAuto)

	logger := ctxlog.FromContext(ctx)
	newOps := g.Operations()[t.numOps:]
	logger.Debug("Tracker: closing region.", "region_ops", len(newOps), "returned", len(t.returned))

	eng := newEngine(g, t.cfg)
	mustRun := eng.run(ctx, newOps)

	for handle, op := range mustRun {
		t.opsWhichMustRun[handle] = op
	}

	for _, r := range t.returned {
		for _, op := range t.opsWhichMustRun {
			if op.Context() == r.Op().Context() {
				r.Op().AddControlInput(op)
			}
		}
	}

	result := make([]*graph.Operation, 0, len(mustRun))
	for _, op := range mustRun {
		result = append(result, op)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Handle() < result[j].Handle() })

	logger.Debug("Tracker: region closed.", "must_run", len(result))
	return result, nil
}

// OpsWhichMustRun returns every must-run operation accumulated across all
// closed regions, in construction order.
func (t *Tracker) OpsWhichMustRun() []*graph.Operation {
	result := make([]*graph.Operation, 0, len(t.opsWhichMustRun))
	for _, op := range t.opsWhichMustRun {
		result = append(result, op)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Handle() < result[j].Handle() })
	return result
}
