package graph

import (
	"context"
	"fmt"

	"github.com/g30r93g/PRereq/internal/models"
)

// DefaultMaxNodes bounds how many nodes one cycle search may expand.
const DefaultMaxNodes = 200

type cycleOptions struct {
	maxNodes int
}

type CycleOption func(*cycleOptions)

// WithMaxNodes overrides DefaultMaxNodes. Non-positive values are ignored.
func WithMaxNodes(n int) CycleOption {
	return func(o *cycleOptions) {
		if n > 0 {
			o.maxNodes = n
		}
	}
}

// DetectCycle walks the inbound relation depth-first from start and reports
// the first node revisited while still on the active path.
//
// The returned path is the suffix of the active path that loops, closed with
// the revisited node, e.g. A → B → C → A. It is the first cycle found in
// traversal order, not necessarily the shortest. When more than the allowed
// number of nodes would be expanded the search stops with
// CycleBudgetExceeded and the partial path followed by start.
//
// Lookup errors abort the search and are returned.
func DetectCycle(ctx context.Context, start models.PRRef, lookup EdgeLookup, opts ...CycleOption) (models.CycleResult, error) {
	o := cycleOptions{maxNodes: DefaultMaxNodes}
	for _, opt := range opts {
		opt(&o)
	}

	t := &traversal{
		ctx:      ctx,
		lookup:   lookup,
		start:    start,
		maxNodes: o.maxNodes,
		visited:  make(map[models.PRRef]struct{}),
		onPath:   make(map[models.PRRef]int),
	}
	return t.visit(start)
}

// traversal is the state of one DetectCycle call; it is never shared.
type traversal struct {
	ctx      context.Context
	lookup   EdgeLookup
	start    models.PRRef
	maxNodes int

	visited  map[models.PRRef]struct{}
	onPath   map[models.PRRef]int // node -> index in path
	path     []models.PRRef
	explored int
}

func (t *traversal) visit(node models.PRRef) (models.CycleResult, error) {
	if idx, ok := t.onPath[node]; ok {
		cycle := make([]models.PRRef, 0, len(t.path)-idx+1)
		cycle = append(cycle, t.path[idx:]...)
		cycle = append(cycle, node)
		return models.CycleResult{Kind: models.CycleFound, Path: cycle}, nil
	}
	if _, ok := t.visited[node]; ok {
		return models.CycleResult{Kind: models.CycleNone}, nil
	}

	t.visited[node] = struct{}{}
	t.onPath[node] = len(t.path)
	t.path = append(t.path, node)

	t.explored++
	if t.explored > t.maxNodes {
		partial := make([]models.PRRef, 0, len(t.path)+1)
		partial = append(partial, t.path...)
		partial = append(partial, t.start)
		return models.CycleResult{Kind: models.CycleBudgetExceeded, Path: partial}, nil
	}

	if err := t.ctx.Err(); err != nil {
		return models.CycleResult{}, err
	}

	next, err := t.lookup.InboundOf(t.ctx, node)
	if err != nil {
		return models.CycleResult{}, fmt.Errorf("lookup dependents of %s: %w", node, err)
	}

	for _, n := range next {
		res, err := t.visit(n)
		if err != nil {
			return models.CycleResult{}, err
		}
		if res.Kind != models.CycleNone {
			return res, nil
		}
	}

	t.path = t.path[:len(t.path)-1]
	delete(t.onPath, node)
	return models.CycleResult{Kind: models.CycleNone}, nil
}
