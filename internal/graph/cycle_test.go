package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/g30r93g/PRereq/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookupFunc func(ctx context.Context, node models.PRRef) ([]models.PRRef, error)

func (f lookupFunc) InboundOf(ctx context.Context, node models.PRRef) ([]models.PRRef, error) {
	return f(ctx, node)
}

func storeWith(t *testing.T, edges map[int][]int) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	for dependent, deps := range edges {
		refs := make([]models.PRRef, len(deps))
		for i, d := range deps {
			refs[i] = ref(d)
		}
		require.NoError(t, s.ReplaceEdges(context.Background(), ref(dependent), refs))
	}
	return s
}

func TestDetectCycle_ThreeNodeCycleFromEveryNode(t *testing.T) {
	// A→B, B→C, C→A
	s := storeWith(t, map[int][]int{1: {2}, 2: {3}, 3: {1}})

	for _, start := range []int{1, 2, 3} {
		res, err := DetectCycle(context.Background(), ref(start), s)

		require.NoError(t, err)
		assert.Equal(t, models.CycleFound, res.Kind, "start %d", start)
		require.Len(t, res.Path, 4)
		assert.Equal(t, res.Path[0], res.Path[len(res.Path)-1])
		assert.Equal(t, ref(start), res.Path[0])
	}
}

func TestDetectCycle_PathFollowsInboundDirection(t *testing.T) {
	s := storeWith(t, map[int][]int{1: {2}, 2: {3}, 3: {1}})

	res, err := DetectCycle(context.Background(), ref(1), s)

	require.NoError(t, err)
	assert.Equal(t, []models.PRRef{ref(1), ref(3), ref(2), ref(1)}, res.Path)
}

func TestDetectCycle_SelfLoop(t *testing.T) {
	s := storeWith(t, map[int][]int{1: {1}})

	res, err := DetectCycle(context.Background(), ref(1), s)

	require.NoError(t, err)
	assert.True(t, res.HasCycle())
	assert.Equal(t, []models.PRRef{ref(1), ref(1)}, res.Path)
}

func TestDetectCycle_NoCycle(t *testing.T) {
	// diamond: 2 and 3 depend on 1, 4 depends on 2 and 3
	s := storeWith(t, map[int][]int{2: {1}, 3: {1}, 4: {2, 3}})

	res, err := DetectCycle(context.Background(), ref(1), s)

	require.NoError(t, err)
	assert.Equal(t, models.CycleNone, res.Kind)
	assert.Empty(t, res.Path)
}

func TestDetectCycle_UnknownStart(t *testing.T) {
	res, err := DetectCycle(context.Background(), ref(42), NewMemoryStore())

	require.NoError(t, err)
	assert.Equal(t, models.CycleNone, res.Kind)
}

func TestDetectCycle_CycleNotThroughStart(t *testing.T) {
	// 2 depends on 1; 3 and 2 depend on each other
	s := storeWith(t, map[int][]int{2: {1, 3}, 3: {2}})

	res, err := DetectCycle(context.Background(), ref(1), s)

	require.NoError(t, err)
	assert.Equal(t, models.CycleFound, res.Kind)
	assert.Equal(t, []models.PRRef{ref(2), ref(3), ref(2)}, res.Path)
}

func TestDetectCycle_LongChainExceedsBudget(t *testing.T) {
	// node i depends on node i-1, so the inbound walk from 0 is 500 deep
	edges := make(map[int][]int, 500)
	for i := 1; i < 500; i++ {
		edges[i] = []int{i - 1}
	}
	s := storeWith(t, edges)

	res, err := DetectCycle(context.Background(), ref(0), s, WithMaxNodes(200))

	require.NoError(t, err)
	assert.Equal(t, models.CycleBudgetExceeded, res.Kind)
	assert.False(t, res.HasCycle())
	require.Len(t, res.Path, 202)
	assert.Equal(t, ref(0), res.Path[0])
	assert.Equal(t, ref(0), res.Path[len(res.Path)-1])
}

func TestDetectCycle_ChainWithinBudget(t *testing.T) {
	edges := make(map[int][]int, 150)
	for i := 1; i < 150; i++ {
		edges[i] = []int{i - 1}
	}
	s := storeWith(t, edges)

	res, err := DetectCycle(context.Background(), ref(0), s)

	require.NoError(t, err)
	assert.Equal(t, models.CycleNone, res.Kind)
}

func TestDetectCycle_VisitedBranchesArePruned(t *testing.T) {
	calls := map[models.PRRef]int{}
	inbound := map[models.PRRef][]models.PRRef{
		ref(1): {ref(2), ref(3)},
		ref(2): {ref(4)},
		ref(3): {ref(4)},
	}
	lookup := lookupFunc(func(_ context.Context, node models.PRRef) ([]models.PRRef, error) {
		calls[node]++
		return inbound[node], nil
	})

	res, err := DetectCycle(context.Background(), ref(1), lookup)

	require.NoError(t, err)
	assert.Equal(t, models.CycleNone, res.Kind)
	assert.Equal(t, 1, calls[ref(4)])
}

func TestDetectCycle_LookupErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")
	lookup := lookupFunc(func(context.Context, models.PRRef) ([]models.PRRef, error) {
		return nil, boom
	})

	_, err := DetectCycle(context.Background(), ref(1), lookup)

	assert.ErrorIs(t, err, boom)
}

func TestDetectCycle_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DetectCycle(ctx, ref(1), NewMemoryStore())

	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithMaxNodes_IgnoresNonPositive(t *testing.T) {
	o := cycleOptions{maxNodes: DefaultMaxNodes}
	WithMaxNodes(0)(&o)
	WithMaxNodes(-5)(&o)
	assert.Equal(t, DefaultMaxNodes, o.maxNodes)

	WithMaxNodes(7)(&o)
	assert.Equal(t, 7, o.maxNodes)
}
