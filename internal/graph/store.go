// Package graph holds the dependency graph contract and its traversal.
package graph

import (
	"context"
	"slices"
	"sync"

	"github.com/g30r93g/PRereq/internal/models"
)

// EdgeLookup answers "who depends on this node".
type EdgeLookup interface {
	InboundOf(ctx context.Context, node models.PRRef) ([]models.PRRef, error)
}

// Store maps each dependent to its outbound dependency edges.
//
// ReplaceEdges swaps the whole outbound set of a dependent atomically; it never
// merges with edges written earlier. Reads return an empty result for unknown
// nodes and report errors only for persistence failures. Results are sorted by
// owner, repo and number.
type Store interface {
	EdgeLookup
	ReplaceEdges(ctx context.Context, dependent models.PRRef, dependencies []models.PRRef) error
	OutboundOf(ctx context.Context, node models.PRRef) ([]models.PRRef, error)
	ListEdges(ctx context.Context) ([]models.Edge, error)
}

var _ Store = (*MemoryStore)(nil)

// MemoryStore is a Store kept in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	outbound map[models.PRRef]map[models.PRRef]struct{}
	inbound  map[models.PRRef]map[models.PRRef]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		outbound: make(map[models.PRRef]map[models.PRRef]struct{}),
		inbound:  make(map[models.PRRef]map[models.PRRef]struct{}),
	}
}

func (s *MemoryStore) ReplaceEdges(ctx context.Context, dependent models.PRRef, dependencies []models.PRRef) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for dep := range s.outbound[dependent] {
		delete(s.inbound[dep], dependent)
		if len(s.inbound[dep]) == 0 {
			delete(s.inbound, dep)
		}
	}
	delete(s.outbound, dependent)

	if len(dependencies) == 0 {
		return nil
	}

	out := make(map[models.PRRef]struct{}, len(dependencies))
	for _, dep := range dependencies {
		out[dep] = struct{}{}
		if s.inbound[dep] == nil {
			s.inbound[dep] = make(map[models.PRRef]struct{})
		}
		s.inbound[dep][dependent] = struct{}{}
	}
	s.outbound[dependent] = out
	return nil
}

func (s *MemoryStore) OutboundOf(_ context.Context, node models.PRRef) ([]models.PRRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.outbound[node]), nil
}

func (s *MemoryStore) InboundOf(_ context.Context, node models.PRRef) ([]models.PRRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.inbound[node]), nil
}

func (s *MemoryStore) ListEdges(_ context.Context) ([]models.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var edges []models.Edge
	for dependent, deps := range s.outbound {
		for dep := range deps {
			edges = append(edges, models.Edge{Dependent: dependent, Dependency: dep})
		}
	}
	SortEdges(edges)
	return edges, nil
}

// SortEdges orders edges by dependent, then dependency.
func SortEdges(edges []models.Edge) {
	slices.SortFunc(edges, func(a, b models.Edge) int {
		if c := models.ComparePRRef(a.Dependent, b.Dependent); c != 0 {
			return c
		}
		return models.ComparePRRef(a.Dependency, b.Dependency)
	})
}

func sortedKeys(set map[models.PRRef]struct{}) []models.PRRef {
	refs := make([]models.PRRef, 0, len(set))
	for r := range set {
		refs = append(refs, r)
	}
	slices.SortFunc(refs, models.ComparePRRef)
	return refs
}
