// Package cache memoizes dependency status lookups.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/g30r93g/PRereq/internal/logger"
	"github.com/g30r93g/PRereq/internal/models"
	"github.com/g30r93g/PRereq/internal/vcs"
)

// Cache remembers merged dependencies. Merged is terminal; every other status
// always goes to the wrapped lookup. One Cache may back many lookups.
type Cache struct {
	merged *expirable.LRU[models.PRRef, struct{}]
}

// New returns nil when size is zero, which disables caching.
func New(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		return nil
	}
	return &Cache{merged: expirable.NewLRU[models.PRRef, struct{}](size, nil, ttl)}
}

// Wrap decorates next. A nil Cache returns next unchanged.
func (c *Cache) Wrap(next vcs.StatusLookup) vcs.StatusLookup {
	if c == nil || next == nil {
		return next
	}
	return &StatusCache{next: next, cache: c}
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.merged.Len()
}


var _ vcs.StatusLookup = (*StatusCache)(nil)

type StatusCache struct {
	next  vcs.StatusLookup
	cache *Cache
}

func (s *StatusCache) DependencyStatus(ctx context.Context, ref models.PRRef) (models.DepStatus, error) {
	if _, ok := s.cache.merged.Get(ref); ok {
		logger.Debug(ctx, "status cache hit", "dependency", ref.String())
		return models.StatusMerged, nil
	}

	status, err := s.next.DependencyStatus(ctx, ref)
	if err != nil {
		return status, err
	}

	if status == models.StatusMerged {
		s.cache.merged.Add(ref, struct{}{})
		logger.Debug(ctx, "merged status cached", "dependency", ref.String(), "entries", s.cache.Len())
	}
	return status, nil
}
