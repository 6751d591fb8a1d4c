// internal/adapter/storage/cache.go

package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"localvibe/internal/domain/experience"
)

// Lister is the listing half of experience.Store
type Lister interface {
	ListExperiences(ctx context.Context, q experience.ListQuery) ([]experience.Experience, error)
}

// CachedSource keeps recent listings in memory in front of a Lister
type CachedSource struct {
	lister Lister
	cache  *cache.Cache
}

// NewCachedSource creates a listing cache with the given TTL
func NewCachedSource(lister Lister, ttl, cleanupInterval time.Duration) *CachedSource {
	return &CachedSource{
		lister: lister,
		cache:  cache.New(ttl, cleanupInterval),
	}
}

// ListExperiences returns a cached listing or loads and caches it. Failed
// loads are not cached.
func (c *CachedSource) ListExperiences(ctx context.Context, q experience.ListQuery) ([]experience.Experience, error) {
	key := cacheKey(q)
	if cached, found := c.cache.Get(key); found {
		if list, ok := cached.([]experience.Experience); ok {
			return list, nil
		}
	}

	list, err := c.lister.ListExperiences(ctx, q)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, list, cache.DefaultExpiration)
	return list, nil
}

// FetchExperiences implements experience.Fetcher
func (c *CachedSource) FetchExperiences(ctx context.Context, q experience.ListQuery) ([]experience.Experience, error) {
	return c.ListExperiences(ctx, q)
}

// Invalidate drops every cached listing
func (c *CachedSource) Invalidate() {
	c.cache.Flush()
}

// Len returns the number of cached listings
func (c *CachedSource) Len() int {
	return c.cache.ItemCount()
}

func cacheKey(q experience.ListQuery) string {
	return fmt.Sprintf("list:%s|%s|%s|%d|%d",
		strings.ToLower(strings.TrimSpace(q.City)),
		strings.ToLower(strings.TrimSpace(q.Category)),
		strings.ToLower(strings.TrimSpace(q.Search)),
		q.Limit,
		q.Offset,
	)
}
