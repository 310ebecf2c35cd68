package memory

import (
	"context"
	"time"

	"github.com/Gunvolt24/autoagent/internal/domain"
	"github.com/Gunvolt24/autoagent/internal/ports"
)

var _ ports.SearchCache = (*SearchCache)(nil)

// SearchCache — кэш результатов поиска поверх LRUCacheTTL; хранит и отдаёт копии.
type SearchCache struct {
	lru *LRUCacheTTL[domain.SearchResult]
}

// NewSearchCache — создать кэш результатов поиска.
func NewSearchCache(capacity int, ttl time.Duration, opts ...Option[domain.SearchResult]) *SearchCache {
	opts = append([]Option[domain.SearchResult]{WithClone(domain.SearchResult.Clone)}, opts...)
	return &SearchCache{lru: NewLRUCacheTTL(capacity, ttl, opts...)}
}

func (c *SearchCache) Get(_ context.Context, key string) (domain.SearchResult, bool) {
	return c.lru.Get(key)
}

func (c *SearchCache) Set(_ context.Context, key string, result domain.SearchResult) {
	c.lru.Set(key, result)
}

func (c *SearchCache) Has(_ context.Context, key string) bool {
	return c.lru.Has(key)
}

func (c *SearchCache) Len() int {
	return c.lru.Len()
}
