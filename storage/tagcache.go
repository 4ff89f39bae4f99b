package storage

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/markdstafford/realworld/core"
)

const allTagsCacheKey = "tags:all"

// DefaultTagCacheTTL bounds staleness when tags are introduced by another
// process sharing the same store.
const DefaultTagCacheTTL = 5 * time.Minute

type tagCacheEntry struct {
	tags      []*core.Tag
	expiresAt time.Time
}

// CachedTagRepository is a process-wide read-through cache over a
// TagRepository. Tags change rarely and are read far more often than
// written; the cached FindAll result is invalidated exactly when an Upsert
// introduces a genuinely new tag.
type CachedTagRepository struct {
	inner TagRepository
	cache *lru.Cache[string, tagCacheEntry]
	ttl   time.Duration
}

var _ TagRepository = (*CachedTagRepository)(nil)

// NewCachedTagRepository wraps inner with a TTL-bounded FindAll cache.
// A ttl <= 0 falls back to DefaultTagCacheTTL.
func NewCachedTagRepository(inner TagRepository, ttl time.Duration) (*CachedTagRepository, error) {
	if ttl <= 0 {
		ttl = DefaultTagCacheTTL
	}
	cache, err := lru.New[string, tagCacheEntry](8)
	if err != nil {
		return nil, err
	}
	return &CachedTagRepository{
		inner: inner,
		cache: cache,
		ttl:   ttl,
	}, nil
}

// Upsert delegates to the inner repository and drops the cached tag list
// when a new tag was introduced.
func (r *CachedTagRepository) Upsert(ctx context.Context, tag *core.Tag) (*core.Tag, bool, error) {
	t, created, err := r.inner.Upsert(ctx, tag)
	if err == nil && created {
		r.cache.Remove(allTagsCacheKey)
	}
	return t, created, err
}

// FindByName delegates to the inner repository. Single-tag lookups are not
// cached; only the full listing is hot.
func (r *CachedTagRepository) FindByName(ctx context.Context, name string) (*core.Tag, error) {
	return r.inner.FindByName(ctx, name)
}

// FindAll returns the cached tag list, reading through on miss or expiry.
func (r *CachedTagRepository) FindAll(ctx context.Context) ([]*core.Tag, error) {
	if entry, ok := r.cache.Get(allTagsCacheKey); ok {
		if time.Now().Before(entry.expiresAt) {
			return entry.tags, nil
		}
		r.cache.Remove(allTagsCacheKey)
	}

	tags, err := r.inner.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.Add(allTagsCacheKey, tagCacheEntry{
		tags:      tags,
		expiresAt: time.Now().Add(r.ttl),
	})
	return tags, nil
}
