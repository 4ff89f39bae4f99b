package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdstafford/realworld/core"
)

// stubTagRepository counts FindAll calls and treats any tag it has not
// seen before as created.
type stubTagRepository struct {
	tags         map[string]*core.Tag
	findAllCalls int
}

func newStubTagRepository(names ...string) *stubTagRepository {
	s := &stubTagRepository{tags: make(map[string]*core.Tag)}
	for _, name := range names {
		s.tags[name] = &core.Tag{Name: name, CreatedAt: time.Now().UTC()}
	}
	return s
}

func (s *stubTagRepository) Upsert(ctx context.Context, tag *core.Tag) (*core.Tag, bool, error) {
	if existing, ok := s.tags[tag.Name]; ok {
		return existing, false, nil
	}
	s.tags[tag.Name] = tag
	return tag, true, nil
}

func (s *stubTagRepository) FindByName(ctx context.Context, name string) (*core.Tag, error) {
	if tag, ok := s.tags[name]; ok {
		return tag, nil
	}
	return nil, ErrNotFound
}

func (s *stubTagRepository) FindAll(ctx context.Context) ([]*core.Tag, error) {
	s.findAllCalls++
	tags := make([]*core.Tag, 0, len(s.tags))
	for _, tag := range s.tags {
		tags = append(tags, tag)
	}
	return tags, nil
}

func TestCachedTagRepository_FindAllCaches(t *testing.T) {
	inner := newStubTagRepository("dragons", "training")
	cached, err := NewCachedTagRepository(inner, time.Minute)
	require.NoError(t, err)

	ctx := context.Background()

	first, err := cached.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, first, 2)
	assert.Equal(t, 1, inner.findAllCalls)

	// Second read is served from cache.
	second, err := cached.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, second, 2)
	assert.Equal(t, 1, inner.findAllCalls)
}

func TestCachedTagRepository_NewTagInvalidates(t *testing.T) {
	inner := newStubTagRepository("dragons")
	cached, err := NewCachedTagRepository(inner, time.Minute)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = cached.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.findAllCalls)

	// Upserting an existing tag leaves the cache alone.
	_, created, err := cached.Upsert(ctx, &core.Tag{Name: "dragons"})
	require.NoError(t, err)
	assert.False(t, created)

	_, err = cached.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.findAllCalls)

	// A genuinely new tag drops the cached listing.
	_, created, err = cached.Upsert(ctx, &core.Tag{Name: "coffee"})
	require.NoError(t, err)
	assert.True(t, created)

	tags, err := cached.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 2)
	assert.Equal(t, 2, inner.findAllCalls)
}

func TestCachedTagRepository_TTLExpiry(t *testing.T) {
	inner := newStubTagRepository("dragons")
	cached, err := NewCachedTagRepository(inner, 10*time.Millisecond)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = cached.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.findAllCalls)

	time.Sleep(20 * time.Millisecond)

	_, err = cached.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.findAllCalls)
}

func TestCachedTagRepository_FindByNamePassesThrough(t *testing.T) {
	inner := newStubTagRepository("dragons")
	cached, err := NewCachedTagRepository(inner, time.Minute)
	require.NoError(t, err)

	tag, err := cached.FindByName(context.Background(), "dragons")
	require.NoError(t, err)
	assert.Equal(t, "dragons", tag.Name)

	_, err = cached.FindByName(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
