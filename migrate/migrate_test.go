package migrate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdstafford/realworld"
	"github.com/markdstafford/realworld/core"
)

func TestNewCopier_RequiresStores(t *testing.T) {
	store, err := realworld.Open(realworld.WithInMemory())
	require.NoError(t, err)
	defer store.Close()

	_, err = NewCopier(nil, store)
	assert.ErrorIs(t, err, ErrSourceRequired)

	_, err = NewCopier(store, nil)
	assert.ErrorIs(t, err, ErrDestinationRequired)
}

func TestCopierRun(t *testing.T) {
	src, err := realworld.Open(realworld.WithInMemory())
	require.NoError(t, err)
	defer src.Close()

	dst, err := realworld.Open(realworld.WithInMemory())
	require.NoError(t, err)
	defer dst.Close()

	ctx := context.Background()

	jake, err := core.NewUser("jake@example.com", "jake", "password123")
	require.NoError(t, err)
	_, err = src.Users.Save(ctx, jake)
	require.NoError(t, err)

	anah, err := core.NewUser("anah@example.com", "anah", "password123")
	require.NoError(t, err)
	_, err = src.Users.Save(ctx, anah)
	require.NoError(t, err)

	require.NoError(t, src.Follows.Follow(ctx, anah, jake))

	article, err := core.NewArticle(jake, "How to train your dragon", "Ever wonder how?", "You have to believe")
	require.NoError(t, err)
	dragons, err := core.NewTag("dragons")
	require.NoError(t, err)
	_, err = src.Articles.SaveWithTags(ctx, article, []*core.Tag{dragons})
	require.NoError(t, err)

	require.NoError(t, src.Favorites.Favorite(ctx, anah, article))

	comment, err := core.NewArticleComment(anah, article, "Great article!")
	require.NoError(t, err)
	_, err = src.Comments.Save(ctx, comment)
	require.NoError(t, err)

	copier, err := NewCopier(src, dst, WithPoolSize(2))
	require.NoError(t, err)
	defer copier.Release()

	report, err := copier.Run(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 2, report.Users)
	assert.EqualValues(t, 1, report.Tags)
	assert.EqualValues(t, 1, report.Follows)
	assert.EqualValues(t, 1, report.Articles)
	assert.EqualValues(t, 1, report.Comments)
	assert.EqualValues(t, 1, report.Favorites)

	// The copy preserves identity and relationships.
	copied, err := dst.Articles.FindBySlug(ctx, "how-to-train-your-dragon")
	require.NoError(t, err)
	assert.Equal(t, article.ID, copied.ID)
	assert.Equal(t, []string{"dragons"}, copied.TagNames())

	details, err := dst.Articles.FindArticleDetailsFor(ctx, anah, copied)
	require.NoError(t, err)
	assert.Equal(t, 1, details.TotalFavorites)
	assert.True(t, details.Favorited)

	comments, err := dst.Comments.FindByArticle(ctx, copied)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Great article!", comments[0].Content)

	following, err := dst.Follows.FindFollowing(ctx, anah)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "jake", following[0].Username)

	// Sequences in the destination continue past the copied identities.
	fresh, err := core.NewArticle(jake, "A brand new article", "desc", "content")
	require.NoError(t, err)
	saved, err := dst.Articles.Save(ctx, fresh)
	require.NoError(t, err)
	assert.Greater(t, int64(saved.ID), int64(article.ID))
}

func TestCopierRun_EmptySource(t *testing.T) {
	src, err := realworld.Open(realworld.WithInMemory())
	require.NoError(t, err)
	defer src.Close()

	dst, err := realworld.Open(realworld.WithInMemory())
	require.NoError(t, err)
	defer dst.Close()

	copier, err := NewCopier(src, dst)
	require.NoError(t, err)
	defer copier.Release()

	report, err := copier.Run(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 0, report.Users)
	assert.EqualValues(t, 0, report.Articles)
}
