package storage

import (
	"context"

	"github.com/markdstafford/realworld/core"
)

// SequenceGenerator issues monotonically increasing integer identities for
// entities whose backend has no native auto-increment. Implemented by the
// document backend only; the relational backend assigns identity natively.
type SequenceGenerator interface {
	// Next atomically increments and returns the counter for name.
	// The first call for a name returns 1. Safe under concurrent callers:
	// the increment is a single atomic read-modify-write at the store,
	// never an application-level read-then-write.
	Next(ctx context.Context, name string) (int64, error)
}

// UserRepository is the user directory. The article repositories consult it
// to resolve facet usernames and author references; they never mutate user
// state through it.
type UserRepository interface {
	// Save inserts or updates a user. Duplicate email or username returns
	// ErrDuplicateKey.
	Save(ctx context.Context, user *core.User) (*core.User, error)

	// FindByID retrieves a user by ID. Returns ErrNotFound if absent.
	FindByID(ctx context.Context, id string) (*core.User, error)

	// FindByUsername retrieves a user by username. Returns ErrNotFound if absent.
	FindByUsername(ctx context.Context, username string) (*core.User, error)

	// FindByEmail retrieves a user by email. Returns ErrNotFound if absent.
	FindByEmail(ctx context.Context, email string) (*core.User, error)

	// FindAll returns every user.
	FindAll(ctx context.Context) ([]*core.User, error)

	// ExistsBy reports whether any user has the given email or username.
	ExistsBy(ctx context.Context, email, username string) (bool, error)

	// UpdateUserDetails applies profile changes to an existing user.
	// Blank parameters leave the corresponding field untouched; a non-blank
	// password is hashed before storage. Fails fast with ErrNotFound when
	// the target does not exist, and with ErrDuplicateKey when the new
	// email or username belongs to another user.
	UpdateUserDetails(ctx context.Context, id, email, username, password, bio, imageURL string) (*core.User, error)
}

// TagRepository is the upsert-by-name tag catalog. Tags are shared across
// articles and never deleted by unlinking.
type TagRepository interface {
	// Upsert returns the existing tag untouched (timestamps not bumped)
	// when one with the same name exists, reporting created=false;
	// otherwise it inserts the tag and reports created=true. The created
	// flag is the cache invalidation event for FindAll.
	Upsert(ctx context.Context, tag *core.Tag) (t *core.Tag, created bool, err error)

	// FindByName retrieves a tag by name. Returns ErrNotFound if absent.
	FindByName(ctx context.Context, name string) (*core.Tag, error)

	// FindAll returns every known tag. Read far more often than written;
	// see CachedTagRepository.
	FindAll(ctx context.Context) ([]*core.Tag, error)
}

// ArticleTagRepository maintains the many-to-many join between articles
// and tags.
type ArticleTagRepository interface {
	// ReplaceTags makes the article's association set exactly the given
	// tags: each tag is upserted through the catalog, stale associations
	// are deleted, missing ones are created, and already-correct ones are
	// left untouched. Idempotent. Steps run in that order so that a crash
	// mid-way leaves fewer associations rather than duplicates. Returns
	// the article with its association set refreshed.
	ReplaceTags(ctx context.Context, article *core.Article, tags []*core.Tag) (*core.Article, error)

	// FindByArticle returns the article's associations.
	FindByArticle(ctx context.Context, article *core.Article) ([]*core.ArticleTag, error)

	// FindByTag returns every association referencing the tag.
	FindByTag(ctx context.Context, tag *core.Tag) ([]*core.ArticleTag, error)

	// DeleteByArticle removes all associations for the article. Cascade
	// helper used when an article is deleted.
	DeleteByArticle(ctx context.Context, article *core.Article) error
}

// FavoriteRepository records which users favorited which articles.
type FavoriteRepository interface {
	// Favorite records the (user, article) pair. Favoriting an already
	// favorited article is a no-op; the pair can never exist twice.
	Favorite(ctx context.Context, user *core.User, article *core.Article) error

	// Unfavorite removes the pair if present; no-op if absent.
	Unfavorite(ctx context.Context, user *core.User, article *core.Article) error

	// IsFavorite reports whether the pair exists.
	IsFavorite(ctx context.Context, user *core.User, article *core.Article) (bool, error)

	// CountByArticle returns the number of users who favorited the article.
	CountByArticle(ctx context.Context, article *core.Article) (int, error)

	// FindByArticle returns every favorite referencing the article.
	FindByArticle(ctx context.Context, article *core.Article) ([]*core.ArticleFavorite, error)

	// FindArticleIDsByUser returns the IDs of the articles the user
	// favorited. Used by the facet query.
	FindArticleIDsByUser(ctx context.Context, user *core.User) ([]core.ID, error)

	// DeleteByArticle removes all favorites referencing the article.
	DeleteByArticle(ctx context.Context, article *core.Article) error
}

// FollowRepository records directed follower → following edges.
type FollowRepository interface {
	// Follow records the edge. Following an already followed user is a no-op.
	Follow(ctx context.Context, follower, following *core.User) error

	// Unfollow removes the edge if present; no-op if absent.
	Unfollow(ctx context.Context, follower, following *core.User) error

	// IsFollowing reports whether the edge exists.
	IsFollowing(ctx context.Context, follower, following *core.User) (bool, error)

	// FindFollowing returns the users the follower follows. Used to build
	// the personalized feed via ArticleRepository.FindByAuthors.
	FindFollowing(ctx context.Context, follower *core.User) ([]*core.User, error)
}

// CommentRepository stores comments on articles.
type CommentRepository interface {
	// Save inserts a comment. The author must be a persisted user.
	Save(ctx context.Context, comment *core.ArticleComment) (*core.ArticleComment, error)

	// FindByID retrieves a comment by ID. Returns ErrNotFound if absent.
	FindByID(ctx context.Context, id core.ID) (*core.ArticleComment, error)

	// FindByArticle returns the article's comments, oldest first.
	FindByArticle(ctx context.Context, article *core.Article) ([]*core.ArticleComment, error)

	// Delete removes a single comment.
	Delete(ctx context.Context, comment *core.ArticleComment) error

	// DeleteByArticle removes all comments referencing the article.
	DeleteByArticle(ctx context.Context, article *core.Article) error
}

// ArticleRepository is the facade the rest of the system depends on. It
// composes the tag catalog, association manager, favorite ledger and
// comment store with the raw article storage.
type ArticleRepository interface {
	// Save persists article attributes only; tag associations are not
	// touched. The author must already be a persisted user. Duplicate slug
	// or title returns ErrDuplicateKey.
	Save(ctx context.Context, article *core.Article) (*core.Article, error)

	// SaveWithTags persists article attributes, then replaces the
	// article's tag associations with the given set.
	SaveWithTags(ctx context.Context, article *core.Article, tags []*core.Tag) (*core.Article, error)

	// FindBySlug retrieves an article by slug. Returns ErrNotFound if absent.
	FindBySlug(ctx context.Context, slug string) (*core.Article, error)

	// ExistsByTitle reports whether an article with the title exists.
	ExistsByTitle(ctx context.Context, title string) (bool, error)

	// FindAll evaluates the multi-facet listing query. Each present facet
	// contributes one clause; an article matches if it satisfies any
	// clause, so combined facets yield the union, not the intersection.
	// A facet naming an unknown author, tag or favoriter
	// contributes a clause that never matches; it does not fall back to
	// unfiltered. With zero facets every article is returned. Results are
	// ordered by creation time descending and paginated by the facets'
	// 0-indexed page and size.
	FindAll(ctx context.Context, facets core.ArticleFacets) ([]*core.Article, error)

	// FindByAuthors returns articles whose author is in the given set,
	// creation time descending, paginated. Plain membership filter,
	// independent of the OR-facet logic.
	FindByAuthors(ctx context.Context, authors []*core.User, facets core.ArticleFacets) ([]*core.Article, error)

	// FindArticleDetails attaches the favorite count, with no
	// viewer-specific flag.
	FindArticleDetails(ctx context.Context, article *core.Article) (*core.ArticleDetails, error)

	// FindArticleDetailsFor attaches the favorite count and whether the
	// viewer favorited the article.
	FindArticleDetailsFor(ctx context.Context, viewer *core.User, article *core.Article) (*core.ArticleDetails, error)

	// Delete removes the article and everything referencing it, in order:
	// tag associations, comments, favorites, then the article record. The
	// references must be gone before the parent so a crash mid-sequence
	// never leaves an association pointing at a reusable article ID.
	Delete(ctx context.Context, article *core.Article) error
}
