package badger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/markdstafford/realworld/core"
	"github.com/markdstafford/realworld/storage"
)

// ArticleRepository implements storage.ArticleRepository for BadgerDB.
// Article documents are keyed by ID; slug and title uniqueness is enforced
// through index keys, and the listing query walks a creation-time index in
// reverse so results come back newest first without sorting.
type ArticleRepository struct {
	backend     *Backend
	seq         *SequenceGenerator
	users       storage.UserRepository
	tags        storage.TagRepository
	articleTags storage.ArticleTagRepository
	favorites   storage.FavoriteRepository
	comments    storage.CommentRepository
}

var _ storage.ArticleRepository = (*ArticleRepository)(nil)

// NewArticleRepository creates a new ArticleRepository.
func NewArticleRepository(
	backend *Backend,
	seq *SequenceGenerator,
	users storage.UserRepository,
	tags storage.TagRepository,
	articleTags storage.ArticleTagRepository,
	favorites storage.FavoriteRepository,
	comments storage.CommentRepository,
) *ArticleRepository {
	return &ArticleRepository{
		backend:     backend,
		seq:         seq,
		users:       users,
		tags:        tags,
		articleTags: articleTags,
		favorites:   favorites,
		comments:    comments,
	}
}

// Save persists article attributes, assigning an ID when the article has
// none. Tag associations are not touched.
func (r *ArticleRepository) Save(ctx context.Context, article *core.Article) (*core.Article, error) {
	if article == nil {
		return nil, core.ErrInvalidArticle
	}
	if article.ID == 0 {
		next, err := r.seq.Next(ctx, articleSeq)
		if err != nil {
			return nil, err
		}
		article.ID = core.ID(next)
	} else if err := r.seq.EnsureAtLeast(ctx, articleSeq, int64(article.ID)); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeArticleKey(article.ID)

		old, err := readArticle(tx, key)
		if err != nil {
			return err
		}

		if err := checkOwnedArticleIndex(tx, makeArticleBySlugKey(article.Slug), article.ID); err != nil {
			return fmt.Errorf("slug %q: %w", article.Slug, err)
		}
		if err := checkOwnedArticleIndex(tx, makeArticleByTitleKey(article.Title), article.ID); err != nil {
			return fmt.Errorf("title %q: %w", article.Title, err)
		}

		if old != nil {
			if old.Slug != article.Slug {
				if err := tx.Delete(makeArticleBySlugKey(old.Slug)); err != nil {
					return err
				}
			}
			if old.Title != article.Title {
				if err := tx.Delete(makeArticleByTitleKey(old.Title)); err != nil {
					return err
				}
			}
		}

		if err := tx.Set(key, storage.MarshalArticle(article)); err != nil {
			return err
		}
		if err := tx.Set(makeArticleBySlugKey(article.Slug), storage.MarshalID(article.ID)); err != nil {
			return err
		}
		if err := tx.Set(makeArticleByTitleKey(article.Title), storage.MarshalID(article.ID)); err != nil {
			return err
		}
		if err := tx.Set(makeArticleDateKey(article.CreatedAt, article.ID), storage.MarshalID(article.ID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return article, nil
}

// SaveWithTags persists article attributes, then replaces the article's
// tag associations with the given set.
func (r *ArticleRepository) SaveWithTags(ctx context.Context, article *core.Article, tags []*core.Tag) (*core.Article, error) {
	saved, err := r.Save(ctx, article)
	if err != nil {
		return nil, err
	}
	return r.articleTags.ReplaceTags(ctx, saved, tags)
}

// FindBySlug retrieves an article through the slug index.
func (r *ArticleRepository) FindBySlug(ctx context.Context, slug string) (*core.Article, error) {
	var result *core.Article
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeArticleBySlugKey(slug))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: article %q", storage.ErrNotFound, slug)
			}
			return err
		}

		var id core.ID
		if err := item.Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = readArticle(tx, makeArticleKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("%w: article %q", storage.ErrNotFound, slug)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return r.hydrate(ctx, result)
}

// ExistsByTitle reports whether an article with the title exists.
func (r *ArticleRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var exists bool
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeArticleByTitleKey(title))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	}, false)
	return exists, err
}

// FindAll evaluates the multi-facet listing query. Facets combine as a
// union: an article matches when any present facet accepts it. A facet
// naming an unknown author, tag or favoriter accepts nothing.
func (r *ArticleRepository) FindAll(ctx context.Context, facets core.ArticleFacets) ([]*core.Article, error) {
	hasFacets := facets.Author != "" || facets.Tag != "" || facets.Favorited != ""

	var authorID string
	if facets.Author != "" {
		author, err := r.users.FindByUsername(ctx, facets.Author)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		if author != nil {
			authorID = author.ID
		}
	}

	tagged := make(map[core.ID]struct{})
	if facets.Tag != "" {
		tag, err := r.tags.FindByName(ctx, facets.Tag)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		if tag != nil {
			associations, err := r.articleTags.FindByTag(ctx, tag)
			if err != nil {
				return nil, err
			}
			for _, at := range associations {
				tagged[at.ArticleID] = struct{}{}
			}
		}
	}

	favorited := make(map[core.ID]struct{})
	if facets.Favorited != "" {
		favoriter, err := r.users.FindByUsername(ctx, facets.Favorited)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		if favoriter != nil {
			ids, err := r.favorites.FindArticleIDsByUser(ctx, favoriter)
			if err != nil {
				return nil, err
			}
			for _, id := range ids {
				favorited[id] = struct{}{}
			}
		}
	}

	match := func(a *core.Article) bool {
		if !hasFacets {
			return true
		}
		if facets.Author != "" && authorID != "" && a.AuthorID == authorID {
			return true
		}
		if _, ok := tagged[a.ID]; ok {
			return true
		}
		if _, ok := favorited[a.ID]; ok {
			return true
		}
		return false
	}

	return r.scanNewestFirst(ctx, match, facets.Offset(), facets.Limit())
}

// FindByAuthors returns articles authored by any of the given users,
// newest first.
func (r *ArticleRepository) FindByAuthors(ctx context.Context, authors []*core.User, facets core.ArticleFacets) ([]*core.Article, error) {
	authorIDs := make(map[string]struct{}, len(authors))
	for _, author := range authors {
		if author != nil && author.ID != "" {
			authorIDs[author.ID] = struct{}{}
		}
	}
	if len(authorIDs) == 0 {
		return nil, nil
	}

	match := func(a *core.Article) bool {
		_, ok := authorIDs[a.AuthorID]
		return ok
	}
	return r.scanNewestFirst(ctx, match, facets.Offset(), facets.Limit())
}

// FindArticleDetails attaches the favorite count.
func (r *ArticleRepository) FindArticleDetails(ctx context.Context, article *core.Article) (*core.ArticleDetails, error) {
	count, err := r.favorites.CountByArticle(ctx, article)
	if err != nil {
		return nil, err
	}
	return &core.ArticleDetails{Article: article, TotalFavorites: count}, nil
}

// FindArticleDetailsFor attaches the favorite count and the viewer's
// favorite flag.
func (r *ArticleRepository) FindArticleDetailsFor(ctx context.Context, viewer *core.User, article *core.Article) (*core.ArticleDetails, error) {
	details, err := r.FindArticleDetails(ctx, article)
	if err != nil {
		return nil, err
	}
	details.Favorited, err = r.favorites.IsFavorite(ctx, viewer, article)
	if err != nil {
		return nil, err
	}
	return details, nil
}

// Delete removes the article and everything referencing it. References go
// first so the article ID is never reusable while associations still point
// at it.
func (r *ArticleRepository) Delete(ctx context.Context, article *core.Article) error {
	if err := r.articleTags.DeleteByArticle(ctx, article); err != nil {
		return err
	}
	if err := r.comments.DeleteByArticle(ctx, article); err != nil {
		return err
	}
	if err := r.favorites.DeleteByArticle(ctx, article); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeArticleKey(article.ID)); err != nil {
			return err
		}
		if err := tx.Delete(makeArticleBySlugKey(article.Slug)); err != nil {
			return err
		}
		if err := tx.Delete(makeArticleByTitleKey(article.Title)); err != nil {
			return err
		}
		if err := tx.Delete(makeArticleDateKey(article.CreatedAt, article.ID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// scanNewestFirst walks the creation-time index in reverse, applying match
// to each article, skipping offset matches and returning up to limit.
func (r *ArticleRepository) scanNewestFirst(ctx context.Context, match func(*core.Article) bool, offset, limit int) ([]*core.Article, error) {
	var results []*core.Article
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := []byte(articleDatePrefix + ":")

		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek past every possible timestamp so the reverse walk starts at
		// the newest entry.
		seek := makePartialArticleDateKey(time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC))

		skipped := 0
		for iter.Seek(seek); iter.Valid(); iter.Next() {
			item := iter.Item()
			if !bytes.HasPrefix(item.Key(), prefix) {
				break
			}

			var id core.ID
			if err := item.Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			article, err := readArticle(tx, makeArticleKey(id))
			if err != nil {
				return err
			}
			if article == nil || !match(article) {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}

			results = append(results, article)
			if len(results) >= limit {
				break
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	for _, article := range results {
		if _, err := r.hydrate(ctx, article); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// hydrate resolves the article's author and tag associations.
func (r *ArticleRepository) hydrate(ctx context.Context, article *core.Article) (*core.Article, error) {
	author, err := r.users.FindByID(ctx, article.AuthorID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	article.Author = author

	associations, err := r.articleTags.FindByArticle(ctx, article)
	if err != nil {
		return nil, err
	}
	article.Tags = article.Tags[:0]
	for _, at := range associations {
		article.Tags = append(article.Tags, *at)
	}
	return article, nil
}

// checkOwnedArticleIndex returns ErrDuplicateKey when the index entry
// exists and references a different article.
func checkOwnedArticleIndex(tx *badger.Txn, indexKey []byte, id core.ID) error {
	item, err := tx.Get(indexKey)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	}
	return item.Value(func(val []byte) error {
		owner, err := storage.UnmarshalID(val)
		if err != nil {
			return err
		}
		if owner != id {
			return storage.ErrDuplicateKey
		}
		return nil
	})
}

// readArticle reads an article document, returning nil when absent.
func readArticle(tx *badger.Txn, key []byte) (*core.Article, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var article *core.Article
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		article, unmarshalErr = storage.UnmarshalArticle(val)
		return unmarshalErr
	})
	return article, err
}
