package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/markdstafford/realworld/core"
	"github.com/markdstafford/realworld/storage"
)

// ArticleTagRepository implements storage.ArticleTagRepository for
// BadgerDB. Association documents are keyed by (article, tag) with a
// secondary index keyed by (tag, article) for the tag facet.
type ArticleTagRepository struct {
	backend *Backend
	seq     *SequenceGenerator
	tags    storage.TagRepository
}

var _ storage.ArticleTagRepository = (*ArticleTagRepository)(nil)

// NewArticleTagRepository creates a new ArticleTagRepository.
func NewArticleTagRepository(backend *Backend, seq *SequenceGenerator, tags storage.TagRepository) *ArticleTagRepository {
	return &ArticleTagRepository{
		backend: backend,
		seq:     seq,
		tags:    tags,
	}
}

// ReplaceTags makes the article's association set exactly the desired tag
// set. There is no cross-document transaction: tags are upserted first,
// stale associations deleted second, missing ones inserted last, so a
// crash between steps leaves fewer associations rather than duplicates.
func (r *ArticleTagRepository) ReplaceTags(ctx context.Context, article *core.Article, tags []*core.Tag) (*core.Article, error) {
	if article == nil || article.ID == 0 {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidArticleTag, core.ErrUnknownArticle)
	}

	// Step 1: every desired tag exists in the catalog.
	desired := make(map[string]*core.Tag, len(tags))
	for _, tag := range tags {
		upserted, _, err := r.tags.Upsert(ctx, tag)
		if err != nil {
			return nil, err
		}
		desired[upserted.Name] = upserted
	}

	existing, err := r.FindByArticle(ctx, article)
	if err != nil {
		return nil, err
	}
	current := make(map[string]*core.ArticleTag, len(existing))
	for _, at := range existing {
		current[at.TagName] = at
	}

	// Step 2: delete stale associations.
	err = r.backend.WithTx(func(tx *badger.Txn) error {
		for name := range current {
			if _, keep := desired[name]; keep {
				continue
			}
			if err := tx.Delete(makeArticleTagKey(article.ID, name)); err != nil {
				return err
			}
			if err := tx.Delete(makeArticleTagByTagKey(name, article.ID)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	// Step 3: insert missing associations. Already-correct ones are left
	// untouched so their identity and timestamps survive.
	for name, tag := range desired {
		if _, ok := current[name]; ok {
			continue
		}
		at, err := core.NewArticleTag(article, tag)
		if err != nil {
			return nil, err
		}
		next, err := r.seq.Next(ctx, articleTagSeq)
		if err != nil {
			return nil, err
		}
		at.ID = core.ID(next)

		err = r.backend.WithTx(func(tx *badger.Txn) error {
			if err := tx.Set(makeArticleTagKey(at.ArticleID, at.TagName), storage.MarshalArticleTag(at)); err != nil {
				return err
			}
			if err := tx.Set(makeArticleTagByTagKey(at.TagName, at.ArticleID), storage.MarshalID(at.ArticleID)); err != nil {
				return err
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return nil, err
		}
	}

	// Step 4: refresh the article's association set.
	refreshed, err := r.FindByArticle(ctx, article)
	if err != nil {
		return nil, err
	}
	article.Tags = article.Tags[:0]
	for _, at := range refreshed {
		article.Tags = append(article.Tags, *at)
	}
	return article, nil
}

// FindByArticle returns the article's associations with their tags resolved.
func (r *ArticleTagRepository) FindByArticle(ctx context.Context, article *core.Article) ([]*core.ArticleTag, error) {
	var results []*core.ArticleTag
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makeArticleTagPrefix(article.ID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			at, err := readArticleTag(iter.Item())
			if err != nil {
				return err
			}
			tag, err := readTag(tx, makeTagKey(at.TagName))
			if err != nil {
				return err
			}
			at.Tag = tag
			results = append(results, at)
		}
		return nil
	}, false)
	return results, err
}

// FindByTag returns every association referencing the tag.
func (r *ArticleTagRepository) FindByTag(ctx context.Context, tag *core.Tag) ([]*core.ArticleTag, error) {
	var results []*core.ArticleTag
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makeArticleTagByTagPrefix(tag.Name)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var articleID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				articleID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			item, err := tx.Get(makeArticleTagKey(articleID, tag.Name))
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			at, err := readArticleTag(item)
			if err != nil {
				return err
			}
			results = append(results, at)
		}
		return nil
	}, false)
	return results, err
}

// DeleteByArticle removes every association for the article.
func (r *ArticleTagRepository) DeleteByArticle(ctx context.Context, article *core.Article) error {
	existing, err := r.FindByArticle(ctx, article)
	if err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, at := range existing {
			if err := tx.Delete(makeArticleTagKey(at.ArticleID, at.TagName)); err != nil {
				return err
			}
			if err := tx.Delete(makeArticleTagByTagKey(at.TagName, at.ArticleID)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

func readArticleTag(item *badger.Item) (*core.ArticleTag, error) {
	var at *core.ArticleTag
	err := item.Value(func(val []byte) error {
		var unmarshalErr error
		at, unmarshalErr = storage.UnmarshalArticleTag(val)
		return unmarshalErr
	})
	return at, err
}
