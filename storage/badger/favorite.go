package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/markdstafford/realworld/core"
	"github.com/markdstafford/realworld/storage"
)

// FavoriteRepository implements storage.FavoriteRepository for BadgerDB.
// Ledger documents are keyed by (user, article) with a secondary index
// keyed by (article, user) for per-article counts and listings.
type FavoriteRepository struct {
	backend *Backend
	seq     *SequenceGenerator
}

var _ storage.FavoriteRepository = (*FavoriteRepository)(nil)

// NewFavoriteRepository creates a new FavoriteRepository.
func NewFavoriteRepository(backend *Backend, seq *SequenceGenerator) *FavoriteRepository {
	return &FavoriteRepository{backend: backend, seq: seq}
}

// Favorite records that the user favorited the article. Favoriting an
// article the user already favorited is a no-op.
func (r *FavoriteRepository) Favorite(ctx context.Context, user *core.User, article *core.Article) error {
	exists, err := r.IsFavorite(ctx, user, article)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	fav, err := core.NewArticleFavorite(user, article)
	if err != nil {
		return err
	}
	next, err := r.seq.Next(ctx, favoriteSeq)
	if err != nil {
		return err
	}
	fav.ID = core.ID(next)

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeFavoriteKey(fav.UserID, fav.ArticleID), storage.MarshalArticleFavorite(fav)); err != nil {
			return err
		}
		if err := tx.Set(makeFavoriteByArticleKey(fav.ArticleID, fav.UserID), []byte(fav.UserID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Unfavorite removes the user's favorite of the article. Unfavoriting an
// article the user never favorited is a no-op.
func (r *FavoriteRepository) Unfavorite(ctx context.Context, user *core.User, article *core.Article) error {
	exists, err := r.IsFavorite(ctx, user, article)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeFavoriteKey(user.ID, article.ID)); err != nil {
			return err
		}
		if err := tx.Delete(makeFavoriteByArticleKey(article.ID, user.ID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// IsFavorite reports whether the user has favorited the article.
func (r *FavoriteRepository) IsFavorite(ctx context.Context, user *core.User, article *core.Article) (bool, error) {
	var exists bool
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeFavoriteKey(user.ID, article.ID))
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

// CountByArticle returns how many users have favorited the article.
func (r *FavoriteRepository) CountByArticle(ctx context.Context, article *core.Article) (int, error) {
	var count int
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeFavoriteByArticlePrefix(article.ID)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// FindByArticle returns every favorite recorded for the article.
func (r *FavoriteRepository) FindByArticle(ctx context.Context, article *core.Article) ([]*core.ArticleFavorite, error) {
	var results []*core.ArticleFavorite
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeFavoriteByArticlePrefix(article.ID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var userID string
			if err := iter.Item().Value(func(val []byte) error {
				userID = string(val)
				return nil
			}); err != nil {
				return err
			}

			item, err := tx.Get(makeFavoriteKey(userID, article.ID))
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			fav, err := readFavorite(item)
			if err != nil {
				return err
			}
			results = append(results, fav)
		}
		return nil
	}, false)
	return results, err
}

// FindArticleIDsByUser returns the IDs of every article the user favorited.
func (r *FavoriteRepository) FindArticleIDsByUser(ctx context.Context, user *core.User) ([]core.ID, error) {
	var ids []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeFavoritePrefix(user.ID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			fav, err := readFavorite(iter.Item())
			if err != nil {
				return err
			}
			ids = append(ids, fav.ArticleID)
		}
		return nil
	}, false)
	return ids, err
}

// DeleteByArticle removes every favorite recorded for the article.
func (r *FavoriteRepository) DeleteByArticle(ctx context.Context, article *core.Article) error {
	favorites, err := r.FindByArticle(ctx, article)
	if err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, fav := range favorites {
			if err := tx.Delete(makeFavoriteKey(fav.UserID, fav.ArticleID)); err != nil {
				return err
			}
			if err := tx.Delete(makeFavoriteByArticleKey(fav.ArticleID, fav.UserID)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

func readFavorite(item *badger.Item) (*core.ArticleFavorite, error) {
	var fav *core.ArticleFavorite
	err := item.Value(func(val []byte) error {
		var unmarshalErr error
		fav, unmarshalErr = storage.UnmarshalArticleFavorite(val)
		return unmarshalErr
	})
	return fav, err
}
