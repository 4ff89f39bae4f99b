package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/markdstafford/realworld/core"
	"github.com/markdstafford/realworld/storage"
)

// CommentRepository implements storage.CommentRepository for BadgerDB.
// Comment documents are keyed by ID with a secondary index keyed by
// (article, comment) so per-article listings come back oldest first.
type CommentRepository struct {
	backend *Backend
	seq     *SequenceGenerator
	users   storage.UserRepository
}

var _ storage.CommentRepository = (*CommentRepository)(nil)

// NewCommentRepository creates a new CommentRepository.
func NewCommentRepository(backend *Backend, seq *SequenceGenerator, users storage.UserRepository) *CommentRepository {
	return &CommentRepository{backend: backend, seq: seq, users: users}
}

// Save persists the comment, assigning it an ID when it has none.
func (r *CommentRepository) Save(ctx context.Context, comment *core.ArticleComment) (*core.ArticleComment, error) {
	if comment == nil {
		return nil, core.ErrInvalidComment
	}
	if comment.ID == 0 {
		next, err := r.seq.Next(ctx, commentSeq)
		if err != nil {
			return nil, err
		}
		comment.ID = core.ID(next)
	} else if err := r.seq.EnsureAtLeast(ctx, commentSeq, int64(comment.ID)); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeCommentKey(comment.ID), storage.MarshalArticleComment(comment)); err != nil {
			return err
		}
		if err := tx.Set(makeCommentByArticleKey(comment.ArticleID, comment.ID), storage.MarshalID(comment.ID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// FindByID returns the comment with the given ID.
func (r *CommentRepository) FindByID(ctx context.Context, id core.ID) (*core.ArticleComment, error) {
	var result *core.ArticleComment
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCommentKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: comment %d", storage.ErrNotFound, id)
		}
		if err != nil {
			return err
		}
		result, err = readComment(item)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return r.hydrateAuthor(ctx, result)
}

// FindByArticle returns the article's comments oldest first.
func (r *CommentRepository) FindByArticle(ctx context.Context, article *core.Article) ([]*core.ArticleComment, error) {
	var results []*core.ArticleComment
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeCommentByArticlePrefix(article.ID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var commentID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				commentID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			item, err := tx.Get(makeCommentKey(commentID))
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			comment, err := readComment(item)
			if err != nil {
				return err
			}
			results = append(results, comment)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	for _, comment := range results {
		if _, err := r.hydrateAuthor(ctx, comment); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// Delete removes the comment.
func (r *CommentRepository) Delete(ctx context.Context, comment *core.ArticleComment) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeCommentKey(comment.ID)); err != nil {
			return err
		}
		if err := tx.Delete(makeCommentByArticleKey(comment.ArticleID, comment.ID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// DeleteByArticle removes every comment on the article.
func (r *CommentRepository) DeleteByArticle(ctx context.Context, article *core.Article) error {
	comments, err := r.FindByArticle(ctx, article)
	if err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, comment := range comments {
			if err := tx.Delete(makeCommentKey(comment.ID)); err != nil {
				return err
			}
			if err := tx.Delete(makeCommentByArticleKey(comment.ArticleID, comment.ID)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

func (r *CommentRepository) hydrateAuthor(ctx context.Context, comment *core.ArticleComment) (*core.ArticleComment, error) {
	author, err := r.users.FindByID(ctx, comment.AuthorID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	comment.Author = author
	return comment, nil
}

func readComment(item *badger.Item) (*core.ArticleComment, error) {
	var comment *core.ArticleComment
	err := item.Value(func(val []byte) error {
		var unmarshalErr error
		comment, unmarshalErr = storage.UnmarshalArticleComment(val)
		return unmarshalErr
	})
	return comment, err
}
