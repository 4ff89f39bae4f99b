package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/markdstafford/realworld/core"
	"github.com/markdstafford/realworld/storage"
)

// CommentRepository implements storage.CommentRepository on PostgreSQL.
type CommentRepository struct {
	db *gorm.DB
}

var _ storage.CommentRepository = (*CommentRepository)(nil)

// NewCommentRepository creates a new CommentRepository.
func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Save persists the comment.
func (r *CommentRepository) Save(ctx context.Context, comment *core.ArticleComment) (*core.ArticleComment, error) {
	if comment == nil {
		return nil, core.ErrInvalidComment
	}
	if err := r.db.WithContext(ctx).Save(comment).Error; err != nil {
		return nil, translate(err)
	}
	return comment, nil
}

// FindByID returns the comment with the given ID.
func (r *CommentRepository) FindByID(ctx context.Context, id core.ID) (*core.ArticleComment, error) {
	var comment core.ArticleComment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ?", id).
		First(&comment).Error
	if err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

// FindByArticle returns the article's comments oldest first.
func (r *CommentRepository) FindByArticle(ctx context.Context, article *core.Article) ([]*core.ArticleComment, error) {
	var results []*core.ArticleComment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("article_id = ?", article.ID).
		Order("created_at ASC").
		Find(&results).Error
	if err != nil {
		return nil, translate(err)
	}
	return results, nil
}

// Delete removes the comment.
func (r *CommentRepository) Delete(ctx context.Context, comment *core.ArticleComment) error {
	err := r.db.WithContext(ctx).Delete(&core.ArticleComment{}, comment.ID).Error
	return translate(err)
}

// DeleteByArticle removes every comment on the article.
func (r *CommentRepository) DeleteByArticle(ctx context.Context, article *core.Article) error {
	err := r.db.WithContext(ctx).
		Where("article_id = ?", article.ID).
		Delete(&core.ArticleComment{}).Error
	return translate(err)
}
