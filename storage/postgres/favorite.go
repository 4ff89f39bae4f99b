package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/markdstafford/realworld/core"
	"github.com/markdstafford/realworld/storage"
)

// FavoriteRepository implements storage.FavoriteRepository on PostgreSQL.
// The (user_id, article_id) unique index backs idempotence.
type FavoriteRepository struct {
	db *gorm.DB
}

var _ storage.FavoriteRepository = (*FavoriteRepository)(nil)

// NewFavoriteRepository creates a new FavoriteRepository.
func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Favorite records that the user favorited the article. A duplicate insert
// is swallowed, so favoriting twice is a no-op.
func (r *FavoriteRepository) Favorite(ctx context.Context, user *core.User, article *core.Article) error {
	fav, err := core.NewArticleFavorite(user, article)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(fav).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return translate(err)
	}
	return nil
}

// Unfavorite removes the user's favorite of the article; no-op if absent.
func (r *FavoriteRepository) Unfavorite(ctx context.Context, user *core.User, article *core.Article) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND article_id = ?", user.ID, article.ID).
		Delete(&core.ArticleFavorite{}).Error
	return translate(err)
}

// IsFavorite reports whether the user has favorited the article.
func (r *FavoriteRepository) IsFavorite(ctx context.Context, user *core.User, article *core.Article) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&core.ArticleFavorite{}).
		Where("user_id = ? AND article_id = ?", user.ID, article.ID).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

// CountByArticle returns how many users have favorited the article.
func (r *FavoriteRepository) CountByArticle(ctx context.Context, article *core.Article) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&core.ArticleFavorite{}).
		Where("article_id = ?", article.ID).
		Count(&count).Error
	if err != nil {
		return 0, translate(err)
	}
	return int(count), nil
}

// FindByArticle returns every favorite recorded for the article.
func (r *FavoriteRepository) FindByArticle(ctx context.Context, article *core.Article) ([]*core.ArticleFavorite, error) {
	var results []*core.ArticleFavorite
	err := r.db.WithContext(ctx).
		Where("article_id = ?", article.ID).
		Find(&results).Error
	if err != nil {
		return nil, translate(err)
	}
	return results, nil
}

// FindArticleIDsByUser returns the IDs of every article the user favorited.
func (r *FavoriteRepository) FindArticleIDsByUser(ctx context.Context, user *core.User) ([]core.ID, error) {
	var ids []core.ID
	err := r.db.WithContext(ctx).
		Model(&core.ArticleFavorite{}).
		Where("user_id = ?", user.ID).
		Pluck("article_id", &ids).Error
	if err != nil {
		return nil, translate(err)
	}
	return ids, nil
}

// DeleteByArticle removes every favorite recorded for the article.
func (r *FavoriteRepository) DeleteByArticle(ctx context.Context, article *core.Article) error {
	err := r.db.WithContext(ctx).
		Where("article_id = ?", article.ID).
		Delete(&core.ArticleFavorite{}).Error
	return translate(err)
}
