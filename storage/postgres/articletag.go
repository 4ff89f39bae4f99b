package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/markdstafford/realworld/core"
	"github.com/markdstafford/realworld/storage"
)

// ArticleTagRepository implements storage.ArticleTagRepository on
// PostgreSQL. The (article_id, tag_name) unique index backs the
// no-duplicate-association invariant.
type ArticleTagRepository struct {
	db   *gorm.DB
	tags storage.TagRepository
}

var _ storage.ArticleTagRepository = (*ArticleTagRepository)(nil)

// NewArticleTagRepository creates a new ArticleTagRepository.
func NewArticleTagRepository(db *gorm.DB, tags storage.TagRepository) *ArticleTagRepository {
	return &ArticleTagRepository{db: db, tags: tags}
}

// ReplaceTags makes the article's association set exactly the desired tag
// set. Tags are upserted through the catalog first so its cache sees new
// names; the association diff then runs in one transaction.
func (r *ArticleTagRepository) ReplaceTags(ctx context.Context, article *core.Article, tags []*core.Tag) (*core.Article, error) {
	if article == nil || article.ID == 0 {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidArticleTag, core.ErrUnknownArticle)
	}

	desired := make(map[string]*core.Tag, len(tags))
	for _, tag := range tags {
		upserted, _, err := r.tags.Upsert(ctx, tag)
		if err != nil {
			return nil, err
		}
		desired[upserted.Name] = upserted
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []core.ArticleTag
		if err := tx.Where("article_id = ?", article.ID).Find(&existing).Error; err != nil {
			return err
		}
		current := make(map[string]struct{}, len(existing))
		for _, at := range existing {
			current[at.TagName] = struct{}{}
		}

		var stale []string
		for name := range current {
			if _, keep := desired[name]; !keep {
				stale = append(stale, name)
			}
		}
		if len(stale) > 0 {
			err := tx.Where("article_id = ? AND tag_name IN ?", article.ID, stale).
				Delete(&core.ArticleTag{}).Error
			if err != nil {
				return err
			}
		}

		for name, tag := range desired {
			if _, ok := current[name]; ok {
				continue
			}
			at, err := core.NewArticleTag(article, tag)
			if err != nil {
				return err
			}
			if err := tx.Create(at).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}

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
	err := r.db.WithContext(ctx).
		Preload("Tag").
		Where("article_id = ?", article.ID).
		Find(&results).Error
	if err != nil {
		return nil, translate(err)
	}
	return results, nil
}

// FindByTag returns every association referencing the tag.
func (r *ArticleTagRepository) FindByTag(ctx context.Context, tag *core.Tag) ([]*core.ArticleTag, error) {
	var results []*core.ArticleTag
	err := r.db.WithContext(ctx).
		Where("tag_name = ?", tag.Name).
		Find(&results).Error
	if err != nil {
		return nil, translate(err)
	}
	return results, nil
}

// DeleteByArticle removes every association for the article.
func (r *ArticleTagRepository) DeleteByArticle(ctx context.Context, article *core.Article) error {
	err := r.db.WithContext(ctx).
		Where("article_id = ?", article.ID).
		Delete(&core.ArticleTag{}).Error
	return translate(err)
}
