package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/markdstafford/realworld/core"
	"github.com/markdstafford/realworld/storage"
)

// ArticleRepository implements storage.ArticleRepository on PostgreSQL.
type ArticleRepository struct {
	db          *gorm.DB
	users       storage.UserRepository
	tags        storage.TagRepository
	articleTags storage.ArticleTagRepository
	favorites   storage.FavoriteRepository
	comments    storage.CommentRepository
}

var _ storage.ArticleRepository = (*ArticleRepository)(nil)

// NewArticleRepository creates a new ArticleRepository.
func NewArticleRepository(
	db *gorm.DB,
	users storage.UserRepository,
	tags storage.TagRepository,
	articleTags storage.ArticleTagRepository,
	favorites storage.FavoriteRepository,
	comments storage.CommentRepository,
) *ArticleRepository {
	return &ArticleRepository{
		db:          db,
		users:       users,
		tags:        tags,
		articleTags: articleTags,
		favorites:   favorites,
		comments:    comments,
	}
}

// Save persists article attributes only. The schema's unique indexes on
// slug and title surface duplicates as ErrDuplicateKey.
func (r *ArticleRepository) Save(ctx context.Context, article *core.Article) (*core.Article, error) {
	if article == nil {
		return nil, core.ErrInvalidArticle
	}
	err := r.db.WithContext(ctx).
		Omit("Tags", "Author").
		Save(article).Error
	if err != nil {
		return nil, translate(err)
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

// FindBySlug retrieves an article by slug with author and tags loaded.
func (r *ArticleRepository) FindBySlug(ctx context.Context, slug string) (*core.Article, error) {
	var article core.Article
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Tags.Tag").
		Where("slug = ?", slug).
		First(&article).Error
	if err != nil {
		return nil, translate(err)
	}
	return &article, nil
}

// ExistsByTitle reports whether an article with the title exists.
func (r *ArticleRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&core.Article{}).
		Where("title = ?", title).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

// FindAll evaluates the multi-facet listing query. Facets combine as a
// union: an article matches when any present facet accepts it. A facet
// naming an unknown author, tag or favoriter accepts nothing.
func (r *ArticleRepository) FindAll(ctx context.Context, facets core.ArticleFacets) ([]*core.Article, error) {
	db := r.db.WithContext(ctx)
	var clauses []*gorm.DB

	if facets.Author != "" {
		author, err := r.users.FindByUsername(ctx, facets.Author)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		if author != nil {
			clauses = append(clauses, db.Where("author_id = ?", author.ID))
		} else {
			clauses = append(clauses, neverMatch(db))
		}
	}

	if facets.Tag != "" {
		tag, err := r.tags.FindByName(ctx, facets.Tag)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		if tag != nil {
			clauses = append(clauses, db.Where(
				"id IN (?)",
				db.Model(&core.ArticleTag{}).Select("article_id").Where("tag_name = ?", tag.Name),
			))
		} else {
			clauses = append(clauses, neverMatch(db))
		}
	}

	if facets.Favorited != "" {
		favoriter, err := r.users.FindByUsername(ctx, facets.Favorited)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		if favoriter != nil {
			clauses = append(clauses, db.Where(
				"id IN (?)",
				db.Model(&core.ArticleFavorite{}).Select("article_id").Where("user_id = ?", favoriter.ID),
			))
		} else {
			clauses = append(clauses, neverMatch(db))
		}
	}

	query := db.Model(&core.Article{})
	if len(clauses) > 0 {
		cond := clauses[0]
		for _, c := range clauses[1:] {
			cond = cond.Or(c)
		}
		query = query.Where(cond)
	}

	return r.page(query, facets)
}

// FindByAuthors returns articles authored by any of the given users,
// newest first.
func (r *ArticleRepository) FindByAuthors(ctx context.Context, authors []*core.User, facets core.ArticleFacets) ([]*core.Article, error) {
	ids := make([]string, 0, len(authors))
	for _, author := range authors {
		if author != nil && author.ID != "" {
			ids = append(ids, author.ID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	query := r.db.WithContext(ctx).
		Model(&core.Article{}).
		Where("author_id IN ?", ids)
	return r.page(query, facets)
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

// Delete removes the article and everything referencing it in one
// transaction. References go first so the article ID is never reusable
// while associations still point at it.
func (r *ArticleRepository) Delete(ctx context.Context, article *core.Article) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("article_id = ?", article.ID).Delete(&core.ArticleTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", article.ID).Delete(&core.ArticleComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", article.ID).Delete(&core.ArticleFavorite{}).Error; err != nil {
			return err
		}
		return tx.Delete(&core.Article{}, article.ID).Error
	})
	return translate(err)
}

func (r *ArticleRepository) page(query *gorm.DB, facets core.ArticleFacets) ([]*core.Article, error) {
	var results []*core.Article
	err := query.
		Preload("Author").
		Preload("Tags").
		Preload("Tags.Tag").
		Order("created_at DESC").
		Offset(facets.Offset()).
		Limit(facets.Limit()).
		Find(&results).Error
	if err != nil {
		return nil, translate(err)
	}
	return results, nil
}

// neverMatch is the clause contributed by a facet naming an unknown
// author, tag or favoriter. It must stay a clause so it ORs with the
// others instead of erasing the whole filter.
func neverMatch(db *gorm.DB) *gorm.DB {
	return db.Where("1 = 0")
}
