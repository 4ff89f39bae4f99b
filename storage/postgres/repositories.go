package postgres

import (
	"gorm.io/gorm"

	"github.com/markdstafford/realworld/storage"
)

// Repositories bundles every repository backed by a single PostgreSQL
// connection.
type Repositories struct {
	Users       storage.UserRepository
	Tags        storage.TagRepository
	ArticleTags storage.ArticleTagRepository
	Favorites   storage.FavoriteRepository
	Follows     storage.FollowRepository
	Comments    storage.CommentRepository
	Articles    storage.ArticleRepository
}

// NewRepositories wires the full repository set on the connection.
func NewRepositories(db *gorm.DB) *Repositories {
	users := NewUserRepository(db)
	tags := NewTagRepository(db)
	articleTags := NewArticleTagRepository(db, tags)
	favorites := NewFavoriteRepository(db)
	follows := NewFollowRepository(db)
	comments := NewCommentRepository(db)
	articles := NewArticleRepository(db, users, tags, articleTags, favorites, comments)

	return &Repositories{
		Users:       users,
		Tags:        tags,
		ArticleTags: articleTags,
		Favorites:   favorites,
		Follows:     follows,
		Comments:    comments,
		Articles:    articles,
	}
}
