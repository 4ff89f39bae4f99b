package badger

import "github.com/markdstafford/realworld/storage"

// Repositories bundles every repository backed by a single BadgerDB
// instance. The repositories share one sequence generator so copied-in
// documents with pre-assigned identities stay collision-free.
type Repositories struct {
	Sequences   *SequenceGenerator
	Users       storage.UserRepository
	Tags        storage.TagRepository
	ArticleTags storage.ArticleTagRepository
	Favorites   storage.FavoriteRepository
	Follows     storage.FollowRepository
	Comments    storage.CommentRepository
	Articles    storage.ArticleRepository
}

// NewRepositories wires the full repository set on the backend.
func NewRepositories(backend *Backend) *Repositories {
	seq := NewSequenceGenerator(backend)
	users := NewUserRepository(backend)
	tags := NewTagRepository(backend)
	articleTags := NewArticleTagRepository(backend, seq, tags)
	favorites := NewFavoriteRepository(backend, seq)
	follows := NewFollowRepository(backend, seq, users)
	comments := NewCommentRepository(backend, seq, users)
	articles := NewArticleRepository(backend, seq, users, tags, articleTags, favorites, comments)

	return &Repositories{
		Sequences:   seq,
		Users:       users,
		Tags:        tags,
		ArticleTags: articleTags,
		Favorites:   favorites,
		Follows:     follows,
		Comments:    comments,
		Articles:    articles,
	}
}
