// Package realworld is a persistence layer for a blogging platform. It
// exposes one set of repository contracts over two interchangeable
// backends, a BadgerDB document store and a PostgreSQL relational store,
// so callers never depend on which one is underneath.
package realworld

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/markdstafford/realworld/storage"
	"github.com/markdstafford/realworld/storage/badger"
	"github.com/markdstafford/realworld/storage/postgres"
)

// Backend identifies which store a Store runs on.
type Backend string

const (
	BackendBadger   Backend = "badger"
	BackendPostgres Backend = "postgres"
)

// Store is the assembled persistence layer. The repositories are wired
// against one backend; Tags is wrapped in the read-through cache.
type Store struct {
	backend Backend

	Users       storage.UserRepository
	Tags        storage.TagRepository
	ArticleTags storage.ArticleTagRepository
	Favorites   storage.FavoriteRepository
	Follows     storage.FollowRepository
	Comments    storage.CommentRepository
	Articles    storage.ArticleRepository

	logger *slog.Logger
	close  func() error
}

// Option configures a Store.
type Option func(*storeOptions)

type storeOptions struct {
	backend     Backend
	badgerPath  string
	inMemory    bool
	postgresDSN string
	tagCacheTTL time.Duration
	logger      *slog.Logger
}

// WithBadger selects the BadgerDB backend at the given directory.
func WithBadger(path string) Option {
	return func(o *storeOptions) {
		o.backend = BackendBadger
		o.badgerPath = path
	}
}

// WithInMemory selects an in-memory BadgerDB backend. Used in tests and
// as a scratch store.
func WithInMemory() Option {
	return func(o *storeOptions) {
		o.backend = BackendBadger
		o.inMemory = true
	}
}

// WithPostgres selects the PostgreSQL backend at the given DSN.
func WithPostgres(dsn string) Option {
	return func(o *storeOptions) {
		o.backend = BackendPostgres
		o.postgresDSN = dsn
	}
}

// WithTagCacheTTL overrides how long the cached tag listing stays fresh.
func WithTagCacheTTL(ttl time.Duration) Option {
	return func(o *storeOptions) {
		o.tagCacheTTL = ttl
	}
}

// WithLogger sets the logger used by the store.
func WithLogger(logger *slog.Logger) Option {
	return func(o *storeOptions) {
		o.logger = logger
	}
}

// Open assembles a Store on the selected backend. The default is an
// in-memory BadgerDB store.
func Open(opts ...Option) (*Store, error) {
	options := &storeOptions{
		backend:     BackendBadger,
		inMemory:    true,
		tagCacheTTL: storage.DefaultTagCacheTTL,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	switch options.backend {
	case BackendBadger:
		return openBadger(options)
	case BackendPostgres:
		return openPostgres(options)
	default:
		return nil, fmt.Errorf("unknown backend %q", options.backend)
	}
}

// The cached tag catalog is wired in front of the backend's raw catalog
// before anything depends on it, so upserts flowing through ReplaceTags
// invalidate the cached listing too.
func openBadger(options *storeOptions) (*Store, error) {
	backend, err := badger.OpenBackend(options.badgerPath, options.inMemory)
	if err != nil {
		return nil, err
	}

	tags, err := storage.NewCachedTagRepository(badger.NewTagRepository(backend), options.tagCacheTTL)
	if err != nil {
		backend.Close()
		return nil, err
	}

	seq := badger.NewSequenceGenerator(backend)
	users := badger.NewUserRepository(backend)
	articleTags := badger.NewArticleTagRepository(backend, seq, tags)
	favorites := badger.NewFavoriteRepository(backend, seq)
	comments := badger.NewCommentRepository(backend, seq, users)

	return &Store{
		backend:     BackendBadger,
		Users:       users,
		Tags:        tags,
		ArticleTags: articleTags,
		Favorites:   favorites,
		Follows:     badger.NewFollowRepository(backend, seq, users),
		Comments:    comments,
		Articles:    badger.NewArticleRepository(backend, seq, users, tags, articleTags, favorites, comments),
		logger:      options.logger,
		close:       backend.Close,
	}, nil
}

func openPostgres(options *storeOptions) (*Store, error) {
	db, err := postgres.Open(options.postgresDSN)
	if err != nil {
		return nil, err
	}

	tags, err := storage.NewCachedTagRepository(postgres.NewTagRepository(db), options.tagCacheTTL)
	if err != nil {
		closeGorm(db)
		return nil, err
	}

	users := postgres.NewUserRepository(db)
	articleTags := postgres.NewArticleTagRepository(db, tags)
	favorites := postgres.NewFavoriteRepository(db)
	comments := postgres.NewCommentRepository(db)

	return &Store{
		backend:     BackendPostgres,
		Users:       users,
		Tags:        tags,
		ArticleTags: articleTags,
		Favorites:   favorites,
		Follows:     postgres.NewFollowRepository(db),
		Comments:    comments,
		Articles:    postgres.NewArticleRepository(db, users, tags, articleTags, favorites, comments),
		logger:      options.logger,
		close:       func() error { return closeGorm(db) },
	}, nil
}

// Backend reports which store the repositories run on.
func (s *Store) Backend() Backend {
	return s.backend
}

// Close releases the underlying store.
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	if err := s.close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func closeGorm(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
