// Package migrate copies the full contents of one store into another.
// Backends are interchangeable, so this is how data moves between the
// document and relational stores. Identities are preserved; the document
// backend raises its sequences past every copied ID so later inserts
// cannot collide.
package migrate

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"

	"github.com/markdstafford/realworld"
	"github.com/markdstafford/realworld/core"
)

// Copier copies every entity from a source store to a destination store.
// Users, tags and follows are copied serially first; articles and their
// dependents fan out over a worker pool.
type Copier struct {
	src    *realworld.Store
	dst    *realworld.Store
	pool   *ants.Pool
	logger *slog.Logger
}

// Option configures a Copier.
type Option func(*Copier) error

// WithPoolSize sets the worker pool size for the article fan-out.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(c *Copier) error {
		if size < 1 {
			size = 1
		}
		if c.pool != nil {
			c.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		c.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Copier) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewCopier creates a Copier from src to dst.
func NewCopier(src, dst *realworld.Store, opts ...Option) (*Copier, error) {
	if src == nil {
		return nil, ErrSourceRequired
	}
	if dst == nil {
		return nil, ErrDestinationRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	c := &Copier{
		src:    src,
		dst:    dst,
		pool:   pool,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(c); optErr != nil {
			c.Release()
			return nil, optErr
		}
	}
	return c, nil
}

// Report counts what a Run copied.
type Report struct {
	Users     int64
	Tags      int64
	Follows   int64
	Articles  int64
	Comments  int64
	Favorites int64
}

// Run copies everything. Users, tags and follows go first because every
// other entity references them; each article then carries its tag
// associations, comments and favorites with it. The first error stops the
// article fan-out and is returned alongside the partial report.
func (c *Copier) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	users, err := c.src.Users.FindAll(ctx)
	if err != nil {
		return report, err
	}
	for _, user := range users {
		if _, err := c.dst.Users.Save(ctx, user); err != nil {
			return report, err
		}
		report.Users++
	}

	tags, err := c.src.Tags.FindAll(ctx)
	if err != nil {
		return report, err
	}
	for _, tag := range tags {
		if _, _, err := c.dst.Tags.Upsert(ctx, tag); err != nil {
			return report, err
		}
		report.Tags++
	}

	for _, user := range users {
		following, err := c.src.Follows.FindFollowing(ctx, user)
		if err != nil {
			return report, err
		}
		for _, followed := range following {
			if err := c.dst.Follows.Follow(ctx, user, followed); err != nil {
				return report, err
			}
			report.Follows++
		}
	}

	if err := c.copyArticles(ctx, report); err != nil {
		return report, err
	}
	return report, nil
}

// Release releases the worker pool. The copier should not be used after
// calling Release.
func (c *Copier) Release() {
	if c.pool != nil {
		c.pool.Release()
	}
}

func (c *Copier) copyArticles(ctx context.Context, report *Report) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}
	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

	facets := core.ArticleFacets{Size: 50}
	for page := 0; ; page++ {
		facets.Page = page
		articles, err := c.src.Articles.FindAll(ctx, facets)
		if err != nil {
			return err
		}
		if len(articles) == 0 {
			break
		}

		for _, article := range articles {
			if failed() {
				break
			}
			wg.Add(1)
			if err := c.pool.Submit(func() {
				defer wg.Done()
				if err := c.copyArticle(ctx, article, report); err != nil {
					c.logger.Error("error copying article", "slug", article.Slug, "err", err)
					fail(err)
				}
			}); err != nil {
				wg.Done()
				fail(err)
				break
			}
		}

		if len(articles) < facets.Limit() {
			break
		}
	}

	wg.Wait()
	mu.Lock()
	defer mu.Unlock()
	return firstErr
}

func (c *Copier) copyArticle(ctx context.Context, article *core.Article, report *Report) error {
	favorites, err := c.src.Favorites.FindByArticle(ctx, article)
	if err != nil {
		return err
	}
	comments, err := c.src.Comments.FindByArticle(ctx, article)
	if err != nil {
		return err
	}

	tags := make([]*core.Tag, 0, len(article.Tags))
	for i := range article.Tags {
		at := article.Tags[i]
		if at.Tag != nil {
			tags = append(tags, at.Tag)
			continue
		}
		tags = append(tags, &core.Tag{Name: at.TagName, CreatedAt: at.CreatedAt})
	}

	if _, err := c.dst.Articles.SaveWithTags(ctx, article, tags); err != nil {
		return err
	}
	atomic.AddInt64(&report.Articles, 1)

	for _, fav := range favorites {
		if err := c.dst.Favorites.Favorite(ctx, &core.User{ID: fav.UserID}, article); err != nil {
			return err
		}
		atomic.AddInt64(&report.Favorites, 1)
	}
	for _, comment := range comments {
		if _, err := c.dst.Comments.Save(ctx, comment); err != nil {
			return err
		}
		atomic.AddInt64(&report.Comments, 1)
	}
	return nil
}
