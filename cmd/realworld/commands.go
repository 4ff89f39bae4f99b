package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/markdstafford/realworld"
	"github.com/markdstafford/realworld/core"
	"github.com/markdstafford/realworld/migrate"
)

func seedCommand(c *cli.Context) error {
	store, err := openStore(c.String("backend"), c.String("db"), c.String("dsn"))
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	count, err := seed(ctx, store)
	if err != nil {
		return err
	}

	slog.Info("seed complete", "articles", count)
	return nil
}

func articlesCommand(c *cli.Context) error {
	store, err := openStore(c.String("backend"), c.String("db"), c.String("dsn"))
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	facets := core.ArticleFacets{
		Page:      c.Int("page"),
		Size:      c.Int("size"),
		Author:    c.String("author"),
		Tag:       c.String("tag"),
		Favorited: c.String("favorited"),
	}

	articles, err := store.Articles.FindAll(ctx, facets)
	if err != nil {
		return err
	}

	for _, article := range articles {
		details, err := store.Articles.FindArticleDetails(ctx, article)
		if err != nil {
			return err
		}

		author := article.AuthorID
		if article.Author != nil {
			author = article.Author.Username
		}
		fmt.Printf("%-30s  by %-15s  favorites %-3d  tags %v\n",
			article.Slug, author, details.TotalFavorites, article.TagNames())
	}
	return nil
}

func tagsCommand(c *cli.Context) error {
	store, err := openStore(c.String("backend"), c.String("db"), c.String("dsn"))
	if err != nil {
		return err
	}
	defer store.Close()

	tags, err := store.Tags.FindAll(context.Background())
	if err != nil {
		return err
	}
	for _, tag := range tags {
		fmt.Println(tag.Name)
	}
	return nil
}

func migrateCommand(c *cli.Context) error {
	src, err := openStore(c.String("from-backend"), c.String("from-db"), c.String("from-dsn"))
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	dst, err := openStore(c.String("to-backend"), c.String("to-db"), c.String("to-dsn"))
	if err != nil {
		return fmt.Errorf("open destination: %w", err)
	}
	defer dst.Close()

	var opts []migrate.Option
	if workers := c.Int("workers"); workers > 0 {
		opts = append(opts, migrate.WithPoolSize(workers))
	}

	copier, err := migrate.NewCopier(src, dst, opts...)
	if err != nil {
		return err
	}
	defer copier.Release()

	report, err := copier.Run(context.Background())
	if err != nil {
		return err
	}

	slog.Info("migration complete",
		"users", report.Users,
		"tags", report.Tags,
		"follows", report.Follows,
		"articles", report.Articles,
		"comments", report.Comments,
		"favorites", report.Favorites)
	return nil
}

// seed populates the store with a small, linked dataset. Safe to run once
// on an empty store; duplicate titles on a second run surface as errors.
func seed(ctx context.Context, store *realworld.Store) (int, error) {
	type seedArticle struct {
		title       string
		description string
		content     string
		tags        []string
	}
	type seedUser struct {
		email    string
		username string
		articles []seedArticle
	}

	seeds := []seedUser{
		{
			email:    "jake@example.com",
			username: "jake",
			articles: []seedArticle{
				{
					title:       "How to train your dragon",
					description: "Ever wonder how?",
					content:     "You have to believe",
					tags:        []string{"dragons", "training"},
				},
				{
					title:       "How to train your dragon 2",
					description: "So toothless",
					content:     "It takes a Jacobian",
					tags:        []string{"dragons"},
				},
			},
		},
		{
			email:    "anah@example.com",
			username: "anah",
			articles: []seedArticle{
				{
					title:       "Brewing coffee at altitude",
					description: "Thin air, strong brew",
					content:     "Water boils sooner than you think",
					tags:        []string{"coffee"},
				},
			},
		},
	}

	users := make([]*core.User, 0, len(seeds))
	count := 0
	for _, su := range seeds {
		user, err := core.NewUser(su.email, su.username, "password123")
		if err != nil {
			return count, err
		}
		if _, err := store.Users.Save(ctx, user); err != nil {
			return count, err
		}
		users = append(users, user)

		for _, sa := range su.articles {
			article, err := core.NewArticle(user, sa.title, sa.description, sa.content)
			if err != nil {
				return count, err
			}
			tags := make([]*core.Tag, 0, len(sa.tags))
			for _, name := range sa.tags {
				tag, err := core.NewTag(name)
				if err != nil {
					return count, err
				}
				tags = append(tags, tag)
			}
			if _, err := store.Articles.SaveWithTags(ctx, article, tags); err != nil {
				return count, err
			}
			count++
		}
	}

	// A little social graph so favorited/feed queries have data.
	if len(users) >= 2 {
		if err := store.Follows.Follow(ctx, users[1], users[0]); err != nil {
			return count, err
		}
		article, err := store.Articles.FindBySlug(ctx, core.Slugify("How to train your dragon"))
		if err != nil {
			return count, err
		}
		if err := store.Favorites.Favorite(ctx, users[1], article); err != nil {
			return count, err
		}
	}
	return count, nil
}
