package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/markdstafford/realworld"
)

func main() {
	app := &cli.App{
		Name:  "realworld",
		Usage: "Persistence layer tooling for the blogging platform",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "seed",
				Usage:  "Populate a store with sample users, articles and tags",
				Action: seedCommand,
				Flags:  storeFlags(),
			},
			{
				Name:   "articles",
				Usage:  "List articles, optionally filtered by author, tag or favoriter",
				Action: articlesCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:  "author",
						Usage: "Only articles written by this username",
					},
					&cli.StringFlag{
						Name:  "tag",
						Usage: "Only articles carrying this tag",
					},
					&cli.StringFlag{
						Name:  "favorited",
						Usage: "Only articles favorited by this username",
					},
					&cli.IntFlag{
						Name:  "page",
						Usage: "0-indexed result page",
					},
					&cli.IntFlag{
						Name:  "size",
						Usage: "Results per page (max 50)",
						Value: 20,
					},
				),
			},
			{
				Name:   "tags",
				Usage:  "List every known tag",
				Action: tagsCommand,
				Flags:  storeFlags(),
			},
			{
				Name:   "migrate",
				Usage:  "Copy the full contents of one store into another",
				Action: migrateCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "from-backend",
						Usage: "Source backend (badger or postgres)",
						Value: string(realworld.BackendBadger),
					},
					&cli.StringFlag{
						Name:  "from-db",
						Usage: "Source BadgerDB directory",
					},
					&cli.StringFlag{
						Name:  "from-dsn",
						Usage: "Source PostgreSQL DSN",
					},
					&cli.StringFlag{
						Name:  "to-backend",
						Usage: "Destination backend (badger or postgres)",
						Value: string(realworld.BackendPostgres),
					},
					&cli.StringFlag{
						Name:  "to-db",
						Usage: "Destination BadgerDB directory",
					},
					&cli.StringFlag{
						Name:  "to-dsn",
						Usage: "Destination PostgreSQL DSN",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Worker pool size for the article fan-out",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "backend",
			Aliases: []string{"b"},
			Usage:   "Backend to use (badger or postgres)",
			Value:   string(realworld.BackendBadger),
		},
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB database directory",
		},
		&cli.StringFlag{
			Name:  "dsn",
			Usage: "PostgreSQL DSN",
		},
	}
}

func openStore(backend, db, dsn string) (*realworld.Store, error) {
	switch realworld.Backend(backend) {
	case realworld.BackendBadger:
		if db == "" {
			return nil, fmt.Errorf("badger backend requires --db")
		}
		return realworld.Open(realworld.WithBadger(db))
	case realworld.BackendPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("postgres backend requires --dsn")
		}
		return realworld.Open(realworld.WithPostgres(dsn))
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
