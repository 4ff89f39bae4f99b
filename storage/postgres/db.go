// Package postgres implements the storage contracts on PostgreSQL through
// GORM, the relational backend. Identity assignment, uniqueness and the
// delete cascade lean on the schema; the repositories translate driver
// errors into the shared storage sentinels.
package postgres

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/markdstafford/realworld/core"
	"github.com/markdstafford/realworld/storage"
)

// Open connects to PostgreSQL and migrates the schema.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	err = db.AutoMigrate(
		&core.User{},
		&core.Tag{},
		&core.Article{},
		&core.ArticleTag{},
		&core.ArticleFavorite{},
		&core.UserFollow{},
		&core.ArticleComment{},
	)
	if err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return db, nil
}

// translate maps GORM errors onto the shared storage sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", storage.ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", storage.ErrDuplicateKey, err)
	default:
		return err
	}
}
