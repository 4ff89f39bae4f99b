package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/markdstafford/realworld/core"
	"github.com/markdstafford/realworld/storage"
)

// UserRepository implements storage.UserRepository on PostgreSQL.
// Email and username uniqueness is enforced by the schema's unique indexes.
type UserRepository struct {
	db *gorm.DB
}

var _ storage.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Save inserts or updates a user.
func (r *UserRepository) Save(ctx context.Context, user *core.User) (*core.User, error) {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, translate(err)
	}
	return user, nil
}

// FindByID retrieves a user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*core.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByUsername retrieves a user by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*core.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

// FindByEmail retrieves a user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*core.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// FindAll returns every user.
func (r *UserRepository) FindAll(ctx context.Context) ([]*core.User, error) {
	var users []*core.User
	if err := r.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, translate(err)
	}
	return users, nil
}

// ExistsBy reports whether any user has the given email or username.
func (r *UserRepository) ExistsBy(ctx context.Context, email, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&core.User{}).
		Where("email = ? OR username = ?", email, username).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

// UpdateUserDetails applies profile changes to an existing user. A missing
// target is a caller error and fails fast.
func (r *UserRepository) UpdateUserDetails(ctx context.Context, id, email, username, password, bio, imageURL string) (*core.User, error) {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s", storage.ErrNotFound, id)
		}
		return nil, err
	}

	if email != "" && email != user.Email {
		if taken, err := r.takenByOther(ctx, "email = ?", email, id); err != nil {
			return nil, err
		} else if taken {
			return nil, fmt.Errorf("email %q: %w", email, storage.ErrDuplicateKey)
		}
	}
	if username != "" && username != user.Username {
		if taken, err := r.takenByOther(ctx, "username = ?", username, id); err != nil {
			return nil, err
		} else if taken {
			return nil, fmt.Errorf("username %q: %w", username, storage.ErrDuplicateKey)
		}
	}

	user.SetEmail(email)
	user.SetUsername(username)
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	user.SetBio(bio)
	user.SetImageURL(imageURL)

	return r.Save(ctx, user)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*core.User, error) {
	var user core.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) takenByOther(ctx context.Context, query string, arg, id any) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&core.User{}).
		Where(query, arg).
		Where("id <> ?", id).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}
