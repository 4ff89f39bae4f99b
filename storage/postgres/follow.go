package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/markdstafford/realworld/core"
	"github.com/markdstafford/realworld/storage"
)

// FollowRepository implements storage.FollowRepository on PostgreSQL.
// The (follower_id, following_id) unique index backs idempotence.
type FollowRepository struct {
	db *gorm.DB
}

var _ storage.FollowRepository = (*FollowRepository)(nil)

// NewFollowRepository creates a new FollowRepository.
func NewFollowRepository(db *gorm.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

// Follow records that follower follows following. A duplicate insert is
// swallowed, so following twice is a no-op.
func (r *FollowRepository) Follow(ctx context.Context, follower, following *core.User) error {
	follow, err := core.NewUserFollow(follower, following)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(follow).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return translate(err)
	}
	return nil
}

// Unfollow removes the follow relationship; no-op if absent.
func (r *FollowRepository) Unfollow(ctx context.Context, follower, following *core.User) error {
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", follower.ID, following.ID).
		Delete(&core.UserFollow{}).Error
	return translate(err)
}

// IsFollowing reports whether follower follows following.
func (r *FollowRepository) IsFollowing(ctx context.Context, follower, following *core.User) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&core.UserFollow{}).
		Where("follower_id = ? AND following_id = ?", follower.ID, following.ID).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

// FindFollowing returns every user the follower follows.
func (r *FollowRepository) FindFollowing(ctx context.Context, follower *core.User) ([]*core.User, error) {
	var users []*core.User
	err := r.db.WithContext(ctx).
		Joins("JOIN user_follows ON user_follows.following_id = users.id").
		Where("user_follows.follower_id = ?", follower.ID).
		Find(&users).Error
	if err != nil {
		return nil, translate(err)
	}
	return users, nil
}
