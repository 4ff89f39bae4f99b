package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/markdstafford/realworld/core"
	"github.com/markdstafford/realworld/storage"
)

// FollowRepository implements storage.FollowRepository for BadgerDB.
// Ledger documents are keyed by (follower, following).
type FollowRepository struct {
	backend *Backend
	seq     *SequenceGenerator
	users   storage.UserRepository
}

var _ storage.FollowRepository = (*FollowRepository)(nil)

// NewFollowRepository creates a new FollowRepository.
func NewFollowRepository(backend *Backend, seq *SequenceGenerator, users storage.UserRepository) *FollowRepository {
	return &FollowRepository{backend: backend, seq: seq, users: users}
}

// Follow records that follower follows following. Following a user the
// follower already follows is a no-op.
func (r *FollowRepository) Follow(ctx context.Context, follower, following *core.User) error {
	exists, err := r.IsFollowing(ctx, follower, following)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	follow, err := core.NewUserFollow(follower, following)
	if err != nil {
		return err
	}
	next, err := r.seq.Next(ctx, followSeq)
	if err != nil {
		return err
	}
	follow.ID = core.ID(next)

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeFollowKey(follow.FollowerID, follow.FollowingID), storage.MarshalUserFollow(follow)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Unfollow removes the follow relationship. Unfollowing a user the
// follower never followed is a no-op.
func (r *FollowRepository) Unfollow(ctx context.Context, follower, following *core.User) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeFollowKey(follower.ID, following.ID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// IsFollowing reports whether follower follows following.
func (r *FollowRepository) IsFollowing(ctx context.Context, follower, following *core.User) (bool, error) {
	var exists bool
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeFollowKey(follower.ID, following.ID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	}, false)
	return exists, err
}

// FindFollowing returns every user the follower follows.
func (r *FollowRepository) FindFollowing(ctx context.Context, follower *core.User) ([]*core.User, error) {
	var follows []*core.UserFollow
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeFollowPrefix(follower.ID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var follow *core.UserFollow
			if err := iter.Item().Value(func(val []byte) error {
				var unmarshalErr error
				follow, unmarshalErr = storage.UnmarshalUserFollow(val)
				return unmarshalErr
			}); err != nil {
				return err
			}
			follows = append(follows, follow)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	users := make([]*core.User, 0, len(follows))
	for _, follow := range follows {
		user, err := r.users.FindByID(ctx, follow.FollowingID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}
