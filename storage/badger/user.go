package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/markdstafford/realworld/core"
	"github.com/markdstafford/realworld/storage"
)

// UserRepository implements storage.UserRepository for BadgerDB. Username
// and email uniqueness is enforced through dedicated index keys checked
// and written in the same transaction as the user document.
type UserRepository struct {
	backend *Backend
}

var _ storage.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new UserRepository.
func NewUserRepository(backend *Backend) *UserRepository {
	return &UserRepository{backend: backend}
}

// Save inserts or updates a user and maintains the username/email indexes.
func (r *UserRepository) Save(ctx context.Context, user *core.User) (*core.User, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeUserKey(user.ID)

		old, err := readUser(tx, key)
		if err != nil {
			return err
		}

		// Uniqueness: the index entry must be absent or point at this user.
		if err := checkOwnedIndex(tx, makeUserByEmailKey(user.Email), user.ID); err != nil {
			return fmt.Errorf("email %q: %w", user.Email, err)
		}
		if err := checkOwnedIndex(tx, makeUserByUsernameKey(user.Username), user.ID); err != nil {
			return fmt.Errorf("username %q: %w", user.Username, err)
		}

		if old != nil {
			if old.Email != user.Email {
				if err := tx.Delete(makeUserByEmailKey(old.Email)); err != nil {
					return err
				}
			}
			if old.Username != user.Username {
				if err := tx.Delete(makeUserByUsernameKey(old.Username)); err != nil {
					return err
				}
			}
		}

		if err := tx.Set(key, storage.MarshalUser(user)); err != nil {
			return err
		}
		if err := tx.Set(makeUserByEmailKey(user.Email), []byte(user.ID)); err != nil {
			return err
		}
		if err := tx.Set(makeUserByUsernameKey(user.Username), []byte(user.ID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return user, err
}

// FindByID retrieves a user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*core.User, error) {
	var result *core.User
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readUser(tx, makeUserKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// FindByUsername retrieves a user through the username index.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*core.User, error) {
	return r.findByIndex(makeUserByUsernameKey(username))
}

// FindByEmail retrieves a user through the email index.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*core.User, error) {
	return r.findByIndex(makeUserByEmailKey(email))
}

// FindAll returns every user.
func (r *UserRepository) FindAll(ctx context.Context) ([]*core.User, error) {
	var results []*core.User
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := []byte(userPrefix + ":")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var user *core.User
			err := iter.Item().Value(func(val []byte) error {
				var err error
				user, err = storage.UnmarshalUser(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, user)
		}
		return nil
	}, false)
	return results, err
}

// ExistsBy reports whether any user has the given email or username.
func (r *UserRepository) ExistsBy(ctx context.Context, email, username string) (bool, error) {
	var exists bool
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range [][]byte{makeUserByEmailKey(email), makeUserByUsernameKey(username)} {
			_, err := tx.Get(key)
			if err == nil {
				exists = true
				return nil
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		return nil
	}, false)
	return exists, err
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
		if taken, err := r.existsOtherThan(makeUserByEmailKey(email), id); err != nil {
			return nil, err
		} else if taken {
			return nil, fmt.Errorf("email %q: %w", email, storage.ErrDuplicateKey)
		}
	}
	if username != "" && username != user.Username {
		if taken, err := r.existsOtherThan(makeUserByUsernameKey(username), id); err != nil {
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

func (r *UserRepository) findByIndex(indexKey []byte) (*core.User, error) {
	var result *core.User
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(indexKey)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}

		var id string
		if err := item.Value(func(val []byte) error {
			id = string(val)
			return nil
		}); err != nil {
			return err
		}

		result, err = readUser(tx, makeUserKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

func (r *UserRepository) existsOtherThan(indexKey []byte, id string) (bool, error) {
	var taken bool
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(indexKey)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			taken = string(val) != id
			return nil
		})
	}, false)
	return taken, err
}

// checkOwnedIndex returns ErrDuplicateKey when the index entry exists and
// belongs to a different owner.
func checkOwnedIndex(tx *badger.Txn, indexKey []byte, ownerID string) error {
	item, err := tx.Get(indexKey)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	}
	return item.Value(func(val []byte) error {
		if string(val) != ownerID {
			return storage.ErrDuplicateKey
		}
		return nil
	})
}

// readUser reads a user document, returning nil when absent.
func readUser(tx *badger.Txn, key []byte) (*core.User, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var user *core.User
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		user, unmarshalErr = storage.UnmarshalUser(val)
		return unmarshalErr
	})
	return user, err
}
