package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/markdstafford/realworld/core"
	"github.com/markdstafford/realworld/storage"
)

// TagRepository implements storage.TagRepository for BadgerDB. The tag
// name is the document key, so upserts can never duplicate a tag.
type TagRepository struct {
	backend *Backend
}

var _ storage.TagRepository = (*TagRepository)(nil)

// NewTagRepository creates a new TagRepository.
func NewTagRepository(backend *Backend) *TagRepository {
	return &TagRepository{backend: backend}
}

// Upsert returns the existing tag unchanged, or inserts the given one.
func (r *TagRepository) Upsert(ctx context.Context, tag *core.Tag) (*core.Tag, bool, error) {
	if err := core.ValidateTagName(tag.Name); err != nil {
		return nil, false, err
	}

	var (
		result  *core.Tag
		created bool
	)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeTagKey(tag.Name)

		existing, err := readTag(tx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			result = existing
			return nil
		}

		if err := tx.Set(key, storage.MarshalTag(tag)); err != nil {
			return err
		}
		result = tag
		created = true
		return tx.Commit()
	}, true)

	return result, created, err
}

// FindByName retrieves a tag by name.
func (r *TagRepository) FindByName(ctx context.Context, name string) (*core.Tag, error) {
	var result *core.Tag
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readTag(tx, makeTagKey(name))
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

// FindAll returns every known tag.
func (r *TagRepository) FindAll(ctx context.Context) ([]*core.Tag, error) {
	var results []*core.Tag
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := []byte(tagPrefix + ":")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var tag *core.Tag
			err := iter.Item().Value(func(val []byte) error {
				var err error
				tag, err = storage.UnmarshalTag(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, tag)
		}
		return nil
	}, false)
	return results, err
}

// readTag reads a tag document, returning nil when absent.
func readTag(tx *badger.Txn, key []byte) (*core.Tag, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var tag *core.Tag
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		tag, unmarshalErr = storage.UnmarshalTag(val)
		return unmarshalErr
	})
	return tag, err
}
