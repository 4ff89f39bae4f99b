package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/markdstafford/realworld/core"
	"github.com/markdstafford/realworld/storage"
)

// TagRepository implements storage.TagRepository on PostgreSQL. The tag
// name is the primary key, so upserts can never duplicate a tag.
type TagRepository struct {
	db *gorm.DB
}

var _ storage.TagRepository = (*TagRepository)(nil)

// NewTagRepository creates a new TagRepository.
func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

// Upsert returns the existing tag unchanged, or inserts the given one.
// FirstOrCreate reports the insert through RowsAffected.
func (r *TagRepository) Upsert(ctx context.Context, tag *core.Tag) (*core.Tag, bool, error) {
	if err := core.ValidateTagName(tag.Name); err != nil {
		return nil, false, err
	}

	var existing core.Tag
	res := r.db.WithContext(ctx).
		Where("name = ?", tag.Name).
		Attrs(core.Tag{Name: tag.Name, CreatedAt: tag.CreatedAt}).
		FirstOrCreate(&existing)
	if res.Error != nil {
		return nil, false, translate(res.Error)
	}
	return &existing, res.RowsAffected > 0, nil
}

// FindByName retrieves a tag by name.
func (r *TagRepository) FindByName(ctx context.Context, name string) (*core.Tag, error) {
	var tag core.Tag
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error; err != nil {
		return nil, translate(err)
	}
	return &tag, nil
}

// FindAll returns every known tag.
func (r *TagRepository) FindAll(ctx context.Context) ([]*core.Tag, error) {
	var tags []*core.Tag
	if err := r.db.WithContext(ctx).Find(&tags).Error; err != nil {
		return nil, translate(err)
	}
	return tags, nil
}
