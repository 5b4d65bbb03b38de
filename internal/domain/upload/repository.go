package upload

import (
	"context"

	"gorm.io/gorm"
)

// Repository is the metadata store. Every call names the kind, which
// selects the table.
type Repository interface {
	Create(ctx context.Context, kind Kind, m *Media) error
	List(ctx context.Context, kind Kind, topicID *uint) ([]Media, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Migrate creates one table per kind.
func Migrate(db *gorm.DB, kinds ...Kind) error {
	if len(kinds) == 0 {
		kinds = Kinds()
	}
	for _, k := range kinds {
		if err := db.Table(k.Table).AutoMigrate(&Media{}); err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) Create(ctx context.Context, kind Kind, m *Media) error {
	return r.db.WithContext(ctx).Table(kind.Table).Omit("Topic").Create(m).Error
}

// List returns the kind's records, newest first, with their topic loaded.
// A nil topicID lists everything.
func (r *repository) List(ctx context.Context, kind Kind, topicID *uint) ([]Media, error) {
	items := make([]Media, 0)
	q := r.db.WithContext(ctx).Table(kind.Table).Preload("Topic")
	if topicID != nil {
		q = q.Where("topic_id = ?", *topicID)
	}
	err := q.Order("created_at DESC").Order("id DESC").Find(&items).Error
	return items, err
}
