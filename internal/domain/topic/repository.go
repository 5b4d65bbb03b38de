package topic

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, t *Topic) error
	GetByID(ctx context.Context, id uint) (*Topic, error)
	List(ctx context.Context) ([]Topic, error)
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Migrate creates or updates the topics table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Topic{})
}

func (r *repository) Create(ctx context.Context, t *Topic) error {
	err := r.db.WithContext(ctx).Create(t).Error
	if isUniqueViolation(err) {
		return ErrTopicExists
	}
	return err
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Topic, error) {
	var t Topic
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTopicNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) List(ctx context.Context) ([]Topic, error) {
	topics := make([]Topic, 0)
	err := r.db.WithContext(ctx).Order("name ASC").Find(&topics).Error
	return topics, err
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Topic{}).Count(&n).Error
	return n, err
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
