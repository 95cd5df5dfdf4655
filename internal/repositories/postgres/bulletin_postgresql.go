package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/intranet-suite/survey-service/internal/models"
	"github.com/intranet-suite/survey-service/internal/repositories"
)

type BulletinPostgreSQL struct {
	db *gorm.DB
}

func NewBulletinPostgreSQL(db *gorm.DB) repositories.BulletinRepository {
	return &BulletinPostgreSQL{db: db}
}

func (b *BulletinPostgreSQL) Create(ctx context.Context, post *models.BulletinPost) error {
	return b.db.WithContext(ctx).Create(post).Error
}

func (b *BulletinPostgreSQL) GetByID(ctx context.Context, id string) (*models.BulletinPost, error) {
	var post models.BulletinPost
	if err := b.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// List filters by kind and, for calendar queries, by event date range.
func (b *BulletinPostgreSQL) List(ctx context.Context, filters repositories.BulletinFilters) ([]*models.BulletinPost, error) {
	var posts []*models.BulletinPost

	query := b.db.WithContext(ctx).Model(&models.BulletinPost{})
	if filters.Kind != nil {
		query = query.Where("kind = ?", *filters.Kind)
	}
	if filters.DateFrom != nil {
		query = query.Where("starts_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("starts_at <= ?", *filters.DateTo)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	if err := query.Order("created_at desc").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (b *BulletinPostgreSQL) Delete(ctx context.Context, id string) error {
	return b.db.WithContext(ctx).Delete(&models.BulletinPost{}, "id = ?", id).Error
}
