package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/intranet-suite/survey-service/internal/models"
	"github.com/intranet-suite/survey-service/internal/repositories"
)

type ResponsePostgreSQL struct {
	db *gorm.DB
}

func NewResponsePostgreSQL(db *gorm.DB) repositories.ResponseRepository {
	return &ResponsePostgreSQL{db: db}
}

func (r *ResponsePostgreSQL) Create(ctx context.Context, response *models.ResponseRecord) error {
	return r.db.WithContext(ctx).Create(response).Error
}

// GetBySubsection returns every recorded response for the subsection together
// with its originating question, the join the reporting views aggregate over.
func (r *ResponsePostgreSQL) GetBySubsection(ctx context.Context, subsectionID string) ([]*models.ResponseRecord, error) {
	var responses []*models.ResponseRecord
	if err := r.db.WithContext(ctx).
		Where("subsection_id = ?", subsectionID).
		Preload("Question").
		Order("created_at asc").
		Find(&responses).Error; err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *ResponsePostgreSQL) GetByUser(ctx context.Context, userID string, filters repositories.ResponseFilters) ([]*models.ResponseRecord, error) {
	var responses []*models.ResponseRecord

	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filters.SubsectionID != nil {
		query = query.Where("subsection_id = ?", *filters.SubsectionID)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	if err := query.Preload("Question").Order("created_at asc").Find(&responses).Error; err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *ResponsePostgreSQL) CountByUserAndSubsection(ctx context.Context, userID, subsectionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ResponseRecord{}).
		Where("user_id = ? AND subsection_id = ?", userID, subsectionID).
		Count(&count).Error
	return count, err
}
