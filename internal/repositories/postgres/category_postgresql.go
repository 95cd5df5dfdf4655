package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/intranet-suite/survey-service/internal/models"
	"github.com/intranet-suite/survey-service/internal/repositories"
)

type CategoryPostgreSQL struct {
	db *gorm.DB
}

func NewCategoryPostgreSQL(db *gorm.DB) repositories.CategoryRepository {
	return &CategoryPostgreSQL{db: db}
}

func (c *CategoryPostgreSQL) Create(ctx context.Context, category *models.Category) error {
	return c.db.WithContext(ctx).Create(category).Error
}

func (c *CategoryPostgreSQL) GetByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := c.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// List returns all categories in navigation order.
func (c *CategoryPostgreSQL) List(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	if err := c.db.WithContext(ctx).Order("\"order\" asc, created_at asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *CategoryPostgreSQL) Update(ctx context.Context, category *models.Category) error {
	return c.db.WithContext(ctx).Save(category).Error
}

func (c *CategoryPostgreSQL) Delete(ctx context.Context, id string) error {
	return c.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id).Error
}
