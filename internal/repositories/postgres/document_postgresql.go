package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/intranet-suite/survey-service/internal/models"
	"github.com/intranet-suite/survey-service/internal/repositories"
)

type DocumentPostgreSQL struct {
	db *gorm.DB
}

func NewDocumentPostgreSQL(db *gorm.DB) repositories.DocumentRepository {
	return &DocumentPostgreSQL{db: db}
}

func (d *DocumentPostgreSQL) CreateSection(ctx context.Context, section *models.Section) error {
	return d.db.WithContext(ctx).Create(section).Error
}

func (d *DocumentPostgreSQL) ListSections(ctx context.Context) ([]*models.Section, error) {
	var sections []*models.Section
	if err := d.db.WithContext(ctx).
		Order("\"order\" asc, created_at asc").
		Preload("Subsections").
		Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

func (d *DocumentPostgreSQL) CreateSubsection(ctx context.Context, subsection *models.Subsection) error {
	return d.db.WithContext(ctx).Create(subsection).Error
}

func (d *DocumentPostgreSQL) GetSubsection(ctx context.Context, id string) (*models.Subsection, error) {
	var subsection models.Subsection
	if err := d.db.WithContext(ctx).Preload("Section").First(&subsection, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &subsection, nil
}

func (d *DocumentPostgreSQL) ListSubsections(ctx context.Context, sectionID string) ([]*models.Subsection, error) {
	var subsections []*models.Subsection
	if err := d.db.WithContext(ctx).
		Where("section_id = ?", sectionID).
		Order("\"order\" asc, created_at asc").
		Find(&subsections).Error; err != nil {
		return nil, err
	}
	return subsections, nil
}

func (d *DocumentPostgreSQL) CreateFile(ctx context.Context, file *models.DocumentFile) error {
	return d.db.WithContext(ctx).Create(file).Error
}

func (d *DocumentPostgreSQL) ListFiles(ctx context.Context, subsectionID string) ([]*models.DocumentFile, error) {
	var files []*models.DocumentFile
	if err := d.db.WithContext(ctx).
		Where("subsection_id = ?", subsectionID).
		Order("created_at desc").
		Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

func (d *DocumentPostgreSQL) DeleteFile(ctx context.Context, id string) error {
	return d.db.WithContext(ctx).Delete(&models.DocumentFile{}, "id = ?", id).Error
}
