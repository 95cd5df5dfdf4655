package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/intranet-suite/survey-service/internal/models"
	"github.com/intranet-suite/survey-service/internal/repositories"
	"github.com/intranet-suite/survey-service/internal/validator"
)

// DocumentService manages the document center hierarchy that surveys hang off:
// sections, their subsections and the file records within them.
type DocumentService interface {
	CreateSection(ctx context.Context, section *models.Section) error
	ListSections(ctx context.Context) ([]*models.Section, error)

	CreateSubsection(ctx context.Context, subsection *models.Subsection) error
	GetSubsection(ctx context.Context, id string) (*models.Subsection, error)
	ListSubsections(ctx context.Context, sectionID string) ([]*models.Subsection, error)

	CreateFile(ctx context.Context, file *models.DocumentFile) error
	ListFiles(ctx context.Context, subsectionID string) ([]*models.DocumentFile, error)
	DeleteFile(ctx context.Context, id string) error
}

type documentService struct {
	repo      repositories.Repository
	validator *validator.Validator
	logger    *slog.Logger
}

func NewDocumentService(repo repositories.Repository, v *validator.Validator, logger *slog.Logger) DocumentService {
	return &documentService{repo: repo, validator: v, logger: logger}
}

func (s *documentService) CreateSection(ctx context.Context, section *models.Section) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	if err := s.validator.Validate(section); err != nil {
		return err
	}
	return s.repo.Document().CreateSection(ctx, section)
}

func (s *documentService) ListSections(ctx context.Context) ([]*models.Section, error) {
	return s.repo.Document().ListSections(ctx)
}

func (s *documentService) CreateSubsection(ctx context.Context, subsection *models.Subsection) error {
	if subsection.ID == "" {
		subsection.ID = uuid.NewString()
	}
	if err := s.validator.Validate(subsection); err != nil {
		return err
	}
	return s.repo.Document().CreateSubsection(ctx, subsection)
}

func (s *documentService) GetSubsection(ctx context.Context, id string) (*models.Subsection, error) {
	subsection, err := s.repo.Document().GetSubsection(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubsectionNotFound
		}
		return nil, err
	}
	return subsection, nil
}

func (s *documentService) ListSubsections(ctx context.Context, sectionID string) ([]*models.Subsection, error) {
	return s.repo.Document().ListSubsections(ctx, sectionID)
}

func (s *documentService) CreateFile(ctx context.Context, file *models.DocumentFile) error {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	if err := s.validator.Validate(file); err != nil {
		return err
	}
	if _, err := s.GetSubsection(ctx, file.SubsectionID); err != nil {
		return err
	}

	if err := s.repo.Document().CreateFile(ctx, file); err != nil {
		return err
	}
	s.logger.Info("document file registered",
		"file_id", file.ID,
		"subsection_id", file.SubsectionID,
		"uploaded_by", file.UploadedBy)
	return nil
}

func (s *documentService) ListFiles(ctx context.Context, subsectionID string) ([]*models.DocumentFile, error) {
	return s.repo.Document().ListFiles(ctx, subsectionID)
}

func (s *documentService) DeleteFile(ctx context.Context, id string) error {
	return s.repo.Document().DeleteFile(ctx, id)
}
