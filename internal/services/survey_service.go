package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/intranet-suite/survey-service/internal/cache"
	"github.com/intranet-suite/survey-service/internal/models"
	"github.com/intranet-suite/survey-service/internal/repositories"
	"github.com/intranet-suite/survey-service/internal/validator"
)

// ===== CACHE KEYS =====

const (
	questionsCachePrefix = "survey:questions:"
	categoriesCacheKey   = "survey:categories"
	catalogCacheTTL      = 5 * time.Minute
)

// SurveyService manages the question catalog behind attempts and reporting.
// Reads go through the cache; writes invalidate it.
type SurveyService interface {
	GetQuestions(ctx context.Context, subsectionID string) ([]*models.Question, error)
	GetCategories(ctx context.Context) ([]*models.Category, error)

	CreateQuestion(ctx context.Context, question *models.Question) error
	UpdateQuestion(ctx context.Context, question *models.Question) error
	DeleteQuestion(ctx context.Context, id string) error

	CreateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id string) error
}

type surveyService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	validator *validator.Validator
	logger    *slog.Logger
}

func NewSurveyService(repo repositories.Repository, cacheService cache.CacheService, v *validator.Validator, logger *slog.Logger) SurveyService {
	return &surveyService{
		repo:      repo,
		cache:     cacheService,
		validator: v,
		logger:    logger,
	}
}

// ===== READS =====

func (s *surveyService) GetQuestions(ctx context.Context, subsectionID string) ([]*models.Question, error) {
	cacheKey := questionsCachePrefix + subsectionID

	if s.cache != nil {
		var cached []*models.Question
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("question cache read failed", "key", cacheKey, "error", err)
		}
	}

	questions, err := s.repo.Question().GetBySubsection(ctx, subsectionID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, questions, catalogCacheTTL); err != nil {
			s.logger.Warn("question cache write failed", "key", cacheKey, "error", err)
		}
	}
	return questions, nil
}

func (s *surveyService) GetCategories(ctx context.Context) ([]*models.Category, error) {
	if s.cache != nil {
		var cached []*models.Category
		if err := s.cache.Get(ctx, categoriesCacheKey, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("category cache read failed", "error", err)
		}
	}

	categories, err := s.repo.Category().List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, categoriesCacheKey, categories, catalogCacheTTL); err != nil {
			s.logger.Warn("category cache write failed", "error", err)
		}
	}
	return categories, nil
}

// ===== QUESTION WRITES =====

func (s *surveyService) CreateQuestion(ctx context.Context, question *models.Question) error {
	if question.ID == "" {
		question.ID = uuid.NewString()
	}
	if question.Type == "" {
		question.Type = models.QuestionTypeStandard
	}
	if err := s.validator.Validate(question); err != nil {
		return err
	}
	if err := s.ensureCategoryExists(ctx, question.CategoryID); err != nil {
		return err
	}

	if err := s.repo.Question().Create(ctx, question); err != nil {
		return err
	}
	s.invalidateQuestions(ctx, question.SubsectionID)
	return nil
}

func (s *surveyService) UpdateQuestion(ctx context.Context, question *models.Question) error {
	if err := s.validator.Validate(question); err != nil {
		return err
	}
	if err := s.ensureCategoryExists(ctx, question.CategoryID); err != nil {
		return err
	}

	existing, err := s.repo.Question().GetByID(ctx, question.ID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return err
	}

	if err := s.repo.Question().Update(ctx, question); err != nil {
		return err
	}
	s.invalidateQuestions(ctx, existing.SubsectionID)
	if question.SubsectionID != existing.SubsectionID {
		s.invalidateQuestions(ctx, question.SubsectionID)
	}
	return nil
}

func (s *surveyService) DeleteQuestion(ctx context.Context, id string) error {
	existing, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return err
	}

	if err := s.repo.Question().Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateQuestions(ctx, existing.SubsectionID)
	return nil
}

// ===== CATEGORY WRITES =====

func (s *surveyService) CreateCategory(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	if err := s.validator.Validate(category); err != nil {
		return err
	}

	if err := s.repo.Category().Create(ctx, category); err != nil {
		return err
	}
	s.invalidateCategories(ctx)
	return nil
}

func (s *surveyService) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.repo.Category().GetByID(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCategoryNotFound
		}
		return err
	}

	if err := s.repo.Category().Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCategories(ctx)
	return nil
}

// ===== HELPERS =====

func (s *surveyService) ensureCategoryExists(ctx context.Context, categoryID *string) error {
	if categoryID == nil || *categoryID == "" {
		return nil
	}
	if _, err := s.repo.Category().GetByID(ctx, *categoryID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}

func (s *surveyService) invalidateQuestions(ctx context.Context, subsectionID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, questionsCachePrefix+subsectionID); err != nil {
		s.logger.Warn("question cache invalidation failed", "subsection_id", subsectionID, "error", err)
	}
}

func (s *surveyService) invalidateCategories(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, categoriesCacheKey); err != nil {
		s.logger.Warn("category cache invalidation failed", "error", err)
	}
	// category ordering shapes every flattened question sequence
	if err := s.cache.DeletePattern(ctx, questionsCachePrefix+"*"); err != nil {
		s.logger.Warn("question cache invalidation failed", "error", err)
	}
}
