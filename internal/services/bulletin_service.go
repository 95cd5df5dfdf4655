package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/intranet-suite/survey-service/internal/events"
	"github.com/intranet-suite/survey-service/internal/models"
	"github.com/intranet-suite/survey-service/internal/repositories"
	"github.com/intranet-suite/survey-service/internal/validator"
)

// BulletinService backs the announcement board and the event calendar.
// Publishing an announcement notifies downstream consumers through the event
// bus; delivery failures are logged, never surfaced to the author.
type BulletinService interface {
	CreatePost(ctx context.Context, post *models.BulletinPost) error
	GetPost(ctx context.Context, id string) (*models.BulletinPost, error)
	ListPosts(ctx context.Context, filters repositories.BulletinFilters) ([]*models.BulletinPost, error)
	DeletePost(ctx context.Context, id string) error
}

type bulletinService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	validator *validator.Validator
	logger    *slog.Logger
}

func NewBulletinService(repo repositories.Repository, publisher events.EventPublisher, v *validator.Validator, logger *slog.Logger) BulletinService {
	return &bulletinService{
		repo:      repo,
		publisher: publisher,
		validator: v,
		logger:    logger,
	}
}

func (s *bulletinService) CreatePost(ctx context.Context, post *models.BulletinPost) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.Kind == "" {
		post.Kind = models.BulletinAnnouncement
	}
	if err := s.validator.Validate(post); err != nil {
		return err
	}
	if post.Kind == models.BulletinEvent && post.StartsAt == nil {
		return NewValidationError("starts_at", "events require a start time", nil)
	}

	if err := s.repo.Bulletin().Create(ctx, post); err != nil {
		return err
	}

	if s.publisher != nil {
		event := events.NewNotificationEvent(events.EventAnnouncementPublished, events.AnnouncementPublishedEvent{
			PostID:    post.ID,
			Kind:      string(post.Kind),
			Title:     post.Title,
			CreatedBy: post.CreatedBy,
			CreatedAt: post.CreatedAt,
		})
		if err := s.publisher.PublishNotificationEvent(ctx, event); err != nil {
			s.logger.Error("failed to publish bulletin event", "post_id", post.ID, "error", err)
		}
	}
	return nil
}

func (s *bulletinService) GetPost(ctx context.Context, id string) (*models.BulletinPost, error) {
	post, err := s.repo.Bulletin().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func (s *bulletinService) ListPosts(ctx context.Context, filters repositories.BulletinFilters) ([]*models.BulletinPost, error) {
	return s.repo.Bulletin().List(ctx, filters)
}

func (s *bulletinService) DeletePost(ctx context.Context, id string) error {
	if _, err := s.GetPost(ctx, id); err != nil {
		return err
	}
	return s.repo.Bulletin().Delete(ctx, id)
}
