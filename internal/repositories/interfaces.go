package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/intranet-suite/survey-service/internal/models"
)

// Repository aggregates all entity repositories behind one injection point.
type Repository interface {
	Question() QuestionRepository
	Category() CategoryRepository
	Response() ResponseRepository
	Document() DocumentRepository
	Bulletin() BulletinRepository
	User() UserRepository
}

// ===== ENTITY REPOSITORIES =====

type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id string) (*models.Question, error)
	List(ctx context.Context, filters QuestionFilters) ([]*models.Question, error)
	GetBySubsection(ctx context.Context, subsectionID string) ([]*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id string) error
}

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id string) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
}

type ResponseRepository interface {
	Create(ctx context.Context, response *models.ResponseRecord) error
	GetBySubsection(ctx context.Context, subsectionID string) ([]*models.ResponseRecord, error)
	GetByUser(ctx context.Context, userID string, filters ResponseFilters) ([]*models.ResponseRecord, error)
	CountByUserAndSubsection(ctx context.Context, userID, subsectionID string) (int64, error)
}

type DocumentRepository interface {
	CreateSection(ctx context.Context, section *models.Section) error
	ListSections(ctx context.Context) ([]*models.Section, error)
	CreateSubsection(ctx context.Context, subsection *models.Subsection) error
	GetSubsection(ctx context.Context, id string) (*models.Subsection, error)
	ListSubsections(ctx context.Context, sectionID string) ([]*models.Subsection, error)
	CreateFile(ctx context.Context, file *models.DocumentFile) error
	ListFiles(ctx context.Context, subsectionID string) ([]*models.DocumentFile, error)
	DeleteFile(ctx context.Context, id string) error
}

type BulletinRepository interface {
	Create(ctx context.Context, post *models.BulletinPost) error
	GetByID(ctx context.Context, id string) (*models.BulletinPost, error)
	List(ctx context.Context, filters BulletinFilters) ([]*models.BulletinPost, error)
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
}

// ===== SHARED FILTER STRUCTS =====

type QuestionFilters struct {
	CategoryID   *string             `json:"category_id"`
	SubsectionID *string             `json:"subsection_id"`
	Type         *models.QuestionType `json:"type"`
	Limit        int                 `json:"limit"`
	Offset       int                 `json:"offset"`
}

type ResponseFilters struct {
	SubsectionID *string    `json:"subsection_id"`
	DateFrom     *time.Time `json:"date_from"`
	DateTo       *time.Time `json:"date_to"`
	Limit        int        `json:"limit"`
	Offset       int        `json:"offset"`
}

type BulletinFilters struct {
	Kind     *models.BulletinKind `json:"kind"`
	DateFrom *time.Time           `json:"date_from"`
	DateTo   *time.Time           `json:"date_to"`
	Limit    int                  `json:"limit"`
	Offset   int                  `json:"offset"`
}

// ===== ERROR HELPERS =====

// IsNotFoundError reports whether err is the database's record-not-found.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
