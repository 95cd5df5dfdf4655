package postgres

import (
	"gorm.io/gorm"

	"github.com/intranet-suite/survey-service/internal/repositories"
)

// Repository bundles all PostgreSQL-backed entity repositories.
type Repository struct {
	db *gorm.DB

	question repositories.QuestionRepository
	category repositories.CategoryRepository
	response repositories.ResponseRepository
	document repositories.DocumentRepository
	bulletin repositories.BulletinRepository
	user     repositories.UserRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		db:       db,
		question: NewQuestionPostgreSQL(db),
		category: NewCategoryPostgreSQL(db),
		response: NewResponsePostgreSQL(db),
		document: NewDocumentPostgreSQL(db),
		bulletin: NewBulletinPostgreSQL(db),
		user:     NewUserPostgreSQL(db),
	}
}

func (r *Repository) Question() repositories.QuestionRepository { return r.question }
func (r *Repository) Category() repositories.CategoryRepository { return r.category }
func (r *Repository) Response() repositories.ResponseRepository { return r.response }
func (r *Repository) Document() repositories.DocumentRepository { return r.document }
func (r *Repository) Bulletin() repositories.BulletinRepository { return r.bulletin }
func (r *Repository) User() repositories.UserRepository         { return r.user }
