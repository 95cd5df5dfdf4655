package models

import (
	"time"

	"gorm.io/gorm"
)

// ResponseRecord is one submitted answer: the unit sent to the backend during
// finalization, one per answered question. Score is 0 or the question's weight
// and only meaningful for scorable question types.
type ResponseRecord struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	UserID     string `json:"user_id" gorm:"not null;size:40;index" validate:"required"`
	QuestionID string `json:"question_id" gorm:"not null;size:40;index" validate:"required"`
	Answer     string `json:"answer" gorm:"type:text"`
	Score      int    `json:"score"`

	SubsectionID string    `json:"subsection_id" gorm:"size:40;index"`
	CreatedAt    time.Time `json:"created_at"`

	Question *Question `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
}

func (ResponseRecord) TableName() string {
	return "responses"
}

type UserRole string

const (
	RoleEmployee UserRole = "employee"
	RoleAdmin    UserRole = "admin"
)

type User struct {
	ID        string         `json:"id" gorm:"primaryKey;size:40"`
	Name      string         `json:"name" gorm:"not null;size:200"`
	Email     string         `json:"email" gorm:"size:200;uniqueIndex"`
	Role      UserRole       `json:"role" gorm:"default:employee"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
