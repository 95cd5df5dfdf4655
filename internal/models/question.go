package models

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	QuestionTypeStandard    QuestionType = "standard"
	QuestionTypeOptional    QuestionType = "optional"
	QuestionTypeDescriptive QuestionType = "descriptive"
	QuestionTypeFileUpload  QuestionType = "file-upload"
)

// Scorable reports whether the question type contributes to the score
// denominator. Descriptive and file-upload responses are never scored.
func (t QuestionType) Scorable() bool {
	return t == QuestionTypeStandard || t == QuestionTypeOptional
}

type Question struct {
	ID     string `json:"id" gorm:"primaryKey;size:40"`
	Prompt string `json:"prompt" gorm:"not null;type:text" validate:"required"`

	// Ordered selectable options, stored as a JSON array. Typically four.
	Options datatypes.JSON `json:"options" gorm:"type:jsonb"`

	// CorrectOption is nil for non-scorable types; it is never sent to a taker
	// during an active attempt.
	CorrectOption *string `json:"correct_option,omitempty" gorm:"size:500"`

	CategoryID   *string      `json:"category_id" gorm:"size:40;index"`
	SubsectionID string       `json:"subsection_id" gorm:"size:40;index"`
	Type         QuestionType `json:"question_type" gorm:"not null;default:standard" validate:"omitempty,oneof=standard optional descriptive file-upload"`

	// MaxScore is the weight a correct answer earns. Zero means unset and is
	// treated as 1 everywhere.
	MaxScore int `json:"max_score" gorm:"default:1" validate:"min=0"`

	Order     int            `json:"order" gorm:"default:0"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (Question) TableName() string {
	return "questions"
}

// OptionList decodes the stored JSON options array.
func (q *Question) OptionList() []string {
	var options []string
	if len(q.Options) == 0 {
		return options
	}
	_ = json.Unmarshal(q.Options, &options)
	return options
}

// Weight returns the effective score weight, defaulting absent MaxScore to 1.
func (q *Question) Weight() int {
	if q.MaxScore <= 0 {
		return 1
	}
	return q.MaxScore
}

// IsCorrect compares a taker's answer against the correct option. Whitespace
// around the answer is ignored; an empty answer is never correct.
func (q *Question) IsCorrect(answer string) bool {
	if q.CorrectOption == nil {
		return false
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false
	}
	return answer == *q.CorrectOption
}

type Category struct {
	ID        string         `json:"id" gorm:"primaryKey;size:40"`
	Name      string         `json:"name" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Order     int            `json:"order" gorm:"default:0"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Category) TableName() string {
	return "categories"
}
