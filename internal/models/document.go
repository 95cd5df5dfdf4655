package models

import (
	"time"

	"gorm.io/gorm"
)

// Document center hierarchy: sections own subsections, subsections own file
// records and surveys. Only metadata lives here; blob storage is external.

type Section struct {
	ID        string         `json:"id" gorm:"primaryKey;size:40"`
	Name      string         `json:"name" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Order     int            `json:"order" gorm:"default:0"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Subsections []Subsection `json:"subsections,omitempty" gorm:"foreignKey:SectionID"`
}

func (Section) TableName() string {
	return "sections"
}

type Subsection struct {
	ID        string         `json:"id" gorm:"primaryKey;size:40"`
	SectionID string         `json:"section_id" gorm:"not null;size:40;index" validate:"required"`
	Name      string         `json:"name" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Order     int            `json:"order" gorm:"default:0"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Section   *Section       `json:"section,omitempty" gorm:"foreignKey:SectionID"`
	Documents []DocumentFile `json:"documents,omitempty" gorm:"foreignKey:SubsectionID"`
}

func (Subsection) TableName() string {
	return "subsections"
}

type DocumentFile struct {
	ID           string         `json:"id" gorm:"primaryKey;size:40"`
	SubsectionID string         `json:"subsection_id" gorm:"not null;size:40;index" validate:"required"`
	Name         string         `json:"name" gorm:"not null;size:300" validate:"required"`
	ContentType  string         `json:"content_type" gorm:"size:100"`
	SizeBytes    int64          `json:"size_bytes"`
	StorageKey   string         `json:"storage_key" gorm:"size:500"`
	UploadedBy   string         `json:"uploaded_by" gorm:"size:40;index"`
	CreatedAt    time.Time      `json:"created_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

func (DocumentFile) TableName() string {
	return "document_files"
}
