package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BulletinKind string

const (
	BulletinAnnouncement BulletinKind = "announcement"
	BulletinEvent        BulletinKind = "event"
)

// BulletinPost backs both the announcement board and the calendar view. Posts
// of kind "event" carry StartsAt/EndsAt and show up in date-range queries.
type BulletinPost struct {
	ID    string       `json:"id" gorm:"primaryKey;size:40"`
	Kind  BulletinKind `json:"kind" gorm:"not null;default:announcement;index" validate:"omitempty,oneof=announcement event"`
	Title string       `json:"title" gorm:"not null;size:300" validate:"required,min=1,max=300"`
	Body  string       `json:"body" gorm:"type:text"`

	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`

	// Free-form extras: location, attachment refs, banner image key.
	Metadata datatypes.JSON `json:"metadata" gorm:"type:jsonb"`

	CreatedBy string         `json:"created_by" gorm:"size:40;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (BulletinPost) TableName() string {
	return "bulletin_posts"
}
