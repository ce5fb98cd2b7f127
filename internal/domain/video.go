package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Video is owned by the content catalog; this service only reads it and bumps views.
type Video struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Title        string    `json:"title" gorm:"not null"`
	Description  string    `json:"description"`
	VideoFileURL string    `json:"videoFile" gorm:"not null"`
	ThumbnailURL string    `json:"thumbnail" gorm:"not null"`
	Duration     float64   `json:"duration" gorm:"not null;default:0"`
	Views        int64     `json:"views" gorm:"not null;default:0"`
	IsPublished  bool      `json:"isPublished" gorm:"not null"`
	OwnerID      uuid.UUID `json:"ownerId" gorm:"type:uuid;not null;index"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Owner *User `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}

func (v *Video) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
