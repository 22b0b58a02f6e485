package models

import (
	"time"
)

// Post links one user, an uploaded image and the set of songs one
// pipeline run resolved for it.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Image       string    `gorm:"type:text;not null" json:"image"` // storage key of the uploaded photo
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`

	User  User   `json:"-"`
	Songs []Song `gorm:"many2many:post_songs" json:"songs,omitempty"`
}
