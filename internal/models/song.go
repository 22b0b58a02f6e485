package models

import (
	"time"
)

// Song is a deduplicated catalog row for a resolved Spotify track.
// SpotifyTrackID is the natural key: at most one row exists per
// external track id, enforced by the unique index plus the catalog's
// find-then-create logic.
type Song struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Title          string    `gorm:"not null;index" json:"title"`
	Artists        string    `gorm:"not null;index" json:"artists"` // comma-joined display string
	Album          string    `gorm:"index" json:"album"`
	AlbumYear      string    `gorm:"size:4" json:"album_year"`
	SpotifyTrackID string    `gorm:"uniqueIndex;not null" json:"spotify_track_id"`
	SpotifyURL     string    `gorm:"type:text;not null" json:"spotify_url"`
	AudioURL       *string   `gorm:"type:text" json:"audio_url"` // preview clip, often absent
	ImageURL       string    `gorm:"type:text" json:"image_url"`
	CreatedAt      time.Time `json:"created_at"`

	Posts []Post `gorm:"many2many:post_songs" json:"-"`
}
