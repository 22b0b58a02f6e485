package pipeline

import (
	"context"

	"gorm.io/gorm"

	"melomap/internal/models"
)

// GormPostStore commits posts through a gorm transaction.
type GormPostStore struct {
	db *gorm.DB
}

func NewGormPostStore(db *gorm.DB) *GormPostStore {
	return &GormPostStore{db: db}
}

// CreateWithSongs inserts the post row and its post_songs join rows
// in one transaction. The songs themselves already exist in the
// catalog; only the associations are written here.
func (s *GormPostStore) CreateWithSongs(ctx context.Context, post *models.Post, songs []models.Song) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		if len(songs) == 0 {
			return nil
		}
		if err := tx.Model(post).Association("Songs").Append(&songs); err != nil {
			return err
		}
		post.Songs = songs
		return nil
	})
}
