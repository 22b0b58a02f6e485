package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"melomap/internal/models"
)

// TrackRecord is the normalized result of one catalog search. It is
// transient: the persisted projection is models.Song.
type TrackRecord struct {
	Title          string
	Artists        string // comma-joined display string
	Album          string
	AlbumYear      string // 4-digit year, may be empty
	SpotifyTrackID string
	SpotifyURL     string
	AudioURL       *string
	ImageURL       string
}

// Resolver turns one keyword into a track record. ErrNoMatch means
// the keyword contributes nothing; any other error is treated the
// same way by the pipeline (per-keyword, never run-fatal).
type Resolver interface {
	Resolve(ctx context.Context, keyword string) (*TrackRecord, error)
}

// ErrNoMatch is returned when a search yields zero results.
var ErrNoMatch = errors.New("no track matched keyword")

// ErrInvalidRecord is returned when a record is missing its title or
// external id and therefore cannot be persisted.
var ErrInvalidRecord = errors.New("track record missing required fields")

// Catalog is the persisted song store, deduplicated on the Spotify
// track id.
type Catalog struct {
	db *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

// FindByExternalID looks up a song by its Spotify track id. Returns
// (nil, nil) when no row exists.
func (c *Catalog) FindByExternalID(ctx context.Context, id string) (*models.Song, error) {
	var song models.Song
	err := c.db.WithContext(ctx).Where("spotify_track_id = ?", id).First(&song).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog lookup: %w", err)
	}
	return &song, nil
}

// CreateIfAbsent returns the existing song for the record's external
// id, or persists a new one. Existing rows win unchanged even when
// the fresh record differs (e.g. a rotated preview URL).
//
// Two concurrent callers can both observe "absent" for the same id;
// the unique index on spotify_track_id rejects the loser, which then
// re-fetches the winner's row. One retry is always enough because the
// row cannot disappear (the pipeline never deletes songs).
func (c *Catalog) CreateIfAbsent(ctx context.Context, rec TrackRecord) (*models.Song, error) {
	if rec.SpotifyTrackID == "" || rec.Title == "" {
		return nil, ErrInvalidRecord
	}

	existing, err := c.FindByExternalID(ctx, rec.SpotifyTrackID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	song := models.Song{
		Title:          rec.Title,
		Artists:        rec.Artists,
		Album:          rec.Album,
		AlbumYear:      rec.AlbumYear,
		SpotifyTrackID: rec.SpotifyTrackID,
		SpotifyURL:     rec.SpotifyURL,
		AudioURL:       rec.AudioURL,
		ImageURL:       rec.ImageURL,
	}
	err = c.db.WithContext(ctx).Create(&song).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost the insert race; the winner's row is authoritative.
		winner, ferr := c.FindByExternalID(ctx, rec.SpotifyTrackID)
		if ferr != nil {
			return nil, ferr
		}
		if winner == nil {
			return nil, fmt.Errorf("catalog insert conflict but no row for %q", rec.SpotifyTrackID)
		}
		return winner, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog insert: %w", err)
	}
	return &song, nil
}
