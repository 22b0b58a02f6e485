package catalog

import (
	"context"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"melomap/internal/models"
)

// setupTestDB creates a throwaway in-memory DB. A single connection
// keeps sqlite from tripping over concurrent writers in tests.
func setupTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.User{}, &models.Song{}, &models.Post{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func record(id, title string) TrackRecord {
	preview := "https://p.scdn.co/preview/" + id
	return TrackRecord{
		Title:          title,
		Artists:        "Artist A, Artist B",
		Album:          "Album",
		AlbumYear:      "2001",
		SpotifyTrackID: id,
		SpotifyURL:     "https://open.spotify.com/track/" + id,
		AudioURL:       &preview,
		ImageURL:       "https://i.scdn.co/image/" + id,
	}
}

func TestCreateIfAbsentIdempotent(t *testing.T) {
	db := setupTestDB(t, "catalog_idempotent")
	cat := NewCatalog(db)
	ctx := context.Background()

	first, err := cat.CreateIfAbsent(ctx, record("ABC123", "First Title"))
	if err != nil {
		t.Fatalf("first CreateIfAbsent: %v", err)
	}

	second, err := cat.CreateIfAbsent(ctx, record("ABC123", "Different Title"))
	if err != nil {
		t.Fatalf("second CreateIfAbsent: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("expected same song identity, got %d and %d", first.ID, second.ID)
	}

	// Existing catalog data wins: the second record's title is ignored.
	if second.Title != "First Title" {
		t.Errorf("expected existing title to win, got %q", second.Title)
	}

	var count int64
	db.Model(&models.Song{}).Where("spotify_track_id = ?", "ABC123").Count(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 row for ABC123, found %d", count)
	}
}

func TestCreateIfAbsentValidation(t *testing.T) {
	db := setupTestDB(t, "catalog_validation")
	cat := NewCatalog(db)
	ctx := context.Background()

	missingTitle := record("XYZ789", "")
	if _, err := cat.CreateIfAbsent(ctx, missingTitle); err != ErrInvalidRecord {
		t.Errorf("expected ErrInvalidRecord for empty title, got %v", err)
	}

	missingID := record("", "Has Title")
	if _, err := cat.CreateIfAbsent(ctx, missingID); err != ErrInvalidRecord {
		t.Errorf("expected ErrInvalidRecord for empty external id, got %v", err)
	}

	var count int64
	db.Model(&models.Song{}).Count(&count)
	if count != 0 {
		t.Errorf("no rows should exist after rejected records, found %d", count)
	}
}

func TestFindByExternalIDAbsent(t *testing.T) {
	db := setupTestDB(t, "catalog_absent")
	cat := NewCatalog(db)

	song, err := cat.FindByExternalID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if song != nil {
		t.Errorf("expected nil for absent id, got %+v", song)
	}
}

// Simultaneous callers resolving the same external id must collapse
// to one row: the unique index rejects the loser, which re-fetches.
func TestCreateIfAbsentConcurrent(t *testing.T) {
	db := setupTestDB(t, "catalog_concurrent")
	cat := NewCatalog(db)

	const workers = 8
	var wg sync.WaitGroup
	ids := make([]uint, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			song, err := cat.CreateIfAbsent(context.Background(), record("RACE01", "Raced Title"))
			if err != nil {
				errs[n] = err
				return
			}
			ids[n] = song.ID
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d failed: %v", i, err)
		}
	}
	for i := 1; i < workers; i++ {
		if ids[i] != ids[0] {
			t.Errorf("worker %d got song %d, worker 0 got %d", i, ids[i], ids[0])
		}
	}

	var count int64
	db.Model(&models.Song{}).Where("spotify_track_id = ?", "RACE01").Count(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 row after concurrent inserts, found %d", count)
	}
}
