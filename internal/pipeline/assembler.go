package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"melomap/internal/catalog"
	"melomap/internal/keywords"
	"melomap/internal/models"
)

// Catalog is the slice of the song store the assembler needs.
type Catalog interface {
	CreateIfAbsent(ctx context.Context, rec catalog.TrackRecord) (*models.Song, error)
}

// PostStore persists an assembled post and its song associations as
// one atomic unit.
type PostStore interface {
	CreateWithSongs(ctx context.Context, post *models.Post, songs []models.Song) error
}

// ErrExtraction marks a failed keyword extraction: the run aborts
// before anything is persisted.
var ErrExtraction = errors.New("keyword extraction failed")

// ErrCommit marks a persistence failure after resolution. Songs
// already inserted into the catalog stay (orphan catalog rows are
// tolerated, orphan posts are not).
var ErrCommit = errors.New("post commit failed")

// Assembler runs the image-to-music pipeline: extract keywords,
// resolve each to a track, dedup against the catalog, commit a post.
type Assembler struct {
	extractor keywords.Extractor
	resolver  catalog.Resolver
	catalog   Catalog
	posts     PostStore
}

func NewAssembler(extractor keywords.Extractor, resolver catalog.Resolver, cat Catalog, posts PostStore) *Assembler {
	return &Assembler{
		extractor: extractor,
		resolver:  resolver,
		catalog:   cat,
		posts:     posts,
	}
}

// Assemble executes one pipeline run for an uploaded photo. imageKey
// is the storage key the photo was saved under. Keywords that resolve
// to nothing (no match, credential failure) are skipped silently; a
// post with zero songs is a valid outcome.
func (a *Assembler) Assemble(ctx context.Context, image []byte, imageKey, description string, userID uint) (*models.Post, error) {
	// Step 1: keywords. Any failure here is terminal for the run.
	kws, err := a.extractor.Extract(ctx, image)
	if err != nil {
		extractionFailures.Inc()
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	// Step 2: resolve each keyword. The searches are independent, so
	// they fan out; the slice keeps results in keyword order no
	// matter which call finishes first.
	records := make([]*catalog.TrackRecord, len(kws))
	g, gctx := errgroup.WithContext(ctx)
	for i, kw := range kws {
		g.Go(func() error {
			rec, err := a.resolver.Resolve(gctx, kw)
			if err != nil {
				// A miss or a failed token exchange costs only this
				// keyword's contribution.
				resolutionMisses.Inc()
				if !errors.Is(err, catalog.ErrNoMatch) {
					slog.Warn("keyword resolution failed", "keyword", kw, "error", err)
				}
				return nil
			}
			records[i] = rec
			return nil
		})
	}
	g.Wait()

	// Step 3: dedup into the catalog. Two keywords resolving to the
	// same track collapse to one song.
	seen := make(map[string]bool)
	var songs []models.Song
	for _, rec := range records {
		if rec == nil || seen[rec.SpotifyTrackID] {
			continue
		}
		seen[rec.SpotifyTrackID] = true

		song, err := a.catalog.CreateIfAbsent(ctx, *rec)
		if errors.Is(err, catalog.ErrInvalidRecord) {
			// Malformed record: drop this keyword's contribution
			// rather than abort the run, mirroring miss tolerance.
			slog.Warn("skipping unpersistable track record", "spotify_track_id", rec.SpotifyTrackID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCommit, err)
		}
		songs = append(songs, *song)
	}

	// Step 4: commit the post and its associations atomically.
	post := &models.Post{
		UserID:      userID,
		Image:       imageKey,
		Description: description,
	}
	if err := a.posts.CreateWithSongs(ctx, post, songs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCommit, err)
	}

	postsAssembled.Inc()
	slog.Info("assembled post", "post_id", post.ID, "user_id", userID,
		"keywords", len(kws), "songs", len(songs))
	return post, nil
}
