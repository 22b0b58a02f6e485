package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// searchOffsetWindow bounds the randomized result offset. Searching
// at a random offset keeps generic keywords ("love", "summer") from
// always resolving to the same globally-popular track.
const searchOffsetWindow = 150

// SpotifyClient resolves keywords against the Spotify search API
// using the client-credentials flow. The short-lived bearer token is
// re-acquired for every resolution; nothing is cached.
type SpotifyClient struct {
	TokenURL  string
	SearchURL string
	ClientID  string
	Secret    string

	httpClient *http.Client
	offset     func() int
}

func NewSpotifyClient(tokenURL, searchURL, clientID, secret string) *SpotifyClient {
	return &SpotifyClient{
		TokenURL:   tokenURL,
		SearchURL:  searchURL,
		ClientID:   clientID,
		Secret:     secret,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		offset:     func() int { return rand.IntN(searchOffsetWindow + 1) },
	}
}

func (s *SpotifyClient) token(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(s.ClientID, s.Secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("token exchange status %d", resp.StatusCode)
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("token response: %w", err)
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}
	return result.AccessToken, nil
}

// Resolve searches for the single best match at a randomized offset
// and normalizes it into a TrackRecord. A token-exchange failure
// fails only this keyword's resolution.
func (s *SpotifyClient) Resolve(ctx context.Context, keyword string) (*TrackRecord, error) {
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(s.SearchURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("q", keyword)
	q.Set("type", "track")
	q.Set("limit", "1")
	q.Set("offset", strconv.Itoa(s.offset()))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("track search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("track search status %d", resp.StatusCode)
	}

	var result struct {
		Tracks struct {
			Items []struct {
				ID      string `json:"id"`
				Name    string `json:"name"`
				Artists []struct {
					Name string `json:"name"`
				} `json:"artists"`
				Album struct {
					Name        string `json:"name"`
					ReleaseDate string `json:"release_date"`
					Images      []struct {
						URL string `json:"url"`
					} `json:"images"`
				} `json:"album"`
				ExternalURLs struct {
					Spotify string `json:"spotify"`
				} `json:"external_urls"`
				PreviewURL *string `json:"preview_url"`
			} `json:"items"`
		} `json:"tracks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("search response: %w", err)
	}

	if len(result.Tracks.Items) == 0 {
		return nil, ErrNoMatch
	}

	item := result.Tracks.Items[0]

	names := make([]string, 0, len(item.Artists))
	for _, a := range item.Artists {
		names = append(names, a.Name)
	}

	year := item.Album.ReleaseDate
	if len(year) > 4 {
		year = year[:4]
	}

	imageURL := ""
	if len(item.Album.Images) > 0 {
		imageURL = item.Album.Images[0].URL
	}

	return &TrackRecord{
		Title:          item.Name,
		Artists:        strings.Join(names, ", "),
		Album:          item.Album.Name,
		AlbumYear:      year,
		SpotifyTrackID: item.ID,
		SpotifyURL:     item.ExternalURLs.Spotify,
		AudioURL:       item.PreviewURL,
		ImageURL:       imageURL,
	}, nil
}
