package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

const searchBody = `{"tracks":{"items":[{
	"id":"6rqhFgbbKwnb9MLmUQDhG6",
	"name":"Space Oddity",
	"artists":[{"name":"David Bowie"},{"name":"Tony Visconti"}],
	"album":{
		"name":"David Bowie (aka Space Oddity)",
		"release_date":"1969-11-14",
		"images":[{"url":"https://i.scdn.co/image/first"},{"url":"https://i.scdn.co/image/small"}]
	},
	"external_urls":{"spotify":"https://open.spotify.com/track/6rqhFgbbKwnb9MLmUQDhG6"},
	"preview_url":null
}]}}`

func newTestSpotify(t *testing.T, tokenStatus int, search http.HandlerFunc) *SpotifyClient {
	t.Helper()
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := r.BasicAuth(); !ok {
			t.Error("token exchange missing basic auth")
		}
		if r.FormValue("grant_type") != "client_credentials" {
			t.Errorf("unexpected grant_type %q", r.FormValue("grant_type"))
		}
		if tokenStatus != http.StatusOK {
			w.WriteHeader(tokenStatus)
			return
		}
		w.Write([]byte(`{"access_token":"test-token","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(tokenSrv.Close)

	searchSrv := httptest.NewServer(search)
	t.Cleanup(searchSrv.Close)

	client := NewSpotifyClient(tokenSrv.URL, searchSrv.URL, "id", "secret")
	client.offset = func() int { return 42 } // pin the randomized offset
	return client
}

func TestResolveNormalizesTrack(t *testing.T) {
	client := newTestSpotify(t, http.StatusOK, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected auth header %q", got)
		}
		q := r.URL.Query()
		if q.Get("limit") != "1" || q.Get("type") != "track" {
			t.Errorf("unexpected query %v", q)
		}
		if off, _ := strconv.Atoi(q.Get("offset")); off != 42 {
			t.Errorf("expected pinned offset 42, got %q", q.Get("offset"))
		}
		w.Write([]byte(searchBody))
	})

	rec, err := client.Resolve(context.Background(), "space")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if rec.SpotifyTrackID != "6rqhFgbbKwnb9MLmUQDhG6" {
		t.Errorf("wrong external id: %q", rec.SpotifyTrackID)
	}
	if rec.Artists != "David Bowie, Tony Visconti" {
		t.Errorf("artists not joined: %q", rec.Artists)
	}
	if rec.AlbumYear != "1969" {
		t.Errorf("year not truncated: %q", rec.AlbumYear)
	}
	if rec.ImageURL != "https://i.scdn.co/image/first" {
		t.Errorf("expected first image variant, got %q", rec.ImageURL)
	}
	if rec.AudioURL != nil {
		t.Errorf("expected nil preview URL, got %v", *rec.AudioURL)
	}
	if rec.SpotifyURL == "" {
		t.Error("canonical URL must be present")
	}
}

func TestResolveNoMatch(t *testing.T) {
	client := newTestSpotify(t, http.StatusOK, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tracks":{"items":[]}}`))
	})

	_, err := client.Resolve(context.Background(), "zzzzzz")
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestResolveTokenFailure(t *testing.T) {
	client := newTestSpotify(t, http.StatusUnauthorized, func(w http.ResponseWriter, r *http.Request) {
		t.Error("search must not be called when token exchange fails")
	})

	if _, err := client.Resolve(context.Background(), "anything"); err == nil {
		t.Fatal("expected error on credential failure")
	}
}
