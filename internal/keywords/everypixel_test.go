package keywords

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractOrderPreserved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.URL.Query().Get("num_keywords"); got != "5" {
			t.Errorf("expected num_keywords=5, got %q", got)
		}
		if _, _, ok := r.BasicAuth(); !ok {
			t.Error("expected basic auth credentials")
		}
		w.Write([]byte(`{"status":"ok","keywords":[
			{"keyword":"sunset","score":0.99},
			{"keyword":"beach","score":0.91},
			{"keyword":"waves","score":0.80}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "id", "key")
	got, err := client.Extract(context.Background(), []byte("fake-image"))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	want := []string{"sunset", "beach", "waves"}
	if len(got) != len(want) {
		t.Fatalf("expected %d keywords, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keyword %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestExtractServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "id", "key")
	if _, err := client.Extract(context.Background(), []byte("x")); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestExtractBadStatusField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","message":"bad image"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "id", "key")
	if _, err := client.Extract(context.Background(), []byte("x")); err == nil {
		t.Fatal("expected error on non-ok status field")
	}
}

func TestExtractMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "id", "key")
	if _, err := client.Extract(context.Background(), []byte("x")); err == nil {
		t.Fatal("expected error on unparseable body")
	}
}
