package storage

import (
	"bytes"
	"io"
	"testing"

	"melomap/internal/config"
)

func localClient(t *testing.T) *Client {
	t.Helper()
	cfg := &config.Config{}
	cfg.Storage.Provider = "local"
	cfg.Storage.LocalRoot = t.TempDir()
	cfg.Storage.BucketImages = "post-images"
	cfg.Storage.BucketProfile = "profile-images"
	return New(cfg)
}

func TestPostImageRoundTrip(t *testing.T) {
	c := localClient(t)

	payload := []byte("jpeg-bytes")
	if err := c.UploadPostImage("abc_photo.jpg", bytes.NewReader(payload), "image/jpeg"); err != nil {
		t.Fatalf("upload: %v", err)
	}

	obj, err := c.GetPostImage("abc_photo.jpg")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer obj.Body.Close()

	got, _ := io.ReadAll(obj.Body)
	if !bytes.Equal(got, payload) {
		t.Errorf("round trip mismatch: %q", got)
	}
	if obj.ContentLength != int64(len(payload)) {
		t.Errorf("content length: expected %d, got %d", len(payload), obj.ContentLength)
	}

	if err := c.DeletePostImage("abc_photo.jpg"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.GetPostImage("abc_photo.jpg"); err == nil {
		t.Error("expected error fetching deleted image")
	}
}

func TestBucketsIsolated(t *testing.T) {
	c := localClient(t)

	if err := c.UploadProfileImage("me.png", bytes.NewReader([]byte("png")), "image/png"); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if _, err := c.GetPostImage("me.png"); err == nil {
		t.Error("profile image must not be visible in the post bucket")
	}
}
