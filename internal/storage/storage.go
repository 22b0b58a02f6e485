package storage

import (
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"

	"melomap/internal/config"
)

// Client routes post and profile images to the configured backend.
type Client struct {
	backend       Provider
	bucketImages  string
	bucketProfile string
}

func New(cfg *config.Config) *Client {
	var backend Provider

	if cfg.Storage.Provider == "local" {
		backend = NewLocalProvider(cfg.Storage.LocalRoot)
	} else {
		s3Config := &aws.Config{
			Credentials:      credentials.NewStaticCredentials(cfg.Storage.KeyID, cfg.Storage.AppKey, ""),
			Endpoint:         aws.String(cfg.Storage.Endpoint),
			Region:           aws.String(cfg.Storage.Region),
			S3ForcePathStyle: aws.Bool(true),
		}
		sess := session.Must(session.NewSession(s3Config))
		backend = NewS3Provider(sess)
	}

	return &Client{
		backend:       backend,
		bucketImages:  cfg.Storage.BucketImages,
		bucketProfile: cfg.Storage.BucketProfile,
	}
}

// --- Post images ---

func (c *Client) UploadPostImage(key string, body io.ReadSeeker, contentType string) error {
	return c.backend.Put(c.bucketImages, key, body, contentType)
}

func (c *Client) GetPostImage(key string) (*FileObject, error) {
	return c.backend.Get(c.bucketImages, key)
}

func (c *Client) DeletePostImage(key string) error {
	return c.backend.Delete(c.bucketImages, key)
}

// --- Profile images ---

func (c *Client) UploadProfileImage(key string, body io.ReadSeeker, contentType string) error {
	return c.backend.Put(c.bucketProfile, key, body, contentType)
}

func (c *Client) GetProfileImage(key string) (*FileObject, error) {
	return c.backend.Get(c.bucketProfile, key)
}
