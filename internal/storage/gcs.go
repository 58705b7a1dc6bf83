package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore stores objects in a Google Cloud Storage bucket.
type GCSStore struct {
	client    *gcs.Client
	bucket    string
	publicURL string
}

// NewGCSClient prefers explicit credentials JSON and falls back to
// application default credentials.
func NewGCSClient(ctx context.Context, credentialsJSON string) (*gcs.Client, error) {
	if strings.TrimSpace(credentialsJSON) != "" {
		return gcs.NewClient(ctx, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	return gcs.NewClient(ctx)
}

// NewGCSStore wraps client for bucket. An empty publicURL defaults to the
// storage.googleapis.com path for the bucket.
func NewGCSStore(client *gcs.Client, bucket, publicURL string) *GCSStore {
	if publicURL == "" {
		publicURL = "https://storage.googleapis.com/" + bucket
	}
	return &GCSStore{client: client, bucket: bucket, publicURL: publicURL}
}

func (s *GCSStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	wc := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return fmt.Errorf("storage: put gs://%s/%s: %w", s.bucket, key, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("storage: close gs://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

func (s *GCSStore) Get(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("storage: get gs://%s/%s: %w", s.bucket, key, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (s *GCSStore) URL(key string) string {
	return PublicURL(s.publicURL, key)
}
