package storage

import (
	"context"
	"fmt"
)

// Options selects and configures a backend.
type Options struct {
	Provider           string
	Bucket             string
	PublicURL          string
	S3Endpoint         string
	S3Region           string
	S3AccessKeyID      string
	S3SecretAccessKey  string
	GCSCredentialsJSON string
}

// Open builds the Store for opts.Provider.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Provider {
	case ProviderS3:
		client, err := NewS3Client(ctx, S3Options{
			Bucket:          opts.Bucket,
			Region:          opts.S3Region,
			Endpoint:        opts.S3Endpoint,
			AccessKeyID:     opts.S3AccessKeyID,
			SecretAccessKey: opts.S3SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		return NewS3Store(client, opts.Bucket, opts.PublicURL), nil
	case ProviderGCS:
		client, err := NewGCSClient(ctx, opts.GCSCredentialsJSON)
		if err != nil {
			return nil, fmt.Errorf("storage: gcs client: %w", err)
		}
		return NewGCSStore(client, opts.Bucket, opts.PublicURL), nil
	case ProviderMemory:
		return NewMemoryStore(opts.PublicURL), nil
	default:
		return nil, fmt.Errorf("storage: unknown provider %q", opts.Provider)
	}
}
