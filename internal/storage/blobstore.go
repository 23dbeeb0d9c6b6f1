package storage

import "context"

// BlobStore abstracts the object-storage containers used for report data and
// outgoing email payloads. The notify pipeline passes blob references, never
// blob contents, through its queues.
type BlobStore interface {
	Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error
	Download(ctx context.Context, bucket, key string) ([]byte, error)
	Delete(ctx context.Context, bucket, key string) error
}
