package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/volcengine/ve-tos-golang-sdk/v2/tos"
)

// TOSStore is a BlobStore backed by TOS object storage.
type TOSStore struct {
	client *tos.ClientV2
}

// NewTOSStore builds a TOS-backed store from static credentials.
func NewTOSStore(endpoint, region, accessKey, secretKey string) (*TOSStore, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("tos: endpoint and credentials are required")
	}

	credential := tos.NewStaticCredentials(accessKey, secretKey)
	client, err := tos.NewClientV2(endpoint,
		tos.WithCredentials(credential),
		tos.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("tos: create client: %w", err)
	}

	return &TOSStore{client: client}, nil
}

func (s *TOSStore) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	input := &tos.PutObjectV2Input{
		PutObjectBasicInput: tos.PutObjectBasicInput{
			Bucket:      bucket,
			Key:         key,
			ContentType: contentType,
		},
		Content: bytes.NewReader(data),
	}
	if _, err := s.client.PutObjectV2(ctx, input); err != nil {
		return fmt.Errorf("tos: put %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *TOSStore) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.client.GetObjectV2(ctx, &tos.GetObjectV2Input{
		Bucket: bucket,
		Key:    key,
	})
	if err != nil {
		return nil, fmt.Errorf("tos: get %s/%s: %w", bucket, key, err)
	}
	defer out.Content.Close()

	data, err := io.ReadAll(out.Content)
	if err != nil {
		return nil, fmt.Errorf("tos: read %s/%s: %w", bucket, key, err)
	}
	return data, nil
}

func (s *TOSStore) Delete(ctx context.Context, bucket, key string) error {
	if _, err := s.client.DeleteObjectV2(ctx, &tos.DeleteObjectV2Input{
		Bucket: bucket,
		Key:    key,
	}); err != nil {
		return fmt.Errorf("tos: delete %s/%s: %w", bucket, key, err)
	}
	return nil
}

// Close releases the underlying client resources.
func (s *TOSStore) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

var _ BlobStore = (*TOSStore)(nil)
