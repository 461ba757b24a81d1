package rulesource

import (
	"context"
	"fmt"
)

type downloader interface {
	Download(key string) ([]byte, error)
}

// S3 reads a rule table object from the configured bucket.
type S3 struct {
	client downloader
	key    string
}

func NewS3(client downloader, key string) *S3 {
	return &S3{client: client, key: key}
}

func (s *S3) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.client.Download(s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to download rule table: %w", err)
	}
	return data, nil
}

func (s *S3) Name() string {
	return "s3://" + s.key
}
