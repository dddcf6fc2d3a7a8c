package storage

import (
	"context"
	"io"
	"time"
)

// PhotoRepository defines the interface for KYC photo storage operations.
// Objects are private; access goes through presigned URLs.
type PhotoRepository interface {
	Upload(ctx context.Context, objectKey string, data io.Reader, contentType string, size int64) (string, error)
	Delete(ctx context.Context, objectKey string) error
	GeneratePresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}
