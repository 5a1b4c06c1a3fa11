// Package storage hands out presigned URLs for catalog images kept in an
// S3-compatible bucket.
package storage

import (
	"context"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/apperr"
)

const DefaultPresignedURLExpiry = 15 * time.Minute

var ErrDisabled = apperr.Unavailable("object storage is not configured")

type FileStorage interface {
	GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error)
}

// Disabled is used when no bucket is configured.
type Disabled struct{}

func (Disabled) GeneratePresignedUploadURL(context.Context, string, string, time.Duration) (string, error) {
	return "", ErrDisabled
}
