package storage

import (
	"context"
	"io"
)

// Service writes encoded media to remote object storage and reports the
// public address of stored objects.
type Service interface {
	Put(ctx context.Context, bucket, key string, body io.Reader, contentType string) error
	ObjectURL(bucket, key string) string
}
