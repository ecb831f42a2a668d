package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Service stores objects in Amazon S3 (or compatible APIs such as tebi).
type S3Service struct {
	client   *s3.Client
	uploader *manager.Uploader
	endpoint string
}

// NewS3Service wraps an S3 client. endpoint is the public base URL objects
// are served from, e.g. "https://s3.tebi.io".
func NewS3Service(client *s3.Client, endpoint string) *S3Service {
	return &S3Service{
		client:   client,
		uploader: manager.NewUploader(client),
		endpoint: strings.TrimSuffix(endpoint, "/"),
	}
}

func (s *S3Service) Put(ctx context.Context, bucket, key string, body io.Reader, contentType string) error {
	if bucket == "" {
		return fmt.Errorf("storage bucket is required")
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("object key is required")
	}

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

// ObjectURL is the deterministic public address: endpoint/bucket/key.
func (s *S3Service) ObjectURL(bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", s.endpoint, bucket, key)
}

var _ Service = (*S3Service)(nil)
