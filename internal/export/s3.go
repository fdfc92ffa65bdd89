package export

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// Uploader stores an object remotely and returns its location.
type Uploader interface {
	Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) (string, error)
}

// S3Uploader uploads with s3manager.
type S3Uploader struct {
	uploader *s3manager.Uploader
}

// NewS3Uploader creates a session for region. An empty region falls back to the
// SDK's environment and shared config.
func NewS3Uploader(region string) (*S3Uploader, error) {
	cfg := &aws.Config{}
	if region != "" {
		cfg.Region = aws.String(region)
	}
	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            *cfg,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return &S3Uploader{uploader: s3manager.NewUploader(sess)}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) (string, error) {
	out, err := u.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload s3://%s/%s: %w", bucket, key, err)
	}
	return out.Location, nil
}

// ParseS3URL splits "s3://bucket/key" into bucket and key. ok is false for other
// destinations or when either part is missing.
func ParseS3URL(dest string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(dest, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
