// Package storage uploads quality-control photos to S3.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"smartfactory/pkg/config"
)

// Uploader stores files in the configured S3 bucket and returns public URLs.
type Uploader struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewUploader builds an S3 uploader using the default credential chain.
func NewUploader(ctx context.Context, cfg config.StorageConfig) (*Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS default config: %w", err)
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &Uploader{
		client:        s3.NewFromConfig(awsCfg),
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Upload stores the stream under the given object key and returns the public
// URL of the stored object.
func (u *Uploader) Upload(ctx context.Context, objectKey string, body io.Reader) (string, error) {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &u.bucket,
		Key:    &objectKey,
		Body:   body,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return fmt.Sprintf("%s/%s", u.publicBaseURL, objectKey), nil
}
