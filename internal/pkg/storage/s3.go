package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Cover keys embed a random id, so objects never change once written.
const immutableCache = "public, max-age=31536000, immutable"

// S3Storage keeps media in an S3 compatible bucket (AWS, MinIO, R2)
type S3Storage struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3Storage creates the client. A custom endpoint switches to path-style addressing.
func NewS3Storage(cfg Config) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	endpoint := strings.TrimRight(cfg.S3Endpoint, "/")
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client:  client,
		bucket:  cfg.S3Bucket,
		baseURL: s3BaseURL(cfg.S3PublicURL, endpoint, cfg.S3Bucket),
	}, nil
}

// s3BaseURL picks the public prefix: explicit CDN url, then path-style endpoint, then AWS virtual host.
func s3BaseURL(publicURL, endpoint, bucket string) string {
	switch {
	case publicURL != "":
		return strings.TrimRight(publicURL, "/")
	case endpoint != "":
		return endpoint + "/" + bucket
	default:
		return "https://" + bucket + ".s3.amazonaws.com"
	}
}

func (s *S3Storage) Put(ctx context.Context, key string, reader io.Reader, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         reader,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(immutableCache),
	})
	if err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	return nil
}

// Delete is idempotent on the S3 side, missing keys succeed.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *S3Storage) GetURL(key string) string {
	u, err := url.JoinPath(s.baseURL, key)
	if err != nil {
		return s.baseURL + "/" + key
	}
	return u
}
