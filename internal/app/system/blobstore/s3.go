// internal/app/system/blobstore/s3.go
package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// S3Config carries the settings for an S3-compatible backend. MinIO and
// SeaweedFS endpoints work with ForcePathStyle set.
type S3Config struct {
	Endpoint       string
	Region         string
	Bucket         string
	AccessKey      string
	SecretKey      string
	ForcePathStyle bool
	DisableTLS     bool

	// PublicBaseURL, when set, serves downloads as "<base>/<key>" without
	// presigning. Used when a CDN or public bucket fronts the objects.
	PublicBaseURL string

	SignedURLTTL time.Duration
}

// Configured reports whether the settings are complete enough to connect.
func (c S3Config) Configured() bool {
	return c.Endpoint != "" && c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type presignAPI interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4PresignedRequest, error)
}

// S3Store implements Store on top of the AWS SDK v2 client.
type S3Store struct {
	api       objectAPI
	presigner presignAPI
	cfg       S3Config
	cache     *urlCache
	logger    *zap.Logger
}

// NewS3 connects to the configured endpoint and returns a ready store.
func NewS3(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3Store, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.SignedURLTTL <= 0 {
		cfg.SignedURLTTL = DefaultSignedURLTTL
	}

	endpoint := cfg.Endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		scheme := "https"
		if cfg.DisableTLS {
			scheme = "http"
		}
		endpoint = fmt.Sprintf("%s://%s", scheme, endpoint)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		awsconfig.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.ForcePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	return &S3Store{
		api:       client,
		presigner: presignAdapter{s3.NewPresignClient(client)},
		cfg:       cfg,
		cache:     newURLCache(),
		logger:    logger,
	}, nil
}

// Upload writes one blob under the given key.
func (s *S3Store) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	key = NormalizeKey(key)
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.cfg.Bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

// SignedURL returns a download link for the key, serving from the cache
// when a still-fresh link exists.
func (s *S3Store) SignedURL(ctx context.Context, key string) (string, error) {
	key = NormalizeKey(key)

	if s.cfg.PublicBaseURL != "" {
		return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + key, nil
	}

	if url, ok := s.cache.get(key); ok {
		return url, nil
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.cfg.Bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.cfg.SignedURLTTL))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}

	s.cache.put(key, req.URL, s.cfg.SignedURLTTL)
	return req.URL, nil
}

// Delete removes the blob and drops any cached link for it. S3 treats
// deleting a missing key as success, which keeps retries idempotent.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	key = NormalizeKey(key)
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.cfg.Bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	s.cache.invalidate(key)
	return nil
}
