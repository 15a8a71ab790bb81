// Package minio archives uploaded originals in an S3-compatible bucket.
package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
	"github.com/custodia-labs/pdfrag/internal/core/ports/driven"
	"github.com/custodia-labs/pdfrag/internal/logger"
)

// Ensure Archive implements the interface.
var _ driven.DocumentArchive = (*Archive)(nil)

// Config configures the bucket archive.
type Config struct {
	// Endpoint is host:port or a URL; an https URL implies UseSSL.
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// Archive writes objects to one bucket, creating it on first use.
type Archive struct {
	client *minio.Client
	bucket string
	region string

	mu    sync.Mutex
	ready bool
}

// New creates a bucket archive. No request is made until the first Put.
func New(cfg Config) (*Archive, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: minio endpoint is required", domain.ErrConfiguration)
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("%w: minio credentials are required", domain.ErrConfiguration)
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: minio bucket is required", domain.ErrConfiguration)
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	endpoint, secure := cfg.Endpoint, cfg.UseSSL
	if u, err := url.Parse(cfg.Endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		secure = secure || u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating minio client: %w", domain.ErrConfiguration, err)
	}

	return &Archive{client: client, bucket: cfg.Bucket, region: cfg.Region}, nil
}

// Put uploads size bytes from r under key and returns an s3:// URI.
func (a *Archive) Put(ctx context.Context, key string, r io.Reader, size int64) (string, error) {
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return "", fmt.Errorf("%w: archive key is required", domain.ErrInvalidInput)
	}
	if err := a.ensureBucket(ctx); err != nil {
		return "", err
	}

	info, err := a.client.PutObject(ctx, a.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: "application/pdf",
	})
	if err != nil {
		return "", fmt.Errorf("%w: uploading %s: %w", domain.ErrExternalService, key, err)
	}

	logger.Debug("archive: stored %s/%s (%d bytes)", a.bucket, key, info.Size)
	return "s3://" + a.bucket + "/" + key, nil
}

func (a *Archive) ensureBucket(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ready {
		return nil
	}

	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("%w: checking bucket %s: %w", domain.ErrExternalService, a.bucket, err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{Region: a.region}); err != nil {
			return fmt.Errorf("%w: creating bucket %s: %w", domain.ErrExternalService, a.bucket, err)
		}
		logger.Info("archive: created bucket %s", a.bucket)
	}
	a.ready = true
	return nil
}
