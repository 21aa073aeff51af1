package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"diarykeeper/internal/config"
	"diarykeeper/internal/domain/services"
)

// DefaultObjectPrefix is the key prefix of mirrored backups inside the bucket.
const DefaultObjectPrefix = "diary-backups"

// MinioMirror uploads backup archives to an S3-compatible bucket.
type MinioMirror struct {
	client *minio.Client
	bucket string
	region string
	prefix string
	logger *slog.Logger

	mu          sync.Mutex
	bucketReady bool
}

var _ services.BackupMirror = (*MinioMirror)(nil)

// NewMinioMirror creates a mirror client. No request is made until the
// first upload, so an unreachable endpoint does not block start-up.
func NewMinioMirror(cfg config.MirrorConfig, logger *slog.Logger) (*MinioMirror, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("mirror endpoint cannot be empty")
	}
	if cfg.BucketName == "" {
		return nil, errors.New("mirror bucket cannot be empty")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	logger.Info("backup mirror configured", "endpoint", cfg.Endpoint, "bucket", cfg.BucketName, "ssl", cfg.UseSSL)

	return &MinioMirror{
		client: client,
		bucket: cfg.BucketName,
		region: cfg.Region,
		prefix: DefaultObjectPrefix,
		logger: logger,
	}, nil
}

// Upload copies the archive at filePath to the bucket under name.
func (m *MinioMirror) Upload(ctx context.Context, name, filePath string) error {
	if err := m.ensureBucket(ctx); err != nil {
		return err
	}

	key := objectKey(m.prefix, name)
	info, err := m.client.FPutObject(ctx, m.bucket, key, filePath, minio.PutObjectOptions{
		ContentType: "application/zip",
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}

	m.logger.Info("backup mirrored", "bucket", m.bucket, "key", key, "size", info.Size, "etag", info.ETag)
	return nil
}

// ensureBucket creates the bucket on first use.
func (m *MinioMirror) ensureBucket(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bucketReady {
		return nil
	}

	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %q: %w", m.bucket, err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: m.region}); err != nil {
			return fmt.Errorf("create bucket %q: %w", m.bucket, err)
		}
		m.logger.Info("mirror bucket created", "bucket", m.bucket)
	}

	m.bucketReady = true
	return nil
}

func objectKey(prefix, name string) string {
	return path.Join(prefix, path.Base(name))
}
