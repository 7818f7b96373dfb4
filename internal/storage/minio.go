package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"bizreport/internal/config"
	apperrors "bizreport/internal/errors"
)

// ObjectStore is the subset of an S3 API the store needs
type ObjectStore interface {
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) error
}

// MinioStore implements ObjectStore with minio-go, for MinIO and S3
type MinioStore struct {
	client *minio.Client
}

// NewMinioStore creates a client from the storage configuration. The
// endpoint may be a bare host:port or a URL; an https URL forces TLS.
func NewMinioStore(cfg config.StorageConfig) (*MinioStore, error) {
	if cfg.Endpoint == "" {
		return nil, apperrors.NewConfigError("storage endpoint is required for object locations", nil)
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, apperrors.NewConfigError("storage credentials are required for object locations", nil)
	}

	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL
	if u, err := url.Parse(cfg.Endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			useSSL = true
		}
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, apperrors.NewStorageError("failed to create object store client", err).WithContext("endpoint", endpoint)
	}
	return &MinioStore{client: client}, nil
}

// GetObject opens an object for reading. A missing object is reported here
// rather than on the first read.
func (s *MinioStore) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, classifyMinioError(err, bucket, key)
	}
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, classifyMinioError(err, bucket, key)
	}
	return obj, nil
}

// PutObject uploads data as one object
func (s *MinioStore) PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return classifyMinioError(err, bucket, key)
	}
	return nil
}

func classifyMinioError(err error, bucket, key string) error {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchBucket":
		return apperrors.NewNotFoundError(fmt.Sprintf("bucket %s", bucket))
	case "NoSuchKey":
		return apperrors.NewNotFoundError(fmt.Sprintf("object %s/%s", bucket, key))
	}
	return apperrors.NewStorageError("object store request failed", err).
		WithContext("bucket", bucket).
		WithContext("key", key)
}
