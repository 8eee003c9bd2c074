package blob

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/ports"
)

// MinIOConfig configures the bucket store.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

// MinIOStore implements ports.AudioStore on an S3 compatible bucket.
type MinIOStore struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinIOStore connects to the endpoint and creates the bucket if missing.
func NewMinIOStore(ctx context.Context, cfg MinIOConfig) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("checking bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("creating bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &MinIOStore{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Name implements ports.HealthChecker.
func (s *MinIOStore) Name() string { return "audio-minio" }

// Check implements ports.HealthChecker.
func (s *MinIOStore) Check(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", s.bucket)
	}
	return nil
}

// Put implements ports.AudioStore.
func (s *MinIOStore) Put(ctx context.Context, id string, data []byte, contentType string) error {
	if err := validateID(id); err != nil {
		return err
	}

	_, err := s.client.PutObject(ctx, s.bucket, s.key(id), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("uploading audio %s: %w", id, err)
	}

	return nil
}

// Get implements ports.AudioStore.
func (s *MinIOStore) Get(ctx context.Context, id string) (*ports.AudioObject, error) {
	if err := validateID(id); err != nil {
		return nil, domain.NewNotFoundError("audio", id)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, s.key(id), minio.GetObjectOptions{})
	if err != nil {
		return nil, s.mapError(id, err)
	}

	// GetObject is lazy; Stat surfaces a missing key.
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, s.mapError(id, err)
	}

	return &ports.AudioObject{Body: obj, ContentType: info.ContentType, Size: info.Size}, nil
}

// Delete implements ports.AudioStore.
func (s *MinIOStore) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return nil
	}

	if err := s.client.RemoveObject(ctx, s.bucket, s.key(id), minio.RemoveObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return nil
		}
		return fmt.Errorf("deleting audio %s: %w", id, err)
	}

	return nil
}

func (s *MinIOStore) key(id string) string {
	return s.prefix + id
}

func (s *MinIOStore) mapError(id string, err error) error {
	if isNoSuchKey(err) {
		return domain.NewNotFoundError("audio", id)
	}
	return fmt.Errorf("reading audio %s: %w", id, err)
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
