package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/zhanserikAmangeldi/taskmate-service/pkg/logger"
)

const AvatarsBucket = "avatars"

// ErrObjectNotFound is returned by AvatarStorage when the object does not exist.
var ErrObjectNotFound = errors.New("object not found")

type AvatarStorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// AvatarStorage keeps profile pictures in a MinIO bucket.
type AvatarStorage struct {
	client *minio.Client
	bucket string
}

func NewAvatarStorage(ctx context.Context, cfg AvatarStorageConfig) (*AvatarStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	bucket := cfg.Bucket
	if bucket == "" {
		bucket = AvatarsBucket
	}

	if err := initializeBucket(ctx, client, bucket); err != nil {
		return nil, err
	}

	logger.WithModule("avatar").Info("MinIO client initialized",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", bucket),
	)
	return &AvatarStorage{client: client, bucket: bucket}, nil
}

func initializeBucket(ctx context.Context, client *minio.Client, bucketName string) error {
	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.WithModule("avatar").Info("created MinIO bucket", zap.String("bucket", bucketName))
	}

	return nil
}

func (s *AvatarStorage) Put(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// Get opens the object. The caller closes the returned reader.
func (s *AvatarStorage) Get(ctx context.Context, objectName string) (io.ReadCloser, int64, string, error) {
	object, err := s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, "", err
	}

	info, err := object.Stat()
	if err != nil {
		_ = object.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, 0, "", ErrObjectNotFound
		}
		return nil, 0, "", err
	}

	return object, info.Size, info.ContentType, nil
}

func (s *AvatarStorage) Delete(ctx context.Context, objectName string) error {
	return s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
}
