package infra

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Storage wraps the S3-compatible object store holding inbound price lists,
// invoice images and extracted-CSV artifacts.
type Storage struct {
	cli *minio.Client
}

func NewStorage(endpoint, accessKey, secretKey string, useSSL bool) (*Storage, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	return &Storage{cli: cli}, nil
}

// Ping issues a cheap authenticated call so health checks can tell a down
// or misconfigured store from a healthy one.
func (s *Storage) Ping(ctx context.Context) error {
	_, err := s.cli.ListBuckets(ctx)
	return err
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *Storage) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := s.cli.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if exists {
		return nil
	}
	return s.cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
}

func (s *Storage) Read(ctx context.Context, bucket, name string) ([]byte, error) {
	obj, err := s.cli.GetObject(ctx, bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", bucket, name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", bucket, name, err)
	}
	return data, nil
}

func (s *Storage) Write(ctx context.Context, bucket, name string, data []byte, contentType string) error {
	_, err := s.cli.PutObject(ctx, bucket, name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("write %s/%s: %w", bucket, name, err)
	}
	return nil
}
