package acquisition

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Bucket is the read side of the remote object store.
type Bucket interface {
	Name() string
	List(ctx context.Context, prefix string) ([]string, error)
	Download(ctx context.Context, key, dst string) error
}

type BucketConfig struct {
	Endpoint string // e.g. "s3.amazonaws.com"
	Bucket   string
	Region   string
	UseSSL   bool
}

// MinIOBucket reads a public S3 bucket anonymously.
type MinIOBucket struct {
	client     *minio.Client
	bucketName string
}

func NewMinIOBucket(cfg BucketConfig) (*MinIOBucket, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("", "", ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &MinIOBucket{client: client, bucketName: cfg.Bucket}, nil
}

func (b *MinIOBucket) Name() string { return b.bucketName }

func (b *MinIOBucket) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for obj := range b.client.ListObjects(ctx, b.bucketName, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s/%s: %w", b.bucketName, prefix, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

func (b *MinIOBucket) Download(ctx context.Context, key, dst string) error {
	if err := b.client.FGetObject(ctx, b.bucketName, key, dst, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("download %s/%s: %w", b.bucketName, key, err)
	}
	return nil
}
