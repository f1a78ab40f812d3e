package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"

	"caption-eval-compare/backend/internal/config"
)

// MinioClient reads and writes result files in one bucket.
type MinioClient struct {
	Client     *minio.Client
	BucketName string
	log        logrus.FieldLogger
}

// NewMinioClient connects to the configured endpoint and checks that the
// bucket exists. Result buckets are never created here.
func NewMinioClient(ctx context.Context, cfg config.Minio, log logrus.FieldLogger) (*MinioClient, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("minio endpoint and bucket must be set")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithFields(logrus.Fields{"endpoint": cfg.Endpoint, "bucket": cfg.Bucket})

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check if MinIO bucket '%s' exists: %w", cfg.Bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("MinIO bucket '%s' does not exist", cfg.Bucket)
	}

	log.Info("MinIO client initialized")
	return &MinioClient{Client: client, BucketName: cfg.Bucket, log: log}, nil
}

// ListObjectKeys returns every object key under prefix, recursively, in
// the lexical order the server lists them.
func (mc *MinioClient) ListObjectKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for obj := range mc.Client.ListObjects(ctx, mc.BucketName, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects under '%s' in bucket '%s': %w", prefix, mc.BucketName, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	mc.log.WithField("prefix", prefix).Debugf("listed %d objects", len(keys))
	return keys, nil
}

// GetFileBytes retrieves an object as a byte slice.
func (mc *MinioClient) GetFileBytes(ctx context.Context, objectName string) ([]byte, error) {
	object, err := mc.Client.GetObject(ctx, mc.BucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object '%s' from bucket '%s': %w", objectName, mc.BucketName, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read object '%s' data: %w", objectName, err)
	}
	return data, nil
}

// PutJSON stores data under objectName, replacing any existing object.
func (mc *MinioClient) PutJSON(ctx context.Context, objectName string, data []byte) error {
	info, err := mc.Client.PutObject(ctx, mc.BucketName, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload '%s' to MinIO bucket '%s': %w", objectName, mc.BucketName, err)
	}
	mc.log.WithFields(logrus.Fields{"object": objectName, "etag": info.ETag}).Infof("uploaded %d bytes", info.Size)
	return nil
}
