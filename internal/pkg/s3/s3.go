// Package s3 uploads product images to an S3-compatible bucket and exposes
// their public URLs.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	appcfg "github.com/eventstime/core/internal/config"
)

// Store is the object-storage client used for product images.
type Store struct {
	client   *awss3.Client
	bucket   string
	endpoint string
	logger   *zap.Logger
}

// New builds an S3 client from config. A custom endpoint switches the client
// to path-style addressing, which MinIO and most S3 compatibles require.
func New(opts appcfg.S3Options, logger *zap.Logger) (*Store, error) {
	bucket := strings.TrimSpace(opts.Bucket)
	region := strings.TrimSpace(opts.Region)
	if bucket == "" || region == "" {
		return nil, fmt.Errorf("incomplete s3 config: bucket and region are required")
	}

	endpoint := strings.TrimSuffix(strings.TrimSpace(opts.Endpoint), "/")
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://s3.%s.amazonaws.com", region)
	}

	client := awss3.New(awss3.Options{
		Region: region,
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			opts.AccessKeyID, opts.SecretAccessKey, "",
		)),
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: opts.Endpoint != "",
	})

	return &Store{
		client:   client,
		bucket:   bucket,
		endpoint: endpoint,
		logger:   logger.Named("s3"),
	}, nil
}

// Upload stores payload under key with a public-read ACL and returns the
// public URL of the object.
func (s *Store) Upload(ctx context.Context, key, contentType string, payload []byte) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		s.logger.Error("upload failed",
			zap.String("bucket", s.bucket),
			zap.String("key", key),
			zap.Error(err))
		return "", fmt.Errorf("s3 upload %s: %w", key, err)
	}

	url := s.PublicURL(key)
	s.logger.Info("object uploaded", zap.String("key", key), zap.String("url", url))
	return url, nil
}

// Delete removes an object. Missing objects are not an error on S3.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.Error("delete failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	s.logger.Info("object deleted", zap.String("key", key))
	return nil
}

// PublicURL returns the canonical public URL for an object key.
func (s *Store) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
}
