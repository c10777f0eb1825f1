package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

// s3API is the subset of the S3 client used by the repository.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// s3Repository implements StateRepository with one S3 object per key.
type s3Repository struct {
	client s3API
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewS3Repository creates an S3-backed state repository.
func NewS3Repository(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (StateRepository, error) {
	logger = logger.With().Str("repository", "s3-state").Logger()

	// Load AWS configuration
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Str("prefix", prefix).
		Msg("S3 state repository initialised")

	return newS3Repository(s3.NewFromConfig(cfg), bucket, prefix, logger), nil
}

func newS3Repository(client s3API, bucket, prefix string, logger zerolog.Logger) *s3Repository {
	return &s3Repository{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}
}

func (r *s3Repository) objectKey(key string) string {
	return r.prefix + key
}

// Get reads the object stored under key.
func (r *s3Repository) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.objectKey(key)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, ErrNotFound
		}
		r.logger.Error().
			Err(err).
			Str("bucket", r.bucket).
			Str("key", r.objectKey(key)).
			Msg("failed to get object from S3")
		return nil, fmt.Errorf("failed to get object from S3 (bucket=%s, key=%s): %w", r.bucket, r.objectKey(key), err)
	}
	defer result.Body.Close()

	value, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read S3 object %s: %w", r.objectKey(key), err)
	}
	return value, nil
}

// Set writes the object stored under key.
func (r *s3Repository) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(r.objectKey(key)),
		Body:        bytes.NewReader(value),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("bucket", r.bucket).
			Str("key", r.objectKey(key)).
			Msg("failed to put object to S3")
		return fmt.Errorf("failed to put object to S3 (bucket=%s, key=%s): %w", r.bucket, r.objectKey(key), err)
	}
	return nil
}

// Delete removes the object stored under key. S3 treats deleting a missing
// object as success.
func (r *s3Repository) Delete(ctx context.Context, key string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object from S3 (bucket=%s, key=%s): %w", r.bucket, r.objectKey(key), err)
	}
	return nil
}
