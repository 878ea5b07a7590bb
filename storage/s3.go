package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"vegmart/models"
)

// S3 stores onboarding documents in a bucket. StorageID is the object key.
type S3 struct {
	client *s3.Client
	bucket string
	region string
}

// NewS3 loads credentials from the default AWS chain (env, shared config,
// instance role).
func NewS3(ctx context.Context, region, bucket string) (*S3, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}
	return &S3{client: s3.NewFromConfig(cfg), bucket: bucket, region: region}, nil
}

func (s *S3) Upload(ctx context.Context, f File, folder string) (models.Image, error) {
	key := objectKey(folder, f.Name)
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   f.Body,
	}
	if f.ContentType != "" {
		input.ContentType = aws.String(f.ContentType)
	}
	if f.Size > 0 {
		input.ContentLength = aws.Int64(f.Size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return models.Image{}, fmt.Errorf("s3 put %s: %w", key, err)
	}
	return models.Image{URL: s.objectURL(key), StorageID: key}, nil
}

func (s *S3) Delete(ctx context.Context, storageID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageID),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", storageID, err)
	}
	return nil
}

func (s *S3) objectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
