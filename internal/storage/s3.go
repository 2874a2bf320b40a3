package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/me/storecms/internal/logging"
)

// S3Store stores objects through the S3-compatible endpoint of a storage
// project.
type S3Store struct {
	cfg      Config
	client   *s3.Client
	uploader *manager.Uploader
	logger   *slog.Logger
}

// NewS3Store builds an S3 client with static credentials and path-style
// addressing.
func NewS3Store(ctx context.Context, cfg Config, logger *slog.Logger) (*S3Store, error) {
	if !cfg.Configured() {
		return nil, errors.New("storage: project URL and access keys are required")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3Endpoint())
		o.UsePathStyle = true
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	return &S3Store{
		cfg:      cfg,
		client:   client,
		uploader: manager.NewUploader(client),
		logger:   logging.Component(logger, "storage"),
	}, nil
}

// Upload stores body at bucket/objectPath.
func (s *S3Store) Upload(ctx context.Context, bucket, objectPath string, body io.Reader, contentType string) (Descriptor, error) {
	if bucket == "" {
		return Descriptor{}, ErrNoBucket
	}
	cr := &countingReader{r: body}
	in := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(objectPath),
		Body:   cr,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if s.cfg.CacheControl != "" {
		in.CacheControl = aws.String(s.cfg.CacheControl)
	}

	if _, err := s.uploader.Upload(ctx, in); err != nil {
		return Descriptor{}, fmt.Errorf("upload %s/%s: %w", bucket, objectPath, err)
	}
	s.logger.Debug("object uploaded", "bucket", bucket, "path", objectPath, "size", cr.n)

	return Descriptor{
		Bucket:      bucket,
		Path:        objectPath,
		Size:        cr.n,
		ContentType: contentType,
		PublicURL:   s.PublicURL(bucket, objectPath),
	}, nil
}

// PublicURL returns the public URL of an object.
func (s *S3Store) PublicURL(bucket, objectPath string) string {
	return PublicURL(s.cfg.ProjectURL, bucket, objectPath)
}

// Remove deletes an object. A missing object is not an error and reports
// false.
func (s *S3Store) Remove(ctx context.Context, bucket, objectPath string) (bool, error) {
	if bucket == "" {
		return false, ErrNoBucket
	}
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(objectPath),
	})
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s/%s: %w", bucket, objectPath, err)
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(objectPath),
	}); err != nil {
		return false, fmt.Errorf("remove %s/%s: %w", bucket, objectPath, err)
	}
	s.logger.Debug("object removed", "bucket", bucket, "path", objectPath)
	return true, nil
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "NotFound", "NoSuchKey":
		return true
	}
	return false
}
