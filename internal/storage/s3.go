package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const defaultURLTTL = 15 * time.Minute

type ClientConfig struct {
	Region   string
	Profile  string
	Endpoint string
}

// NewClient builds an S3 client from the default AWS credential chain. A custom endpoint
// (MinIO, localstack) switches to path-style addressing.
func NewClient(ctx context.Context, cfg ClientConfig) (*s3.Client, error) {
	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Region),
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// S3Store stores logos in Amazon S3 (or compatible APIs).
type S3Store struct {
	client    *s3.Client
	uploader  *manager.Uploader
	presigner *s3.PresignClient
	bucket    string
	keyPrefix string
	urlTTL    time.Duration
}

func NewS3Store(client *s3.Client, opts Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	if opts.URLTTL <= 0 {
		opts.URLTTL = defaultURLTTL
	}
	return &S3Store{
		client:    client,
		uploader:  manager.NewUploader(client),
		presigner: s3.NewPresignClient(client),
		bucket:    opts.Bucket,
		keyPrefix: strings.Trim(opts.KeyPrefix, "/"),
		urlTTL:    opts.URLTTL,
	}, nil
}

func (s *S3Store) KeyPrefix() string {
	return s.keyPrefix
}

func (s *S3Store) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	if key == "" {
		return fmt.Errorf("object key is required")
	}
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("object key is required")
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) PresignGet(ctx context.Context, key string) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.urlTTL))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, nil
}
