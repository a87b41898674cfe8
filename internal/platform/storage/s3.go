// Package storage issues presigned upload URLs for S3-compatible object stores.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PresignExpiry is how long an upload URL stays valid.
const PresignExpiry = 15 * time.Minute

type Options struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// Configured reports whether enough settings are present to presign uploads.
func (o Options) Configured() bool {
	return o.Bucket != "" && o.AccessKey != "" && o.SecretKey != ""
}

// S3Presigner signs PUT URLs for direct browser uploads to one bucket.
type S3Presigner struct {
	client *s3.PresignClient
	bucket string
}

// NewS3Presigner builds a presign client with static credentials. A custom
// endpoint (MinIO and friends) switches to path-style addressing.
func NewS3Presigner(ctx context.Context, opts Options) (*S3Presigner, error) {
	if !opts.Configured() {
		return nil, errors.New("storage: bucket and credentials are required")
	}
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Presigner{client: s3.NewPresignClient(client), bucket: opts.Bucket}, nil
}

// PresignPut returns a URL that accepts a single PUT of key with contentType.
func (p *S3Presigner) PresignPut(ctx context.Context, key, contentType string) (string, error) {
	req, err := p.client.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
