package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// objectAPI is the slice of the S3 API the client uses.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Client wraps S3 with helpers tailored to this project's bucket layout.
type Client struct {
	api objectAPI
	log *slog.Logger
}

// New instantiates the storage client from the ambient AWS configuration.
func New(ctx context.Context, logger *slog.Logger) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewWithAPI(s3.NewFromConfig(cfg), logger), nil
}

// NewWithAPI wires an existing S3 API, used by tests.
func NewWithAPI(api objectAPI, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{api: api, log: logger}
}

// Put writes body to bucket/key, overwriting any existing object.
func (c *Client) Put(ctx context.Context, bucket, key string, body []byte) error {
	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", bucket, key, err)
	}
	c.log.Debug("object written", slog.String("bucket", bucket), slog.String("key", key))
	return nil
}

// Get reads the full object at bucket/key.
func (c *Client) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// DeleteOlderThan removes every object under prefix whose LastModified is
// older than maxAge. Returns the number of objects deleted.
func (c *Client) DeleteOlderThan(ctx context.Context, bucket, prefix string, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	deleted := 0

	var token *string
	for {
		page, err := c.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return deleted, fmt.Errorf("list s3://%s/%s: %w", bucket, prefix, err)
		}

		for _, obj := range page.Contents {
			if obj.LastModified == nil || !obj.LastModified.Before(cutoff) {
				continue
			}
			_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(bucket),
				Key:    obj.Key,
			})
			if err != nil {
				return deleted, fmt.Errorf("delete s3://%s/%s: %w", bucket, aws.ToString(obj.Key), err)
			}
			deleted++
		}

		if page.NextContinuationToken == nil {
			break
		}
		token = page.NextContinuationToken
	}

	return deleted, nil
}
