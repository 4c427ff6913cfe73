// Package assets provides the S3-compatible object store used for profile
// images, resumes, and company logos. The application only ever stores the
// returned key/URL pair; file contents are opaque to it.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/CareerDesk/CareerDesk/internal/config"
)

// Asset is the stored reference to an uploaded object.
type Asset struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Store uploads and deletes objects. Narrow on purpose so handlers and tests
// can substitute a stub.
type Store interface {
	Upload(ctx context.Context, data []byte, folder, contentType string) (Asset, error)
	Delete(ctx context.Context, key string) error
}

// Client is the S3-backed Store, configured for path-style access so it
// works against CEPH/MinIO style endpoints as well as AWS.
type Client struct {
	s3        *s3.Client
	bucket    string
	endpoint  string
	publicURL string
}

// New creates an S3 asset store from config. Returns (nil, nil) when the
// section is entirely unset, letting the app start without storage; a
// partially filled section is a configuration mistake and fails instead of
// silently degrading.
func New(cfg config.Assets) (*Client, error) {
	if cfg.Endpoint == "" && cfg.AccessKey == "" && cfg.SecretKey == "" {
		return nil, nil
	}

	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, errors.New("asset store needs endpoint, bucket, and credentials")
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")

	s3Client := s3.New(s3.Options{
		Region:       cfg.Region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	})

	return &Client{
		s3:        s3Client,
		bucket:    cfg.Bucket,
		endpoint:  endpoint,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

// Upload stores an object under a random key in the given folder and
// returns its reference.
func (c *Client) Upload(ctx context.Context, data []byte, folder, contentType string) (Asset, error) {
	key := folder + "/" + uuid.NewString()

	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return Asset{}, fmt.Errorf("s3 upload %s/%s: %w", c.bucket, key, err)
	}

	return Asset{Key: key, URL: c.fileURL(key)}, nil
}

// Delete removes an object.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", c.bucket, key, err)
	}

	return nil
}

// fileURL builds the externally reachable URL for a key.
func (c *Client) fileURL(key string) string {
	if c.publicURL != "" {
		return c.publicURL + "/" + key
	}

	return c.endpoint + "/" + c.bucket + "/" + key
}
