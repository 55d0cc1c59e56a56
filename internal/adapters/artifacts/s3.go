package artifacts

import (
	"bytes"
	"context"
	"strings"
	"sync"

	perr "toxlens/internal/platform/errors"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config holds bucket access settings
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// S3 uploads artifacts to an S3 compatible bucket
type S3 struct {
	client *minio.Client
	bucket string
	region string
	prefix string

	initOnce sync.Once
	initErr  error
}

// NewS3 validates cfg and builds the minio client, no network until the first Put
func NewS3(cfg S3Config) (*S3, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, perr.Newf(perr.ErrorCodeValidation, "s3 endpoint is required")
	}
	access, secret := strings.TrimSpace(cfg.AccessKey), strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, perr.Newf(perr.ErrorCodeValidation, "s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, perr.Newf(perr.ErrorCodeValidation, "s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeValidation, "init s3 client")
	}
	prefix := strings.Trim(strings.TrimSpace(cfg.Prefix), "/")
	return &S3{client: client, bucket: bucket, region: region, prefix: prefix}, nil
}

func (s *S3) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.initErr = err
			return
		}
		if !exists {
			s.initErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
		}
	})
	return s.initErr
}

// Key returns the object key for name
func (s *S3) Key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

// Put uploads body in one request, objects are only visible once complete
func (s *S3) Put(ctx context.Context, name, contentType string, body []byte) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "ensure bucket %s", s.bucket)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := s.Key(name)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "upload %s", key)
	}
	return "s3://" + s.bucket + "/" + key, nil
}
