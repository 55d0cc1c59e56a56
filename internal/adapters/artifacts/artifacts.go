// Package artifacts stores exported files in a local directory or an S3 bucket
package artifacts

import (
	"context"
	"strings"

	"toxlens/internal/platform/config"
	perr "toxlens/internal/platform/errors"
)

// Sink persists a finished artifact and returns where it landed
type Sink interface {
	Put(ctx context.Context, name, contentType string, body []byte) (string, error)
}

// FromConfig picks a sink from EXPORT_* keys under cfg
// S3 wins when an endpoint is set, then a local dir, otherwise nil (download only)
func FromConfig(cfg config.Conf) (Sink, error) {
	c := cfg.Prefix("EXPORT_")
	if ep := strings.TrimSpace(c.MayString("S3_ENDPOINT", "")); ep != "" {
		s3, err := NewS3(S3Config{
			Endpoint:  ep,
			Region:    c.MayString("S3_REGION", ""),
			AccessKey: c.MayString("S3_ACCESS_KEY", ""),
			SecretKey: c.MayString("S3_SECRET_KEY", ""),
			Bucket:    c.MayString("S3_BUCKET", "toxlens-exports"),
			Prefix:    c.MayString("S3_PREFIX", ""),
			UseSSL:    c.MayBool("S3_SSL", true),
		})
		if err != nil {
			return nil, err
		}
		return s3, nil
	}
	if dir := strings.TrimSpace(c.MayString("DIR", "")); dir != "" {
		l, err := NewLocal(dir)
		if err != nil {
			return nil, err
		}
		return l, nil
	}
	return nil, nil
}

func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return perr.Newf(perr.ErrorCodeValidation, "invalid artifact name %q", name)
	}
	return nil
}
