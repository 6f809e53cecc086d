package minioclient

import (
	"context"
	"fmt"
	"time"

	"github.com/ivankudrin/messenger/pkg/utils/retry"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	Endpoint   string
	User       string
	Password   string
	BucketName string
	UseSSL     bool
}

// New connects to the object store and makes sure the bucket exists.
func New(ctx context.Context, cfg Config) (*minio.Client, error) {
	const op = "minio-client.New"

	var mc *minio.Client

	err := retry.WithDelay(5, 500*time.Millisecond, func() error {
		var err error

		mc, err = minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.User, cfg.Password, ""),
			Secure: cfg.UseSSL,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		exists, err := mc.BucketExists(ctx, cfg.BucketName)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if !exists {
			if err = mc.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return mc, nil
}
