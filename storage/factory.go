package storage

import (
	"context"

	"github.com/pkg/errors"

	"restaurant-pos/config"
)

// FromConfig builds the storage backend named by STORAGE_DRIVER.
func FromConfig(ctx context.Context, cfg config.Storage) (Storage, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(cfg.LocalDir, cfg.PublicURLPrefix), nil

	case "s3":
		if cfg.S3Region == "" || cfg.S3Bucket == "" || cfg.S3PublicBaseURL == "" {
			return nil, errors.New("S3 config missing: S3_REGION, S3_BUCKET, S3_PUBLIC_BASE_URL required")
		}
		return NewS3(ctx, S3Config{
			Region:        cfg.S3Region,
			Bucket:        cfg.S3Bucket,
			Prefix:        "items",
			PublicBaseURL: cfg.S3PublicBaseURL,
		})

	case "drive":
		if cfg.DriveCredsPath == "" {
			return nil, errors.New("GOOGLE_APPLICATION_CREDENTIALS environment variable is not set")
		}
		return NewDrive(ctx, cfg.DriveCredsPath, cfg.DriveFolderID)

	default:
		return nil, errors.Errorf("unknown STORAGE_DRIVER: %s", cfg.Driver)
	}
}
