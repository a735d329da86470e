package storage

import (
	"context"

	"github.com/sefazor/guestlens-backend/internal/config"
)

// New picks the driver configured by STORAGE_DRIVER.
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	if cfg.Storage.Driver == "s3" {
		return NewS3Storage(ctx, cfg.S3)
	}
	return NewLocalStorage(cfg.Storage.LocalPath)
}
