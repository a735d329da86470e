package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/repository"
	"github.com/sefazor/guestlens-backend/pkg/storage"
	"go.uber.org/zap"
)

// ThumbnailRenderer is satisfied by media.Thumbnailer.
type ThumbnailRenderer interface {
	FromImage(r io.Reader) ([]byte, error)
	FromVideo(ctx context.Context, path string) ([]byte, error)
}

type ThumbnailService struct {
	fileRepo *repository.FileRepository
	store    storage.Storage
	renderer ThumbnailRenderer
	dispatch Dispatcher
	timeout  time.Duration
	logger   *zap.Logger
}

func NewThumbnailService(
	fileRepo *repository.FileRepository,
	store storage.Storage,
	renderer ThumbnailRenderer,
	dispatch Dispatcher,
	logger *zap.Logger,
) *ThumbnailService {
	return &ThumbnailService{
		fileRepo: fileRepo,
		store:    store,
		renderer: renderer,
		dispatch: dispatch,
		timeout:  2 * time.Minute,
		logger:   logger.Named("thumbnail"),
	}
}

// Enqueue schedules thumbnail generation and returns immediately.
func (s *ThumbnailService) Enqueue(file models.FileMetadata, ownerID uint) {
	s.dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.Generate(ctx, &file, ownerID); err != nil {
			s.logger.Warn("thumbnail failed, original will be served",
				zap.Uint("file_id", file.ID), zap.String("mime", file.MimeType), zap.Error(err))
		}
	})
}

// Generate renders, stores and records the thumbnail of file. On failure
// the status becomes failed.
func (s *ThumbnailService) Generate(ctx context.Context, file *models.FileMetadata, ownerID uint) error {
	data, err := s.render(ctx, file)
	if err == nil {
		key := storage.ThumbnailKey(ownerID, file.EventID, file.ID)
		if err = s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), "image/webp"); err == nil {
			return s.fileRepo.SetThumbnail(file.ID, key, models.ThumbnailReady)
		}
	}

	if serr := s.fileRepo.SetThumbnail(file.ID, "", models.ThumbnailFailed); serr != nil {
		s.logger.Error("thumbnail status update failed", zap.Uint("file_id", file.ID), zap.Error(serr))
	}
	return err
}

func (s *ThumbnailService) render(ctx context.Context, file *models.FileMetadata) ([]byte, error) {
	src, err := s.store.Open(ctx, file.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("open original: %w", err)
	}
	defer src.Close()

	if !file.IsVideo() {
		return s.renderer.FromImage(src)
	}

	// ffmpeg dosya yolu ister
	tmp, err := os.CreateTemp("", "guestlens-video-*")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, src); err != nil {
		return nil, fmt.Errorf("spool video: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return nil, err
	}
	return s.renderer.FromVideo(ctx, tmp.Name())
}
