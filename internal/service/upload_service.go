package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sefazor/guestlens-backend/internal/config"
	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/repository"
	"github.com/sefazor/guestlens-backend/pkg/media"
	"github.com/sefazor/guestlens-backend/pkg/storage"
	"go.uber.org/zap"
)

// MetadataExtractor is satisfied by media.Extractor.
type MetadataExtractor interface {
	Extract(ctx context.Context, path string, d media.Detected) (media.Metadata, error)
}

type UploadService struct {
	eventRepo *repository.EventRepository
	fileRepo  *repository.FileRepository
	billing   *BillingService
	gallery   *GalleryService
	thumbs    *ThumbnailService
	store     storage.Storage
	extractor MetadataExtractor
	maxBytes  int64
	prefixes  []string
	logger    *zap.Logger
	now       func() time.Time
}

func NewUploadService(
	eventRepo *repository.EventRepository,
	fileRepo *repository.FileRepository,
	billing *BillingService,
	gallery *GalleryService,
	thumbs *ThumbnailService,
	store storage.Storage,
	extractor MetadataExtractor,
	cfg *config.Config,
	logger *zap.Logger,
) *UploadService {
	maxMB := cfg.Upload.MaxFileMB
	if maxMB <= 0 {
		maxMB = 200
	}
	return &UploadService{
		eventRepo: eventRepo,
		fileRepo:  fileRepo,
		billing:   billing,
		gallery:   gallery,
		thumbs:    thumbs,
		store:     store,
		extractor: extractor,
		maxBytes:  int64(maxMB) << 20,
		prefixes:  cfg.AllowedMimePrefixes(),
		logger:    logger.Named("upload"),
		now:       utcNow,
	}
}

// UploadInput is a single file sent either by the event owner (UserID set)
// or by a guest (Guest set).
type UploadInput struct {
	EventID  uint
	UserID   uint
	Guest    *models.GuestSession
	FileName string
	Body     io.Reader
}

// UploadPart is one file of a multi-file request.
type UploadPart struct {
	FileName string
	Open     func() (io.ReadCloser, error)
}

// Upload validates and stores one file. Every rejection (access, size, type,
// duplicate, quota) happens before anything is written to storage.
func (s *UploadService) Upload(ctx context.Context, in UploadInput) (*models.FileMetadata, error) {
	event, err := s.eventRepo.GetByID(in.EventID)
	if err != nil {
		return nil, notFound(err, "event")
	}
	if err := s.checkAccess(event, in); err != nil {
		return nil, err
	}

	tmp, size, checksum, err := s.spool(in.Body)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	detected, err := media.DetectMIME(tmp)
	if err != nil {
		return nil, err
	}
	if !media.IsAllowed(detected.MIME, s.prefixes) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, detected.MIME)
	}
	if detected.IsVideo() {
		ent, err := s.billing.Entitlements(ctx, event.UserID)
		if err != nil {
			return nil, err
		}
		if !ent.AllowVideo {
			return nil, fmt.Errorf("%w: video uploads need a plan that includes video", ErrPlanLimit)
		}
	}

	dup, err := s.fileRepo.ChecksumExists(event.ID, checksum)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, ErrDuplicateFile
	}

	if err := s.checkQuota(ctx, event, size); err != nil {
		return nil, err
	}

	meta, err := s.extractor.Extract(ctx, tmp.Name(), detected)
	if err != nil {
		s.logger.Info("metadata extraction failed", zap.String("mime", detected.MIME), zap.Error(err))
	}

	key := storage.OriginalKey(event.UserID, event.ID, uuid.NewString()+detected.Extension)
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, key, tmp, size, detected.MIME); err != nil {
		return nil, fmt.Errorf("store original: %w", err)
	}

	file := &models.FileMetadata{
		EventID:         event.ID,
		OriginalName:    cleanFileName(in.FileName),
		StorageKey:      key,
		ThumbnailStatus: models.ThumbnailPending,
		MimeType:        detected.MIME,
		SizeBytes:       size,
		Checksum:        checksum,
		Width:           meta.Width,
		Height:          meta.Height,
		DurationSeconds: meta.Duration,
		CapturedAt:      meta.CapturedAt,
		UploadedAt:      s.now(),
	}
	if in.Guest != nil {
		file.GuestSessionID = &in.Guest.ID
	} else {
		file.UploaderUserID = &in.UserID
	}
	if err := s.fileRepo.Create(file); err != nil {
		if derr := s.store.Delete(ctx, key); derr != nil {
			s.logger.Error("orphaned upload", zap.String("key", key), zap.Error(derr))
		}
		return nil, err
	}

	if err := s.gallery.RebuildEventGalleryOrder(ctx, event.ID); err != nil {
		s.logger.Error("gallery rebuild after upload failed", zap.Uint("event_id", event.ID), zap.Error(err))
	}
	s.thumbs.Enqueue(*file, event.UserID)
	return file, nil
}

// UploadMany handles each part independently; one failure does not stop the rest.
func (s *UploadService) UploadMany(ctx context.Context, base UploadInput, parts []UploadPart) []models.UploadResult {
	results := make([]models.UploadResult, 0, len(parts))
	for _, p := range parts {
		res := models.UploadResult{FileName: p.FileName}

		body, err := p.Open()
		if err == nil {
			in := base
			in.FileName, in.Body = p.FileName, body
			var file *models.FileMetadata
			file, err = s.Upload(ctx, in)
			body.Close()
			if err == nil {
				fr := models.NewFileResponse(file, 0)
				res.File = &fr
			}
		}
		if err != nil {
			if !IsUserError(err) {
				s.logger.Error("upload failed", zap.String("file", p.FileName), zap.Error(err))
			}
			res.Error = PublicMessage(err)
		}
		results = append(results, res)
	}
	return results
}

func (s *UploadService) checkAccess(event *models.Event, in UploadInput) error {
	if in.Guest == nil {
		if in.UserID == 0 {
			return ErrUnauthorized
		}
		if in.UserID != event.UserID {
			return ErrForbidden
		}
		return nil
	}
	if in.Guest.EventID != event.ID {
		return ErrForbidden
	}
	return uploadOpenForGuests(event, s.now())
}

// spool copies at most maxBytes+1 bytes to a temp file while hashing them.
func (s *UploadService) spool(r io.Reader) (*os.File, int64, string, error) {
	tmp, err := os.CreateTemp("", "guestlens-upload-*")
	if err != nil {
		return nil, 0, "", err
	}
	fail := func(err error) (*os.File, int64, string, error) {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, 0, "", err
	}

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, h), io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return fail(fmt.Errorf("read upload: %w", err))
	}
	if n > s.maxBytes {
		return fail(fmt.Errorf("%w: limit is %d MB", ErrFileTooLarge, s.maxBytes>>20))
	}
	if n == 0 {
		return fail(fmt.Errorf("empty file: %w", ErrInvalidInput))
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return fail(err)
	}
	return tmp, n, hex.EncodeToString(h.Sum(nil)), nil
}

func (s *UploadService) checkQuota(ctx context.Context, event *models.Event, size int64) error {
	capMB, err := s.billing.EffectiveStorageCapMB(ctx, event)
	if err != nil {
		return err
	}
	used, err := s.store.Usage(ctx, storage.EventPrefix(event.UserID, event.ID))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("storage usage: %w", err)
	}
	if used+size > int64(capMB)<<20 {
		return fmt.Errorf("%w: %d MB cap", ErrQuotaExceeded, capMB)
	}
	return nil
}

func cleanFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	if len(name) > 255 {
		name = name[len(name)-255:]
	}
	return name
}
