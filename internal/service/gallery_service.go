package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/sefazor/guestlens-backend/internal/config"
	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/repository"
	"github.com/sefazor/guestlens-backend/pkg/storage"
	"github.com/sefazor/guestlens-backend/pkg/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	VariantOriginal  = "original"
	VariantThumbnail = "thumbnail"
)

type GalleryService struct {
	db        *gorm.DB
	fileRepo  *repository.FileRepository
	orderRepo *repository.GalleryOrderRepository
	eventRepo *repository.EventRepository
	events    *EventService
	guests    *GuestService
	store     storage.Storage
	auditor   *Auditor
	retention time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func NewGalleryService(
	db *gorm.DB,
	fileRepo *repository.FileRepository,
	orderRepo *repository.GalleryOrderRepository,
	eventRepo *repository.EventRepository,
	events *EventService,
	guests *GuestService,
	store storage.Storage,
	auditor *Auditor,
	cfg *config.Config,
	logger *zap.Logger,
) *GalleryService {
	days := cfg.Upload.RetentionDays
	if days <= 0 {
		days = 30
	}
	return &GalleryService{
		db:        db,
		fileRepo:  fileRepo,
		orderRepo: orderRepo,
		eventRepo: eventRepo,
		events:    events,
		guests:    guests,
		store:     store,
		auditor:   auditor,
		retention: time.Duration(days) * 24 * time.Hour,
		logger:    logger.Named("gallery"),
		now:       utcNow,
	}
}

// RebuildEventGalleryOrder recomputes the whole display order of an event in
// one transaction. Ordinals are 1..n over live files sorted by capture time
// (unknown last), upload time, then id.
func (s *GalleryService) RebuildEventGalleryOrder(ctx context.Context, eventID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.rebuildTx(tx, eventID)
	})
}

// rebuildTx holds the event row lock while it lists and replaces, so two
// rebuilds of one event run one after the other.
func (s *GalleryService) rebuildTx(tx *gorm.DB, eventID uint) error {
	if err := s.eventRepo.WithTx(tx).LockRow(eventID); err != nil {
		return err
	}
	ids, err := s.fileRepo.WithTx(tx).ListForOrdering(eventID)
	if err != nil {
		return err
	}
	return s.orderRepo.WithTx(tx).Replace(eventID, ids)
}

// ListGallery returns one page of the ordered gallery. Callers check access.
func (s *GalleryService) ListGallery(eventID uint, page, perPage int) (*models.GalleryPage, error) {
	page, perPage = utils.ClampPage(page, perPage)

	total, err := s.orderRepo.Count(eventID)
	if err != nil {
		return nil, err
	}
	rows, err := s.orderRepo.ListPage(eventID, utils.Offset(page, perPage), perPage)
	if err != nil {
		return nil, err
	}

	items := make([]models.FileResponse, 0, len(rows))
	for i := range rows {
		items = append(items, models.NewFileResponse(&rows[i].FileMetadata, rows[i].Ordinal))
	}
	return &models.GalleryPage{Items: items, Page: page, PerPage: perPage, Total: total}, nil
}

func (s *GalleryService) ListOwnerGallery(userID, eventID uint, page, perPage int) (*models.GalleryPage, error) {
	if _, err := s.events.Owned(userID, eventID); err != nil {
		return nil, err
	}
	return s.ListGallery(eventID, page, perPage)
}

// SoftDelete moves files of the event to the trash. IDs that are not live
// files of this event are ignored.
func (s *GalleryService) SoftDelete(ctx context.Context, userID, eventID uint, fileIDs []uint, ip string) (int64, error) {
	if _, err := s.events.Owned(userID, eventID); err != nil {
		return 0, err
	}

	var n int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		n, err = s.fileRepo.WithTx(tx).MarkDeleted(eventID, fileIDs, s.now())
		if err != nil || n == 0 {
			return err
		}
		if err := s.rebuildTx(tx, eventID); err != nil {
			return err
		}
		return s.auditor.RecordTx(tx, AuditEntry{
			ActorUserID: actor(userID), Action: "file.deleted", EntityType: "event", EntityID: eventID,
			Detail: map[string]interface{}{"file_ids": fileIDs, "count": n}, IPAddress: ip,
		})
	})
	return n, err
}

func (s *GalleryService) SoftDeleteFile(ctx context.Context, userID, eventID, fileID uint, ip string) error {
	n, err := s.SoftDelete(ctx, userID, eventID, []uint{fileID}, ip)
	if err != nil {
		return err
	}
	if n == 0 {
		return s.explainMissing(eventID, fileID, false)
	}
	return nil
}

// Restore brings trashed files back while they are inside the retention
// window. Expired or unknown IDs are skipped.
func (s *GalleryService) Restore(ctx context.Context, userID, eventID uint, fileIDs []uint, ip string) (int64, error) {
	if _, err := s.events.Owned(userID, eventID); err != nil {
		return 0, err
	}

	files, err := s.fileRepo.GetByIDs(eventID, fileIDs)
	if err != nil {
		return 0, err
	}
	cutoff := s.now().Add(-s.retention)
	var eligible []uint
	for _, f := range files {
		if f.IsDeleted && f.DeletedAt != nil && !f.DeletedAt.Before(cutoff) {
			eligible = append(eligible, f.ID)
		}
	}
	if len(eligible) == 0 {
		return 0, nil
	}

	var n int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		n, err = s.fileRepo.WithTx(tx).Restore(eventID, eligible)
		if err != nil || n == 0 {
			return err
		}
		if err := s.rebuildTx(tx, eventID); err != nil {
			return err
		}
		return s.auditor.RecordTx(tx, AuditEntry{
			ActorUserID: actor(userID), Action: "file.restored", EntityType: "event", EntityID: eventID,
			Detail: map[string]interface{}{"file_ids": eligible, "count": n}, IPAddress: ip,
		})
	})
	return n, err
}

func (s *GalleryService) RestoreFile(ctx context.Context, userID, eventID, fileID uint, ip string) error {
	n, err := s.Restore(ctx, userID, eventID, []uint{fileID}, ip)
	if err != nil {
		return err
	}
	if n == 0 {
		return s.explainMissing(eventID, fileID, true)
	}
	return nil
}

// explainMissing turns a no-op single-file action into the right error.
func (s *GalleryService) explainMissing(eventID, fileID uint, restoring bool) error {
	files, err := s.fileRepo.GetByIDs(eventID, []uint{fileID})
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("file: %w", ErrNotFound)
	}
	f := files[0]
	if restoring && f.IsDeleted {
		return ErrRetentionExpired
	}
	// zaten istenen durumda
	return nil
}

func (s *GalleryService) ListTrash(userID, eventID uint) ([]models.TrashedFileResponse, error) {
	if _, err := s.events.Owned(userID, eventID); err != nil {
		return nil, err
	}
	now := s.now()
	files, err := s.fileRepo.ListTrash(eventID, now.Add(-s.retention))
	if err != nil {
		return nil, err
	}

	out := make([]models.TrashedFileResponse, 0, len(files))
	for i := range files {
		f := &files[i]
		expires := f.DeletedAt.Add(s.retention)
		out = append(out, models.TrashedFileResponse{
			FileResponse:  models.NewFileResponse(f, 0),
			DeletedAt:     *f.DeletedAt,
			DaysRemaining: int(math.Ceil(expires.Sub(now).Hours() / 24)),
		})
	}
	return out, nil
}

// Viewer identifies who asks for a file: a signed-in user, a guest holding a
// per-event cookie, or both.
type Viewer struct {
	UserID     uint
	GuestToken func(eventID uint) string
}

type FileContent struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
	Name        string
	Variant     string
}

// OpenFile streams a file to an allowed viewer. The event owner sees trashed
// files too; guests of the published event see live files only. A thumbnail
// that is not ready falls back to the original.
func (s *GalleryService) OpenFile(ctx context.Context, viewer Viewer, fileID uint, variant string) (*FileContent, error) {
	file, err := s.fileRepo.GetByID(fileID)
	if err != nil {
		return nil, notFound(err, "file")
	}
	event, err := s.eventRepo.GetByID(file.EventID)
	if err != nil {
		return nil, notFound(err, "event")
	}

	if err := s.canView(viewer, event, file); err != nil {
		return nil, err
	}

	key, contentType, size, used := file.StorageKey, file.MimeType, file.SizeBytes, VariantOriginal
	if variant == VariantThumbnail && file.ThumbnailStatus == models.ThumbnailReady && file.ThumbnailKey != "" {
		key, contentType, size, used = file.ThumbnailKey, "image/webp", -1, VariantThumbnail
	}

	body, err := s.store.Open(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("file content: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &FileContent{Body: body, ContentType: contentType, Size: size, Name: file.OriginalName, Variant: used}, nil
}

func (s *GalleryService) canView(viewer Viewer, event *models.Event, file *models.FileMetadata) error {
	if viewer.UserID != 0 && viewer.UserID == event.UserID {
		return nil
	}
	if viewer.GuestToken != nil && event.Published {
		if token := viewer.GuestToken(event.ID); token != "" {
			sess, err := s.guests.Resolve(token)
			if err != nil && !errors.Is(err, ErrUnauthorized) {
				return err
			}
			if sess != nil && sess.EventID == event.ID {
				if file.IsDeleted {
					return fmt.Errorf("file: %w", ErrNotFound)
				}
				return nil
			}
		}
	}
	return ErrForbidden
}
