package models

import (
	"strconv"
	"strings"
	"time"
)

type ThumbnailStatus string

const (
	ThumbnailPending ThumbnailStatus = "pending"
	ThumbnailReady   ThumbnailStatus = "ready"
	ThumbnailFailed  ThumbnailStatus = "failed"
)

// FileMetadata is one uploaded photo or video. Deleted files are only flagged;
// the retention countdown is computed from DeletedAt.
type FileMetadata struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	EventID         uint            `json:"event_id" gorm:"not null;index;index:idx_file_event_checksum,priority:1"`
	GuestSessionID  *uint           `json:"guest_session_id,omitempty" gorm:"index"`
	UploaderUserID  *uint           `json:"uploader_user_id,omitempty"`
	OriginalName    string          `json:"original_name" gorm:"not null"`
	StorageKey      string          `json:"-" gorm:"not null"`
	ThumbnailKey    string          `json:"-"`
	ThumbnailStatus ThumbnailStatus `json:"thumbnail_status" gorm:"size:16;not null;default:'pending'"`
	MimeType        string          `json:"mime_type" gorm:"not null"`
	SizeBytes       int64           `json:"size_bytes" gorm:"not null"`
	Checksum        string          `json:"checksum" gorm:"size:64;not null;index:idx_file_event_checksum,priority:2"`
	Width           int             `json:"width,omitempty"`
	Height          int             `json:"height,omitempty"`
	DurationSeconds float64         `json:"duration_seconds,omitempty"`
	CapturedAt      *time.Time      `json:"captured_at,omitempty"`
	UploadedAt      time.Time       `json:"uploaded_at" gorm:"not null"`
	IsDeleted       bool            `json:"is_deleted" gorm:"not null;default:false;index"`
	DeletedAt       *time.Time      `json:"deleted_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (FileMetadata) TableName() string {
	return "file_metadata"
}

func (f *FileMetadata) IsVideo() bool {
	return strings.HasPrefix(f.MimeType, "video/")
}

// EventGalleryOrder is the denormalised display order of an event gallery.
// It is rebuilt from scratch, never patched.
type EventGalleryOrder struct {
	EventID        uint `json:"event_id" gorm:"primaryKey;autoIncrement:false;uniqueIndex:idx_gallery_event_ordinal,priority:1"`
	FileMetadataID uint `json:"file_metadata_id" gorm:"primaryKey;autoIncrement:false"`
	Ordinal        int  `json:"ordinal" gorm:"not null;uniqueIndex:idx_gallery_event_ordinal,priority:2"`
}

type FileResponse struct {
	ID              uint            `json:"id"`
	Ordinal         int             `json:"ordinal,omitempty"`
	OriginalName    string          `json:"original_name"`
	MimeType        string          `json:"mime_type"`
	SizeBytes       int64           `json:"size_bytes"`
	Width           int             `json:"width,omitempty"`
	Height          int             `json:"height,omitempty"`
	DurationSeconds float64         `json:"duration_seconds,omitempty"`
	CapturedAt      *time.Time      `json:"captured_at,omitempty"`
	UploadedAt      time.Time       `json:"uploaded_at"`
	ThumbnailStatus ThumbnailStatus `json:"thumbnail_status"`
	URL             string          `json:"url"`
	ThumbnailURL    string          `json:"thumbnail_url"`
	IsGuest         bool            `json:"is_guest"`
}

func NewFileResponse(f *FileMetadata, ordinal int) FileResponse {
	return FileResponse{
		ID:              f.ID,
		Ordinal:         ordinal,
		OriginalName:    f.OriginalName,
		MimeType:        f.MimeType,
		SizeBytes:       f.SizeBytes,
		Width:           f.Width,
		Height:          f.Height,
		DurationSeconds: f.DurationSeconds,
		CapturedAt:      f.CapturedAt,
		UploadedAt:      f.UploadedAt,
		ThumbnailStatus: f.ThumbnailStatus,
		URL:             fileURL(f.ID, ""),
		ThumbnailURL:    fileURL(f.ID, "thumbnail"),
		IsGuest:         f.GuestSessionID != nil,
	}
}

func fileURL(id uint, variant string) string {
	u := "/api/files/" + strconv.FormatUint(uint64(id), 10)
	if variant != "" {
		u += "/" + variant
	}
	return u
}

type TrashedFileResponse struct {
	FileResponse
	DeletedAt     time.Time `json:"deleted_at"`
	DaysRemaining int       `json:"days_remaining"`
}

type GalleryPage struct {
	Items   []FileResponse `json:"items"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
	Total   int64          `json:"total"`
}

type UploadResult struct {
	FileName string        `json:"file_name"`
	File     *FileResponse `json:"file,omitempty"`
	Error    string        `json:"error,omitempty"`
}

type BulkFileRequest struct {
	FileIDs []uint `json:"file_ids" validate:"required,min=1,max=500"`
}
