package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewFileResponseURLs(t *testing.T) {
	guest := uint(3)
	f := &FileMetadata{ID: 4294967295, MimeType: "image/jpeg", GuestSessionID: &guest, UploadedAt: time.Now().UTC()}

	r := NewFileResponse(f, 7)
	assert.Equal(t, "/api/files/4294967295", r.URL)
	assert.Equal(t, "/api/files/4294967295/thumbnail", r.ThumbnailURL)
	assert.Equal(t, 7, r.Ordinal)
	assert.True(t, r.IsGuest)

	f.ID = 12
	assert.Equal(t, "/api/files/12", NewFileResponse(f, 0).URL)
}

func TestIsVideo(t *testing.T) {
	tests := []struct {
		mime string
		want bool
	}{
		{"video/mp4", true},
		{"video/quicktime", true},
		{"image/jpeg", false},
		{"video", false},
		{"", false},
	}
	for _, tt := range tests {
		f := &FileMetadata{MimeType: tt.mime}
		assert.Equal(t, tt.want, f.IsVideo(), tt.mime)
	}
}
