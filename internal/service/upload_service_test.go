package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/testutil"
	"github.com/sefazor/guestlens-backend/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ownerUpload(e *models.Event, name string, body []byte) UploadInput {
	return UploadInput{EventID: e.ID, UserID: e.UserID, FileName: name, Body: bytes.NewReader(body)}
}

func TestUploadStoresImageAndRebuildsOrder(t *testing.T) {
	h := newHarness(t)
	owner := testutil.CreateUser(t, h.db, "owner@example.com")
	e := testutil.CreateEvent(t, h.db, owner.ID, "UPLOAD01")

	file, err := h.uploads.Upload(context.Background(), ownerUpload(e, `C:\photos\party.png`, pngBytes(t, 1)))
	require.NoError(t, err)

	assert.Equal(t, "image/png", file.MimeType)
	assert.Equal(t, "party.png", file.OriginalName)
	assert.Equal(t, 4, file.Width)
	assert.Equal(t, 3, file.Height)
	assert.Len(t, file.Checksum, 64)
	assert.True(t, strings.HasPrefix(file.StorageKey, storage.EventPrefix(owner.ID, e.ID)+"originals/"))
	assert.True(t, strings.HasSuffix(file.StorageKey, ".png"))
	assert.True(t, h.store.Has(file.StorageKey))
	assert.Equal(t, []uint{file.ID}, orderedIDs(t, h, e.ID))

	// senkron dispatcher: thumbnail hazır
	got, err := h.repos.files.GetByID(file.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ThumbnailReady, got.ThumbnailStatus)
	assert.True(t, h.store.Has(storage.ThumbnailKey(owner.ID, e.ID, file.ID)))
}

func TestUploadRejectsContentThatIsNotMedia(t *testing.T) {
	h := newHarness(t)
	owner := testutil.CreateUser(t, h.db, "owner@example.com")
	e := testutil.CreateEvent(t, h.db, owner.ID, "UPLOAD02")

	// isim ve uzantı resim gibi, içerik düz metin
	_, err := h.uploads.Upload(context.Background(), ownerUpload(e, "totally-a-photo.jpg", []byte("#!/bin/sh\necho not an image\n")))
	assert.ErrorIs(t, err, ErrUnsupportedMedia)
	assert.Zero(t, h.store.PutCount())
}

func TestUploadRejectsSVG(t *testing.T) {
	h := newHarness(t)
	owner := testutil.CreateUser(t, h.db, "owner@example.com")
	e := testutil.CreateEvent(t, h.db, owner.ID, "UPLOAD0S")

	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" onload="alert(1)"><rect width="10" height="10"/></svg>`)
	_, err := h.uploads.Upload(context.Background(), ownerUpload(e, "logo.svg", svg))
	assert.ErrorIs(t, err, ErrUnsupportedMedia)
	assert.Zero(t, h.store.PutCount())
}

func TestUploadRejectsDuplicateChecksum(t *testing.T) {
	h := newHarness(t)
	owner := testutil.CreateUser(t, h.db, "owner@example.com")
	e := testutil.CreateEvent(t, h.db, owner.ID, "UPLOAD03")
	body := pngBytes(t, 7)

	first, err := h.uploads.Upload(context.Background(), ownerUpload(e, "a.png", body))
	require.NoError(t, err)
	puts := h.store.PutCount()

	_, err = h.uploads.Upload(context.Background(), ownerUpload(e, "b.png", body))
	assert.ErrorIs(t, err, ErrDuplicateFile)
	assert.Equal(t, puts, h.store.PutCount())

	// çöpteki dosya da kopya sayılır
	_, err = h.gallery.SoftDelete(context.Background(), owner.ID, e.ID, []uint{first.ID}, "")
	require.NoError(t, err)
	_, err = h.uploads.Upload(context.Background(), ownerUpload(e, "c.png", body))
	assert.ErrorIs(t, err, ErrDuplicateFile)

	// another event accepts the same bytes
	other := testutil.CreateEvent(t, h.db, owner.ID, "UPLOAD3B")
	_, err = h.uploads.Upload(context.Background(), ownerUpload(other, "a.png", body))
	assert.NoError(t, err)
}

func TestUploadQuotaCheckedBeforeWrite(t *testing.T) {
	h := newHarness(t)
	owner := testutil.CreateUser(t, h.db, "owner@example.com")
	e := testutil.CreateEvent(t, h.db, owner.ID, "UPLOAD04")

	// free cap 1 MB, neredeyse dolu
	h.store.Extra[storage.EventPrefix(owner.ID, e.ID)] = 1<<20 - 10
	_, err := h.uploads.Upload(context.Background(), ownerUpload(e, "a.png", pngBytes(t, 2)))
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Zero(t, h.store.PutCount())

	var count int64
	require.NoError(t, h.db.Model(&models.FileMetadata{}).Count(&count).Error)
	assert.Zero(t, count)

	custom := 5
	_, err = h.admin.SetEventStorage(1, e.ID, &custom)
	require.NoError(t, err)
	_, err = h.uploads.Upload(context.Background(), ownerUpload(e, "a.png", pngBytes(t, 2)))
	assert.NoError(t, err)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	h := newHarness(t)
	owner := testutil.CreateUser(t, h.db, "owner@example.com")
	e := testutil.CreateEvent(t, h.db, owner.ID, "UPLOAD05")

	big := append(pngBytes(t, 3), make([]byte, 1<<20)...)
	_, err := h.uploads.Upload(context.Background(), ownerUpload(e, "big.png", big))
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.Zero(t, h.store.PutCount())
}

func TestUploadVideoNeedsPlanFeature(t *testing.T) {
	h := newHarness(t)
	owner := testutil.CreateUser(t, h.db, "owner@example.com")
	e := testutil.CreateEvent(t, h.db, owner.ID, "UPLOAD06")

	_, err := h.uploads.Upload(context.Background(), ownerUpload(e, "clip.mp4", mp4Bytes()))
	assert.ErrorIs(t, err, ErrPlanLimit)
	assert.Zero(t, h.store.PutCount())

	plan := testutil.CreatePlan(t, h.db, "pro", models.PlanFeatures{AllowVideo: true, MaxStorageMB: 100})
	paid := time.Now().UTC()
	testutil.CreatePurchase(t, h.db, owner.ID, plan.ID, "cs_video", models.PurchaseStatusPaid, &paid)

	file, err := h.uploads.Upload(context.Background(), ownerUpload(e, "clip.mp4", mp4Bytes()))
	require.NoError(t, err)
	assert.True(t, file.IsVideo())
}

func TestGuestUploadRules(t *testing.T) {
	h := newHarness(t)
	owner := testutil.CreateUser(t, h.db, "owner@example.com")
	open := testutil.CreateEvent(t, h.db, owner.ID, "GUEST001", testutil.Published, testutil.GuestUploads)
	closed := testutil.CreateEvent(t, h.db, owner.ID, "GUEST002", testutil.Published)

	guest, _, err := h.guests.Enter(context.Background(), EnterInput{Code: open.Code, DisplayName: "Ada"})
	require.NoError(t, err)

	in := UploadInput{EventID: open.ID, Guest: guest, FileName: "g.png", Body: bytes.NewReader(pngBytes(t, 4))}
	file, err := h.uploads.Upload(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, file.GuestSessionID)
	assert.Equal(t, guest.ID, *file.GuestSessionID)

	// guest session of one event cannot upload to another
	in = UploadInput{EventID: closed.ID, Guest: guest, FileName: "g.png", Body: bytes.NewReader(pngBytes(t, 5))}
	_, err = h.uploads.Upload(context.Background(), in)
	assert.ErrorIs(t, err, ErrForbidden)

	closedGuest, _, err := h.guests.Enter(context.Background(), EnterInput{Code: closed.Code})
	require.NoError(t, err)
	in = UploadInput{EventID: closed.ID, Guest: closedGuest, FileName: "g.png", Body: bytes.NewReader(pngBytes(t, 5))}
	_, err = h.uploads.Upload(context.Background(), in)
	assert.ErrorIs(t, err, ErrEventClosed)

	// tarih kilidi: pencere dışında kapalı
	require.NoError(t, h.db.Model(open).Updates(map[string]interface{}{
		"is_date_locked": true,
		"starts_at":      time.Now().UTC().Add(24 * time.Hour),
		"ends_at":        time.Now().UTC().Add(48 * time.Hour),
	}).Error)
	in = UploadInput{EventID: open.ID, Guest: guest, FileName: "g.png", Body: bytes.NewReader(pngBytes(t, 6))}
	_, err = h.uploads.Upload(context.Background(), in)
	assert.ErrorIs(t, err, ErrEventClosed)
}

func TestUploadManyReportsPerFile(t *testing.T) {
	h := newHarness(t)
	owner := testutil.CreateUser(t, h.db, "owner@example.com")
	e := testutil.CreateEvent(t, h.db, owner.ID, "UPLOAD07")

	part := func(name string, body []byte) UploadPart {
		return UploadPart{FileName: name, Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}}
	}
	results := h.uploads.UploadMany(context.Background(), UploadInput{EventID: e.ID, UserID: owner.ID}, []UploadPart{
		part("ok.png", pngBytes(t, 10)),
		part("bad.txt", []byte("plain text")),
		part("ok2.png", pngBytes(t, 11)),
	})
	require.Len(t, results, 3)
	assert.NotNil(t, results[0].File)
	assert.Empty(t, results[0].Error)
	assert.Nil(t, results[1].File)
	assert.Contains(t, results[1].Error, "unsupported media type")
	assert.NotNil(t, results[2].File)
	assert.Equal(t, 2, len(orderedIDs(t, h, e.ID)))
}

func TestUploadRequiresOwnerOrGuest(t *testing.T) {
	h := newHarness(t)
	owner := testutil.CreateUser(t, h.db, "owner@example.com")
	other := testutil.CreateUser(t, h.db, "other@example.com")
	e := testutil.CreateEvent(t, h.db, owner.ID, "UPLOAD08")

	_, err := h.uploads.Upload(context.Background(), UploadInput{EventID: e.ID, UserID: other.ID, FileName: "a.png", Body: bytes.NewReader(pngBytes(t, 1))})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = h.uploads.Upload(context.Background(), UploadInput{EventID: e.ID, FileName: "a.png", Body: bytes.NewReader(pngBytes(t, 1))})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, h.store.PutCount())
}
