package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrTime(t time.Time) *time.Time { return &t }

func orderedIDs(t *testing.T, h *harness, eventID uint) []uint {
	t.Helper()
	rows, err := h.repos.order.Ordinals(eventID)
	require.NoError(t, err)
	ids := make([]uint, len(rows))
	for i, r := range rows {
		assert.Equal(t, i+1, r.Ordinal)
		ids[i] = r.FileMetadataID
	}
	return ids
}

func TestRebuildGalleryOrderIsDeterministic(t *testing.T) {
	h := newHarness(t)
	u := testutil.CreateUser(t, h.db, "owner@example.com")
	e := testutil.CreateEvent(t, h.db, u.ID, "ORDER001")

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	noCaptureLate := testutil.CreateFile(t, h.db, e.ID, "a", nil, base.Add(2*time.Hour))
	noCaptureEarly := testutil.CreateFile(t, h.db, e.ID, "b", nil, base.Add(time.Hour))
	captured2 := testutil.CreateFile(t, h.db, e.ID, "c", ptrTime(base.Add(-time.Hour)), base)
	captured1 := testutil.CreateFile(t, h.db, e.ID, "d", ptrTime(base.Add(-2*time.Hour)), base.Add(3*time.Hour))
	// aynı çekim ve yükleme zamanı: id belirler
	tieA := testutil.CreateFile(t, h.db, e.ID, "e", ptrTime(base.Add(-time.Hour)), base)
	deleted := testutil.CreateFile(t, h.db, e.ID, "f", ptrTime(base.Add(-5*time.Hour)), base)
	require.NoError(t, h.db.Model(deleted).Updates(map[string]interface{}{"is_deleted": true, "deleted_at": base}).Error)

	require.NoError(t, h.gallery.RebuildEventGalleryOrder(context.Background(), e.ID))
	want := []uint{captured1.ID, captured2.ID, tieA.ID, noCaptureEarly.ID, noCaptureLate.ID}
	assert.Equal(t, want, orderedIDs(t, h, e.ID))

	require.NoError(t, h.gallery.RebuildEventGalleryOrder(context.Background(), e.ID))
	assert.Equal(t, want, orderedIDs(t, h, e.ID))

	page, err := h.gallery.ListGallery(e.ID, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, captured1.ID, page.Items[0].ID)
	assert.Equal(t, 1, page.Items[0].Ordinal)

	page, err = h.gallery.ListGallery(e.ID, 3, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 5, page.Items[0].Ordinal)
}

func TestConcurrentUploadsKeepOneRowPerFile(t *testing.T) {
	h := newHarness(t)
	u := testutil.CreateUser(t, h.db, "owner@example.com")
	e := testutil.CreateEvent(t, h.db, u.ID, "BUSY0001")
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 8; i++ {
		testutil.CreateFile(t, h.db, e.ID, fmt.Sprintf("guest-%d", i), nil, base.Add(time.Duration(i)*time.Minute))
	}

	// her yükleme kendi rebuild'ini tetikler
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- h.gallery.RebuildEventGalleryOrder(context.Background(), e.ID)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Len(t, orderedIDs(t, h, e.ID), 8)
}

func TestRebuildAfterEventDeleted(t *testing.T) {
	h := newHarness(t)
	u := testutil.CreateUser(t, h.db, "owner@example.com")
	e := testutil.CreateEvent(t, h.db, u.ID, "GONE0001")
	testutil.CreateFile(t, h.db, e.ID, "a", nil, time.Now().UTC())
	require.NoError(t, h.db.Delete(&models.Event{}, e.ID).Error)

	require.NoError(t, h.gallery.RebuildEventGalleryOrder(context.Background(), e.ID))
	assert.Len(t, orderedIDs(t, h, e.ID), 1)
}

func TestSoftDeleteRequiresOwnership(t *testing.T) {
	h := newHarness(t)
	owner := testutil.CreateUser(t, h.db, "owner@example.com")
	other := testutil.CreateUser(t, h.db, "other@example.com")
	e := testutil.CreateEvent(t, h.db, owner.ID, "AUTH0001")
	f := testutil.CreateFile(t, h.db, e.ID, "a", nil, time.Now().UTC())
	require.NoError(t, h.gallery.RebuildEventGalleryOrder(context.Background(), e.ID))

	err := h.gallery.SoftDeleteFile(context.Background(), other.ID, e.ID, f.ID, "")
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := h.repos.files.GetByID(f.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDeleted)
	assert.Equal(t, []uint{f.ID}, orderedIDs(t, h, e.ID))

	_, err = h.gallery.Restore(context.Background(), other.ID, e.ID, []uint{f.ID}, "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSoftDeleteAndRestore(t *testing.T) {
	h := newHarness(t)
	owner := testutil.CreateUser(t, h.db, "owner@example.com")
	e := testutil.CreateEvent(t, h.db, owner.ID, "TRASH001")
	now := time.Now().UTC()
	a := testutil.CreateFile(t, h.db, e.ID, "a", nil, now.Add(-time.Minute))
	b := testutil.CreateFile(t, h.db, e.ID, "b", nil, now)
	require.NoError(t, h.gallery.RebuildEventGalleryOrder(context.Background(), e.ID))

	n, err := h.gallery.SoftDelete(context.Background(), owner.ID, e.ID, []uint{a.ID, 9999}, "127.0.0.1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, []uint{b.ID}, orderedIDs(t, h, e.ID))
	assert.EqualValues(t, 1, h.auditCount(t, "file.deleted"))

	trash, err := h.gallery.ListTrash(owner.ID, e.ID)
	require.NoError(t, err)
	require.Len(t, trash, 1)
	assert.Equal(t, a.ID, trash[0].ID)
	assert.Equal(t, 30, trash[0].DaysRemaining)

	require.NoError(t, h.gallery.RestoreFile(context.Background(), owner.ID, e.ID, a.ID, ""))
	assert.Equal(t, []uint{a.ID, b.ID}, orderedIDs(t, h, e.ID))
	assert.EqualValues(t, 1, h.auditCount(t, "file.restored"))

	err = h.gallery.SoftDeleteFile(context.Background(), owner.ID, e.ID, 12345, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRestoreAfterRetentionFails(t *testing.T) {
	h := newHarness(t)
	owner := testutil.CreateUser(t, h.db, "owner@example.com")
	e := testutil.CreateEvent(t, h.db, owner.ID, "EXPIRE01")
	f := testutil.CreateFile(t, h.db, e.ID, "a", nil, time.Now().UTC())
	old := time.Now().UTC().Add(-31 * 24 * time.Hour)
	require.NoError(t, h.db.Model(f).Updates(map[string]interface{}{"is_deleted": true, "deleted_at": old}).Error)

	err := h.gallery.RestoreFile(context.Background(), owner.ID, e.ID, f.ID, "")
	assert.ErrorIs(t, err, ErrRetentionExpired)

	trash, err := h.gallery.ListTrash(owner.ID, e.ID)
	require.NoError(t, err)
	assert.Empty(t, trash)
}

func TestOpenFileAuthorization(t *testing.T) {
	h := newHarness(t)
	owner := testutil.CreateUser(t, h.db, "owner@example.com")
	stranger := testutil.CreateUser(t, h.db, "stranger@example.com")
	e := testutil.CreateEvent(t, h.db, owner.ID, "VIEW0001", testutil.Published)
	otherEvent := testutil.CreateEvent(t, h.db, stranger.ID, "VIEW0002", testutil.Published)

	f := testutil.CreateFile(t, h.db, e.ID, "photo.jpg", nil, time.Now().UTC())
	require.NoError(t, h.store.Put(context.Background(), f.StorageKey, stringsReader("original"), 8, "image/jpeg"))

	guest, _, err := h.guests.Enter(context.Background(), EnterInput{Code: e.Code})
	require.NoError(t, err)
	otherGuest, _, err := h.guests.Enter(context.Background(), EnterInput{Code: otherEvent.Code})
	require.NoError(t, err)

	guestOf := func(token string, eventID uint) Viewer {
		return Viewer{GuestToken: func(id uint) string {
			if id == eventID {
				return token
			}
			return ""
		}}
	}

	content, err := h.gallery.OpenFile(context.Background(), Viewer{UserID: owner.ID}, f.ID, VariantOriginal)
	require.NoError(t, err)
	body, _ := io.ReadAll(content.Body)
	content.Body.Close()
	assert.Equal(t, "original", string(body))

	_, err = h.gallery.OpenFile(context.Background(), Viewer{UserID: stranger.ID}, f.ID, VariantOriginal)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = h.gallery.OpenFile(context.Background(), Viewer{}, f.ID, VariantOriginal)
	assert.ErrorIs(t, err, ErrForbidden)

	content, err = h.gallery.OpenFile(context.Background(), guestOf(guest.Token, e.ID), f.ID, VariantThumbnail)
	require.NoError(t, err)
	assert.Equal(t, VariantOriginal, content.Variant, "thumbnail not ready falls back to original")
	content.Body.Close()

	// başka etkinliğin misafiri, token'ı bu etkinlik için gönderse bile
	_, err = h.gallery.OpenFile(context.Background(), guestOf(otherGuest.Token, e.ID), f.ID, VariantOriginal)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, h.gallery.SoftDeleteFile(context.Background(), owner.ID, e.ID, f.ID, ""))
	_, err = h.gallery.OpenFile(context.Background(), guestOf(guest.Token, e.ID), f.ID, VariantOriginal)
	assert.ErrorIs(t, err, ErrNotFound)

	content, err = h.gallery.OpenFile(context.Background(), Viewer{UserID: owner.ID}, f.ID, VariantOriginal)
	require.NoError(t, err)
	content.Body.Close()
}

func TestOpenFileServesReadyThumbnail(t *testing.T) {
	h := newHarness(t)
	owner := testutil.CreateUser(t, h.db, "owner@example.com")
	e := testutil.CreateEvent(t, h.db, owner.ID, "THUMB001")
	f := testutil.CreateFile(t, h.db, e.ID, "photo.jpg", nil, time.Now().UTC())
	require.NoError(t, h.store.Put(context.Background(), f.StorageKey, stringsReader("original"), 8, "image/jpeg"))

	require.NoError(t, h.thumbs.Generate(context.Background(), f, owner.ID))

	content, err := h.gallery.OpenFile(context.Background(), Viewer{UserID: owner.ID}, f.ID, VariantThumbnail)
	require.NoError(t, err)
	defer content.Body.Close()
	assert.Equal(t, VariantThumbnail, content.Variant)
	assert.Equal(t, "image/webp", content.ContentType)
}

func TestThumbnailFailureIsRecorded(t *testing.T) {
	h := newHarness(t)
	owner := testutil.CreateUser(t, h.db, "owner@example.com")
	e := testutil.CreateEvent(t, h.db, owner.ID, "THUMB002")
	f := testutil.CreateFile(t, h.db, e.ID, "missing.jpg", nil, time.Now().UTC())

	assert.Error(t, h.thumbs.Generate(context.Background(), f, owner.ID))

	got, err := h.repos.files.GetByID(f.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ThumbnailFailed, got.ThumbnailStatus)
}
