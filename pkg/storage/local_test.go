package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoragePutOpenUsage(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, OriginalKey(1, 2, "a.jpg"), strings.NewReader("hello"), 5, "image/jpeg"))
	require.NoError(t, s.Put(ctx, ThumbnailKey(1, 2, 9), strings.NewReader("abc"), 3, "image/webp"))
	require.NoError(t, s.Put(ctx, OriginalKey(1, 3, "b.jpg"), strings.NewReader("other event"), 11, "image/jpeg"))

	rc, err := s.Open(ctx, "1/2/originals/a.jpg")
	require.NoError(t, err)
	b, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "hello", string(b))

	used, err := s.Usage(ctx, EventPrefix(1, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(8), used)

	used, err = s.Usage(ctx, EventPrefix(5, 5))
	require.NoError(t, err)
	assert.Zero(t, used)

	require.NoError(t, s.Delete(ctx, "1/2/originals/a.jpg"))
	_, err = s.Open(ctx, "1/2/originals/a.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, s.Delete(ctx, "1/2/originals/a.jpg"))
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"../etc/passwd", "/abs", "a/../../b", ""} {
		err := s.Put(context.Background(), key, strings.NewReader("x"), 1, "")
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}
