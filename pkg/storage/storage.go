package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

var (
	ErrNotFound   = errors.New("object not found")
	ErrInvalidKey = errors.New("invalid object key")
)

// Storage is the blob store for originals and thumbnails. Keys are slash
// separated, e.g. "{userID}/{eventID}/originals/{name}".
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// Usage sums object sizes under prefix.
	Usage(ctx context.Context, prefix string) (int64, error)
}

func EventPrefix(userID, eventID uint) string {
	return fmt.Sprintf("%d/%d/", userID, eventID)
}

func OriginalKey(userID, eventID uint, name string) string {
	return EventPrefix(userID, eventID) + "originals/" + name
}

func ThumbnailKey(userID, eventID, fileID uint) string {
	return fmt.Sprintf("%sthumbnails/%d.webp", EventPrefix(userID, eventID), fileID)
}

func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned != key || strings.HasPrefix(cleaned, "../") || cleaned == ".." || cleaned == "." {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
