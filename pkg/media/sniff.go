package media

import (
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Detected is the content-based type of an upload.
type Detected struct {
	MIME      string
	Extension string
}

func (d Detected) IsVideo() bool { return strings.HasPrefix(d.MIME, "video/") }

func (d Detected) IsImage() bool { return strings.HasPrefix(d.MIME, "image/") }

// DetectMIME sniffs r from its first bytes and rewinds it. The client's
// declared content type is never consulted.
func DetectMIME(r io.ReadSeeker) (Detected, error) {
	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return Detected{}, fmt.Errorf("mime detect: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return Detected{}, err
	}
	mime := mt.String()
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return Detected{MIME: mime, Extension: mt.Extension()}, nil
}

// scriptable types run in the browser when served inline from our origin.
var scriptable = map[string]bool{
	"image/svg+xml":         true,
	"text/html":             true,
	"application/xhtml+xml": true,
	"text/xml":              true,
	"application/xml":       true,
}

// IsScriptable reports whether mime is a document type that can carry script.
func IsScriptable(mime string) bool { return scriptable[mime] }

// IsAllowed reports whether mime starts with one of prefixes. Scriptable
// types are refused whatever the prefixes say.
func IsAllowed(mime string, prefixes []string) bool {
	if IsScriptable(mime) {
		return false
	}
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(mime, p) {
			return true
		}
	}
	return false
}
