package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const (
	ThumbnailSize    = 480
	ThumbnailQuality = 80
)

type Thumbnailer struct {
	ffmpegPath string
	timeout    time.Duration
}

func NewThumbnailer(ffmpegPath string) *Thumbnailer {
	return &Thumbnailer{ffmpegPath: ffmpegPath, timeout: time.Minute}
}

// FromImage decodes r honouring EXIF orientation, fits it into 480x480 and
// encodes WebP.
func (t *Thumbnailer) FromImage(r io.Reader) ([]byte, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	thumb := imaging.Fit(img, ThumbnailSize, ThumbnailSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, thumb, &webp.Options{Lossless: false, Quality: ThumbnailQuality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

// FromVideo grabs the frame at 1s with ffmpeg and thumbnails it.
func (t *Thumbnailer) FromVideo(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, t.ffmpegPath,
		"-hide_banner", "-loglevel", "error",
		"-ss", "1",
		"-i", path,
		"-frames:v", "1",
		"-f", "image2",
		"-vcodec", "mjpeg",
		"pipe:1",
	)
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg: %w", err)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg: no frame extracted")
	}
	return t.FromImage(&out)
}
