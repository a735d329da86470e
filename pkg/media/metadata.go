package media

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

type Metadata struct {
	Width      int
	Height     int
	Duration   float64
	CapturedAt *time.Time
}

// Extractor reads capture time and dimensions. Videos go through ffprobe.
type Extractor struct {
	ffprobePath string
	timeout     time.Duration
}

func NewExtractor(ffprobePath string) *Extractor {
	return &Extractor{ffprobePath: ffprobePath, timeout: 30 * time.Second}
}

func (e *Extractor) Extract(ctx context.Context, path string, d Detected) (Metadata, error) {
	if d.IsVideo() {
		return e.readVideo(ctx, path)
	}
	return imageMetadata(path)
}

func imageMetadata(path string) (Metadata, error) {
	var m Metadata

	f, err := os.Open(path)
	if err != nil {
		return m, err
	}
	defer f.Close()

	if cfg, _, err := image.DecodeConfig(f); err == nil {
		m.Width, m.Height = cfg.Width, cfg.Height
	}

	if _, err := f.Seek(0, 0); err != nil {
		return m, err
	}
	// EXIF yoksa CapturedAt nil kalır
	if x, err := exif.Decode(f); err == nil {
		if t, err := x.DateTime(); err == nil && !t.IsZero() {
			m.CapturedAt = &t
		}
	}
	return m, nil
}

type videoStreamInfo struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string            `json:"duration"`
		Tags     map[string]string `json:"tags"`
	} `json:"format"`
}

func (e *Extractor) readVideo(ctx context.Context, path string) (Metadata, error) {
	var m Metadata

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, e.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	).Output()
	if err != nil {
		return m, fmt.Errorf("ffprobe: %w", err)
	}
	return parseVideoMetadata(out)
}

func parseVideoMetadata(out []byte) (Metadata, error) {
	var m Metadata
	var p videoStreamInfo
	if err := json.Unmarshal(out, &p); err != nil {
		return m, fmt.Errorf("ffprobe output: %w", err)
	}
	for _, s := range p.Streams {
		if s.CodecType == "video" {
			m.Width, m.Height = s.Width, s.Height
			break
		}
	}
	if d, err := strconv.ParseFloat(p.Format.Duration, 64); err == nil {
		m.Duration = d
	}
	if ct := p.Format.Tags["creation_time"]; ct != "" {
		if t, err := time.Parse(time.RFC3339Nano, ct); err == nil {
			m.CapturedAt = &t
		}
	}
	return m, nil
}
