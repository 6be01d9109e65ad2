// Package thumbnail produces a still image from an uploaded video by
// shelling out to ffprobe/ffmpeg. Generation is best-effort: every failure
// collapses to a Skipped result so a video without a thumbnail still uploads.
package thumbnail

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Result is the outcome of thumbnail generation: either a ready JPEG frame
// or an explicit skip. Callers must branch on Ready() and can never observe
// a half-built state.
type Result struct {
	data        []byte
	contentType string
}

// Ready reports whether a thumbnail image was produced.
func (r Result) Ready() bool { return len(r.data) > 0 }

// Image returns the encoded thumbnail bytes and their content type.
// Only meaningful when Ready() is true.
func (r Result) Image() ([]byte, string) { return r.data, r.contentType }

// Skipped is the absent-thumbnail result.
func Skipped() Result { return Result{} }

// ReadyResult wraps encoded image bytes as a ready result. Used by fakes in tests.
func ReadyResult(data []byte, contentType string) Result {
	return Result{data: data, contentType: contentType}
}

// Generator produces a thumbnail for a video payload.
type Generator interface {
	Generate(ctx context.Context, video []byte) Result
}

// FFmpegGenerator captures a single frame with the ffmpeg toolchain.
//
// The seek point is min(1s, 0.25 x duration) so very short clips still land
// on a rendered frame. Output is JPEG at roughly 0.7 quality (-q:v 3).
type FFmpegGenerator struct {
	FFmpegPath  string
	FFprobePath string
	Timeout     time.Duration
}

// NewFFmpegGenerator returns a generator using the ffmpeg/ffprobe binaries on PATH.
func NewFFmpegGenerator() *FFmpegGenerator {
	return &FFmpegGenerator{
		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",
		Timeout:     30 * time.Second,
	}
}

// Available reports whether the required binaries are present on PATH.
func (g *FFmpegGenerator) Available() bool {
	if _, err := exec.LookPath(g.FFmpegPath); err != nil {
		return false
	}
	if _, err := exec.LookPath(g.FFprobePath); err != nil {
		return false
	}
	return true
}

// Generate decodes just enough of the video to capture one frame.
// Any failure is logged and collapses to Skipped; it is never a hard error.
func (g *FFmpegGenerator) Generate(ctx context.Context, video []byte) Result {
	if len(video) == 0 {
		return Skipped()
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout())
	defer cancel()

	src, err := os.CreateTemp("", "thumb-src-*.video")
	if err != nil {
		log.Printf("[Thumbnail] temp file: %v", err)
		return Skipped()
	}
	defer os.Remove(src.Name())

	if _, err := src.Write(video); err != nil {
		src.Close()
		log.Printf("[Thumbnail] write temp file: %v", err)
		return Skipped()
	}
	if err := src.Close(); err != nil {
		log.Printf("[Thumbnail] close temp file: %v", err)
		return Skipped()
	}

	duration, err := g.probeDuration(ctx, src.Name())
	if err != nil {
		log.Printf("[Thumbnail] probe duration: %v", err)
		return Skipped()
	}
	if duration <= 0 {
		log.Printf("[Thumbnail] zero-duration video, skipping")
		return Skipped()
	}

	seek := duration * 0.25
	if seek > 1.0 {
		seek = 1.0
	}

	out := src.Name() + ".jpg"
	defer os.Remove(out)

	// -q:v 3 is roughly 0.7 on ffmpeg's inverted 2..31 JPEG quality scale.
	cmd := exec.CommandContext(ctx, g.FFmpegPath,
		"-ss", strconv.FormatFloat(seek, 'f', 3, 64),
		"-i", src.Name(),
		"-frames:v", "1",
		"-q:v", "3",
		"-f", "image2",
		"-y", out,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		log.Printf("[Thumbnail] ffmpeg failed: %v; out=%s", err, string(output))
		return Skipped()
	}

	data, err := os.ReadFile(out)
	if err != nil || len(data) == 0 {
		log.Printf("[Thumbnail] read frame: %v", err)
		return Skipped()
	}

	return ReadyResult(data, "image/jpeg")
}

func (g *FFmpegGenerator) probeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, g.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w; out=%s", err, string(out))
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	return duration, nil
}

func (g *FFmpegGenerator) timeout() time.Duration {
	if g.Timeout > 0 {
		return g.Timeout
	}
	return 30 * time.Second
}
