package thumbnail

import (
	"context"
	"testing"
	"time"
)

func TestResultVariants(t *testing.T) {
	skipped := Skipped()
	if skipped.Ready() {
		t.Fatal("Skipped result must not report ready")
	}
	data, contentType := skipped.Image()
	if data != nil || contentType != "" {
		t.Fatal("Skipped result must carry no image")
	}

	ready := ReadyResult([]byte{0xFF, 0xD8, 0xFF}, "image/jpeg")
	if !ready.Ready() {
		t.Fatal("ready result must report ready")
	}
	data, contentType = ready.Image()
	if len(data) != 3 || contentType != "image/jpeg" {
		t.Fatalf("ready result lost its payload: %d bytes, %q", len(data), contentType)
	}
}

func TestGenerateEmptyPayloadSkips(t *testing.T) {
	g := NewFFmpegGenerator()
	if res := g.Generate(context.Background(), nil); res.Ready() {
		t.Fatal("empty payload must skip")
	}
}

func TestGenerateGarbagePayloadSkips(t *testing.T) {
	g := NewFFmpegGenerator()
	g.Timeout = 5 * time.Second
	// Not a decodable video under any codec; must collapse to Skipped
	// whether or not ffmpeg is installed.
	res := g.Generate(context.Background(), []byte("definitely not a video"))
	if res.Ready() {
		t.Fatal("garbage payload must skip, not produce a frame")
	}
}
