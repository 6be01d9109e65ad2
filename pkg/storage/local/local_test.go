package local

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
)

func TestPutGetDelete(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	content := []byte("sample blob content")
	key := "media/1700000000000-abc123-sunrise.jpg"

	if err := s.PutObject(ctx, key, bytes.NewReader(content), "image/jpeg", int64(len(content))); err != nil {
		t.Fatalf("PutObject failed: %v", err)
	}

	exists, err := s.ObjectExists(ctx, key)
	if err != nil {
		t.Fatalf("ObjectExists failed: %v", err)
	}
	if !exists {
		t.Fatal("expected object to exist after put")
	}

	rc, err := s.GetObject(ctx, key)
	if err != nil {
		t.Fatalf("GetObject failed: %v", err)
	}
	got, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read object: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatalf("content mismatch: got %q", got)
	}

	if err := s.DeleteObject(ctx, key); err != nil {
		t.Fatalf("DeleteObject failed: %v", err)
	}
	exists, err = s.ObjectExists(ctx, key)
	if err != nil {
		t.Fatalf("ObjectExists after delete failed: %v", err)
	}
	if exists {
		t.Fatal("expected object gone after delete")
	}

	// Deleting again is not an error.
	if err := s.DeleteObject(ctx, key); err != nil {
		t.Fatalf("second DeleteObject failed: %v", err)
	}
}

func TestListObjects(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	for _, key := range []string{"media/a.jpg", "media/b.mp4", "thumbnails/b.jpg"} {
		if err := s.PutObject(ctx, key, strings.NewReader("x"), "application/octet-stream", 1); err != nil {
			t.Fatalf("PutObject %s failed: %v", key, err)
		}
	}

	objects, err := s.ListObjects(ctx, "media")
	if err != nil {
		t.Fatalf("ListObjects failed: %v", err)
	}
	if len(objects) != 2 {
		t.Fatalf("expected 2 objects under media, got %d", len(objects))
	}
	for _, obj := range objects {
		if !strings.HasPrefix(obj.Key, "media/") {
			t.Errorf("unexpected key outside prefix: %s", obj.Key)
		}
	}

	// Unknown prefix lists empty, not an error.
	objects, err = s.ListObjects(ctx, "missing")
	if err != nil {
		t.Fatalf("ListObjects on missing prefix failed: %v", err)
	}
	if len(objects) != 0 {
		t.Fatalf("expected empty listing, got %d", len(objects))
	}
}

func TestGenerateURL(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	url, err := s.GenerateURL(context.Background(), "media/x.jpg")
	if err != nil {
		t.Fatalf("GenerateURL failed: %v", err)
	}
	if url != "/api/v1/media/blob/media/x.jpg" {
		t.Fatalf("unexpected URL: %s", url)
	}
}
