package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStoragePutDelete(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	st, err := New(Config{Driver: "local", LocalPath: base, LocalURL: "/uploads/"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	key := "courses/c1/cover.jpg"

	if err := st.Put(ctx, key, bytes.NewReader([]byte("jpeg-bytes")), "image/jpeg"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(base, "courses", "c1", "cover.jpg"))
	if err != nil || string(data) != "jpeg-bytes" {
		t.Fatalf("unexpected stored content %q, %v", data, err)
	}

	if got, want := st.GetURL(key), "/uploads/"+key; got != want {
		t.Fatalf("GetURL = %q, want %q", got, want)
	}

	if err := st.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := st.Delete(ctx, key); err != nil {
		t.Fatalf("second Delete should be a no-op: %v", err)
	}
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	st, err := NewLocalStorage(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	if err := st.Put(context.Background(), "../../etc/passwd", bytes.NewReader(nil), "text/plain"); err == nil {
		t.Fatal("expected escaping key to be rejected")
	}
}

func TestUnknownDriver(t *testing.T) {
	if _, err := New(Config{Driver: "ftp"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestS3BaseURL(t *testing.T) {
	tests := []struct {
		name, public, endpoint, want string
	}{
		{"cdn", "https://cdn.learnhub.test/", "http://minio:9000", "https://cdn.learnhub.test"},
		{"minio", "", "http://minio:9000", "http://minio:9000/media"},
		{"aws", "", "", "https://media.s3.amazonaws.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s3BaseURL(tt.public, tt.endpoint, "media"); got != tt.want {
				t.Fatalf("s3BaseURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestS3GetURL(t *testing.T) {
	s := &S3Storage{baseURL: "https://cdn.learnhub.test"}
	if got, want := s.GetURL("covers/abc/large.jpg"), "https://cdn.learnhub.test/covers/abc/large.jpg"; got != want {
		t.Fatalf("GetURL = %q, want %q", got, want)
	}
}
