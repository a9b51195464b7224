package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestDiskStore(t *testing.T) *DiskStore {
	t.Helper()
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	return store
}

func splitWriteURL(t *testing.T, url string) (token, key string) {
	t.Helper()
	rest := strings.TrimPrefix(url, "/media/direct/")
	token, key, ok := strings.Cut(rest, "/")
	if !ok {
		t.Fatalf("unexpected write URL shape: %s", url)
	}
	return token, key
}

func TestDiskStoreWriteRoundTrip(t *testing.T) {
	store := newTestDiskStore(t)
	url, err := store.PresignPut("abc-cat.jpg", "image/jpeg", time.Minute)
	if err != nil {
		t.Fatalf("PresignPut: %v", err)
	}
	token, key := splitWriteURL(t, url)
	if key != "abc-cat.jpg" {
		t.Errorf("key = %q", key)
	}

	size, err := store.WriteDirect(token, key, "image/jpeg", strings.NewReader("some bytes"))
	if err != nil {
		t.Fatalf("WriteDirect: %v", err)
	}
	if size != int64(len("some bytes")) {
		t.Errorf("size = %d", size)
	}
	headSize, err := store.Head(context.Background(), key)
	if err != nil || headSize != size {
		t.Errorf("Head = %d, %v; want %d, nil", headSize, err, size)
	}

	if err := store.Delete(context.Background(), key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Head(context.Background(), key); !errors.Is(err, ErrObjectMissing) {
		t.Errorf("Head after delete = %v, want ErrObjectMissing", err)
	}
	if err := store.Delete(context.Background(), key); !errors.Is(err, ErrObjectMissing) {
		t.Errorf("second Delete = %v, want ErrObjectMissing", err)
	}
}

func TestDiskStoreRejectsTamperedToken(t *testing.T) {
	store := newTestDiskStore(t)
	url, _ := store.PresignPut("abc-cat.jpg", "image/jpeg", time.Minute)
	token, key := splitWriteURL(t, url)

	tests := []struct {
		name        string
		token       string
		key         string
		contentType string
	}{
		{"wrong key", token, "other-key.jpg", "image/jpeg"},
		{"wrong content type", token, key, "video/mp4"},
		{"garbage token", "notatoken", key, "image/jpeg"},
		{"tampered mac", token + "ff", key, "image/jpeg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.WriteDirect(tt.token, tt.key, tt.contentType, strings.NewReader("x"))
			if !errors.Is(err, ErrBadWriteToken) {
				t.Errorf("WriteDirect = %v, want ErrBadWriteToken", err)
			}
		})
	}
}

func TestDiskStoreExpiredGrant(t *testing.T) {
	store := newTestDiskStore(t)
	url, _ := store.PresignPut("abc-cat.jpg", "image/jpeg", -time.Minute)
	token, key := splitWriteURL(t, url)

	_, err := store.WriteDirect(token, key, "image/jpeg", strings.NewReader("late"))
	if !errors.Is(err, ErrWriteExpired) {
		t.Errorf("WriteDirect = %v, want ErrWriteExpired", err)
	}
	if _, err := store.Head(context.Background(), key); !errors.Is(err, ErrObjectMissing) {
		t.Error("expired write should not leave an object behind")
	}
}
