package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cms/config"
)

var (
	// ErrObjectMissing means the store has no live object under the key.
	ErrObjectMissing = errors.New("object not found in store")
)

// ObjectStore is the narrow boundary to the object store. Implementations
// must scope a presigned URL to exactly one key and one content type.
type ObjectStore interface {
	// PresignPut returns a URL a client can PUT the object bytes to,
	// valid for ttl and only for the given key and content type.
	PresignPut(storageKey, contentType string, ttl time.Duration) (string, error)
	// Head returns the byte size of the live object, or ErrObjectMissing.
	Head(ctx context.Context, storageKey string) (int64, error)
	Delete(ctx context.Context, storageKey string) error
	// PublicURL is the read-back URL stored alongside the metadata record.
	PublicURL(storageKey string) string
}

// NewFromConfig builds the configured store. config.Validate has already
// run by the time this is called.
func NewFromConfig() (ObjectStore, error) {
	switch config.STORAGE_BACKEND {
	case "s3":
		return NewS3Store()
	case "disk":
		return NewDiskStore(config.DISK_STORAGE_DIR)
	}
	return nil, fmt.Errorf("unknown storage backend %q", config.STORAGE_BACKEND)
}

func joinPublicURL(base, storageKey string) string {
	return strings.TrimSuffix(base, "/") + "/" + storageKey
}
