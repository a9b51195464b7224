package storage

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cms/config"
)

var (
	ErrBadWriteToken = errors.New("invalid direct-write token")
	ErrWriteExpired  = errors.New("write grant expired")
)

// DiskStore keeps objects on the local filesystem. Instead of an S3
// presigned URL it hands out a local write URL protected by an HMAC token
// that covers the key, the content type and the expiry; the direct-write
// endpoint is then the expiry enforcer, the same way S3 is for presigned
// PUTs. The signing key is generated per process, so grants do not survive
// a restart. Grants are ephemeral anyway.
type DiskStore struct {
	BasePath   string
	publicBase string
	signKey    []byte
}

func NewDiskStore(basePath string) (*DiskStore, error) {
	if err := os.MkdirAll(basePath, 0777); err != nil {
		return nil, err
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	publicBase := config.PUBLIC_BASE_URL
	if publicBase == "" {
		publicBase = "/media/file"
	}
	return &DiskStore{
		BasePath:   basePath,
		publicBase: publicBase,
		signKey:    key,
	}, nil
}

func (s *DiskStore) PresignPut(storageKey, contentType string, ttl time.Duration) (string, error) {
	expires := time.Now().Add(ttl).Unix()
	token := strconv.FormatInt(expires, 10) + "." + s.sign(storageKey, contentType, expires)
	return "/media/direct/" + token + "/" + storageKey, nil
}

// WriteDirect stores the object bytes for a previously granted token.
// The token must match the key and content type it was issued for.
func (s *DiskStore) WriteDirect(token, storageKey, contentType string, reader io.Reader) (int64, error) {
	expiresStr, mac, ok := strings.Cut(token, ".")
	if !ok {
		return 0, ErrBadWriteToken
	}
	expires, err := strconv.ParseInt(expiresStr, 10, 64)
	if err != nil {
		return 0, ErrBadWriteToken
	}
	if !hmac.Equal([]byte(mac), []byte(s.sign(storageKey, contentType, expires))) {
		return 0, ErrBadWriteToken
	}
	if time.Now().Unix() > expires {
		return 0, ErrWriteExpired
	}
	file, err := os.Create(s.fullPath(storageKey))
	if err != nil {
		return 0, err
	}
	result, err := io.Copy(file, reader)
	file.Close()
	return result, err
}

func (s *DiskStore) Head(ctx context.Context, storageKey string) (int64, error) {
	fi, err := os.Stat(s.fullPath(storageKey))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrObjectMissing
		}
		return 0, err
	}
	return fi.Size(), nil
}

func (s *DiskStore) Delete(ctx context.Context, storageKey string) error {
	err := os.Remove(s.fullPath(storageKey))
	if os.IsNotExist(err) {
		return ErrObjectMissing
	}
	return err
}

func (s *DiskStore) PublicURL(storageKey string) string {
	return joinPublicURL(s.publicBase, storageKey)
}

// Serve streams a stored object back, for deployments without a CDN in front.
func (s *DiskStore) Serve(storageKey string, request *http.Request, writer http.ResponseWriter) {
	http.ServeFile(writer, request, s.fullPath(storageKey))
}

// Storage keys are flat (no path separators), see the broker's key
// generation. The filepath.Base call keeps a hand-crafted key from
// escaping BasePath anyway.
func (s *DiskStore) fullPath(storageKey string) string {
	return filepath.Join(s.BasePath, filepath.Base(storageKey))
}

func (s *DiskStore) sign(storageKey, contentType string, expires int64) string {
	h := hmac.New(sha256.New, s.signKey)
	fmt.Fprintf(h, "%s|%s|%d", storageKey, contentType, expires)
	return hex.EncodeToString(h.Sum(nil))
}
