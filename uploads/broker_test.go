package uploads

import (
	"errors"
	"strings"
	"testing"
	"time"

	"cms/storage"
)

var testAllowedTypes = []string{"image/png", "image/jpeg", "application/pdf"}

func newTestBroker(ttl time.Duration) (*Broker, *storage.MemStore) {
	store := storage.NewMemStore()
	return NewBroker(store, testAllowedTypes, ttl), store
}

func TestGrantRejectsDisallowedContentType(t *testing.T) {
	broker, _ := newTestBroker(time.Minute)
	_, err := broker.Grant("malware.exe", "application/x-msdownload", 1)
	if !errors.Is(err, ErrContentType) {
		t.Errorf("err = %v, want ErrContentType", err)
	}
}

func TestGrantSanitizesStorageKey(t *testing.T) {
	broker, _ := newTestBroker(time.Minute)
	grant, err := broker.Grant("../../etc/passwd", "image/png", 1)
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if strings.ContainsAny(grant.StorageKey, "/\\") {
		t.Errorf("storage key contains path separators: %q", grant.StorageKey)
	}
	if !strings.HasSuffix(grant.StorageKey, "-etcpasswd") {
		t.Errorf("storage key = %q, want sanitized name suffix", grant.StorageKey)
	}
}

func TestGrantRejectsUnusableFileName(t *testing.T) {
	broker, _ := newTestBroker(time.Minute)
	if _, err := broker.Grant("///", "image/png", 1); !errors.Is(err, ErrInvalidFileName) {
		t.Errorf("err = %v, want ErrInvalidFileName", err)
	}
}

func TestGrantKeysAreUnique(t *testing.T) {
	broker, _ := newTestBroker(time.Minute)
	a, _ := broker.Grant("cat.png", "image/png", 1)
	b, _ := broker.Grant("cat.png", "image/png", 1)
	if a.StorageKey == b.StorageKey {
		t.Error("two grants for the same name should get different keys")
	}
}

func TestGrantRecordsSession(t *testing.T) {
	broker, _ := newTestBroker(time.Minute)
	before := time.Now()
	grant, err := broker.Grant("cat.png", "image/png", 7)
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if grant.ExpiresAt.Before(before.Add(50*time.Second)) || grant.ExpiresAt.After(before.Add(70*time.Second)) {
		t.Errorf("ExpiresAt = %v, want about a minute out", grant.ExpiresAt)
	}
	sess, ok := broker.Session(grant.StorageKey)
	if !ok {
		t.Fatal("session not recorded")
	}
	if sess.State() != SessionGranted {
		t.Errorf("state = %v, want granted", sess.State())
	}
	if sess.RequesterID != 7 || sess.ContentType != "image/png" {
		t.Errorf("session = %+v", sess)
	}
}

func TestSweepExpiredAbandonsStaleGrants(t *testing.T) {
	broker, _ := newTestBroker(-2 * time.Minute) // already past TTL and grace
	grant, err := broker.Grant("cat.png", "image/png", 1)
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	sess, _ := broker.Session(grant.StorageKey)

	if abandoned := broker.SweepExpired(); abandoned != 1 {
		t.Errorf("abandoned = %d, want 1", abandoned)
	}
	if sess.State() != SessionAbandoned {
		t.Errorf("state = %v, want abandoned", sess.State())
	}
	if _, ok := broker.Session(grant.StorageKey); ok {
		t.Error("abandoned session should be dropped from the map")
	}
}

func TestSweepKeepsFreshGrants(t *testing.T) {
	broker, _ := newTestBroker(time.Minute)
	grant, _ := broker.Grant("cat.png", "image/png", 1)
	if abandoned := broker.SweepExpired(); abandoned != 0 {
		t.Errorf("abandoned = %d, want 0", abandoned)
	}
	if _, ok := broker.Session(grant.StorageKey); !ok {
		t.Error("fresh session should survive the sweep")
	}
}

func TestTerminalStatesAreFinal(t *testing.T) {
	sess := &Session{state: SessionMetadataPersisted}
	if sess.advance(SessionAbandoned) {
		t.Error("a persisted session must not become abandoned")
	}
	sess = &Session{state: SessionAbandoned}
	if sess.advance(SessionObjectWritten) {
		t.Error("an abandoned session must not move forward")
	}
}
