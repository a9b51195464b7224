package storage

import (
	"context"
	"sync"
	"time"
)

// MemStore is an in-memory ObjectStore used by tests. Error fields let a
// test fail one leg of a two-system operation on purpose.
type MemStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	HeadErr   error // returned by Head when set
	DeleteErr error // returned by Delete when set
}

func NewMemStore() *MemStore {
	return &MemStore{objects: map[string][]byte{}}
}

// Put simulates the client's direct write to the store.
func (s *MemStore) Put(storageKey string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[storageKey] = data
}

func (s *MemStore) Has(storageKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[storageKey]
	return ok
}

func (s *MemStore) PresignPut(storageKey, contentType string, ttl time.Duration) (string, error) {
	return "mem://" + storageKey, nil
}

func (s *MemStore) Head(ctx context.Context, storageKey string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.HeadErr != nil {
		return 0, s.HeadErr
	}
	data, ok := s.objects[storageKey]
	if !ok {
		return 0, ErrObjectMissing
	}
	return int64(len(data)), nil
}

func (s *MemStore) Delete(ctx context.Context, storageKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	if _, ok := s.objects[storageKey]; !ok {
		return ErrObjectMissing
	}
	delete(s.objects, storageKey)
	return nil
}

func (s *MemStore) PublicURL(storageKey string) string {
	return "mem://" + storageKey
}
