package uploads

import (
	"log"
	"time"

	"cms/storage"
	"cms/utils"

	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
)

// Grace period after expiry before the sweep abandons a session. Covers the
// normal case of a client that finished its PUT just before the deadline and
// is about to confirm.
const sweepGrace = 30 * time.Second

// Grant is what the client gets back: where to PUT the bytes, the key the
// object will live under, and for how long the URL works.
type Grant struct {
	StorageKey string    `json:"storage_key"`
	WriteURL   string    `json:"write_url"`
	PublicURL  string    `json:"public_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Broker issues short-lived single-object write grants. It never touches the
// relational store; its only durable collaborator is the object store, and
// the only state it keeps is the in-flight session map.
type Broker struct {
	store    storage.ObjectStore
	allowed  map[string]bool
	ttl      time.Duration
	sessions cmap.ConcurrentMap[string, *Session]
}

func NewBroker(store storage.ObjectStore, allowedTypes []string, ttl time.Duration) *Broker {
	allowed := make(map[string]bool, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[t] = true
	}
	return &Broker{
		store:    store,
		allowed:  allowed,
		ttl:      ttl,
		sessions: cmap.New[*Session](),
	}
}

// Grant issues a write grant for one object. The storage key is a random
// UUID prefix plus the sanitized file name, so client names can collide or
// lie without consequence.
func (b *Broker) Grant(fileName, contentType string, requesterID uint64) (Grant, error) {
	if !b.allowed[contentType] {
		return Grant{}, ErrContentType
	}
	name := utils.SanitizeFileName(fileName)
	if name == "" {
		return Grant{}, ErrInvalidFileName
	}
	storageKey := uuid.NewString() + "-" + name
	expiresAt := time.Now().Add(b.ttl)

	writeURL, err := b.store.PresignPut(storageKey, contentType, b.ttl)
	if err != nil {
		return Grant{}, err
	}
	b.sessions.Set(storageKey, &Session{
		StorageKey:  storageKey,
		FileName:    name,
		ContentType: contentType,
		RequesterID: requesterID,
		ExpiresAt:   expiresAt,
		state:       SessionGranted,
	})
	return Grant{
		StorageKey: storageKey,
		WriteURL:   writeURL,
		PublicURL:  b.store.PublicURL(storageKey),
		ExpiresAt:  expiresAt,
	}, nil
}

// Session returns the in-flight session for a storage key, if any.
func (b *Broker) Session(storageKey string) (*Session, bool) {
	return b.sessions.Get(storageKey)
}

// SweepExpired abandons sessions whose grant expired without a confirmation
// and drops terminal sessions from the map. Abandoned object-written
// sessions are logged per key: those are the orphan candidates an external
// reconciliation sweep resolves against store listings.
func (b *Broker) SweepExpired() (abandoned int) {
	now := time.Now()
	for item := range b.sessions.IterBuffered() {
		sess := item.Val
		state := sess.State()
		if state.Terminal() {
			b.sessions.Remove(item.Key)
			continue
		}
		if sess.expired(now.Add(-sweepGrace)) {
			if sess.advance(SessionAbandoned) {
				abandoned++
				log.Printf("upload abandoned: key=%s state-was=%s requester=%d", sess.StorageKey, state, sess.RequesterID)
			}
			b.sessions.Remove(item.Key)
		}
	}
	return abandoned
}

// StartSweeper runs SweepExpired forever. Meant for `go broker.StartSweeper(...)`.
func (b *Broker) StartSweeper(interval time.Duration) {
	for range time.Tick(interval) {
		b.SweepExpired()
	}
}
