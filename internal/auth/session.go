package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the server-side state behind a session cookie. A pending
// session has passed Google login but not yet registered a local account;
// it carries the Google identity until registration completes.
type Session struct {
	UserID    int64
	Pending   bool
	Google    GoogleUser
	ExpiresAt time.Time
}

// SessionStore holds sessions keyed by opaque token.
type SessionStore interface {
	Get(token string) (Session, bool)
	Put(token string, s Session)
	Delete(token string)
}

// NewToken mints an opaque session token.
func NewToken() string {
	return uuid.NewString()
}

// MemoryStore is an in-process SessionStore with TTL expiry, checked
// lazily on Get.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryStore{sessions: make(map[string]Session), ttl: ttl}
}

func (m *MemoryStore) Get(token string) (Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	if time.Now().After(s.ExpiresAt) {
		m.Delete(token)
		return Session{}, false
	}
	return s, true
}

// Put stores s under token, stamping the store's TTL when the session
// carries no explicit expiry.
func (m *MemoryStore) Put(token string, s Session) {
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = time.Now().Add(m.ttl)
	}
	m.mu.Lock()
	m.sessions[token] = s
	m.mu.Unlock()
}

func (m *MemoryStore) Delete(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}
