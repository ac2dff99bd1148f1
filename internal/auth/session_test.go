package auth

import (
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	m := NewMemoryStore(time.Hour)
	token := NewToken()

	m.Put(token, Session{UserID: 42})
	s, ok := m.Get(token)
	if !ok {
		t.Fatal("expected session")
	}
	if s.UserID != 42 {
		t.Fatalf("UserID = %d, want 42", s.UserID)
	}
	if s.ExpiresAt.IsZero() {
		t.Fatal("expected Put to stamp an expiry")
	}

	m.Delete(token)
	if _, ok := m.Get(token); ok {
		t.Fatal("expected session gone after delete")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	m := NewMemoryStore(time.Hour)
	token := NewToken()

	m.Put(token, Session{UserID: 7, ExpiresAt: time.Now().Add(-time.Minute)})
	if _, ok := m.Get(token); ok {
		t.Fatal("expected expired session to be rejected")
	}
	// Expired entries are dropped on access.
	m.mu.RLock()
	_, still := m.sessions[token]
	m.mu.RUnlock()
	if still {
		t.Fatal("expected expired session to be removed from the map")
	}
}

func TestMemoryStoreMissingToken(t *testing.T) {
	m := NewMemoryStore(0)
	if _, ok := m.Get("no-such-token"); ok {
		t.Fatal("expected miss for unknown token")
	}
}

func TestNewTokenUnique(t *testing.T) {
	if NewToken() == NewToken() {
		t.Fatal("expected distinct tokens")
	}
}

func TestPendingSessionKeepsGoogleIdentity(t *testing.T) {
	m := NewMemoryStore(time.Hour)
	token := NewToken()

	m.Put(token, Session{
		Pending: true,
		Google:  GoogleUser{Sub: "google-123", Email: "ada@example.com", Name: "Ada"},
	})
	s, ok := m.Get(token)
	if !ok {
		t.Fatal("expected session")
	}
	if !s.Pending || s.Google.Sub != "google-123" {
		t.Fatalf("unexpected session: %+v", s)
	}
}
