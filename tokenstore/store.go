// Package tokenstore manages the access/refresh credential pair for the
// Ledgerline API client. The in-memory copy is authoritative once loaded;
// durable storage is a best-effort fallback so state survives restarts.
package tokenstore

import (
	"strconv"
	"sync"
	"time"
)

// Storage keys. The expiry value is a string-encoded Unix-milliseconds integer.
const (
	accessKey  = "erp_access_token"
	refreshKey = "erp_refresh_token"
	expiryKey  = "erp_token_expiry"
)

// ExpiryBuffer is subtracted from the recorded expiry so a token is treated
// as expired slightly ahead of its real expiry, avoiding races with
// in-flight requests.
const ExpiryBuffer = time.Minute

// Credentials is an access/refresh token pair with its absolute expiry.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Store holds the credential pair. All methods are safe for concurrent use;
// a reader never observes a partially replaced set.
type Store struct {
	mu      sync.Mutex
	storage Storage

	access    string
	refresh   string
	expiresAt time.Time
	loaded    bool

	now func() time.Time
}

// New creates a Store backed by storage. A nil storage means in-memory only.
func New(storage Storage) *Store {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	return &Store{storage: storage, now: time.Now}
}

// SetTokens atomically replaces all three fields and persists them.
// Storage-write failures are swallowed; durability is best-effort.
func (s *Store) SetTokens(access, refresh string, expiresIn time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access = access
	s.refresh = refresh
	s.expiresAt = s.now().Add(expiresIn)
	s.loaded = true

	_ = s.storage.Set(accessKey, access)
	_ = s.storage.Set(refreshKey, refresh)
	_ = s.storage.Set(expiryKey, strconv.FormatInt(s.expiresAt.UnixMilli(), 10))
}

// AccessToken returns the access token, or "" if none was ever set.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()
	return s.access
}

// RefreshToken returns the refresh token, or "" if none was ever set.
func (s *Store) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()
	return s.refresh
}

// Credentials returns a snapshot of the current credential set.
func (s *Store) Credentials() Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()
	return Credentials{AccessToken: s.access, RefreshToken: s.refresh, ExpiresAt: s.expiresAt}
}

// Expired reports whether the token should be treated as expired.
// True when no expiry is recorded or when now >= expiry - ExpiryBuffer.
func (s *Store) Expired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()
	if s.expiresAt.IsZero() {
		return true
	}
	return !s.now().Before(s.expiresAt.Add(-ExpiryBuffer))
}

// Clear removes all three fields from memory and durable storage. Idempotent.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access = ""
	s.refresh = ""
	s.expiresAt = time.Time{}
	s.loaded = true

	_ = s.storage.Delete(accessKey)
	_ = s.storage.Delete(refreshKey)
	_ = s.storage.Delete(expiryKey)
}

// load pulls credentials from durable storage on first access. Callers must
// hold s.mu.
func (s *Store) load() {
	if s.loaded {
		return
	}
	s.loaded = true

	if v, ok := s.storage.Get(accessKey); ok {
		s.access = v
	}
	if v, ok := s.storage.Get(refreshKey); ok {
		s.refresh = v
	}
	if v, ok := s.storage.Get(expiryKey); ok {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			s.expiresAt = time.UnixMilli(ms)
		}
	}
}
