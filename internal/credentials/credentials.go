// Package credentials holds the username/secret pair used to sign API requests.
package credentials

import "sync"

// Credentials is a username/secret pair. The zero value is the empty pair.
type Credentials struct {
	Username string
	Secret   string
}

// Complete reports whether both the username and the secret are set.
func (c Credentials) Complete() bool {
	return c.Username != "" && c.Secret != ""
}

// Source supplies the current credentials. Implementations must be safe for
// concurrent use; Get is called once per outgoing request.
type Source interface {
	Get() Credentials
}

// Store is a Source whose value can be replaced.
type Store interface {
	Source
	// Set replaces the credentials wholesale and persists them before
	// returning. Persistence failures are not reported to the caller.
	Set(Credentials)
}

// SecretOverride is a Store whose secret comes from an external secret
// manager while the username stays in the wrapped store.
type SecretOverride struct {
	Store
	Secret string
}

// Get returns the wrapped store's credentials with the secret replaced
// when an override is configured.
func (s *SecretOverride) Get() Credentials {
	creds := s.Store.Get()
	if s.Secret != "" {
		creds.Secret = s.Secret
	}
	return creds
}

// MemoryStore is a Store that is never persisted.
type MemoryStore struct {
	mu    sync.RWMutex
	creds Credentials
}

// NewMemoryStore returns a MemoryStore holding creds.
func NewMemoryStore(creds Credentials) *MemoryStore {
	return &MemoryStore{creds: creds}
}

// Get returns the current credentials.
func (m *MemoryStore) Get() Credentials {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.creds
}

// Set replaces the credentials.
func (m *MemoryStore) Set(creds Credentials) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = creds
}
