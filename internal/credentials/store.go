package credentials

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Preference keys inside a scope.
const (
	UsernameKey = "username"
	PasswordKey = "password"
)

// DefaultScope is the preference scope used when none is configured.
const DefaultScope = "ghcomment"

// BoltStore keeps credentials in memory and mirrors every change into a
// bbolt bucket named after the preference scope.
type BoltStore struct {
	mu     sync.RWMutex
	db     *bolt.DB
	scope  []byte
	creds  Credentials
	logger *log.Logger
}

// BoltStoreOption configures a BoltStore.
type BoltStoreOption func(*BoltStore)

// WithLogger sets the logger that receives swallowed persistence errors.
func WithLogger(logger *log.Logger) BoltStoreOption {
	return func(s *BoltStore) {
		s.logger = logger
	}
}

// OpenBoltStore opens (creating if needed) the database at path and loads
// the credentials stored under scope. Missing keys load as empty strings.
func OpenBoltStore(path, scope string, opts ...BoltStoreOption) (*BoltStore, error) {
	if scope == "" {
		scope = DefaultScope
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create credentials directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open credentials database %s: %w", path, err)
	}

	s := &BoltStore{
		db:     db,
		scope:  []byte(scope),
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.load(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *BoltStore) load() error {
	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.scope)
		if b == nil {
			return nil
		}
		s.creds = Credentials{
			Username: string(b.Get([]byte(UsernameKey))),
			Secret:   string(b.Get([]byte(PasswordKey))),
		}
		return nil
	})
}

// Get returns the current credentials.
func (s *BoltStore) Get() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

// Set replaces the credentials and writes both keys in one transaction.
func (s *BoltStore) Set(creds Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds = creds

	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(s.scope)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(UsernameKey), []byte(creds.Username)); err != nil {
			return err
		}
		return b.Put([]byte(PasswordKey), []byte(creds.Secret))
	})
	if err != nil {
		s.logger.Printf("Warning: failed to persist credentials in scope %s: %v", s.scope, err)
	}
}

// Close releases the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

var _ Store = (*BoltStore)(nil)
var _ Store = (*SecretOverride)(nil)
