// ABOUTME: Key-value persistence port used by the session store
// ABOUTME: Provides an in-memory implementation for tests and non-persistent runs

package session

import "sync"

// Storage keys for the persisted session pair
const (
	TokenKey    = "auth_token"
	IdentityKey = "auth_user"
)

// Storage is durable client-side key-value storage.
// Get reports found=false for missing keys; Remove of a missing key is not an error.
type Storage interface {
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// MemoryStorage keeps entries in process memory only
type MemoryStorage struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryStorage creates an empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *MemoryStorage) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
