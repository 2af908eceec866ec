// Package remote implements the Service contract against the hosted auth
// backend over its REST surface. It caches the issued session so a restart
// can restore it, refreshes tokens near expiry, and fans auth-state
// changes out to subscribers.
package remote

import (
	"sync"

	habitauth "github.com/Jefferymaina/habit-chain-tracker"
)

// SessionCache stores the issued session between process runs, keyed by
// the auth service URL.
type SessionCache interface {
	// Get retrieves the cached session for a service URL.
	// Returns nil, nil if nothing is cached.
	Get(serverURL string) (*habitauth.Session, error)

	// Put stores a session for a service URL
	Put(serverURL string, sess *habitauth.Session) error

	// Remove drops the cached session for a service URL
	Remove(serverURL string) error

	// Save persists any pending changes (for caches that batch writes)
	Save() error
}

// MemoryCache is an in-process SessionCache for apps that do not need the
// session to survive a restart.
type MemoryCache struct {
	mu       sync.RWMutex
	sessions map[string]*habitauth.Session
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{sessions: make(map[string]*habitauth.Session)}
}

func (m *MemoryCache) Get(serverURL string) (*habitauth.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[serverURL], nil
}

func (m *MemoryCache) Put(serverURL string, sess *habitauth.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[serverURL] = sess
	return nil
}

func (m *MemoryCache) Remove(serverURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, serverURL)
	return nil
}

func (m *MemoryCache) Save() error {
	return nil
}
