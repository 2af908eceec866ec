// Package fs provides a file system-based session cache for the remote
// auth client, so a signed-in session survives process restarts.
package fs

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	habitauth "github.com/Jefferymaina/habit-chain-tracker"
)

// FSSessionCache stores sessions as a JSON file on the filesystem
type FSSessionCache struct {
	mu       sync.RWMutex
	path     string
	sessions map[string]*habitauth.Session
	modified bool
}

// sessionFile is the JSON structure stored on disk
type sessionFile struct {
	Sessions map[string]*habitauth.Session `json:"sessions"`
}

// NewFSSessionCache creates a new FS-based session cache.
// If path is empty, defaults to ~/.config/<appName>/session.json
func NewFSSessionCache(path string, appName string) (*FSSessionCache, error) {
	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("could not determine config directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
		if appName == "" {
			appName = "habit-chain-tracker"
		}
		path = filepath.Join(configDir, appName, "session.json")
	}

	cache := &FSSessionCache{
		path:     path,
		sessions: make(map[string]*habitauth.Session),
	}

	// Load existing sessions if file exists
	if err := cache.load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return cache, nil
}

// load reads sessions from disk
func (s *FSSessionCache) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	var file sessionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse session file: %w", err)
	}

	s.sessions = file.Sessions
	if s.sessions == nil {
		s.sessions = make(map[string]*habitauth.Session)
	}

	return nil
}

// normalizeURL normalizes a service URL for use as a key
func normalizeURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid service URL: %w", err)
	}

	if u.Scheme == "" {
		u.Scheme = "https"
	}

	return fmt.Sprintf("%s://%s", u.Scheme, u.Host), nil
}

// Get retrieves the cached session for a service URL
func (s *FSSessionCache) Get(serverURL string) (*habitauth.Session, error) {
	key, err := normalizeURL(serverURL)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[key]
	if !ok {
		return nil, nil
	}

	return sess, nil
}

// Put stores a session for a service URL
func (s *FSSessionCache) Put(serverURL string, sess *habitauth.Session) error {
	key, err := normalizeURL(serverURL)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[key] = sess
	s.modified = true

	return nil
}

// Remove drops the cached session for a service URL
func (s *FSSessionCache) Remove(serverURL string) error {
	key, err := normalizeURL(serverURL)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, key)
	s.modified = true

	return nil
}

// Save persists sessions to disk
func (s *FSSessionCache) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.modified {
		return nil
	}

	// Ensure directory exists with restricted permissions
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file := sessionFile{Sessions: s.sessions}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize sessions: %w", err)
	}

	// Write with restricted permissions (owner read/write only)
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	s.modified = false
	return nil
}

// Path returns the path to the session file
func (s *FSSessionCache) Path() string {
	return s.path
}
