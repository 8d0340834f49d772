package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prohmpiriya/onboarding-console/internal/client"
	"github.com/prohmpiriya/onboarding-console/internal/metadata"
)

// ErrNotFound is returned when a session ID is unknown.
var ErrNotFound = errors.New("session not found")

// Session holds one operator's credentials and the metadata snapshot built
// from them. Everything here is ephemeral: nothing is ever persisted, and a
// new login rebuilds the snapshot from scratch.
type Session struct {
	ID          string
	Credentials client.Credentials
	Snapshot    *metadata.Unified
	CreatedAt   time.Time
}

// Store is the session registry.
type Store interface {
	// Create registers a new session and returns it with a fresh ID.
	Create(creds client.Credentials, snapshot *metadata.Unified) *Session
	// Get returns the session for id.
	Get(id string) (*Session, error)
	// Delete removes the session for id, if present.
	Delete(id string)
}

// MemoryStore implements Store with an in-memory map. Credentials live only
// as long as the process, mirroring the transient client-side credential
// object this console replaces.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// Create registers a new session.
func (s *MemoryStore) Create(creds client.Credentials, snapshot *metadata.Unified) *Session {
	session := &Session{
		ID:          uuid.NewString(),
		Credentials: creds,
		Snapshot:    snapshot,
		CreatedAt:   time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return session
}

// Get returns the session for id.
func (s *MemoryStore) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return session, nil
}

// Delete removes the session for id.
func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}
