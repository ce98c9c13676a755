package stream

import (
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/namdpran8/SpaceAppCHallange2K25/internal/session"
)

// Registry tracks live streaming sessions by id so the control endpoints
// (seek, select, playback) can reach the session behind an open SSE
// connection. Entries are removed when the connection closes.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*session.Session)}
}

// Add registers a session and returns its generated id.
func (r *Registry) Add(s *session.Session) string {
	id := newSessionID()
	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()
	return id
}

// Get returns the session for id, or nil if the connection is gone.
func (r *Registry) Get(id string) *session.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

// Remove unregisters a session.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func newSessionID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(err)
	}
	return hex.EncodeToString(b[:])
}
