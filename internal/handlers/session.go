package handlers

import (
	"context"
	"log"
	"sync"
	"time"

	"lunara/internal/services"
	"lunara/internal/view"

	"github.com/google/uuid"
)

const sessionCookie = "user_session"

// Session is one browser's page session.
type Session struct {
	ID         string
	Storefront *services.Storefront
	Cart       *view.CartRenderer

	lastSeen time.Time
}

// StorefrontFactory builds the storefront of a new page session.
type StorefrontFactory func(sessionID string) *services.Storefront

// SessionStore is the persistent client storage behind page sessions, one
// scope per session id.
type SessionStore interface {
	HasScope(name string) bool
	MoveScope(from, to string) error
	ReleaseScope(name string)
}

// SessionRegistry maps session cookies to live storefronts and drops the
// ones idle for longer than the TTL. Only ids it issued itself are honored:
// an unknown cookie is kept only when the store holds data for it, which
// happens after a restart.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	factory  StorefrontFactory
	store    SessionStore
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionRegistry creates a registry. store may be nil, in which case
// every unknown id is replaced.
func NewSessionRegistry(factory StorefrontFactory, store SessionStore, ttl time.Duration) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*Session),
		factory:  factory,
		store:    store,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the session for id, creating it when id is unknown or blank.
// The returned session's ID may differ from id.
func (r *SessionRegistry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok && id != "" {
		s.lastSeen = r.now()
		return s
	}
	if !r.issuedLocked(id) {
		if id != "" {
			log.Printf("SessionRegistry.Get - Ignoring unknown session ID %q", id)
		}
		id = generateSessionID()
	}

	sf := r.factory(id)
	s := &Session{
		ID:         id,
		Storefront: sf,
		Cart:       view.NewCartRenderer(sf.Cart),
		lastSeen:   r.now(),
	}
	r.sessions[id] = s
	log.Printf("SessionRegistry.Get - Created session %s", id)
	return s
}

// Rotate moves s to a freshly issued id, carrying its storefront and
// stored data along, and returns the session under its new id. The old id
// stops resolving. Called on login and registration.
func (r *SessionRegistry) Rotate(s *Session) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sessions[s.ID] != s {
		// already rotated or expired
		return s
	}
	newID := generateSessionID()
	if r.store != nil {
		if err := r.store.MoveScope(s.ID, newID); err != nil {
			log.Printf("SessionRegistry.Rotate - Error moving storage for %s: %v", s.ID, err)
			return s
		}
	}
	rotated := &Session{
		ID:         newID,
		Storefront: s.Storefront,
		Cart:       s.Cart,
		lastSeen:   r.now(),
	}
	delete(r.sessions, s.ID)
	r.sessions[newID] = rotated
	log.Printf("SessionRegistry.Rotate - Session %s is now %s", s.ID, newID)
	return rotated
}

// issuedLocked reports whether an id absent from the registry was issued
// by this server earlier.
func (r *SessionRegistry) issuedLocked(id string) bool {
	if _, err := uuid.Parse(id); err != nil {
		return false
	}
	return r.store != nil && r.store.HasScope(id)
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Cleanup drops idle sessions and returns how many were removed.
func (r *SessionRegistry) Cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.ttl)
	removed := 0
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			s.Cart.Close()
			delete(r.sessions, id)
			if r.store != nil {
				r.store.ReleaseScope(id)
			}
			removed++
		}
	}
	if removed > 0 {
		log.Printf("SessionRegistry.Cleanup - Removed %d idle sessions", removed)
	}
	return removed
}

// Run calls Cleanup every interval until ctx is done.
func (r *SessionRegistry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Cleanup()
		}
	}
}

func generateSessionID() string {
	return uuid.New().String()
}
