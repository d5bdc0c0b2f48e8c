package app

import (
	"sync"

	"github.com/dkeye/relay/internal/core"
	"github.com/dkeye/relay/internal/domain"
	"github.com/rs/zerolog/log"
)

type SessionState int

const (
	StateUnauthenticated SessionState = iota
	StateAuthenticated
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session is the per-connection auth record, kept apart from the transport.
// RoomID and Secret are set once, at the transition to StateAuthenticated.
type Session struct {
	ID     core.SessionID
	State  SessionState
	RoomID domain.RoomID
	Secret domain.Secret
	Conn   core.SignalConnection
}

// SessionRegistry tracks every live connection by session ID.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[core.SessionID]*Session)}
}

// Bind registers a fresh unauthenticated session for conn.
func (r *SessionRegistry) Bind(sid core.SessionID, conn core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = &Session{ID: sid, State: StateUnauthenticated, Conn: conn}
	log.Info().Str("module", "app.sessions").Str("sid", string(sid)).Msg("bound session")
}

// Get returns a copy of the session record.
func (r *SessionRegistry) Get(sid core.SessionID) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sid]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// Authenticate moves sid to StateAuthenticated and binds its room. It returns
// false, changing nothing, unless the session exists and is unauthenticated.
func (r *SessionRegistry) Authenticate(sid core.SessionID, id domain.RoomID, secret domain.Secret) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sid]
	if !ok || s.State != StateUnauthenticated {
		return false
	}
	s.State = StateAuthenticated
	s.RoomID = id
	s.Secret = secret
	log.Info().Str("module", "app.sessions").Str("sid", string(sid)).Str("room", string(id)).Msg("session authenticated")
	return true
}

// Unbind drops sid and returns its record as it was before closing.
func (r *SessionRegistry) Unbind(sid core.SessionID) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sid]
	if !ok {
		return Session{}, false
	}
	delete(r.sessions, sid)
	prev := *s
	s.State = StateClosed
	log.Info().Str("module", "app.sessions").Str("sid", string(sid)).Str("state", prev.State.String()).Msg("unbind session")
	return prev, true
}

func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
