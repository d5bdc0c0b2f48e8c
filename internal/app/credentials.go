package app

import (
	"crypto/subtle"
	"sync"

	"github.com/dkeye/relay/internal/domain"
	"github.com/rs/zerolog/log"
)

// CredentialStore maps open rooms to their shared secret.
type CredentialStore struct {
	mu      sync.RWMutex
	secrets map[domain.RoomID]domain.Secret
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{secrets: make(map[domain.RoomID]domain.Secret)}
}

func (s *CredentialStore) SetSecret(id domain.RoomID, secret domain.Secret) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets[id] = secret
}

func (s *CredentialStore) GetSecret(id domain.RoomID) (domain.Secret, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	secret, ok := s.secrets[id]
	return secret, ok
}

func (s *CredentialStore) ClearSecret(id domain.RoomID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.secrets, id)
	log.Debug().Str("module", "app.credentials").Str("room", string(id)).Msg("secret cleared")
}

// Verify reports whether submitted matches the stored secret. Unknown rooms
// and empty input are a plain false.
func (s *CredentialStore) Verify(id domain.RoomID, submitted domain.Secret) bool {
	if id == "" || submitted == "" {
		return false
	}
	stored, ok := s.GetSecret(id)
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}

func (s *CredentialStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.secrets)
}
