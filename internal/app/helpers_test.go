package app

import (
	"sync"

	"github.com/dkeye/relay/internal/domain"
)

// sequenceCodes hands out room IDs in order, repeating the last one.
type sequenceCodes struct {
	mu     sync.Mutex
	ids    []domain.RoomID
	secret domain.Secret
}

func (s *sequenceCodes) RoomID() (domain.RoomID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.ids[0]
	if len(s.ids) > 1 {
		s.ids = s.ids[1:]
	}
	return id, nil
}

func (s *sequenceCodes) Secret() (domain.Secret, error) {
	return s.secret, nil
}
