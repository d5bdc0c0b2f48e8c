package app

import (
	"fmt"
	"sync"

	"github.com/dkeye/relay/internal/core"
	"github.com/dkeye/relay/internal/domain"
	"github.com/rs/zerolog/log"
)

const DefaultMaxIDAttempts = 64

// RoomRegistry owns room existence and membership sets. Teardown of a
// drained room clears its secret in the same critical section, so the two
// stores never disagree outside the registry lock.
type RoomRegistry struct {
	mu          sync.RWMutex
	rooms       map[domain.RoomID]core.RoomService
	credentials *CredentialStore
	codes       CodeGenerator
	maxAttempts int
}

func NewRoomRegistry(credentials *CredentialStore, codes CodeGenerator, maxAttempts int) *RoomRegistry {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxIDAttempts
	}
	return &RoomRegistry{
		rooms:       make(map[domain.RoomID]core.RoomService),
		credentials: credentials,
		codes:       codes,
		maxAttempts: maxAttempts,
	}
}

// CreateRoom registers an empty room under a fresh ID.
func (f *RoomRegistry) CreateRoom() (domain.RoomID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createLocked()
}

// CreateRoomWithSecret registers an empty room and stores its secret in one step.
func (f *RoomRegistry) CreateRoomWithSecret(secret domain.Secret) (domain.RoomID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, err := f.createLocked()
	if err != nil {
		return "", err
	}
	f.credentials.SetSecret(id, secret)
	return id, nil
}

func (f *RoomRegistry) createLocked() (domain.RoomID, error) {
	for range f.maxAttempts {
		id, err := f.codes.RoomID()
		if err != nil {
			return "", fmt.Errorf("generate room id: %w", err)
		}
		if _, taken := f.rooms[id]; taken {
			continue
		}
		f.rooms[id] = core.NewRoomService(&domain.Room{ID: id})
		log.Info().Str("module", "app.registry").Str("room", string(id)).Msg("room created")
		return id, nil
	}
	return "", fmt.Errorf("after %d attempts: %w", f.maxAttempts, domain.ErrRoomIDSpaceExhausted)
}

func (f *RoomRegistry) RoomExists(id domain.RoomID) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.rooms[id]
	return ok
}

// AddMember fails with domain.ErrRoomNotFound when the room was torn down,
// including after the caller already saw it exist.
func (f *RoomRegistry) AddMember(id domain.RoomID, sid core.SessionID, conn core.SignalConnection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[id]
	if !ok {
		return domain.ErrRoomNotFound
	}
	room.AddMember(sid, conn)
	return nil
}

// RemoveMember is idempotent. It reports whether this removal drained the
// room, in which case the room and its secret are gone.
func (f *RoomRegistry) RemoveMember(id domain.RoomID, sid core.SessionID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[id]
	if !ok {
		return false
	}
	if !room.RemoveMember(sid) || room.MemberCount() > 0 {
		return false
	}
	delete(f.rooms, id)
	f.credentials.ClearSecret(id)
	log.Info().Str("module", "app.registry").Str("room", string(id)).Msg("room drained, torn down")
	return true
}

// Broadcast delivers data to every member of id except from.
// An unknown room yields an empty result.
func (f *RoomRegistry) Broadcast(id domain.RoomID, from core.SessionID, data core.Frame) core.PublishResult {
	f.mu.RLock()
	room, ok := f.rooms[id]
	f.mu.RUnlock()
	if !ok {
		return core.PublishResult{}
	}
	return room.Broadcast(from, data)
}

func (f *RoomRegistry) MemberCount(id domain.RoomID) (int, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	room, ok := f.rooms[id]
	if !ok {
		return 0, false
	}
	return room.MemberCount(), true
}

func (f *RoomRegistry) IsMember(id domain.RoomID, sid core.SessionID) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	room, ok := f.rooms[id]
	return ok && room.HasMember(sid)
}

func (f *RoomRegistry) List() []core.RoomInfo {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(f.rooms))
	for id, r := range f.rooms {
		out = append(out, core.RoomInfo{ID: id, MemberCount: r.MemberCount()})
	}
	return out
}
