package core

import (
	"github.com/dkeye/relay/internal/domain"
)

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []SessionID
}

// RoomService is the core-facing API of a room.
// It owns the membership set but never touches transport resources.
type RoomService interface {
	Room() *domain.Room
	MemberCount() int
	HasMember(sid SessionID) bool

	// AddMember reports whether sid was newly added.
	AddMember(sid SessionID, conn SignalConnection) bool
	// RemoveMember reports whether sid was present.
	RemoveMember(sid SessionID) bool
	Broadcast(from SessionID, data Frame) PublishResult
}

type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"client_count"`
}
