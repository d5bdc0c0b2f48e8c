// Package domain contains entity without logic, just meta-data
package domain

type (
	RoomID string
	Secret string
)

// Room is the public identity of a relay room.
// Its secret lives in the credential store, its members in the room service.
type Room struct {
	ID RoomID
}
