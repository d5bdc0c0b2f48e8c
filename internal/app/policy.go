package app

import (
	"fmt"

	"github.com/dkeye/relay/internal/core"
	"github.com/dkeye/relay/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy decides what happens to a member whose connection refused a frame.
// The sender is never told either way.
type Policy interface {
	OnBackPressure(room domain.RoomID, member core.SessionID) BackpressureAction
}

type DropPolicy struct{}

func (DropPolicy) OnBackPressure(domain.RoomID, core.SessionID) BackpressureAction {
	return DropFrame
}

type KickPolicy struct{}

func (KickPolicy) OnBackPressure(domain.RoomID, core.SessionID) BackpressureAction {
	return KickMember
}

func PolicyFor(name string) (Policy, error) {
	switch name {
	case "", "drop":
		return DropPolicy{}, nil
	case "kick":
		return KickPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown slow member policy %q", name)
	}
}
