package domain

import "errors"

var (
	ErrRoomNotFound         = errors.New("room not found")
	ErrRoomIDSpaceExhausted = errors.New("room id space exhausted")
)
