package core

//go:generate go run go.uber.org/mock/mockgen -source=signal_iface.go -destination=mocks/mock_signal.go -package=mocks

// Frame is a raw text payload.
type Frame []byte

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend enqueues without blocking. A full or closed connection returns an error.
	TrySend(Frame) error
	Close()
}
