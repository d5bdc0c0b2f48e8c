package app

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/dkeye/relay/internal/domain"
)

const (
	DefaultRoomIDLength = 7
	DefaultCodeLength   = 6
)

// CodeGenerator produces room identifiers and secrets. Uniqueness of room
// IDs is enforced by the RoomRegistry, not here.
type CodeGenerator interface {
	RoomID() (domain.RoomID, error)
	Secret() (domain.Secret, error)
}

// DigitCodes generates fixed-length decimal strings.
type DigitCodes struct {
	IDLength     int
	SecretLength int
	// Rand defaults to crypto/rand.
	Rand io.Reader
}

func NewDigitCodes(idLength, secretLength int) *DigitCodes {
	return &DigitCodes{IDLength: idLength, SecretLength: secretLength, Rand: rand.Reader}
}

func (g *DigitCodes) RoomID() (domain.RoomID, error) {
	s, err := g.digits(g.IDLength)
	return domain.RoomID(s), err
}

func (g *DigitCodes) Secret() (domain.Secret, error) {
	s, err := g.digits(g.SecretLength)
	return domain.Secret(s), err
}

func (g *DigitCodes) digits(n int) (string, error) {
	r := g.Rand
	if r == nil {
		r = rand.Reader
	}
	out := make([]byte, 0, n)
	var b [1]byte
	for len(out) < n {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return "", fmt.Errorf("read random digit: %w", err)
		}
		// 250..255 would bias 0-5
		if b[0] >= 250 {
			continue
		}
		out = append(out, '0'+b[0]%10)
	}
	return string(out), nil
}
