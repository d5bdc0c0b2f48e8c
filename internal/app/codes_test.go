package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDigitCodes_FixedLengthDigits(t *testing.T) {
	req := require.New(t)
	codes := NewDigitCodes(DefaultRoomIDLength, DefaultCodeLength)

	for range 100 {
		id, err := codes.RoomID()
		req.NoError(err)
		req.Regexp(`^[0-9]{7}$`, string(id))

		secret, err := codes.Secret()
		req.NoError(err)
		req.Regexp(`^[0-9]{6}$`, string(secret))
	}
}

func TestDigitCodes_RejectsBiasedBytes(t *testing.T) {
	req := require.New(t)
	codes := &DigitCodes{IDLength: 3, Rand: bytes.NewReader([]byte{255, 250, 3, 14, 249})}

	id, err := codes.RoomID()

	req.NoError(err)
	req.Equal("349", string(id))
}

func TestDigitCodes_ReaderError(t *testing.T) {
	codes := &DigitCodes{SecretLength: 6, Rand: bytes.NewReader([]byte{1, 2})}

	_, err := codes.Secret()

	require.ErrorContains(t, err, "read random digit")
}
