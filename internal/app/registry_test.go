package app

import (
	"testing"

	"github.com/dkeye/relay/internal/core/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestSessionRegistry_Lifecycle(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	reg := NewSessionRegistry()
	conn := mocks.NewMockSignalConnection(ctrl)

	// Given a fresh connection
	reg.Bind("a", conn)
	sess, ok := reg.Get("a")
	req.True(ok)
	req.Equal(StateUnauthenticated, sess.State)
	req.Empty(sess.RoomID)

	// When it authenticates
	req.True(reg.Authenticate("a", "1234567", "123456"))

	// Then the binding is fixed
	sess, _ = reg.Get("a")
	req.Equal(StateAuthenticated, sess.State)
	req.EqualValues("1234567", sess.RoomID)
	req.EqualValues("123456", sess.Secret)

	// And a second authentication changes nothing
	req.False(reg.Authenticate("a", "7654321", "654321"))
	sess, _ = reg.Get("a")
	req.EqualValues("1234567", sess.RoomID)

	// When the connection closes
	prev, ok := reg.Unbind("a")
	req.True(ok)
	req.Equal(StateAuthenticated, prev.State)
	_, ok = reg.Get("a")
	req.False(ok)
	_, ok = reg.Unbind("a")
	req.False(ok)
	req.Zero(reg.Len())
}

func TestSessionRegistry_AuthenticateUnknown(t *testing.T) {
	require.False(t, NewSessionRegistry().Authenticate("ghost", "1", "1"))
}

func TestSessionState_String(t *testing.T) {
	req := require.New(t)
	req.Equal("unauthenticated", StateUnauthenticated.String())
	req.Equal("authenticated", StateAuthenticated.String())
	req.Equal("closed", StateClosed.String())
}
