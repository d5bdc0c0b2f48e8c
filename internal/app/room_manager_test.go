package app

import (
	"fmt"
	"sync"
	"testing"

	"github.com/dkeye/relay/internal/core"
	"github.com/dkeye/relay/internal/core/mocks"
	"github.com/dkeye/relay/internal/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRoomRegistry_CreateRoom_SkipsLiveIDs(t *testing.T) {
	req := require.New(t)
	codes := &sequenceCodes{ids: []domain.RoomID{"1111111", "1111111", "2222222"}}
	reg := NewRoomRegistry(NewCredentialStore(), codes, 0)

	first, err := reg.CreateRoom()
	req.NoError(err)
	second, err := reg.CreateRoom()
	req.NoError(err)

	req.Equal(domain.RoomID("1111111"), first)
	req.Equal(domain.RoomID("2222222"), second)
	req.True(reg.RoomExists(first))
	req.True(reg.RoomExists(second))
}

func TestRoomRegistry_CreateRoom_Exhausted(t *testing.T) {
	req := require.New(t)
	codes := &sequenceCodes{ids: []domain.RoomID{"1"}}
	reg := NewRoomRegistry(NewCredentialStore(), codes, 3)

	_, err := reg.CreateRoom()
	req.NoError(err)

	_, err = reg.CreateRoom()
	req.ErrorIs(err, domain.ErrRoomIDSpaceExhausted)
}

func TestRoomRegistry_CreateRoom_ConcurrentIDsAreUnique(t *testing.T) {
	req := require.New(t)
	// 100 possible IDs, 60 rooms: collisions are frequent
	reg := NewRoomRegistry(NewCredentialStore(), NewDigitCodes(2, 1), 100000)

	const n = 60
	ids := make(chan domain.RoomID, n)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := reg.CreateRoom()
			if err == nil {
				ids <- id
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[domain.RoomID]struct{}, n)
	for id := range ids {
		_, dup := seen[id]
		req.False(dup, "room id %s handed out twice", id)
		seen[id] = struct{}{}
	}
	req.Len(seen, n)
	req.Len(reg.List(), n)
}

func TestRoomRegistry_CreateRoomWithSecret(t *testing.T) {
	req := require.New(t)
	creds := NewCredentialStore()
	reg := NewRoomRegistry(creds, &sequenceCodes{ids: []domain.RoomID{"1234567"}}, 0)

	id, err := reg.CreateRoomWithSecret("123456")

	req.NoError(err)
	req.True(creds.Verify(id, "123456"))
	count, ok := reg.MemberCount(id)
	req.True(ok)
	req.Zero(count)
}

func TestRoomRegistry_AddMember_UnknownRoom(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := NewRoomRegistry(NewCredentialStore(), NewDigitCodes(7, 6), 0)

	err := reg.AddMember("1234567", "a", mocks.NewMockSignalConnection(ctrl))

	require.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestRoomRegistry_LastMemberLeaving_TearsDownBothStores(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	creds := NewCredentialStore()
	reg := NewRoomRegistry(creds, &sequenceCodes{ids: []domain.RoomID{"1234567"}}, 0)
	id, err := reg.CreateRoomWithSecret("123456")
	req.NoError(err)

	// Given two members
	req.NoError(reg.AddMember(id, "a", mocks.NewMockSignalConnection(ctrl)))
	req.NoError(reg.AddMember(id, "b", mocks.NewMockSignalConnection(ctrl)))

	// When the first leaves, the room stays
	req.False(reg.RemoveMember(id, "a"))
	req.True(reg.RoomExists(id))
	req.True(creds.Verify(id, "123456"))

	// When the last leaves, room and secret are gone
	req.True(reg.RemoveMember(id, "b"))
	req.False(reg.RoomExists(id))
	_, ok := creds.GetSecret(id)
	req.False(ok)

	// And joining again reports the room as gone
	req.ErrorIs(reg.AddMember(id, "c", mocks.NewMockSignalConnection(ctrl)), domain.ErrRoomNotFound)
}

func TestRoomRegistry_RemoveMember_Idempotent(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	reg := NewRoomRegistry(NewCredentialStore(), &sequenceCodes{ids: []domain.RoomID{"1234567"}}, 0)
	id, err := reg.CreateRoomWithSecret("123456")
	req.NoError(err)
	req.NoError(reg.AddMember(id, "a", mocks.NewMockSignalConnection(ctrl)))

	// Removing a stranger neither fails nor drains the room
	req.False(reg.RemoveMember(id, "stranger"))
	req.True(reg.RoomExists(id))

	req.True(reg.RemoveMember(id, "a"))
	req.False(reg.RemoveMember(id, "a"))
	req.False(reg.RemoveMember("unknown", "a"))
}

func TestRoomRegistry_EmptyProvisionedRoom_IsNotDrainedByStrangers(t *testing.T) {
	req := require.New(t)
	reg := NewRoomRegistry(NewCredentialStore(), &sequenceCodes{ids: []domain.RoomID{"1234567"}}, 0)
	id, err := reg.CreateRoom()
	req.NoError(err)

	req.False(reg.RemoveMember(id, "a"))
	req.True(reg.RoomExists(id))
}

func TestRoomRegistry_Broadcast(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	reg := NewRoomRegistry(NewCredentialStore(), &sequenceCodes{ids: []domain.RoomID{"1234567"}}, 0)
	id, err := reg.CreateRoom()
	req.NoError(err)

	a := mocks.NewMockSignalConnection(ctrl)
	b := mocks.NewMockSignalConnection(ctrl)
	req.NoError(reg.AddMember(id, "a", a))
	req.NoError(reg.AddMember(id, "b", b))
	b.EXPECT().TrySend(core.Frame("hi")).Return(nil)

	res := reg.Broadcast(id, "a", core.Frame("hi"))
	req.Equal(1, res.SendTo)

	req.Equal(core.PublishResult{}, reg.Broadcast("missing", "a", core.Frame("hi")))
}

func TestRoomRegistry_ConcurrentJoinAndLeave_KeepsStoresConsistent(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	creds := NewCredentialStore()
	reg := NewRoomRegistry(creds, &sequenceCodes{ids: []domain.RoomID{"1234567"}}, 0)
	id, err := reg.CreateRoomWithSecret("123456")
	req.NoError(err)
	req.NoError(reg.AddMember(id, "anchor", mocks.NewMockSignalConnection(ctrl)))

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sid := core.SessionID(fmt.Sprintf("s%d", i))
			if err := reg.AddMember(id, sid, mocks.NewMockSignalConnection(ctrl)); err == nil {
				reg.RemoveMember(id, sid)
			}
		}()
	}
	wg.Wait()

	count, ok := reg.MemberCount(id)
	req.True(ok)
	req.Equal(1, count)
	req.True(creds.Verify(id, "123456"))

	req.True(reg.RemoveMember(id, "anchor"))
	req.False(reg.RoomExists(id))
	req.Zero(creds.Len())
}
