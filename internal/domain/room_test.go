package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func hostCount(members []Member) int {
	n := 0
	for _, m := range members {
		if m.IsHost {
			n++
		}
	}
	return n
}

func TestRoom_CreatorIsHost(t *testing.T) {
	room := NewRoom("12345", "alice", "Alice")

	members := room.Members()
	require.Len(t, members, 1)
	require.Equal(t, "alice", members[0].ConnectionID)
	require.Equal(t, "Alice", members[0].Nickname)
	require.True(t, members[0].IsHost)
	require.Equal(t, "alice", room.HostConnectionID())
}

func TestRoom_JoinCapacity(t *testing.T) {
	room := NewRoom("12345", "host", "Host")

	for i := 1; i < MaxRoomMembers; i++ {
		_, err := room.Join(fmt.Sprintf("conn-%02d", i), fmt.Sprintf("Guest%d", i))
		require.NoError(t, err)
	}
	require.Len(t, room.Members(), MaxRoomMembers)

	_, err := room.Join("conn-11", "Latecomer")
	require.ErrorIs(t, err, ErrRoomFull)
	require.Len(t, room.Members(), MaxRoomMembers)
	require.Equal(t, 1, hostCount(room.Members()))
}

func TestRoom_JoinSnapshotChatIsRecentSuffix(t *testing.T) {
	room := NewRoom("12345", "host", "Host")

	for i := 0; i <= MaxChatHistory; i++ {
		_, err := room.AppendChat("host", fmt.Sprintf("msg-%d", i))
		require.NoError(t, err)
	}

	// 101 appends, only the most recent 100 retained.
	require.Equal(t, MaxChatHistory, room.ChatLen())

	snap, err := room.Join("guest", "Guest")
	require.NoError(t, err)
	require.Len(t, snap.Chat, ChatSnapshotLimit)
	require.Equal(t, fmt.Sprintf("msg-%d", MaxChatHistory), snap.Chat[len(snap.Chat)-1].Message)
	require.Equal(t, fmt.Sprintf("msg-%d", MaxChatHistory-ChatSnapshotLimit+1), snap.Chat[0].Message)
}

func TestRoom_AppendChatStampsSenderHostFlag(t *testing.T) {
	room := NewRoom("12345", "host", "Host")
	_, err := room.Join("guest", "Guest")
	require.NoError(t, err)

	fromHost, err := room.AppendChat("host", "hello")
	require.NoError(t, err)
	require.True(t, fromHost.IsHost)
	require.NotEmpty(t, fromHost.ID)
	require.Positive(t, fromHost.Timestamp)

	fromGuest, err := room.AppendChat("guest", "hi")
	require.NoError(t, err)
	require.False(t, fromGuest.IsHost)
	require.NotEqual(t, fromHost.ID, fromGuest.ID)
}

func TestRoom_AppendChatNonMember(t *testing.T) {
	room := NewRoom("12345", "host", "Host")

	_, err := room.AppendChat("stranger", "hello?")
	require.ErrorIs(t, err, ErrNotInRoom)
	require.Equal(t, 0, room.ChatLen())
}

func TestRoom_VideoActionReplacesStateWholesale(t *testing.T) {
	room := NewRoom("12345", "host", "Host")

	state, err := room.ApplyVideoAction("host", VideoAction{IsPlaying: true, CurrentTime: 42.5})
	require.NoError(t, err)
	require.True(t, state.IsPlaying)
	require.Equal(t, 42.5, state.CurrentTime)
	require.Positive(t, state.LastUpdate)

	state, err = room.ApplyVideoAction("host", VideoAction{IsPlaying: false, CurrentTime: 10})
	require.NoError(t, err)
	require.False(t, state.IsPlaying)
	require.Equal(t, 10.0, state.CurrentTime)
}

func TestRoom_VideoActionFromNonHost(t *testing.T) {
	room := NewRoom("12345", "host", "Host")
	_, err := room.Join("guest", "Guest")
	require.NoError(t, err)

	_, err = room.ApplyVideoAction("guest", VideoAction{IsPlaying: true, CurrentTime: 99})
	require.ErrorIs(t, err, ErrNotHost)

	snap, err := room.Info()
	require.NoError(t, err)
	require.False(t, snap.VideoState.IsPlaying)
	require.Equal(t, 0.0, snap.VideoState.CurrentTime)
}

func TestRoom_ChangeEpisode(t *testing.T) {
	room := NewRoom("12345", "host", "Host")
	_, err := room.Join("guest", "Guest")
	require.NoError(t, err)

	require.ErrorIs(t, room.ChangeEpisode("guest", "ep-2", "anime-1"), ErrNotHost)
	require.NoError(t, room.ChangeEpisode("host", "ep-2", "anime-1"))

	snap, err := room.Info()
	require.NoError(t, err)
	require.Equal(t, "ep-2", snap.CurrentEpisode)
	require.Equal(t, "anime-1", snap.AnimeID)
}

func TestRoom_LeaveHostFailoverIsDeterministic(t *testing.T) {
	room := NewRoom("12345", "zed", "Zed")
	_, err := room.Join("bob", "Bob")
	require.NoError(t, err)
	_, err = room.Join("alice", "Alice")
	require.NoError(t, err)

	dep, err := room.Leave("zed")
	require.NoError(t, err)
	require.False(t, dep.Empty)
	require.Equal(t, "Zed", dep.Nickname)

	// Successor is the remaining member with the smallest connection id.
	require.NotNil(t, dep.NewHost)
	require.Equal(t, "alice", dep.NewHost.ConnectionID)
	require.Equal(t, "Alice", dep.NewHost.Nickname)
	require.True(t, dep.NewHost.IsHost)

	require.Equal(t, "alice", room.HostConnectionID())
	require.Equal(t, 1, hostCount(room.Members()))
}

func TestRoom_LeaveNonHostKeepsHost(t *testing.T) {
	room := NewRoom("12345", "host", "Host")
	_, err := room.Join("guest", "Guest")
	require.NoError(t, err)

	dep, err := room.Leave("guest")
	require.NoError(t, err)
	require.Nil(t, dep.NewHost)
	require.Equal(t, "host", room.HostConnectionID())
	require.Equal(t, 1, hostCount(room.Members()))
}

func TestRoom_LeaveLastMemberClosesRoom(t *testing.T) {
	room := NewRoom("12345", "host", "Host")

	dep, err := room.Leave("host")
	require.NoError(t, err)
	require.True(t, dep.Empty)

	// A join that raced with deletion sees the room as gone.
	_, err = room.Join("late", "Late")
	require.ErrorIs(t, err, ErrRoomNotFound)

	_, err = room.Info()
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRoom_LeaveUnknownMember(t *testing.T) {
	room := NewRoom("12345", "host", "Host")

	_, err := room.Leave("stranger")
	require.ErrorIs(t, err, ErrNotInRoom)
	require.Len(t, room.Members(), 1)
}
