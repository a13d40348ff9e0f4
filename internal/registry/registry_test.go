package registry

import (
	"fmt"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aniparty/server/internal/domain"
)

var codePattern = regexp.MustCompile(`^\d{5}$`)

func TestRegistry_CreateRoom(t *testing.T) {
	reg := New()

	room, err := reg.CreateRoom("alice", "Alice")
	require.NoError(t, err)
	require.Equal(t, 1, reg.RoomCount())

	require.Regexp(t, codePattern, room.Code())
	n, err := strconv.Atoi(room.Code())
	require.NoError(t, err)
	require.GreaterOrEqual(t, n, 10000)
	require.LessOrEqual(t, n, 99999)

	// The creator is bound to the new room.
	code, ok := reg.Resolve("alice")
	require.True(t, ok)
	require.Equal(t, room.Code(), code)

	got, err := reg.Lookup(room.Code())
	require.NoError(t, err)
	require.Same(t, room, got)
}

func TestRegistry_CreateRoomWhileBound(t *testing.T) {
	reg := New()

	_, err := reg.CreateRoom("alice", "Alice")
	require.NoError(t, err)

	_, err = reg.CreateRoom("alice", "Alice")
	require.ErrorIs(t, err, domain.ErrAlreadyInRoom)
	require.Equal(t, 1, reg.RoomCount())
}

func TestRegistry_CodesAreUnique(t *testing.T) {
	reg := New()

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		room, err := reg.CreateRoom(fmt.Sprintf("conn-%d", i), "Guest")
		require.NoError(t, err)
		require.False(t, seen[room.Code()], "duplicate code %s", room.Code())
		seen[room.Code()] = true
	}
}

func TestRegistry_LookupUnknown(t *testing.T) {
	reg := New()

	_, err := reg.Lookup("12345")
	require.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestRegistry_DeleteIsIdempotent(t *testing.T) {
	reg := New()

	room, err := reg.CreateRoom("alice", "Alice")
	require.NoError(t, err)

	reg.Delete(room.Code())
	reg.Delete(room.Code())

	_, err = reg.Lookup(room.Code())
	require.ErrorIs(t, err, domain.ErrRoomNotFound)
	require.Equal(t, 0, reg.RoomCount())
}

func TestRegistry_BindResolveUnbind(t *testing.T) {
	reg := New()

	room, err := reg.CreateRoom("alice", "Alice")
	require.NoError(t, err)

	require.NoError(t, reg.Bind("bob", room.Code()))
	require.ErrorIs(t, reg.Bind("bob", room.Code()), domain.ErrAlreadyInRoom)

	code, ok := reg.Resolve("bob")
	require.True(t, ok)
	require.Equal(t, room.Code(), code)

	reg.Unbind("bob")
	reg.Unbind("bob")

	_, ok = reg.Resolve("bob")
	require.False(t, ok)
}

func TestRegistry_RoomFor(t *testing.T) {
	reg := New()

	_, err := reg.RoomFor("nobody")
	require.ErrorIs(t, err, domain.ErrNotInRoom)

	room, err := reg.CreateRoom("alice", "Alice")
	require.NoError(t, err)

	got, err := reg.RoomFor("alice")
	require.NoError(t, err)
	require.Same(t, room, got)

	// A binding to a deleted room resolves to nothing.
	reg.Delete(room.Code())
	_, err = reg.RoomFor("alice")
	require.ErrorIs(t, err, domain.ErrNotInRoom)
}
