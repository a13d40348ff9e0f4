package domain

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	// MaxRoomMembers is a hard cap, not configurable.
	MaxRoomMembers = 10

	// MaxChatHistory is the number of messages retained server-side.
	MaxChatHistory = 100

	// ChatSnapshotLimit is the number of messages exposed to joiners.
	ChatSnapshotLimit = 50
)

// Member is one connection's presence in a room.
type Member struct {
	ConnectionID string `json:"id"`
	Nickname     string `json:"nickname"`
	IsHost       bool   `json:"isHost"`
}

// VideoState is the host's last-reported playback position. Late joiners
// reconstruct the approximate position client-side from CurrentTime plus
// the elapsed time since LastUpdate.
type VideoState struct {
	IsPlaying   bool    `json:"isPlaying"`
	CurrentTime float64 `json:"currentTime"`
	LastUpdate  int64   `json:"lastUpdate"`
}

// VideoAction is a host playback command. It replaces the room's
// VideoState wholesale; nothing is merged.
type VideoAction struct {
	IsPlaying   bool    `json:"isPlaying"`
	CurrentTime float64 `json:"currentTime"`
}

// ChatMessage is immutable once created.
type ChatMessage struct {
	ID        string `json:"id"`
	Nickname  string `json:"nickname"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
	IsHost    bool   `json:"isHost"`
}

// Snapshot is a point-in-time view of a room handed to joiners and info
// queries. Chat is only populated on join, and only with the most recent
// ChatSnapshotLimit messages.
type Snapshot struct {
	RoomCode       string        `json:"roomCode"`
	CurrentEpisode string        `json:"currentEpisode,omitempty"`
	AnimeID        string        `json:"animeId,omitempty"`
	VideoState     VideoState    `json:"videoState"`
	Members        []Member      `json:"members"`
	Chat           []ChatMessage `json:"chat,omitempty"`
}

// Departure describes the outcome of a member leaving a room.
type Departure struct {
	Nickname string
	Empty    bool
	NewHost  *Member
	Members  []Member
}

// Room holds all state shared by the members of one co-viewing session.
// Every exported method is one atomic unit of work under the room's own
// mutex; no two operations on the same room interleave.
type Room struct {
	mu sync.Mutex

	code       string
	hostConnID string
	members    map[string]*Member

	currentEpisode string
	animeID        string
	video          VideoState
	chat           []ChatMessage

	// Set when the last member departs, so a lookup that raced with
	// deletion cannot resurrect the room.
	closed bool
}

// NewRoom creates a room whose sole member is the creator, flagged host.
func NewRoom(code, hostConnID, nickname string) *Room {
	return &Room{
		code:       code,
		hostConnID: hostConnID,
		members: map[string]*Member{
			hostConnID: {ConnectionID: hostConnID, Nickname: nickname, IsHost: true},
		},
		video: VideoState{LastUpdate: time.Now().UnixMilli()},
	}
}

func (r *Room) Code() string {
	return r.code
}

// Join adds a non-host member and returns the full snapshot handed to the
// joining connection.
func (r *Room) Join(connID, nickname string) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return Snapshot{}, ErrRoomNotFound
	}
	if len(r.members) >= MaxRoomMembers {
		return Snapshot{}, ErrRoomFull
	}

	r.members[connID] = &Member{ConnectionID: connID, Nickname: nickname}

	snap := r.snapshotLocked()
	snap.Chat = r.chatTailLocked()
	return snap, nil
}

// Leave removes a member, promoting a successor when the host departs and
// marking the room closed when it empties. The successor is the remaining
// member with the lexicographically smallest connection id, so failover
// is reproducible.
func (r *Room) Leave(connID string) (Departure, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.members[connID]
	if !ok {
		return Departure{}, ErrNotInRoom
	}
	delete(r.members, connID)

	dep := Departure{Nickname: m.Nickname}

	if len(r.members) == 0 {
		r.closed = true
		dep.Empty = true
		return dep, nil
	}

	if r.hostConnID == connID {
		ids := lo.Keys(r.members)
		sort.Strings(ids)
		successor := r.members[ids[0]]
		successor.IsHost = true
		r.hostConnID = successor.ConnectionID
		promoted := *successor
		dep.NewHost = &promoted
	}

	dep.Members = r.membersLocked()
	return dep, nil
}

// ApplyVideoAction replaces the room's video state with the given action,
// stamped with the current time. Only the host may issue it.
func (r *Room) ApplyVideoAction(connID string, action VideoAction) (VideoState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return VideoState{}, ErrRoomNotFound
	}
	if r.hostConnID != connID {
		return VideoState{}, ErrNotHost
	}

	r.video = VideoState{
		IsPlaying:   action.IsPlaying,
		CurrentTime: action.CurrentTime,
		LastUpdate:  time.Now().UnixMilli(),
	}
	return r.video, nil
}

// ChangeEpisode sets the current episode and anime ids. Host-only.
func (r *Room) ChangeEpisode(connID, episodeID, animeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}
	if r.hostConnID != connID {
		return ErrNotHost
	}

	r.currentEpisode = episodeID
	r.animeID = animeID
	return nil
}

// AppendChat records a message from a current member, truncating history
// to the most recent MaxChatHistory entries.
func (r *Room) AppendChat(connID, text string) (ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ChatMessage{}, ErrRoomNotFound
	}
	m, ok := r.members[connID]
	if !ok {
		return ChatMessage{}, ErrNotInRoom
	}

	msg := ChatMessage{
		ID:        uuid.NewString(),
		Nickname:  m.Nickname,
		Message:   text,
		Timestamp: time.Now().UnixMilli(),
		IsHost:    m.IsHost,
	}
	r.chat = append(r.chat, msg)
	if len(r.chat) > MaxChatHistory {
		r.chat = append([]ChatMessage(nil), r.chat[len(r.chat)-MaxChatHistory:]...)
	}
	return msg, nil
}

// Info returns the room snapshot without chat history.
func (r *Room) Info() (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return Snapshot{}, ErrRoomNotFound
	}
	return r.snapshotLocked(), nil
}

// Members returns the member list ordered by connection id.
func (r *Room) Members() []Member {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.membersLocked()
}

// HostConnectionID returns the current host's connection id.
func (r *Room) HostConnectionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostConnID
}

// ChatLen returns the number of retained chat messages.
func (r *Room) ChatLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.chat)
}

func (r *Room) snapshotLocked() Snapshot {
	return Snapshot{
		RoomCode:       r.code,
		CurrentEpisode: r.currentEpisode,
		AnimeID:        r.animeID,
		VideoState:     r.video,
		Members:        r.membersLocked(),
	}
}

func (r *Room) membersLocked() []Member {
	ids := lo.Keys(r.members)
	sort.Strings(ids)
	return lo.Map(ids, func(id string, _ int) Member {
		return *r.members[id]
	})
}

func (r *Room) chatTailLocked() []ChatMessage {
	if len(r.chat) <= ChatSnapshotLimit {
		return append([]ChatMessage(nil), r.chat...)
	}
	return append([]ChatMessage(nil), r.chat[len(r.chat)-ChatSnapshotLimit:]...)
}
