package domain

// WebSocket message types from client.
const (
	MsgTypeCreateRoom    = "createRoom"
	MsgTypeJoinRoom      = "joinRoom"
	MsgTypeVideoAction   = "videoAction"
	MsgTypeChangeEpisode = "changeEpisode"
	MsgTypeChatMessage   = "chatMessage"
	MsgTypeGetRoomInfo   = "getRoomInfo"
)

// WebSocket message types to client.
const (
	MsgTypeRoomCreated = "roomCreated"
	MsgTypeRoomJoined  = "roomJoined"
	MsgTypeUserJoined  = "userJoined"
	MsgTypeRoomInfo    = "roomInfo"
	MsgTypeNewHost     = "newHost"
	MsgTypeUserLeft    = "userLeft"
	MsgTypeError       = "error"
)

// BaseMessage is the base structure for all WebSocket messages.
type BaseMessage struct {
	Type string `json:"type"`
}

// Client -> Server messages

type CreateRoomMessage struct {
	Type     string `json:"type"`
	Nickname string `json:"nickname"`
}

type JoinRoomMessage struct {
	Type     string `json:"type"`
	RoomCode string `json:"roomCode"`
	Nickname string `json:"nickname"`
}

type VideoActionMessage struct {
	Type   string      `json:"type"`
	Action VideoAction `json:"action"`
}

type ChangeEpisodeMessage struct {
	Type      string `json:"type"`
	EpisodeID string `json:"episodeId"`
	AnimeID   string `json:"animeId"`
}

type ChatMessageIn struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type GetRoomInfoMessage struct {
	Type     string `json:"type"`
	RoomCode string `json:"roomCode"`
}

// Server -> Client messages

type RoomCreatedEvent struct {
	Type     string   `json:"type"`
	RoomCode string   `json:"roomCode"`
	IsHost   bool     `json:"isHost"`
	Members  []Member `json:"members"`
}

type RoomJoinedEvent struct {
	Type           string        `json:"type"`
	RoomCode       string        `json:"roomCode"`
	IsHost         bool          `json:"isHost"`
	CurrentEpisode string        `json:"currentEpisode,omitempty"`
	AnimeID        string        `json:"animeId,omitempty"`
	VideoState     VideoState    `json:"videoState"`
	Members        []Member      `json:"members"`
	Chat           []ChatMessage `json:"chat"`
}

type UserJoinedEvent struct {
	Type     string   `json:"type"`
	Nickname string   `json:"nickname"`
	Members  []Member `json:"members"`
}

type VideoActionEvent struct {
	Type        string  `json:"type"`
	IsPlaying   bool    `json:"isPlaying"`
	CurrentTime float64 `json:"currentTime"`
}

type ChangeEpisodeEvent struct {
	Type      string `json:"type"`
	EpisodeID string `json:"episodeId"`
	AnimeID   string `json:"animeId"`
}

type ChatMessageEvent struct {
	Type string `json:"type"`
	ChatMessage
}

type RoomInfoEvent struct {
	Type           string     `json:"type"`
	CurrentEpisode string     `json:"currentEpisode,omitempty"`
	AnimeID        string     `json:"animeId,omitempty"`
	VideoState     VideoState `json:"videoState"`
	Members        []Member   `json:"members"`
}

type NewHostEvent struct {
	Type            string   `json:"type"`
	NewHostID       string   `json:"newHostId"`
	NewHostNickname string   `json:"newHostNickname"`
	Members         []Member `json:"members"`
}

type UserLeftEvent struct {
	Type     string   `json:"type"`
	Nickname string   `json:"nickname"`
	Members  []Member `json:"members"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewErrorEvent(message string) *ErrorEvent {
	return &ErrorEvent{Type: MsgTypeError, Message: message}
}
