package service

import (
	"context"

	"github.com/aniparty/server/internal/domain"
)

// Publisher is the transport's fan-out primitive. Each room is a topic;
// publishing is fire-and-forget with no delivery guarantee.
type Publisher interface {
	Subscribe(connID, roomCode string)
	Unsubscribe(connID, roomCode string)
	Publish(roomCode string, message interface{}) error
	PublishExcept(roomCode string, message interface{}, exceptConnID string) error
	SendTo(connID string, message interface{}) error
}

// PartyService handles every inbound room event. Errors for which
// domain.Surfaced reports false are policy drops, not failures.
type PartyService interface {
	HandleCreateRoom(ctx context.Context, connID, nickname string) error
	HandleJoinRoom(ctx context.Context, connID, roomCode, nickname string) error
	HandleVideoAction(ctx context.Context, connID string, action domain.VideoAction) error
	HandleChangeEpisode(ctx context.Context, connID, episodeID, animeID string) error
	HandleChatMessage(ctx context.Context, connID, text string) error
	HandleGetRoomInfo(ctx context.Context, connID, roomCode string) error
	HandleDisconnect(ctx context.Context, connID string) error
	RoomInfo(ctx context.Context, roomCode string) (*domain.Snapshot, error)
}
