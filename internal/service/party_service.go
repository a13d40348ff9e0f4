package service

import (
	"context"

	"github.com/aniparty/server/internal/audit"
	"github.com/aniparty/server/internal/domain"
	"github.com/aniparty/server/internal/registry"
	"github.com/aniparty/server/pkg/log"
)

type partyService struct {
	registry *registry.Registry
	pub      Publisher
}

func NewPartyService(reg *registry.Registry, pub Publisher) PartyService {
	return &partyService{
		registry: reg,
		pub:      pub,
	}
}

func (s *partyService) HandleCreateRoom(ctx context.Context, connID, nickname string) error {
	room, err := s.registry.CreateRoom(connID, nickname)
	if err != nil {
		return err
	}

	s.pub.Subscribe(connID, room.Code())
	audit.Log(ctx, audit.ActionCreateRoom, connID, room.Code(), "room created")

	return s.pub.SendTo(connID, &domain.RoomCreatedEvent{
		Type:     domain.MsgTypeRoomCreated,
		RoomCode: room.Code(),
		IsHost:   true,
		Members:  room.Members(),
	})
}

func (s *partyService) HandleJoinRoom(ctx context.Context, connID, roomCode, nickname string) error {
	room, err := s.registry.Lookup(roomCode)
	if err != nil {
		return err
	}

	// Reserve the binding before touching membership: a rejected join
	// then only has to release the reservation, and can never leave a
	// half-joined member or an undeletable room behind.
	if err := s.registry.Bind(connID, roomCode); err != nil {
		return err
	}

	snap, err := room.Join(connID, nickname)
	if err != nil {
		s.registry.Unbind(connID)
		return err
	}

	s.pub.Subscribe(connID, roomCode)
	audit.Log(ctx, audit.ActionJoinRoom, connID, roomCode, "member joined")

	// The origin has produced no state divergence yet, so it receives
	// the userJoined broadcast like everyone else.
	s.pub.Publish(roomCode, &domain.UserJoinedEvent{
		Type:     domain.MsgTypeUserJoined,
		Nickname: nickname,
		Members:  snap.Members,
	})

	return s.pub.SendTo(connID, &domain.RoomJoinedEvent{
		Type:           domain.MsgTypeRoomJoined,
		RoomCode:       roomCode,
		IsHost:         false,
		CurrentEpisode: snap.CurrentEpisode,
		AnimeID:        snap.AnimeID,
		VideoState:     snap.VideoState,
		Members:        snap.Members,
		Chat:           snap.Chat,
	})
}

func (s *partyService) HandleVideoAction(ctx context.Context, connID string, action domain.VideoAction) error {
	room, err := s.registry.RoomFor(connID)
	if err != nil {
		return err
	}

	state, err := room.ApplyVideoAction(connID, action)
	if err != nil {
		return err
	}

	// The host already knows its own state; echoing it back would loop.
	return s.pub.PublishExcept(room.Code(), &domain.VideoActionEvent{
		Type:        domain.MsgTypeVideoAction,
		IsPlaying:   state.IsPlaying,
		CurrentTime: state.CurrentTime,
	}, connID)
}

func (s *partyService) HandleChangeEpisode(ctx context.Context, connID, episodeID, animeID string) error {
	room, err := s.registry.RoomFor(connID)
	if err != nil {
		return err
	}

	if err := room.ChangeEpisode(connID, episodeID, animeID); err != nil {
		return err
	}

	// Unlike video actions this includes the origin, so the host's own
	// UI transitions off the broadcast as well.
	return s.pub.Publish(room.Code(), &domain.ChangeEpisodeEvent{
		Type:      domain.MsgTypeChangeEpisode,
		EpisodeID: episodeID,
		AnimeID:   animeID,
	})
}

func (s *partyService) HandleChatMessage(ctx context.Context, connID, text string) error {
	room, err := s.registry.RoomFor(connID)
	if err != nil {
		return err
	}

	msg, err := room.AppendChat(connID, text)
	if err != nil {
		return err
	}

	return s.pub.Publish(room.Code(), &domain.ChatMessageEvent{
		Type:        domain.MsgTypeChatMessage,
		ChatMessage: msg,
	})
}

func (s *partyService) HandleGetRoomInfo(ctx context.Context, connID, roomCode string) error {
	snap, err := s.RoomInfo(ctx, roomCode)
	if err != nil {
		return err
	}

	return s.pub.SendTo(connID, &domain.RoomInfoEvent{
		Type:           domain.MsgTypeRoomInfo,
		CurrentEpisode: snap.CurrentEpisode,
		AnimeID:        snap.AnimeID,
		VideoState:     snap.VideoState,
		Members:        snap.Members,
	})
}

func (s *partyService) HandleDisconnect(ctx context.Context, connID string) error {
	code, ok := s.registry.Resolve(connID)
	if !ok {
		return nil
	}

	// The binding is cleared regardless of which branch runs below.
	s.registry.Unbind(connID)

	room, err := s.registry.Lookup(code)
	if err != nil {
		return nil
	}

	dep, err := room.Leave(connID)
	if err != nil {
		return nil
	}

	s.pub.Unsubscribe(connID, code)
	audit.Log(ctx, audit.ActionLeaveRoom, connID, code, "member left")

	if dep.Empty {
		s.registry.Delete(code)
		audit.Log(ctx, audit.ActionCloseRoom, connID, code, "last member left, room closed")
		return nil
	}

	if dep.NewHost != nil {
		audit.Log(ctx, audit.ActionNewHost, dep.NewHost.ConnectionID, code, "host role transferred")
		s.pub.Publish(code, &domain.NewHostEvent{
			Type:            domain.MsgTypeNewHost,
			NewHostID:       dep.NewHost.ConnectionID,
			NewHostNickname: dep.NewHost.Nickname,
			Members:         dep.Members,
		})
	}

	s.pub.Publish(code, &domain.UserLeftEvent{
		Type:     domain.MsgTypeUserLeft,
		Nickname: dep.Nickname,
		Members:  dep.Members,
	})
	return nil
}

func (s *partyService) RoomInfo(ctx context.Context, roomCode string) (*domain.Snapshot, error) {
	room, err := s.registry.Lookup(roomCode)
	if err != nil {
		return nil, err
	}

	snap, err := room.Info()
	if err != nil {
		return nil, err
	}

	l := log.Ctx(ctx)
	l.Debug().Str(log.FieldRoomCode, roomCode).Int("member_count", len(snap.Members)).Msg("room info queried")
	return &snap, nil
}
