package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/aniparty/server/internal/config"
	"github.com/aniparty/server/internal/domain"
	"github.com/aniparty/server/internal/hub"
	"github.com/aniparty/server/internal/service"
	"github.com/aniparty/server/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSHandler struct {
	hub     *hub.Hub
	service service.PartyService
	wsCfg   config.WebSocketConfig
}

func NewWSHandler(h *hub.Hub, svc service.PartyService, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		hub:     h,
		service: svc,
		wsCfg:   wsCfg,
	}
}

func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		l := log.L()
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), h.hub, conn, h.wsCfg)

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.handleMessage, h.handleClose)
}

func (h *WSHandler) handleMessage(client *hub.Client, message []byte) {
	var base domain.BaseMessage
	if err := json.Unmarshal(message, &base); err != nil {
		client.SendMessage(domain.NewErrorEvent("invalid message format"))
		return
	}

	ctx := context.Background()

	switch base.Type {
	case domain.MsgTypeCreateRoom:
		var msg domain.CreateRoomMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorEvent("invalid createRoom message"))
			return
		}
		h.report(client, h.service.HandleCreateRoom(ctx, client.ID, msg.Nickname))

	case domain.MsgTypeJoinRoom:
		var msg domain.JoinRoomMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorEvent("invalid joinRoom message"))
			return
		}
		h.report(client, h.service.HandleJoinRoom(ctx, client.ID, msg.RoomCode, msg.Nickname))

	case domain.MsgTypeVideoAction:
		var msg domain.VideoActionMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorEvent("invalid videoAction message"))
			return
		}
		h.report(client, h.service.HandleVideoAction(ctx, client.ID, msg.Action))

	case domain.MsgTypeChangeEpisode:
		var msg domain.ChangeEpisodeMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorEvent("invalid changeEpisode message"))
			return
		}
		h.report(client, h.service.HandleChangeEpisode(ctx, client.ID, msg.EpisodeID, msg.AnimeID))

	case domain.MsgTypeChatMessage:
		var msg domain.ChatMessageIn
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorEvent("invalid chatMessage message"))
			return
		}
		h.report(client, h.service.HandleChatMessage(ctx, client.ID, msg.Message))

	case domain.MsgTypeGetRoomInfo:
		var msg domain.GetRoomInfoMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorEvent("invalid getRoomInfo message"))
			return
		}
		h.report(client, h.service.HandleGetRoomInfo(ctx, client.ID, msg.RoomCode))

	default:
		client.SendMessage(domain.NewErrorEvent("unknown message type"))
	}
}

// report surfaces errors to the origin as error events, except for the
// variants the service intentionally swallows.
func (h *WSHandler) report(client *hub.Client, err error) {
	if err == nil {
		return
	}
	if !domain.Surfaced(err) {
		l := log.L()
		l.Debug().Err(err).Str(log.FieldConnID, client.ID).Msg("event dropped")
		return
	}
	client.SendMessage(domain.NewErrorEvent(err.Error()))
}

func (h *WSHandler) handleClose(client *hub.Client) {
	if err := h.service.HandleDisconnect(context.Background(), client.ID); err != nil {
		l := log.L()
		l.Warn().Err(err).Str(log.FieldConnID, client.ID).Msg("disconnect cleanup failed")
	}
}

func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws", gin.WrapF(h.HandleWebSocket))
}
