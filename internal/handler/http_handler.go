package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/aniparty/server/internal/domain"
	"github.com/aniparty/server/internal/service"
	"github.com/aniparty/server/pkg/log"
	"github.com/aniparty/server/pkg/response"
)

// HTTPHandler exposes read-only room queries over HTTP. Everything that
// mutates room state goes through the websocket.
type HTTPHandler struct {
	service service.PartyService
}

func NewHTTPHandler(svc service.PartyService) *HTTPHandler {
	return &HTTPHandler{service: svc}
}

// RegisterRoutes registers all routes.
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/rooms/:code", h.GetRoomInfo)
	}
}

// GetRoomInfo returns the room snapshot without chat history.
func (h *HTTPHandler) GetRoomInfo(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	code := c.Param("code")

	snap, err := h.service.RoomInfo(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			response.NotFound(c, "room not found")
			return
		}
		l.Error().Err(err).Str(log.FieldRoomCode, code).Msg("failed to get room info")
		response.InternalError(c, "failed to get room info")
		return
	}

	response.Success(c, snap)
}
