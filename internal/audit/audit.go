package audit

import (
	"context"

	"github.com/aniparty/server/pkg/log"
)

// Audit actions for the party service.
const (
	ActionCreateRoom = "party.create_room"
	ActionJoinRoom   = "party.join_room"
	ActionLeaveRoom  = "party.leave_room"
	ActionCloseRoom  = "party.close_room"
	ActionNewHost    = "party.new_host"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action, connID, roomCode, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str("action", action).
		Str(log.FieldConnID, connID).
		Str(log.FieldRoomCode, roomCode).
		Msg(msg)
}
