package hub

import (
	"context"
	"ctchen222/task-manager/pkg/proto"
	"encoding/json"
	"log/slog"
)

// sendTo queues msg for c. A client whose queue is full is dropped.
func (h *Hub) sendTo(ctx context.Context, c *Client, msg *proto.ServerToClientMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.ErrorContext(ctx, "Error marshalling message", "user.id", c.UserID, "error", err)
		return
	}

	select {
	case c.send <- data:
	default:
		slog.WarnContext(ctx, "Dropping slow task event client", "user.id", c.UserID)
		h.removeClient(c)
	}
}
