package hub

import (
	"context"
	"ctchen222/task-manager/internal/events"
	"ctchen222/task-manager/pkg/proto"
	"encoding/json"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// runEventSubscriber forwards events published by any instance to Run.
func (h *Hub) runEventSubscriber(ctx context.Context) {
	slog.InfoContext(ctx, "Event subscriber started", "channel", events.TaskEventsChannel)
	pubsub := h.rdb.Subscribe(ctx, events.TaskEventsChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				slog.WarnContext(ctx, "Event subscription closed", "channel", events.TaskEventsChannel)
				return
			}

			var event events.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.ErrorContext(ctx, "Could not unmarshal task event", "error", err)
				continue
			}

			select {
			case h.deliver <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}

// handleEvent sends a task event to every local client of the owning user.
func (h *Hub) handleEvent(ctx context.Context, event events.Event) {
	ctx, span := tracer.Start(ctx, "hub.handleEvent", trace.WithAttributes(
		attribute.String("event.type", event.Type),
	))
	defer span.End()

	payload, err := events.DecodeTaskPayload(event)
	if err != nil {
		slog.ErrorContext(ctx, "Dropping task event", "event.type", event.Type, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Could not decode task event")
		return
	}
	span.SetAttributes(attribute.Int64("user.id", payload.UserID), attribute.Int64("task.id", payload.TaskID))

	msg := &proto.ServerToClientMessage{
		Type:   event.Type,
		TaskID: payload.TaskID,
		Task:   payload.Task,
	}
	for c := range h.clients[payload.UserID] {
		h.sendTo(ctx, c, msg)
	}
}
