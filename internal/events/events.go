package events

import (
	"context"
	"ctchen222/task-manager/internal/api/models"
	"encoding/json"
	"fmt"
)

// Pub/Sub channel constants
const (
	TaskEventsChannel = "channel:task-events"
)

// Task event types.
const (
	TaskCreated = "task_created"
	TaskUpdated = "task_updated"
	TaskDeleted = "task_deleted"
)

// Event represents a message published via Pub/Sub.
type Event struct {
	Type    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// TaskPayload is the payload of every task event. Task is nil for deletions.
type TaskPayload struct {
	UserID int64                `json:"user_id"`
	TaskID int64                `json:"task_id"`
	Task   *models.TaskResponse `json:"task,omitempty"`
}

// Publisher delivers events to whoever is listening for them.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// NewTaskEvent builds an event of the given type for a task owned by userID.
func NewTaskEvent(eventType string, userID, taskID int64, task *models.TaskResponse) (Event, error) {
	payload, err := json.Marshal(TaskPayload{UserID: userID, TaskID: taskID, Task: task})
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Event{Type: eventType, Payload: payload}, nil
}

// DecodeTaskPayload extracts the task payload from an event.
func DecodeTaskPayload(event Event) (*TaskPayload, error) {
	switch event.Type {
	case TaskCreated, TaskUpdated, TaskDeleted:
	default:
		return nil, fmt.Errorf("unknown event type %q", event.Type)
	}

	var payload TaskPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return nil, fmt.Errorf("could not unmarshal %s payload: %w", event.Type, err)
	}
	return &payload, nil
}
