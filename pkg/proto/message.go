package proto

import (
	"ctchen222/task-manager/internal/api/models"
	"ctchen222/task-manager/internal/events"
)

// Message types sent over the task event feed.
const (
	TypeConnected   = "connected"
	TypeTaskCreated = events.TaskCreated
	TypeTaskUpdated = events.TaskUpdated
	TypeTaskDeleted = events.TaskDeleted
)

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type   string               `json:"type"`
	TaskID int64                `json:"taskId,omitempty"`
	Task   *models.TaskResponse `json:"task,omitempty"`
}
