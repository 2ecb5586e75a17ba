package models

import "time"

// Task represents a task row. Description is nil when the task has none.
type Task struct {
	ID          int64     `db:"id"`
	Title       string    `db:"title"`
	Description *string   `db:"description"`
	IsCompleted bool      `db:"is_completed"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
	UserID      int64     `db:"user_id"`
}

// TaskResponse is the projection returned by every task endpoint.
type TaskResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	UserID      int64     `json:"userId"`
}

func (t Task) ToResponse() TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
		UserID:      t.UserID,
	}
}

// CreateTaskRequest is the body of POST /api/tasks.
type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=100,tasktitle"`
	Description *string `json:"description" validate:"omitempty,max=500,taskdesc"`
}

func (r *CreateTaskRequest) Sanitize() {
	r.Title = SanitizeTitle(r.Title)
	r.Description = SanitizeDescription(r.Description)
}

// UpdateTaskRequest is the body of PUT /api/tasks/{id}. A missing
// isCompleted is read as false.
type UpdateTaskRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=100,tasktitle"`
	Description *string `json:"description" validate:"omitempty,max=500,taskdesc"`
	IsCompleted bool    `json:"isCompleted"`
}

func (r *UpdateTaskRequest) Sanitize() {
	r.Title = SanitizeTitle(r.Title)
	r.Description = SanitizeDescription(r.Description)
}
