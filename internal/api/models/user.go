package models

import "time"

// User represents a user in the database.
type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// UserResponse is the public projection of a user.
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt.UTC(),
	}
}

// RegisterRequest defines the structure for a user registration request.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,username"`
	Password string `json:"password" validate:"required,min=6,max=100,nowhitespace"`
}

func (r *RegisterRequest) Sanitize() {
	r.Username = SanitizeUsername(r.Username)
	r.Password = SanitizePassword(r.Password)
}

// LoginRequest defines the structure for a user login request.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,username"`
	Password string `json:"password" validate:"required,min=6,max=100,nowhitespace"`
}

func (r *LoginRequest) Sanitize() {
	r.Username = SanitizeUsername(r.Username)
	r.Password = SanitizePassword(r.Password)
}

// AuthResponse is returned by both login and registration. Token is only
// set when the server signs identity tokens.
type AuthResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
	Token   string       `json:"token,omitempty"`
}
