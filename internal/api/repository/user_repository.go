package repository

import (
	"context"
	"ctchen222/task-manager/internal/api/models"
	"ctchen222/task-manager/internal/db"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"
)

var tracer = otel.Tracer("api.repository")

//go:generate mockgen -destination=mocks/mock_user_repository.go -package=mocks . UserRepository

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

type sqlUserRepository struct {
	db         *sqlx.DB
	bcryptCost int
}

// NewUserRepository creates a UserRepository over any of the supported SQL drivers.
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &sqlUserRepository{db: db, bcryptCost: bcrypt.DefaultCost}
}

// NewUserRepositoryWithCost is NewUserRepository with an explicit bcrypt cost.
func NewUserRepositoryWithCost(db *sqlx.DB, cost int) UserRepository {
	return &sqlUserRepository{db: db, bcryptCost: cost}
}

// CreateUser hashes the password and inserts a new user, filling in user.ID.
func (r *sqlUserRepository) CreateUser(ctx context.Context, user *models.User, password string) error {
	ctx, span := tracer.Start(ctx, "UserRepository.CreateUser")
	defer span.End()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), r.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hashedPassword)

	query := r.db.Rebind(`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?) RETURNING id`)
	err = r.db.QueryRowxContext(ctx, query, user.Username, user.PasswordHash, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrUsernameTaken
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert user failed")
		return fmt.Errorf("failed to create user: %w", err)
	}

	span.SetAttributes(attribute.Int64("user.id", user.ID))
	return nil
}

// GetUserByUsername retrieves a user by their (already normalised) username.
func (r *sqlUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "UserRepository.GetUserByUsername")
	defer span.End()

	var user models.User
	query := r.db.Rebind(`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`)
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return &user, nil
}

func (r *sqlUserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "UserRepository.GetUserByID")
	defer span.End()

	var user models.User
	query := r.db.Rebind(`SELECT id, username, password_hash, created_at FROM users WHERE id = ?`)
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

func (r *sqlUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	ctx, span := tracer.Start(ctx, "UserRepository.ExistsByUsername")
	defer span.End()

	var exists bool
	query := r.db.Rebind(`SELECT EXISTS (SELECT 1 FROM users WHERE username = ?)`)
	if err := r.db.GetContext(ctx, &exists, query, username); err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}
