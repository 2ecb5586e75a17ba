package service

import (
	"context"
	"ctchen222/task-manager/internal/api/apperror"
	"ctchen222/task-manager/internal/api/models"
	"ctchen222/task-manager/internal/api/repository"
	"ctchen222/task-manager/internal/validator"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"
)

var tracer = otel.Tracer("api.service")

// AuthService handles login and registration.
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
}

type authService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	opts     options
}

// NewAuthService creates a new AuthService. tokens may be nil, in which case
// responses carry no token.
func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer, opts ...Option) AuthService {
	return &authService{userRepo: userRepo, tokens: tokens, opts: buildOptions(opts)}
}

// Register handles user registration.
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Register")
	defer span.End()

	req.Sanitize()
	if details := validator.Struct(req); details != nil {
		return nil, apperror.NewValidation(details...)
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperror.Wrap(err, "failed to check username")
	}
	if exists {
		return nil, userExists(req.Username)
	}

	user := &models.User{
		Username:  req.Username,
		CreatedAt: s.opts.timestamp(),
	}
	if err := s.userRepo.CreateUser(ctx, user, req.Password); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, userExists(req.Username)
		}
		return nil, apperror.Wrap(err, "failed to create user")
	}

	slog.InfoContext(ctx, "User registered", "user.id", user.ID, "user.name", user.Username)
	return s.respond(user, "Registration successful")
}

// Login verifies the credentials. Unknown users and wrong passwords fail
// identically.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	req.Sanitize()
	if details := validator.Struct(req); details != nil {
		return nil, apperror.NewValidation(details...)
	}

	user, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.NewInvalidCredentials()
		}
		return nil, apperror.Wrap(err, "failed to look up user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		slog.InfoContext(ctx, "Rejected login", "user.id", user.ID)
		return nil, apperror.NewInvalidCredentials()
	}

	return s.respond(user, "Login successful")
}

func (s *authService) respond(user *models.User, message string) (*models.AuthResponse, error) {
	resp := &models.AuthResponse{Message: message, User: user.ToResponse()}
	if s.tokens == nil {
		return resp, nil
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperror.Wrap(err, "failed to issue token")
	}
	resp.Token = token
	return resp, nil
}

func userExists(username string) *apperror.Error {
	return apperror.NewConflict(fmt.Sprintf("User '%s' already exists", username))
}
