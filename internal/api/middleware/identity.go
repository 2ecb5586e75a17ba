package middleware

import (
	"context"
	"ctchen222/task-manager/internal/api/apperror"
	"ctchen222/task-manager/internal/api/models"
	"ctchen222/task-manager/internal/api/response"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// UserIDHeader is the legacy identity header sent by the browser client.
const UserIDHeader = "X-User-Id"

const userIDKey = "user.id"

// TokenParser verifies an identity token and returns its user id.
type TokenParser interface {
	Parse(token string) (int64, error)
}

// UserLookup confirms that a user id names an existing user.
type UserLookup interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// IdentityOptions selects the identity sources Identity consults.
type IdentityOptions struct {
	// Tokens verifies bearer tokens. Nil disables token auth.
	Tokens TokenParser
	// TrustUserHeader honours X-User-Id as-is.
	TrustUserHeader bool
	// Users, when set, rejects X-User-Id values that name no user.
	Users UserLookup
}

// Identity resolves the acting user, if any, and records it on the gin
// context. Bad credentials leave the request unauthenticated.
func Identity(opts IdentityOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok := resolveUser(c, opts); ok {
			c.Set(userIDKey, id)
		}
		c.Next()
	}
}

// RequireUser aborts with 401 unless Identity resolved a user.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserID(c); !ok {
			response.Error(c, apperror.NewUnauthorized())
			return
		}
		c.Next()
	}
}

// UserID returns the user resolved for this request.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

func resolveUser(c *gin.Context, opts IdentityOptions) (int64, bool) {
	ctx := c.Request.Context()

	if opts.Tokens != nil {
		if token := bearerToken(c); token != "" {
			id, err := opts.Tokens.Parse(token)
			if err != nil {
				slog.WarnContext(ctx, "Ignoring invalid identity token", "request.id", response.RequestID(c), "error", err)
				return 0, false
			}
			return id, true
		}
	}

	if !opts.TrustUserHeader {
		return 0, false
	}
	raw := strings.TrimSpace(c.GetHeader(UserIDHeader))
	if raw == "" {
		// Browsers cannot set headers on websocket upgrades.
		raw = strings.TrimSpace(c.Query("userId"))
	}
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		slog.WarnContext(ctx, "Ignoring malformed user header", "request.id", response.RequestID(c), "header", raw)
		return 0, false
	}
	if opts.Users != nil {
		if _, err := opts.Users.GetUserByID(ctx, id); err != nil {
			slog.WarnContext(ctx, "Ignoring user header for unknown user", "user.id", id, "error", err)
			return 0, false
		}
	}
	return id, true
}

// bearerToken reads the Authorization header, falling back to the
// access_token query parameter that browsers use for websockets.
func bearerToken(c *gin.Context) string {
	if scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " "); ok && strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(token)
	}
	return c.Query("access_token")
}
