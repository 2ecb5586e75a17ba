package server

import (
	"context"
	"ctchen222/task-manager/internal/api/apperror"
	"ctchen222/task-manager/internal/api/controller"
	"ctchen222/task-manager/internal/api/middleware"
	"ctchen222/task-manager/internal/api/response"
	"ctchen222/task-manager/internal/hub"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

// Controllers groups the HTTP handlers the router dispatches to.
type Controllers struct {
	Users  *controller.UserController
	Tasks  *controller.TaskController
	Health *controller.HealthController
}

// Options configures the router.
type Options struct {
	MaxBodyBytes       int64
	AuthRateLimit      int
	AuthRateWindow     time.Duration
	CORSAllowedOrigins []string
	// WebDir holds the single-page client. Empty disables static serving.
	WebDir   string
	Identity middleware.IdentityOptions
}

type Server struct {
	hub      *hub.Hub
	rdb      *redis.Client
	ctrls    Controllers
	opts     Options
	upgrader websocket.Upgrader
}

// NewServer wires the router. rdb may be nil, which disables rate limiting.
func NewServer(h *hub.Hub, rdb *redis.Client, ctrls Controllers, opts Options) *Server {
	return &Server{
		hub:   h,
		rdb:   rdb,
		ctrls: ctrls,
		opts:  opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(opts.CORSAllowedOrigins),
		},
	}
}

// Engine builds the gin router.
func (s *Server) Engine() *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Tracing(),
		middleware.Metrics(),
		middleware.Recovery(),
		middleware.CORS(s.opts.CORSAllowedOrigins),
	)

	r.GET("/health", s.ctrls.Health.Health)
	r.GET("/healthz", s.ctrls.Health.Liveness)
	r.GET("/readyz", s.ctrls.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api",
		middleware.BodyLimit(s.opts.MaxBodyBytes),
		middleware.Identity(s.opts.Identity),
	)

	users := api.Group("/users",
		middleware.RateLimit(s.rdb, s.opts.AuthRateLimit, s.opts.AuthRateWindow),
		middleware.RequireJSON(),
	)
	users.POST("/login", s.ctrls.Users.Login)
	users.POST("/register", s.ctrls.Users.Register)

	tasks := api.Group("/tasks", middleware.RequireUser(), middleware.RequireJSON())
	tasks.GET("", s.ctrls.Tasks.List)
	tasks.POST("", s.ctrls.Tasks.Create)
	tasks.GET("/events", s.handleTaskEvents)
	tasks.GET("/:id", s.ctrls.Tasks.Get)
	tasks.PUT("/:id", s.ctrls.Tasks.Update)
	tasks.DELETE("/:id", s.ctrls.Tasks.Delete)

	var files http.Handler
	if s.opts.WebDir != "" {
		files = http.FileServer(http.Dir(s.opts.WebDir))
	}
	r.NoRoute(func(c *gin.Context) {
		if files == nil || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			response.Error(c, apperror.NewNotFound("Resource not found"))
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	})

	return r
}

// handleTaskEvents upgrades the connection and hands the socket to the hub,
// which streams the user's task events until either side disconnects.
func (s *Server) handleTaskEvents(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	ctx, span := tracer.Start(c.Request.Context(), "server.handleTaskEvents", trace.WithAttributes(
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.WarnContext(ctx, "Failed to upgrade connection", "user.id", userID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}

	client := hub.NewClient(userID, conn)
	go client.WritePump(context.WithoutCancel(ctx))
	s.hub.Register(client)
	go client.ReadPump(s.hub)
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(allowed, "*") || slices.Contains(allowed, origin) {
			return true
		}
		// Same-origin pages are always allowed.
		return strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://") == r.Host
	}
}
