package hub

import (
	"context"
	"ctchen222/task-manager/internal/events"
	"ctchen222/task-manager/pkg/proto"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("hub")

// ErrHubClosed is returned by Publish once Run has returned.
var ErrHubClosed = errors.New("hub closed")

var connectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "task_events_connected_clients",
	Help: "Number of websocket clients subscribed to task events",
})

func init() {
	prometheus.MustRegister(connectedClients)
}

// Hub fans task events out to the websocket clients of the owning user.
// All client bookkeeping happens on the Run goroutine.
type Hub struct {
	clients    map[int64]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	deliver    chan events.Event
	done       chan struct{}
	rdb        *redis.Client
}

// NewHub creates a new hub. With a non-nil redis client, events are
// published to and received from the task events channel so that every
// instance sees them; otherwise they are delivered in-process.
func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan events.Event, 64),
		done:       make(chan struct{}),
		rdb:        rdb,
	}
}

// Run starts the hub and blocks until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	if h.rdb != nil {
		go h.runEventSubscriber(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			for _, set := range h.clients {
				for c := range set {
					h.removeClient(c)
				}
			}
			slog.InfoContext(ctx, "Hub stopped")
			return

		case c := <-h.register:
			h.addClient(ctx, c)

		case c := <-h.unregister:
			h.removeClient(c)

		case ev := <-h.deliver:
			h.handleEvent(ctx, ev)
		}
	}
}

// Register adds a client. It is a no-op once the hub has stopped.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.send)
	}
}

// Unregister removes a client and closes its send queue.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish implements events.Publisher.
func (h *Hub) Publish(ctx context.Context, event events.Event) error {
	ctx, span := tracer.Start(ctx, "hub.Publish", trace.WithAttributes(
		attribute.String("event.type", event.Type),
	))
	defer span.End()

	if h.rdb != nil {
		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}
		if err := h.rdb.Publish(ctx, events.TaskEventsChannel, data).Err(); err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to publish %s: %w", event.Type, err)
		}
		return nil
	}

	select {
	case h.deliver <- event:
		return nil
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) addClient(ctx context.Context, c *Client) {
	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
	connectedClients.Inc()

	slog.InfoContext(ctx, "Client subscribed to task events", "user.id", c.UserID, "user.clients", len(set))
	h.sendTo(ctx, c, &proto.ServerToClientMessage{Type: proto.TypeConnected})
}

func (h *Hub) removeClient(c *Client) {
	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
	close(c.send)
	connectedClients.Dec()
}
