package hub

import (
	"context"
	"ctchen222/task-manager/internal/api/models"
	"ctchen222/task-manager/internal/events"
	"ctchen222/task-manager/pkg/proto"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type fakeConn struct {
	writes chan []byte
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{writes: make(chan []byte, 16), closed: make(chan struct{})}
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	if messageType != websocket.TextMessage {
		return nil
	}
	select {
	case <-f.closed:
		return errors.New("use of closed connection")
	default:
	}
	f.writes <- data
	return nil
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	<-f.closed
	return 0, nil, errors.New("connection closed")
}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func nextMessage(t *testing.T, conn *fakeConn) proto.ServerToClientMessage {
	t.Helper()
	select {
	case data := <-conn.writes:
		var msg proto.ServerToClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("Could not decode message %q: %v", data, err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatalf("Timed out waiting for a message")
	}
	return proto.ServerToClientMessage{}
}

func startHub(t *testing.T) (*Hub, context.Context) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(nil)
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h, ctx
}

func subscribe(t *testing.T, h *Hub, ctx context.Context, userID int64) *fakeConn {
	t.Helper()
	conn := newFakeConn()
	c := NewClient(userID, conn)
	go c.WritePump(ctx)
	go c.ReadPump(h)
	h.Register(c)
	if msg := nextMessage(t, conn); msg.Type != proto.TypeConnected {
		t.Fatalf("Expected %q greeting, got %q", proto.TypeConnected, msg.Type)
	}
	return conn
}

func publish(t *testing.T, h *Hub, eventType string, userID, taskID int64, task *models.TaskResponse) {
	t.Helper()
	ev, err := events.NewTaskEvent(eventType, userID, taskID, task)
	if err != nil {
		t.Fatalf("NewTaskEvent: %v", err)
	}
	if err := h.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}

func TestHub_DeliversOnlyToOwner(t *testing.T) {
	h, ctx := startHub(t)
	alice := subscribe(t, h, ctx, 1)
	bob := subscribe(t, h, ctx, 2)

	publish(t, h, events.TaskCreated, 1, 10, &models.TaskResponse{ID: 10, Title: "Buy milk", UserID: 1})
	publish(t, h, events.TaskDeleted, 2, 20, nil)

	msg := nextMessage(t, alice)
	if msg.Type != events.TaskCreated || msg.TaskID != 10 || msg.Task == nil || msg.Task.Title != "Buy milk" {
		t.Errorf("Unexpected message for alice: %+v", msg)
	}

	msg = nextMessage(t, bob)
	if msg.Type != events.TaskDeleted || msg.TaskID != 20 || msg.Task != nil {
		t.Errorf("Unexpected message for bob: %+v", msg)
	}

	select {
	case data := <-alice.writes:
		t.Errorf("Alice received another user's event: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_FansOutToEveryClientOfUser(t *testing.T) {
	h, ctx := startHub(t)
	tab1 := subscribe(t, h, ctx, 7)
	tab2 := subscribe(t, h, ctx, 7)

	publish(t, h, events.TaskUpdated, 7, 3, &models.TaskResponse{ID: 3, IsCompleted: true, UserID: 7})

	for _, conn := range []*fakeConn{tab1, tab2} {
		if msg := nextMessage(t, conn); msg.Type != events.TaskUpdated || !msg.Task.IsCompleted {
			t.Errorf("Unexpected message: %+v", msg)
		}
	}
}

func TestHub_DisconnectClosesConnection(t *testing.T) {
	h, ctx := startHub(t)
	conn := subscribe(t, h, ctx, 1)

	// Peer hangs up: ReadPump unregisters, WritePump closes the socket.
	conn.Close()

	publish(t, h, events.TaskDeleted, 1, 5, nil)
	select {
	case data := <-conn.writes:
		t.Errorf("Closed client still received %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_PublishAfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(nil)
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	ev, _ := events.NewTaskEvent(events.TaskDeleted, 1, 1, nil)
	// The buffered queue may still take a few events; keep going until the
	// hub reports it is closed.
	var err error
	for i := 0; i < cap(h.deliver)+1 && err == nil; i++ {
		err = h.Publish(context.Background(), ev)
	}
	if !errors.Is(err, ErrHubClosed) {
		t.Errorf("Expected ErrHubClosed, got %v", err)
	}
}
