package burrow

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// EventType discriminates push events. Unknown values are delivered as-is
// so new server-side event types never break older clients.
type EventType string

const (
	EventTaskProgress     EventType = "task-progress"
	EventSnapshotProgress EventType = "snapshot-progress"
	EventError            EventType = "error"
	EventNotification     EventType = "notification"
)

// Event is one push message from the daemon's /api/events channel.
type Event struct {
	Type       EventType `json:"type"`
	TaskID     string    `json:"taskId,omitempty"`
	SourcePath string    `json:"sourcePath,omitempty"`
	Message    string    `json:"message,omitempty"`
}

// EventStream is a live push channel. Events are delivered on Events();
// the channel is closed when the connection drops or Close is called.
type EventStream interface {
	Events() <-chan Event
	Close() error
}

// wsStream is the websocket-backed EventStream.
type wsStream struct {
	conn   *websocket.Conn
	events chan Event

	closeOnce sync.Once
}

func (s *wsStream) Events() <-chan Event {
	return s.events
}

// Close tears the connection down. Safe to call more than once and
// concurrently with the read loop.
func (s *wsStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.conn.Close()
	})
	return err
}

// DialEvents opens the websocket push channel. It fails with
// ErrNoCredentials when the client was built without credentials, since the
// daemon only accepts authenticated event subscribers.
func (c *Client) DialEvents(ctx context.Context) (EventStream, error) {
	if c.username == "" {
		return nil, ErrNoCredentials
	}

	wsURL := *c.baseURL
	switch wsURL.Scheme {
	case "https":
		wsURL.Scheme = "wss"
	default:
		wsURL.Scheme = "ws"
	}
	wsURL.Path = "/api/events"

	header := http.Header{}
	header.Set("User-Agent", c.userAgent)
	header.Set("Authorization", basicAuth(c.username, c.password))

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL.String(), header)
	if err != nil {
		if resp != nil {
			var envelope errorBody
			_ = json.NewDecoder(resp.Body).Decode(&envelope)
			_ = resp.Body.Close()
			return nil, statusError(resp.StatusCode, envelope)
		}
		return nil, Classify(err)
	}

	stream := &wsStream{
		conn:   conn,
		events: make(chan Event, 16),
	}
	go stream.readLoop()
	return stream, nil
}

// readLoop pumps decoded events until the connection dies, then closes the
// delivery channel so consumers observe the disconnect.
func (s *wsStream) readLoop() {
	defer close(s.events)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			_ = s.Close()
			return
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			// Malformed frame; skip rather than kill the stream.
			continue
		}
		s.events <- ev
	}
}

func basicAuth(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}
