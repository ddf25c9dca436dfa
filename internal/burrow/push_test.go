package burrow

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newEventServer(t *testing.T, frames []string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/events" {
			http.NotFound(w, r)
			return
		}
		if _, _, ok := r.BasicAuth(); !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		for _, frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				break
			}
		}
		_ = conn.Close()
	}))
	t.Cleanup(server.Close)
	return server
}

func TestDialEvents_RequiresCredentials(t *testing.T) {
	c, err := NewClient("127.0.0.1:1", "", "")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.DialEvents(context.Background())
	if err != ErrNoCredentials {
		t.Fatalf("DialEvents without credentials = %v, want ErrNoCredentials", err)
	}
}

func TestDialEvents_DeliversEventsAndClosesOnDisconnect(t *testing.T) {
	t.Parallel()

	frames := []string{
		`{"type":"task-progress","taskId":"t1"}`,
		`not json at all`,
		`{"type":"some-future-thing"}`,
		`{"type":"snapshot-progress","sourcePath":"/home"}`,
	}
	server := newEventServer(t, frames)

	c, err := NewClient(server.URL, "admin", "hunter2")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	stream, err := c.DialEvents(ctx)
	if err != nil {
		t.Fatalf("DialEvents returned error: %v", err)
	}
	t.Cleanup(func() { _ = stream.Close() })

	var got []Event
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-stream.Events():
			if !ok {
				// Disconnect observed; the malformed frame must have been
				// skipped, everything else delivered in order.
				if len(got) != 3 {
					t.Fatalf("events = %#v, want 3", got)
				}
				if got[0].Type != EventTaskProgress || got[0].TaskID != "t1" {
					t.Fatalf("first event = %#v", got[0])
				}
				if got[1].Type != EventType("some-future-thing") {
					t.Fatalf("unknown event type not preserved: %#v", got[1])
				}
				if got[2].Type != EventSnapshotProgress || got[2].SourcePath != "/home" {
					t.Fatalf("third event = %#v", got[2])
				}
				return
			}
			got = append(got, ev)
		case <-deadline:
			t.Fatalf("timed out waiting for events; got %#v", got)
		}
	}
}

func TestDialEvents_AuthRejectionIsClassified(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, "admin", "wrong")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.DialEvents(context.Background())
	apiErr := Classify(err)
	if apiErr == nil || apiErr.Kind != KindAuth {
		t.Fatalf("DialEvents auth failure = %v, want auth kind", err)
	}
}
