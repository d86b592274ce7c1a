package server

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Iron-Ham/buildview/internal/event"
	"github.com/Iron-Ham/buildview/internal/logging"
)

// streamBuffer is how many messages a slow client may lag behind before
// messages are dropped for it.
const streamBuffer = 256

// Message is one server-sent event.
type Message struct {
	Type string
	Data string
}

type envelope struct {
	Type string      `json:"type"`
	Time time.Time   `json:"time"`
	Data event.Event `json:"data"`
}

// Stream fans bus events out to server-sent event clients. Publishing
// never blocks: a client whose buffer is full misses the message.
type Stream struct {
	bus    *event.Bus
	subID  string
	logger *logging.Logger

	mu      sync.Mutex
	clients map[chan Message]struct{}
	closed  bool
}

// NewStream subscribes a Stream to every event on bus. A nil bus gives a
// stream that only carries what Broadcast sends.
func NewStream(bus *event.Bus, logger *logging.Logger) *Stream {
	if logger == nil {
		logger = logging.NopLogger()
	}
	s := &Stream{
		bus:     bus,
		logger:  logger,
		clients: make(map[chan Message]struct{}),
	}
	if bus != nil {
		s.subID = bus.SubscribeAll(s.publish)
	}
	return s
}

func (s *Stream) publish(e event.Event) {
	payload, err := json.Marshal(envelope{Type: e.EventType(), Time: e.Timestamp(), Data: e})
	if err != nil {
		s.logger.Warn("cannot encode event", "event", e.EventType(), "error", err)
		return
	}
	s.Broadcast(Message{Type: e.EventType(), Data: string(payload)})
}

// Broadcast sends m to every client.
func (s *Stream) Broadcast(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.clients {
		select {
		case ch <- m:
		default:
		}
	}
}

// Subscribe registers a client. The channel is closed by cancel or Close.
func (s *Stream) Subscribe() (<-chan Message, func()) {
	ch := make(chan Message, streamBuffer)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	s.clients[ch] = struct{}{}
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.clients[ch]; ok {
			delete(s.clients, ch)
			close(ch)
		}
	}
}

// Clients returns the number of connected clients.
func (s *Stream) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Close unsubscribes from the bus and disconnects every client.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.bus != nil {
		s.bus.Unsubscribe(s.subID)
	}
	for ch := range s.clients {
		delete(s.clients, ch)
		close(ch)
	}
}

func (s *Server) handleEvents(c *gin.Context) {
	ch, cancel := s.stream.Subscribe()
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	snap, err := json.Marshal(s.runner.Snapshot())
	if err == nil {
		c.SSEvent("state", string(snap))
		c.Writer.Flush()
	}

	keepalive := time.NewTicker(15 * time.Second)
	defer keepalive.Stop()

	ctx := c.Request.Context()
	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case m, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(m.Type, m.Data)
			return true
		case <-keepalive.C:
			c.SSEvent("ping", "{}")
			return true
		}
	})
}
