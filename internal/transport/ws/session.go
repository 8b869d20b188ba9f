package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// session serializes writes to one engine connection.
type session struct {
	mu           sync.Mutex
	conn         *websocket.Conn
	writeTimeout time.Duration
	closed       bool
	replaced     bool
}

func (s *session) write(env Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrNotAttached
	}
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		return err
	}
	return s.conn.WriteJSON(env)
}

func (s *session) isReplaced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaced
}

func (s *session) replace() {
	s.mu.Lock()
	s.replaced = true
	s.mu.Unlock()
	s.closeWith(websocket.ClosePolicyViolation, "replaced by a newer engine connection")
}

func (s *session) goingAway() {
	s.closeWith(websocket.CloseGoingAway, "bridge shutting down")
}

func (s *session) closeWith(code int, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	msg := websocket.FormatCloseMessage(code, reason)
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	_ = s.conn.Close()
}

func (s *session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	_ = s.conn.Close()
}
