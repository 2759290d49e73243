package ws

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/meetpipe/meeting-gateway/internal/util"
)

// Conn is the slice of *websocket.Conn a session uses. Tests inject fakes.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Session is one live push-channel connection. Writes are serialized with a
// mutex because gorilla conns allow only one concurrent writer.
type Session struct {
	id   string
	conn Conn

	mu sync.Mutex
}

func NewSession(conn Conn) *Session {
	return &Session{id: util.New(), conn: conn}
}

func (s *Session) ID() string { return s.id }

// Send writes one text frame. Errors (closed conn, broken pipe) are returned
// to the caller; the session itself stays registered until the read loop or
// the hub removes it.
func (s *Session) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Session) Close() error { return s.conn.Close() }
