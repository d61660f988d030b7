// Package live maintains the push-delivery channel: a websocket event
// protocol, a reconnecting coordinator, and the in-memory feed it serves.
package live

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	EventNewAnnouncement = "new_announcement"
	EventJoin            = "join"
	EventLeave           = "leave"
)

// Event is a single frame on the live channel.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Conn is the minimal surface the coordinator needs from a live connection.
type Conn interface {
	ReadEvent() (Event, error)
	WriteEvent(Event) error
	Close() error
}

// DialFunc opens a live connection. The coordinator calls it on every
// connect attempt.
type DialFunc func(ctx context.Context) (Conn, error)

type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) ReadEvent() (Event, error) {
	var ev Event
	if err := c.conn.ReadJSON(&ev); err != nil {
		return Event{}, err
	}
	return ev, nil
}

func (c *wsConn) WriteEvent(ev Event) error {
	return c.conn.WriteJSON(ev)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

// Dialer returns a DialFunc for the given websocket URL.
func Dialer(url string, handshakeTimeout time.Duration) DialFunc {
	dialer := &websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	return func(ctx context.Context) (Conn, error) {
		conn, resp, err := dialer.DialContext(ctx, url, nil)
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		if err != nil {
			return nil, err
		}
		return &wsConn{conn: conn}, nil
	}
}

type roomPayload struct {
	Room string `json:"room"`
}

func roomEvent(event, room string) Event {
	data, _ := json.Marshal(roomPayload{Room: room})
	return Event{Event: event, Data: data}
}
