package ws

import (
	"log"
	"time"

	"github.com/gorilla/websocket"

	"microblog/internal/observability"
)

// Subscriber describes one live timeline connection.
type Subscriber struct {
	ConnID      string
	UserName    string
	Friends     map[string]struct{}
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}

// NewFriendSet builds the author filter of a subscriber.
func NewFriendSet(friends []string) map[string]struct{} {
	set := make(map[string]struct{}, len(friends))
	for _, f := range friends {
		set[f] = struct{}{}
	}
	return set
}

// Follows reports whether tweets by author reach this subscriber.
func (s Subscriber) Follows(author string) bool {
	_, ok := s.Friends[author]
	return ok
}

// client owns the only writer of conn; gorilla connections allow a single one.
type client struct {
	conn *websocket.Conn
	sub  Subscriber
	send chan []byte
	done chan struct{}
}

func newClient(conn *websocket.Conn, sub Subscriber) *client {
	return &client{
		conn: conn,
		sub:  sub,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

// writePump drains send until the client is removed or a write fails.
func (c *client) writePump(h *Hub) {
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("websocket write error conn_id=%s user=%s: %v", c.sub.ConnID, c.sub.UserName, err)
				observability.IncWSEvent("ws_error")
				c.conn.Close()
				h.Remove(c.conn)
				return
			}
		}
	}
}
