package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"microblog/internal/observability"
	"microblog/internal/timeline"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 16
)

// Hub tracks live timeline connections. A nil Hub drops every broadcast.
type Hub struct {
	clients map[*websocket.Conn]*client
	mu      sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

// Add registers conn for the tweets of sub.Friends.
func (h *Hub) Add(conn *websocket.Conn, sub Subscriber) {
	c := newClient(conn, sub)
	h.mu.Lock()
	if old, ok := h.clients[conn]; ok {
		close(old.done)
	}
	h.clients[conn] = c
	h.mu.Unlock()
	if conn != nil {
		go c.writePump(h)
	}
}

// Remove forgets conn and stops its writer.
func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(c.done)
	}
}

// Len returns the number of live connections.
func (h *Hub) Len() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// UpdateFriends replaces the author filter of every connection of userName,
// so follow and unfollow take effect without reconnecting.
func (h *Hub) UpdateFriends(userName string, friends []string) {
	if h == nil {
		return
	}
	set := NewFriendSet(friends)
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		if c.sub.UserName == userName {
			c.sub.Friends = set
		}
	}
}

// BroadcastTweet queues entry for every subscriber whose friend list contains
// its author. It never blocks: a subscriber with a full queue misses the tweet.
func (h *Hub) BroadcastTweet(entry timeline.Entry) {
	if h == nil {
		return
	}
	targets := h.recipients(entry.UserName)
	if len(targets) == 0 {
		return
	}

	payload, err := json.Marshal(entry.Event())
	if err != nil {
		log.Printf("websocket encode error: %v", err)
		return
	}
	for _, c := range targets {
		select {
		case <-c.done:
		case c.send <- payload:
			observability.IncWSEvent("ws_push")
		default:
			log.Printf("websocket queue full conn_id=%s user=%s tweet_id=%d", c.sub.ConnID, c.sub.UserName, entry.ID)
			observability.IncWSEvent("ws_dropped")
		}
	}
}

func (h *Hub) recipients(author string) []*client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		if c.sub.Follows(author) {
			out = append(out, c)
		}
	}
	return out
}
