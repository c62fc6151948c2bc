package ws

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"microblog/internal/clients"
	"microblog/internal/middleware"
	"microblog/internal/observability"
)

// TimelineWebSocketHandler serves GET /ws/timeline.
type TimelineWebSocketHandler struct {
	hub     *Hub
	friends clients.Friends
}

// NewTimelineWebSocketHandler constructs a TimelineWebSocketHandler.
func NewTimelineWebSocketHandler(hub *Hub, friends clients.Friends) *TimelineWebSocketHandler {
	return &TimelineWebSocketHandler{hub: hub, friends: friends}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades an authenticated request and subscribes it to the tweets of
// the caller's friends. The stream is push only; inbound frames are ignored.
func (h *TimelineWebSocketHandler) Handle(c *gin.Context) {
	user, ok := middleware.UserFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	ctx, span := otel.Tracer("microblog/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()

	// Subscribing without friends is harmless; follow updates the filter later.
	friends, err := h.friends.GetFriends(ctx, user.Name)
	if err != nil {
		log.Printf("ws friends lookup failed user=%s: %v", user.Name, err)
		friends = nil
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	sub := Subscriber{
		ConnID:      uuid.NewString(),
		UserName:    user.Name,
		Friends:     NewFriendSet(friends),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   middleware.RequestIDFrom(c),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.Add(conn, sub)
	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	log.Printf("ws connect conn_id=%s user=%s request_id=%s", sub.ConnID, sub.UserName, sub.RequestID)

	go func() {
		defer func() {
			h.hub.Remove(conn)
			observability.DecWSActive()
			observability.IncWSEvent("ws_disconnect")
			log.Printf("ws disconnect conn_id=%s duration_ms=%d", sub.ConnID, time.Since(sub.ConnectedAt).Milliseconds())
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent("ws_error")
				}
				return
			}
		}
	}()
}
