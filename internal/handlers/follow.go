package handlers

import (
	"context"
	"log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"microblog/internal/clients"
	"microblog/internal/middleware"
	"microblog/internal/telemetry"
	"microblog/internal/ws"
)

// FollowHandler edits the caller's friend list through the friends service.
type FollowHandler struct {
	friends clients.Friends
	hub     *ws.Hub
	audit   *telemetry.AuditEmitter
}

// NewFollowHandler builds a FollowHandler.
func NewFollowHandler(friends clients.Friends, hub *ws.Hub, audit *telemetry.AuditEmitter) *FollowHandler {
	return &FollowHandler{friends: friends, hub: hub, audit: audit}
}

// Follow handles POST /follow.
func (h *FollowHandler) Follow(c *gin.Context) {
	h.change(c, "follow", h.friends.AddFriend)
}

// Unfollow handles POST /unfollow.
func (h *FollowHandler) Unfollow(c *gin.Context) {
	h.change(c, "unfollow", h.friends.RemoveFriend)
}

func (h *FollowHandler) change(c *gin.Context, action string, op func(ctx context.Context, me, user string) ([]string, error)) {
	me, ok := middleware.UserFrom(c)
	if !ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	target := c.PostForm("user")
	if target == "" {
		c.String(http.StatusBadRequest, "user is required")
		return
	}

	friends, err := op(c.Request.Context(), me.Name, target)
	if err != nil {
		log.Printf("%s failed me=%s user=%s: %v", action, me.Name, target, err)
		emitAudit(h.audit, c, "ERROR", action, action+" "+target+" failed")
		c.String(http.StatusInternalServerError, "error")
		return
	}

	h.hub.UpdateFriends(me.Name, friends)
	emitAudit(h.audit, c, "INFO", action, me.Name+" "+action+" "+target)
	c.Redirect(http.StatusFound, "/"+url.PathEscape(target))
}
