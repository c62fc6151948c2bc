package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"microblog/internal/friends"
	"microblog/internal/observability"
	"microblog/internal/repositories"
	"microblog/internal/telemetry"
)

type friendService interface {
	GetFriends(ctx context.Context, me string) ([]string, error)
	AddFriend(ctx context.Context, me, user string) ([]string, error)
	RemoveFriend(ctx context.Context, me, user string) ([]string, error)
	Initialize(ctx context.Context) error
}

// FriendHandler serves the friends service JSON API.
type FriendHandler struct {
	svc   friendService
	audit *telemetry.AuditEmitter
}

// NewFriendHandler builds a FriendHandler.
func NewFriendHandler(svc friendService, audit *telemetry.AuditEmitter) *FriendHandler {
	return &FriendHandler{svc: svc, audit: audit}
}

type friendRequest struct {
	User string `json:"user" form:"user"`
}

// Initialize handles GET /initialize.
func (h *FriendHandler) Initialize(c *gin.Context) {
	if err := h.svc.Initialize(c.Request.Context()); err != nil {
		log.Printf("friends initialize failed: %v", err)
		emitAudit(h.audit, c, "ERROR", "initialize", "seed failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "initialize failed"})
		return
	}
	emitAudit(h.audit, c, "INFO", "initialize", "friends table re-seeded")
	c.JSON(http.StatusOK, gin.H{})
}

// GetFriends handles GET /:me.
func (h *FriendHandler) GetFriends(c *gin.Context) {
	me := c.Param("me")
	list, err := h.svc.GetFriends(c.Request.Context(), me)
	if err != nil {
		h.fail(c, me, "", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": list})
}

// AddFriend handles POST /:me.
func (h *FriendHandler) AddFriend(c *gin.Context) {
	me := c.Param("me")
	user, ok := bindFriend(c)
	if !ok {
		return
	}

	list, err := h.svc.AddFriend(c.Request.Context(), me, user)
	if err != nil {
		h.fail(c, me, user, err)
		return
	}
	observability.IncFriendListChange("add")
	emitAudit(h.audit, c, "INFO", "add", me+" added "+user)
	c.JSON(http.StatusOK, gin.H{"friends": list})
}

// RemoveFriend handles DELETE /:me.
func (h *FriendHandler) RemoveFriend(c *gin.Context) {
	me := c.Param("me")
	user, ok := bindFriend(c)
	if !ok {
		return
	}

	list, err := h.svc.RemoveFriend(c.Request.Context(), me, user)
	if err != nil {
		h.fail(c, me, user, err)
		return
	}
	observability.IncFriendListChange("remove")
	emitAudit(h.audit, c, "INFO", "remove", me+" removed "+user)
	c.JSON(http.StatusOK, gin.H{"friends": list})
}

func bindFriend(c *gin.Context) (string, bool) {
	var req friendRequest
	var err error
	switch c.ContentType() {
	case binding.MIMEPOSTForm, binding.MIMEMultipartPOSTForm:
		err = c.ShouldBind(&req)
	default:
		// No Content-Type is treated as JSON.
		err = c.ShouldBindJSON(&req)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	if req.User == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user is required"})
		return "", false
	}
	return req.User, true
}

func (h *FriendHandler) fail(c *gin.Context, me, user string, err error) {
	switch {
	case errors.Is(err, repositories.ErrFriendListNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": me + " not found."})
	case errors.Is(err, friends.ErrAlreadyFriend):
		c.JSON(http.StatusBadRequest, gin.H{"error": user + " is already your friend."})
	case errors.Is(err, friends.ErrNotFriend):
		c.JSON(http.StatusBadRequest, gin.H{"error": user + " is not your friend."})
	default:
		log.Printf("friends request failed me=%s user=%s: %v", me, user, err)
		emitAudit(h.audit, c, "ERROR", "error", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
