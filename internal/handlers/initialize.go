package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"microblog/internal/clients"
	"microblog/internal/repositories"
	"microblog/internal/telemetry"
)

// InitializeHandler restores the microblog fixtures and asks the friends
// service to do the same.
type InitializeHandler struct {
	tweets       repositories.TweetRepository
	users        repositories.UserRepository
	friends      clients.Friends
	tweetCeiling int
	userCeiling  int
	audit        *telemetry.AuditEmitter
}

// NewInitializeHandler builds an InitializeHandler. Rows with ids above the
// ceilings are deleted.
func NewInitializeHandler(tweets repositories.TweetRepository, users repositories.UserRepository, friends clients.Friends, tweetCeiling, userCeiling int, audit *telemetry.AuditEmitter) *InitializeHandler {
	return &InitializeHandler{
		tweets:       tweets,
		users:        users,
		friends:      friends,
		tweetCeiling: tweetCeiling,
		userCeiling:  userCeiling,
		audit:        audit,
	}
}

// Initialize handles GET /initialize.
func (h *InitializeHandler) Initialize(c *gin.Context) {
	ctx := c.Request.Context()

	tweets, err := h.tweets.DeleteTweetsAbove(ctx, h.tweetCeiling)
	if err != nil {
		h.fail(c, "delete tweets", err)
		return
	}
	users, err := h.users.DeleteUsersAbove(ctx, h.userCeiling)
	if err != nil {
		h.fail(c, "delete users", err)
		return
	}
	if err := h.friends.Initialize(ctx); err != nil {
		h.fail(c, "friends initialize", err)
		return
	}

	log.Printf("initialize done tweets_deleted=%d users_deleted=%d", tweets, users)
	emitAudit(h.audit, c, "INFO", "initialize", "fixtures restored")
	c.JSON(http.StatusOK, gin.H{"result": "ok"})
}

func (h *InitializeHandler) fail(c *gin.Context, step string, err error) {
	log.Printf("initialize failed step=%s: %v", step, err)
	emitAudit(h.audit, c, "ERROR", "initialize", step+" failed")
	c.String(http.StatusInternalServerError, "error")
}
