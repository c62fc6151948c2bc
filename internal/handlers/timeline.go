package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"microblog/internal/clients"
	"microblog/internal/middleware"
	"microblog/internal/observability"
	"microblog/internal/repositories"
	"microblog/internal/telemetry"
	"microblog/internal/timeline"
	"microblog/internal/views"
	"microblog/internal/ws"
)

// TimelineHandler renders the landing page, the home timeline, user pages
// and search, and accepts new tweets.
type TimelineHandler struct {
	timeline *timeline.Service
	users    repositories.UserRepository
	friends  clients.Friends
	hub      *ws.Hub
	audit    *telemetry.AuditEmitter
}

// NewTimelineHandler builds a TimelineHandler.
func NewTimelineHandler(tl *timeline.Service, users repositories.UserRepository, friends clients.Friends, hub *ws.Hub, audit *telemetry.AuditEmitter) *TimelineHandler {
	return &TimelineHandler{timeline: tl, users: users, friends: friends, hub: hub, audit: audit}
}

// Index handles GET /.
func (h *TimelineHandler) Index(c *gin.Context) {
	user, ok := middleware.UserFrom(c)
	if !ok {
		c.HTML(http.StatusOK, "index", views.Page{Flashes: middleware.TakeFlashes(c)})
		return
	}

	until, ok := parseUntil(c)
	if !ok {
		return
	}
	friends, err := friendsOf(c.Request.Context(), h.friends, user.Name)
	if err != nil {
		log.Printf("timeline friends failed user=%s: %v", user.Name, err)
		c.String(http.StatusInternalServerError, "error")
		return
	}

	entries, err := h.timeline.Home(c.Request.Context(), friends, until)
	if err != nil {
		log.Printf("timeline load failed user=%s: %v", user.Name, err)
		c.String(http.StatusInternalServerError, "error")
		return
	}
	h.render(c, "index", views.Page{Name: user.Name, Tweets: entries})
}

// PostTweet handles POST /. Anonymous callers never reach it.
func (h *TimelineHandler) PostTweet(c *gin.Context) {
	user, ok := middleware.UserFrom(c)
	text := c.PostForm("text")
	if !ok || text == "" {
		c.Redirect(http.StatusFound, "/")
		return
	}

	entry, err := h.timeline.Post(c.Request.Context(), user, text)
	if err != nil {
		log.Printf("tweet insert failed user=%s: %v", user.Name, err)
		c.String(http.StatusInternalServerError, "error")
		return
	}
	observability.IncTweetPosted()
	emitAudit(h.audit, c, "INFO", "tweet", "tweet posted")
	h.hub.BroadcastTweet(entry)
	c.Redirect(http.StatusFound, "/")
}

// UserPage handles GET /:username.
func (h *TimelineHandler) UserPage(c *gin.Context) {
	name := c.Param("username")
	target, err := h.users.GetUserByName(c.Request.Context(), name)
	if errors.Is(err, repositories.ErrUserNotFound) {
		c.String(http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		log.Printf("user lookup failed name=%s: %v", name, err)
		c.String(http.StatusInternalServerError, "error")
		return
	}

	until, ok := parseUntil(c)
	if !ok {
		return
	}

	page := views.Page{User: target.Name}
	if viewer, ok := middleware.UserFrom(c); ok {
		page.Name = viewer.Name
		page.MyPage = viewer.Name == target.Name
		friends, err := friendsOf(c.Request.Context(), h.friends, viewer.Name)
		if err != nil {
			log.Printf("user page friends failed user=%s: %v", viewer.Name, err)
			c.String(http.StatusInternalServerError, "error")
			return
		}
		for _, f := range friends {
			if f == target.Name {
				page.IsFriend = true
				break
			}
		}
	}

	entries, err := h.timeline.ForUser(c.Request.Context(), target, until)
	if err != nil {
		log.Printf("user tweets failed name=%s: %v", name, err)
		c.String(http.StatusInternalServerError, "error")
		return
	}
	page.Tweets = entries
	h.render(c, "user", page)
}

// Search handles GET /search and GET /hashtag/:tag.
func (h *TimelineHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if tag := c.Param("tag"); tag != "" {
		query = "#" + tag
	}
	until, ok := parseUntil(c)
	if !ok {
		return
	}

	entries, err := h.timeline.Search(c.Request.Context(), query, until)
	if err != nil {
		log.Printf("search failed q=%q: %v", query, err)
		c.String(http.StatusInternalServerError, "error")
		return
	}

	page := views.Page{Query: query, Tweets: entries}
	if viewer, ok := middleware.UserFrom(c); ok {
		page.Name = viewer.Name
	}
	h.render(c, "search", page)
}

// render writes the full page, or only the tweets when append is set.
func (h *TimelineHandler) render(c *gin.Context, name string, page views.Page) {
	if c.Query("append") != "" {
		c.HTML(http.StatusOK, "_tweets", views.Page{Tweets: page.Tweets})
		return
	}
	c.HTML(http.StatusOK, name, page)
}

func parseUntil(c *gin.Context) (*time.Time, bool) {
	until, err := timeline.ParseUntil(c.Query("until"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid until")
		return nil, false
	}
	return until, true
}

// friendsOf loads the friend list of name. A friends service that cannot be
// reached yields an empty list; any other failure is returned.
func friendsOf(ctx context.Context, friends clients.Friends, name string) ([]string, error) {
	list, err := friends.GetFriends(ctx, name)
	if errors.Is(err, clients.ErrTransport) || errors.Is(err, clients.ErrBadResponse) {
		log.Printf("friends lookup degraded user=%s: %v", name, err)
		return []string{}, nil
	}
	return list, err
}
