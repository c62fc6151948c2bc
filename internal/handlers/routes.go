package handlers

import (
	"github.com/gin-gonic/gin"

	"microblog/internal/middleware"
	"microblog/internal/views"
	"microblog/internal/ws"
)

// RegisterFriendsRoutes wires the friends service API.
func RegisterFriendsRoutes(router *gin.Engine, h *FriendHandler) {
	router.GET("/initialize", h.Initialize)
	router.GET("/:me", h.GetFriends)
	router.POST("/:me", h.AddFriend)
	router.DELETE("/:me", h.RemoveFriend)
}

// Microblog groups the microblog handlers.
type Microblog struct {
	Auth       *AuthHandler
	Timeline   *TimelineHandler
	Follow     *FollowHandler
	Initialize *InitializeHandler
	Live       *ws.TimelineWebSocketHandler
}

// RegisterMicroblogRoutes wires the microblog pages. Session and CurrentUser
// must already be installed on router.
func RegisterMicroblogRoutes(router *gin.Engine, m Microblog) {
	router.StaticFileFS("/css/style.css", "css/style.css", views.Public())
	router.StaticFileFS("/js/script.js", "js/script.js", views.Public())

	router.GET("/initialize", m.Initialize.Initialize)
	router.GET("/", m.Timeline.Index)
	router.POST("/login", m.Auth.Login)
	router.POST("/logout", m.Auth.Logout)
	router.GET("/search", m.Timeline.Search)
	router.GET("/hashtag/:tag", m.Timeline.Search)
	if m.Live != nil {
		router.GET("/ws/timeline", m.Live.Handle)
	}
	router.GET("/:username", m.Timeline.UserPage)

	authed := router.Group("/", middleware.RequireLogin())
	authed.POST("/", m.Timeline.PostTweet)
	authed.POST("/follow", m.Follow.Follow)
	authed.POST("/unfollow", m.Follow.Unfollow)
}
