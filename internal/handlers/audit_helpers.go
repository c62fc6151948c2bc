package handlers

import (
	"github.com/gin-gonic/gin"

	"microblog/internal/middleware"
	"microblog/internal/telemetry"
)

func requestIDFromContext(c *gin.Context) string {
	return middleware.RequestIDFrom(c)
}

// actorFromContext names the acting user: the session user on the microblog
// side, the :me path segment on the friends side.
func actorFromContext(c *gin.Context) *string {
	if user, ok := middleware.UserFrom(c); ok {
		name := user.Name
		return &name
	}
	if me := c.Param("me"); me != "" {
		return &me
	}
	return nil
}

func emitAudit(audit *telemetry.AuditEmitter, c *gin.Context, level, action, text string) {
	if audit == nil {
		return
	}
	audit.Emit(c.Request.Context(), level, action, text, requestIDFromContext(c), actorFromContext(c))
}
