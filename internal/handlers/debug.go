package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"microblog/internal/rabbitmq"
	"microblog/internal/telemetry"
	"microblog/internal/ws"
)

// DebugState is what /debug/state reports. Hub is nil on the friends service.
type DebugState struct {
	Service   string
	Publisher rabbitmq.Publisher
	Hub       *ws.Hub
}

// RegisterDebugRoutes wires debug-only endpoints.
func RegisterDebugRoutes(router gin.IRouter, emitter *telemetry.AuditEmitter, state DebugState, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/state", func(c *gin.Context) {
		mode, reason := rabbitmq.Describe(state.Publisher)
		c.JSON(http.StatusOK, gin.H{
			"service":           state.Service,
			"audit_publisher":   mode,
			"audit_noop_reason": reason,
			"live_subscribers":  state.Hub.Len(),
		})
	})

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		emitAudit(emitter, c, "INFO", "debug", state.Service+" audit test")
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
