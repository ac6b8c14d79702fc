package handlers

import (
	"net/http"

	"github.com/formworks/formworks/internal/store"
	"github.com/gin-gonic/gin"
)

// HealthHandler serves liveness checks.
type HealthHandler struct {
	st store.Store
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(st store.Store) *HealthHandler {
	return &HealthHandler{st: st}
}

// Healthz reports process and backing-store health.
func (h *HealthHandler) Healthz(c *gin.Context) {
	if errPing := h.st.Ping(c.Request.Context()); errPing != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
