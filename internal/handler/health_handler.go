package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// ServiceInfo describes the running service for GET /.
type ServiceInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	LineItems   []string `json:"line_items"`
	Formats     []string `json:"formats"`
	Escalation  bool     `json:"escalation"`
	Persistence bool     `json:"persistence"`
}

// HealthHandler handles health check and service info endpoints.
type HealthHandler struct {
	db   *sqlx.DB
	info ServiceInfo
}

// NewHealthHandler creates a new HealthHandler. db may be nil when persistence is off.
func NewHealthHandler(db *sqlx.DB, info ServiceInfo) *HealthHandler {
	return &HealthHandler{db: db, info: info}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "disabled"})
		return
	}
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database not reachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Info handles GET /
func (h *HealthHandler) Info(c *gin.Context) {
	RespondOK(c, h.info)
}
