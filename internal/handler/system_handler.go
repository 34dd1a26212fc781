package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SystemHandler struct {
	db      *gorm.DB
	env     string
	started time.Time
	clients func() int
}

// NewSystemHandler reports process status; clients counts live feed connections.
func NewSystemHandler(db *gorm.DB, env string, clients func() int) *SystemHandler {
	if clients == nil {
		clients = func() int { return 0 }
	}
	return &SystemHandler{db: db, env: env, started: time.Now(), clients: clients}
}

// Health handles GET /health and pings the database.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Status handles GET /api/status.
func (h *SystemHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "online",
		"environment":      h.env,
		"uptime_seconds":   int64(time.Since(h.started).Seconds()),
		"timestamp":        time.Now().UTC(),
		"feed_connections": h.clients(),
	})
}
