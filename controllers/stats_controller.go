package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/luntan/services"
	"github.com/cppla/luntan/utils"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatsController provides forum statistics and the health probe.
type StatsController struct {
	stats *services.StatsService
	db    Pinger
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(stats *services.StatsService, db Pinger) *StatsController {
	return &StatsController{stats: stats, db: db}
}

// GetStats returns aggregate statistics for the forum.
func (s *StatsController) GetStats(ctx *gin.Context) {
	st, err := s.stats.Overview(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, st)
}

// Health answers 200 while the database responds.
func (s *StatsController) Health(ctx *gin.Context) {
	c, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.db.Ping(c); err != nil {
		_ = ctx.Error(err)
		utils.Error(ctx, http.StatusServiceUnavailable, 50300, "database unavailable")
		return
	}
	utils.Success(ctx, gin.H{"status": "ok"})
}
