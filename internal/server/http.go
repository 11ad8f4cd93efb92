package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zeusync/futbolin/internal/core/observability/log"
	"github.com/zeusync/futbolin/internal/game"
)

var startTime = time.Now()

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger), corsMiddleware(s.cfg.Server.AllowedOrigins))

	r.GET("/healthz", s.handleHealth)

	api := r.Group("/api")
	{
		api.GET("/score", s.handleScore)
		api.GET("/snapshot", s.handleSnapshot)
		api.GET("/config", s.handleConfig)
		api.POST("/ball/reset", s.handleReset)
	}

	r.GET("/ws", websocketOriginCheck(s.cfg.Server.AllowedOrigins), s.hub.handleWebSocket)
	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	snap := s.sim.Latest()
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "futbolin",
		"uptime":  time.Since(startTime).String(),
		"tick":    snap.Tick,
		"clients": s.hub.Len(),
	})
}

type scoreResponse struct {
	A        int    `json:"a"`
	B        int    `json:"b"`
	TextureA string `json:"texture_a"`
	TextureB string `json:"texture_b"`
}

func (s *Server) handleScore(c *gin.Context) {
	score := s.sim.Latest().Score
	c.JSON(http.StatusOK, scoreResponse{
		A:        score.A,
		B:        score.B,
		TextureA: score.TextureA,
		TextureB: score.TextureB,
	})
}

func (s *Server) handleSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, s.sim.Latest())
}

func (s *Server) handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, s.cfg)
}

// handleReset is the manual reset button.
func (s *Server) handleReset(c *gin.Context) {
	err := s.sim.Submit(game.Command{Kind: game.CmdResetBall})
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
	case errors.Is(err, game.ErrQueueFull), errors.Is(err, game.ErrRunnerDone):
		s.logger.Warn("reset rejected", log.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": ErrSimulationBusy.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
