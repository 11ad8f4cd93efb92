package server

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/zeusync/futbolin/internal/core/observability/log"
)

// requestLogger logs one line per request through the service logger.
func requestLogger(logger log.Log) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []log.Field{
			log.String("method", c.Request.Method),
			log.String("path", c.FullPath()),
			log.Int("status", status),
			log.Duration("latency", time.Since(start)),
		}
		if status >= http.StatusInternalServerError {
			logger.Warn("request failed", fields...)
			return
		}
		logger.Debug("request", fields...)
	}
}

// corsMiddleware allows every origin when none are configured.
func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Length", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// websocketOriginCheck rejects websocket upgrades from origins outside the
// allow list. An empty list accepts everything.
func websocketOriginCheck(origins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(origins) == 0 || !isUpgrade(c.Request) {
			c.Next()
			return
		}
		origin := c.GetHeader("Origin")
		if origin == "" || !slices.Contains(origins, origin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": ErrOriginNotAllowed.Error()})
			return
		}
		c.Next()
	}
}

func isUpgrade(r *http.Request) bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade") &&
		strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}
