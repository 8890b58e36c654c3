// Package ws exposes the relay over HTTP: a health endpoint and the
// websocket upgrade that bridges connections to the hub.
package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/caravela-games/huntroom/internal/config"
	"github.com/caravela-games/huntroom/internal/relay"
)

// NewServer builds the relay's HTTP server.
func NewServer(hub *relay.Hub, cfg config.Config, logger *zerolog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"channels": hub.ChannelCount(),
		})
	})

	handler := NewWSHandler(hub, logger)
	router.GET("/ws", gin.WrapH(handler))

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// LoggerMiddleware logs every HTTP request after it completes.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("http request")
	}
}
