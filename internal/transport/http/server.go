package http

import (
	"context"
	"net"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-irc/internal/auth"
	"github.com/vovakirdan/wirechat-irc/internal/config"
	"github.com/vovakirdan/wirechat-irc/internal/core"
	"github.com/vovakirdan/wirechat-irc/internal/store"
)

// NewServer builds the HTTP server: health check, WebSocket bridge and
// the operator status API. Request contexts derive from ctx so that
// cancelling it ends WebSocket sessions.
func NewServer(ctx context.Context, hub *core.Hub, journal store.Journal, authService *auth.Service, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	return &stdhttp.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(hub, journal, authService, cfg, logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
}

func newRouter(hub *core.Hub, journal store.Journal, authService *auth.Service, cfg config.Config, logger *zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, WSOptions{
		MaxLineBytes: cfg.MaxLineBytes,
		WriteTimeout: cfg.WriteTimeout,
	}, logger)))

	status := NewStatusHandlers(hub, journal, logger)
	authHandlers := NewAuthHandlers(authService, logger)

	api := router.Group("/api")
	api.POST("/token", authHandlers.Token)

	protected := api.Group("")
	if authService.Enabled() {
		protected.Use(AdminAuth(authService, logger))
	} else {
		logger.Warn().Msg("admin_jwt_secret not set, status API is unauthenticated")
	}
	protected.GET("/stats", status.Stats)
	protected.GET("/channels", status.ListChannels)
	protected.GET("/channels/:name", status.GetChannel)
	protected.GET("/clients", status.ListClients)
	protected.GET("/clients/:nick", status.GetClient)
	protected.GET("/sessions", status.ListSessions)

	return router
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
