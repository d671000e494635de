package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/wirechat-irc/internal/auth"
	"github.com/vovakirdan/wirechat-irc/internal/config"
	"github.com/vovakirdan/wirechat-irc/internal/core"
	"github.com/vovakirdan/wirechat-irc/internal/store"
	"github.com/vovakirdan/wirechat-irc/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/wirechat-irc/internal/transport/http"
	"github.com/vovakirdan/wirechat-irc/internal/transport/tcp"
)

// App wires together core, storage and transport layers.
type App struct {
	cfg             *config.Config
	hub             *core.Hub
	journal         store.Journal
	authService     *auth.Service
	tcp             *tcp.Server
	shutdownTimeout time.Duration
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	journal := store.Discard
	if cfg.DatabasePath != "" {
		st, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("init store: %w", err)
		}
		journal = st
		logger.Info().Str("db_path", cfg.DatabasePath).Msg("session journal enabled")
	}

	hub := core.NewHub(core.Options{
		ServerName:   cfg.ServerName,
		OutboxBytes:  cfg.OutboxBytes,
		WriteTimeout: cfg.WriteTimeout,
		FlushTimeout: cfg.WriteTimeout,
		Journal:      journal,
	}, logger)

	tcpServer := tcp.NewServer(tcp.Options{
		Addr:            cfg.Addr,
		MaxLineBytes:    cfg.MaxLineBytes,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, hub, logger)

	return &App{
		cfg:             cfg,
		hub:             hub,
		journal:         journal,
		authService:     NewAuthService(cfg),
		tcp:             tcpServer,
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}, nil
}

// NewAuthService builds the operator token service from configuration.
func NewAuthService(cfg *config.Config) *auth.Service {
	return auth.NewService(&auth.JWTConfig{
		Secret:   []byte(cfg.AdminJWTSecret),
		Issuer:   cfg.AdminJWTIssuer,
		Audience: auth.DefaultAudience,
		TTL:      cfg.AdminTokenTTL,
	}, cfg.AdminPasswordHash)
}

// Run starts the relay listener and, when configured, the HTTP server.
// It blocks until ctx is cancelled or a listener fails.
func (a *App) Run(ctx context.Context) error {
	defer a.cleanup()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.tcp.Serve(ctx)
	})

	if a.cfg.HTTPAddr != "" {
		server := transporthttp.NewServer(ctx, a.hub, a.journal, a.authService, *a.cfg, a.log)
		g.Go(func() error {
			a.log.Info().Str("addr", server.Addr).Msg("http server listening")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
			defer cancel()

			a.log.Info().Msg("shutting down http server")
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("http shutdown: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if err := a.journal.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close store")
		return
	}
	if a.cfg.DatabasePath != "" {
		a.log.Info().Msg("store closed")
	}
}
