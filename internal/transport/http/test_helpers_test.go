package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vovakirdan/wirechat-irc/internal/auth"
	"github.com/vovakirdan/wirechat-irc/internal/config"
	"github.com/vovakirdan/wirechat-irc/internal/core"
	applog "github.com/vovakirdan/wirechat-irc/internal/log"
	"github.com/vovakirdan/wirechat-irc/internal/store"
)

const testSecret = "test-secret-change-me"

type testServer struct {
	*httptest.Server
	hub *core.Hub
}

// startTestServer serves the full router. A nil authService leaves the API open.
func startTestServer(t *testing.T, journal store.Journal, authService *auth.Service) *testServer {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := applog.Nop()
	hub := core.NewHub(core.Options{ServerName: "irc.test", Journal: journal}, logger)
	if authService == nil {
		authService = auth.NewService(&auth.JWTConfig{}, "")
	}

	cfg := config.Default()
	cfg.HTTPAddr = "127.0.0.1:0"
	cfg.ReadHeaderTimeout = time.Second
	server := NewServer(ctx, hub, journal, authService, cfg, logger)

	ts := httptest.NewUnstartedServer(server.Handler)
	ts.Config.BaseContext = server.BaseContext
	ts.Start()
	t.Cleanup(ts.Close)

	return &testServer{Server: ts, hub: hub}
}

func newAuthService(t *testing.T, password string) *auth.Service {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return auth.NewService(&auth.JWTConfig{
		Secret:   []byte(testSecret),
		Issuer:   "test",
		Audience: auth.DefaultAudience,
		TTL:      time.Hour,
	}, hash)
}
