package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/content"
	"storefront/internal/session"
	"storefront/internal/sitemap"
	"storefront/internal/storefront"
	"storefront/internal/wix"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// upstream is everything the storefront needs from Wix. Both the real client
// and the in-memory mock satisfy it.
type upstream interface {
	catalog.Source
	cart.Upstream
	content.Source
	session.Issuer
}

func newUpstream(cfg *config.Config) (upstream, error) {
	if cfg.Mocks.Enable {
		slog.Info("using in-memory Wix mock")
		return wix.NewMock(), nil
	}
	if !cfg.Wix.Enabled() {
		return nil, errors.New("WIX_CLIENT_ID or WIX_API_KEY is required unless MOCKS=true")
	}
	return wix.NewClient(cfg.Wix)
}

func newHandler(cfg *config.Config, up upstream) http.Handler {
	catalogSvc := catalog.NewService(up, cfg.Store)
	sessions := session.NewManager(up, cfg.Session)

	contentSvc := content.NewService(up, cfg.Store)

	mux := http.NewServeMux()
	storefront.NewServer(
		catalogSvc,
		cart.NewService(up, cfg.Store),
		contentSvc,
		sessions.Middleware,
		cfg.Store,
	).Register(mux)
	sitemap.New(catalogSvc, contentSvc, cfg.Store.PublicURL, sessions.Middleware).Register(mux)

	ro := &readyOnce{}
	ro.Add(catalogSvc)
	mux.Handle("/ready", ro)
	mux.Handle("/metrics", promhttp.Handler())

	return WithMiddleware(mux)
}

func runServer(cfg *config.Config, addr string) error {
	up, err := newUpstream(cfg)
	if err != nil {
		return fmt.Errorf("failed to create Wix client: %w", err)
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           newHandler(cfg, up),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("Serving storefront", "address", addr)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-shutdown:
		slog.Info("Shutdown signal received", "signal", sig)
		return gracefulShutdown(server)
	}
}

func gracefulShutdown(svr *http.Server) error {
	// kubernetes grants 30 seconds
	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := svr.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown error", "error", err)
		if closeErr := svr.Close(); closeErr != nil {
			slog.Error("Server close error", "error", closeErr)
		}
		return err
	}
	return nil
}
