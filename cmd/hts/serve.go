package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/hts-classify/internal/api"
	"github.com/Veraticus/hts-classify/internal/certs"
	"github.com/Veraticus/hts-classify/internal/config"
	"github.com/Veraticus/hts-classify/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 10 * time.Second
	pruneInterval   = time.Hour
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the classifier over HTTP",
		Long: `Start the HTTP API.

Routes:
  POST /api/classify        {"session_id": "...", "message": "..."}
  POST /api/session/clear   {"session_id": "..."}
  GET  /api/duty/:code      ?main=<main article code>
  GET  /api/search          ?q=<description>&limit=<n>
  GET  /api/health
  GET  /metrics`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (default: server.addr)")
	cmd.Flags().Bool("tls", false, "Serve HTTPS with a self-signed localhost certificate")
	cmd.Flags().String("cert-dir", "", "Directory for the generated certificate (default: server.cert_dir)")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.tls", cmd.Flags().Lookup("tls"))
	_ = viper.BindPFlag("server.cert_dir", cmd.Flags().Lookup("cert-dir"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	m := metrics.New(metrics.WithRuntimeCollectors())
	a, err := newApp(cmd.Context(), cfg, m)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.withClassifier(cmd.Context()); err != nil {
		return err
	}
	if err := m.RegisterDB(a.store.DB(), "hts"); err != nil {
		return fmt.Errorf("failed to register database metrics: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	srv := api.New(a.manager, a.resolver, a.searcher,
		api.WithMetrics(m),
		api.WithOracleMode(a.oracleMode()))
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	if cfg.Server.TLS {
		store := certs.NewStore(cfg.Server.CertDir)
		tlsConfig, err := store.TLSConfig()
		if err != nil {
			return fmt.Errorf("failed to prepare TLS certificate: %w", err)
		}
		server.TLSConfig = tlsConfig
		slog.Info("Serving with self-signed certificate", "cert", store.CertFile())
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		slog.Info("HTTP server listening",
			"addr", cfg.Server.Addr,
			"entries", a.resolver.Index().Len(),
			"oracle", a.oracleMode(),
			"sessions", cfg.Session.Backend,
			"tls", server.TLSConfig != nil)
		if err := listen(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if cfg.Session.Backend == config.BackendSQLite {
		g.Go(func() error {
			pruneSessions(ctx, a, cfg.Session.TTL)
			return nil
		})
	}

	return g.Wait()
}

// listen serves HTTPS when the server carries a TLS configuration.
func listen(server *http.Server) error {
	if server.TLSConfig != nil {
		return server.ListenAndServeTLS("", "")
	}
	return server.ListenAndServe()
}

// pruneSessions removes expired SQLite sessions until ctx ends. The memory
// and Redis backends expire sessions on their own.
func pruneSessions(ctx context.Context, a *app, ttl time.Duration) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := a.store.PruneSessions(ctx, time.Now().Add(-ttl))
			if err != nil {
				slog.Warn("Failed to prune sessions", "error", err)
				continue
			}
			if removed > 0 {
				slog.Info("Pruned expired sessions", "removed", removed)
			}
		}
	}
}
