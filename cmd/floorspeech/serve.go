package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/floorspeech/pkg/api"
	"github.com/hazyhaar/floorspeech/pkg/chassis"
	"github.com/hazyhaar/floorspeech/pkg/importer"
	"github.com/hazyhaar/floorspeech/pkg/metrics"
	"github.com/hazyhaar/floorspeech/pkg/roster"
)

const version = "0.1.0"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API (and HTTP/3 + MCP over QUIC with tls enabled)",
	Long: `Serve the segmentation and attribution endpoints over HTTP. With tls
enabled the same port also accepts QUIC for HTTP/3 and MCP clients.
SIGHUP reloads the rosters.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// newService builds the endpoint service shared by serve and mcp.
func newService(m *metrics.Metrics) (*api.Service, error) {
	reg, err := loadRosters()
	if err != nil {
		return nil, err
	}
	p, err := newPipeline(reg, m)
	if err != nil {
		return nil, err
	}
	return &api.Service{Pipeline: p, Rosters: reg, Metrics: m, Logger: logger}, nil
}

func newMCPServer(svc *api.Service) *server.MCPServer {
	srv := server.NewMCPServer("floorspeech", version, server.WithToolCapabilities(false))
	api.RegisterMCPTools(srv, svc)
	return srv
}

func runServe(_ *cobra.Command, _ []string) error {
	m := metrics.New()
	svc, err := newService(m)
	if err != nil {
		return err
	}
	router := api.NewRouter(svc)

	// SIGINT/SIGTERM: graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go reloadOnHUP(ctx, svc.Rosters)
	startChecker(ctx)

	if cfg.TLS {
		ch, err := chassis.New(chassis.Config{
			Addr:      cfg.Addr,
			CertFile:  cfg.CertFile,
			KeyFile:   cfg.KeyFile,
			Handler:   router,
			MCPServer: newMCPServer(svc),
			Logger:    logger,
		})
		if err != nil {
			return err
		}
		err = ch.Start(ctx)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return errors.Join(err, ch.Stop(shutdownCtx))
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("floorspeech listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// reloadOnHUP reloads rosters on SIGHUP until ctx ends.
func reloadOnHUP(ctx context.Context, reg *roster.Registry) {
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	defer signal.Stop(sighup)
	for {
		select {
		case <-ctx.Done():
			return
		case <-sighup:
			logger.Info("SIGHUP received, reloading rosters")
			if err := reg.Reload(); err != nil {
				logger.Error("reload failed", "error", err)
				continue
			}
			logger.Info("rosters reloaded", "sessions", reg.Sessions(), "legislators", reg.TotalLegislators())
		}
	}
}

// startChecker runs periodic feed availability checks when a source
// database exists.
func startChecker(ctx context.Context) {
	if cfg.CheckInterval <= 0 {
		return
	}
	if _, err := os.Stat(cfg.SourcesDB); err != nil {
		logger.Debug("no source database, feed checks disabled", "path", cfg.SourcesDB)
		return
	}
	sdb, err := importer.OpenSourceDB(cfg.SourcesDB)
	if err != nil {
		logger.Warn("feed checks disabled", "error", err)
		return
	}
	go func() {
		defer sdb.Close()
		importer.NewChecker(sdb, logger, cfg.CheckInterval).Start(ctx)
	}()
}
