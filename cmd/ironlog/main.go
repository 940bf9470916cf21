package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/ironlog/internal/config"
	"github.com/claude/ironlog/internal/ingest/alpha"
	ironmcp "github.com/claude/ironlog/internal/mcp"
	"github.com/claude/ironlog/internal/metrics"
	"github.com/claude/ironlog/internal/records"
	"github.com/claude/ironlog/internal/server"
	"github.com/claude/ironlog/internal/storage"
	"github.com/claude/ironlog/internal/strength"
	"github.com/claude/ironlog/internal/training"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("IronLog starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Run migrations
	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Connect database
	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	standards, err := loadStandards(cfg.Strength)
	if err != nil {
		log.Error("failed to load strength standards", "error", err)
		os.Exit(1)
	}

	var (
		m        *metrics.Manager
		gatherer prometheus.Gatherer
	)
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.NewManager("ironlog", "api", reg)
		gatherer = reg
	}

	// PR engine, optionally reading history through the cache
	var history records.HistoryFetcher = db
	svcOpts := []training.Option{training.WithMetrics(m)}
	if cfg.History.CacheEnabled {
		cache := records.NewHistoryCache(db, cfg.History.CacheSizeMB, cfg.History.CacheTTL,
			records.WithLookupObserver(m.HistoryLookup))
		history = cache
		svcOpts = append(svcOpts, training.WithHistoryCache(cache))
		log.Info("history cache enabled", "size_mb", cfg.History.CacheSizeMB, "ttl", cfg.History.CacheTTL)
	}
	engine := records.NewEngine(history, cfg.History.FetchConcurrency)
	svc := training.NewService(db, engine, standards, log, svcOpts...)

	alphaProvider := alpha.NewProvider(svc, time.Local, log)

	// MCP over streamable HTTP, scoped to the caller resolved by the server
	mcpHandler := mcpserver.NewStreamableHTTPServer(ironmcp.New(svc, Version, log),
		mcpserver.WithHTTPContextFunc(func(ctx context.Context, _ *http.Request) context.Context {
			if uid, ok := server.UserIDFromContext(ctx); ok {
				return ironmcp.WithUserID(ctx, uid)
			}
			return ctx
		}),
	)

	srv := server.New(svc, db, alphaProvider, cfg.Auth.APIKey, log,
		server.WithDevUser(cfg.Server.DevUserID),
		server.WithMetrics(m, gatherer),
		server.WithMCP(mcpHandler),
	)

	// Start server: tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)", "dev_user_id", cfg.Server.DevUserID)
	}

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}

func loadStandards(cfg config.StrengthConfig) (*strength.Table, error) {
	if cfg.StandardsFile == "" {
		return strength.DefaultTable(), nil
	}
	return strength.LoadTable(cfg.StandardsFile)
}
