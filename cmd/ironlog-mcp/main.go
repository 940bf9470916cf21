package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/ironlog/internal/config"
	ironmcp "github.com/claude/ironlog/internal/mcp"
	"github.com/claude/ironlog/internal/records"
	"github.com/claude/ironlog/internal/storage"
	"github.com/claude/ironlog/internal/strength"
	"github.com/claude/ironlog/internal/training"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	remoteURL := flag.String("url", "", "IronLog server URL for remote mode (e.g. http://ironlog.tail1234.ts.net)")
	userID := flag.Int("user", 0, "user ID for local mode (defaults to server.dev_user_id)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("ironlog-mcp", Version)
		return
	}

	// stdout carries the MCP protocol
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds ironmcp.DataSource
	uid := *userID

	if *remoteURL != "" {
		ds = ironmcp.NewHTTPClient(*remoteURL)
		log.Info("remote mode", "url", *remoteURL)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		if uid == 0 {
			uid = cfg.Server.DevUserID
		}

		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		standards := strength.DefaultTable()
		if cfg.Strength.StandardsFile != "" {
			standards, err = strength.LoadTable(cfg.Strength.StandardsFile)
			if err != nil {
				log.Error("failed to load strength standards", "error", err)
				os.Exit(1)
			}
		}

		engine := records.NewEngine(db, cfg.History.FetchConcurrency)
		ds = training.NewService(db, engine, standards, log)
		log.Info("local mode", "user_id", uid)
	}

	s := ironmcp.New(ds, Version, log)
	err := server.ServeStdio(s, server.WithStdioContextFunc(func(ctx context.Context) context.Context {
		if uid == 0 {
			return ctx
		}
		return ironmcp.WithUserID(ctx, uid)
	}))
	if err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
