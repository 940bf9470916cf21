package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/claude/ironlog/internal/config"
	"github.com/claude/ironlog/internal/importstate"
	"github.com/claude/ironlog/internal/ingest"
	"github.com/claude/ironlog/internal/ingest/alpha"
	"github.com/claude/ironlog/internal/records"
	"github.com/claude/ironlog/internal/storage"
	"github.com/claude/ironlog/internal/strength"
	"github.com/claude/ironlog/internal/training"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Stats tracks import progress.
type Stats struct {
	FilesProcessed   int
	FilesSkipped     int
	FilesErrored     int
	SessionsReceived int
	SessionsReplaced int64
	SetsInserted     int64
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	exportPath := flag.String("path", "", "Alpha Progression CSV export, or a directory of exports (required)")
	userID := flag.Int("user", 0, "user ID to import for (defaults to server.dev_user_id)")
	stateDir := flag.String("state-dir", "", "directory of the import state database (defaults to ~/.ironlog)")
	force := flag.Bool("force", false, "re-import files even if unchanged")
	resetState := flag.Bool("reset-state", false, "forget all previously imported files before importing")
	dryRun := flag.Bool("dry-run", false, "parse files and report counts without writing to the database")
	tz := flag.String("tz", "Local", "time zone of the session times in the export")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("ironlog-import", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: ironlog-import -config config.yaml -path <export.csv | dir> [-user N] [-force] [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		log.Error("unknown time zone", "tz", *tz, "error", err)
		os.Exit(1)
	}

	files, err := findExports(*exportPath)
	if err != nil {
		log.Error("finding exports", "path", *exportPath, "error", err)
		os.Exit(1)
	}
	log.Info("found exports", "count", len(files))

	if *dryRun {
		log.Info("DRY RUN mode: no data will be written to the database")
		for _, f := range files {
			dryRunFile(log, f, loc)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *userID == 0 {
		*userID = cfg.Server.DevUserID
	}

	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if *stateDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		*stateDir = filepath.Join(homeDir, ".ironlog")
	}
	state, err := importstate.Open(*stateDir)
	if err != nil {
		log.Error("failed to open import state", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	if *resetState {
		if err := state.Forget(); err != nil {
			log.Error("failed to reset import state", "error", err)
			os.Exit(1)
		}
		log.Info("import state reset")
	}

	engine := records.NewEngine(db, cfg.History.FetchConcurrency)
	svc := training.NewService(db, engine, strength.DefaultTable(), log)
	provider := alpha.NewProvider(svc, loc, log)

	var stats Stats
	for _, f := range files {
		if err := importFile(ctx, log, db, state, provider, f, *userID, *force, &stats); err != nil {
			stats.FilesErrored++
			log.Error("import failed", "file", f, "error", err)
		}
	}

	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"sessions_received", stats.SessionsReceived,
		"sessions_replaced", stats.SessionsReplaced,
		"sets_inserted", stats.SetsInserted,
	)
	if stats.FilesErrored > 0 {
		os.Exit(1)
	}
	log.Info("import complete")
}

func importFile(ctx context.Context, log *slog.Logger, db *storage.DB, state *importstate.DB,
	provider *alpha.Provider, path string, userID int, force bool, stats *Stats) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	hash, err := importstate.HashFile(path)
	if err != nil {
		return fmt.Errorf("hashing: %w", err)
	}
	if !force {
		done, err := state.IsImported(path, userID, info.Size(), hash)
		if err != nil {
			return err
		}
		if done {
			stats.FilesSkipped++
			log.Info("unchanged, skipping", "file", path)
			return nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	// A "running" entry stays behind if the process dies mid-import.
	logID, logErr := db.InsertImportLog(ctx, storage.ImportLog{UserID: userID, Source: alpha.Source, Status: "running"})
	if logErr != nil {
		log.Warn("failed to log import", "error", logErr)
	}

	start := time.Now()
	result, err := provider.Ingest(ctx, f, userID)
	if logErr == nil {
		finishImportLog(ctx, log, db, logID, userID, result, err, time.Since(start))
	}
	if err != nil {
		return err
	}

	stats.FilesProcessed++
	stats.SessionsReceived += result.SessionsReceived
	stats.SessionsReplaced += result.SessionsReplaced
	stats.SetsInserted += result.SetsInserted
	log.Info("imported", "file", path, "sessions", result.SessionsReceived, "sets", result.SetsInserted)

	return state.MarkImported(path, userID, info.Size(), hash, result.SessionsReceived)
}

// finishImportLog records the outcome of an import started as "running".
func finishImportLog(ctx context.Context, log *slog.Logger, db *storage.DB, id int64, userID int, result *ingest.Result, importErr error, d time.Duration) {
	entry := storage.ImportLog{UserID: userID, Source: alpha.Source, Status: "success"}
	ms := int(d.Milliseconds())
	entry.DurationMs = &ms
	if importErr != nil {
		msg := importErr.Error()
		entry.Status = "error"
		entry.ErrorMessage = &msg
	}
	if result != nil {
		entry.SessionsReceived = result.SessionsReceived
		entry.SessionsReplaced = result.SessionsReplaced
		entry.SetsInserted = result.SetsInserted
	}
	if err := db.UpdateImportLog(ctx, id, entry); err != nil {
		log.Warn("failed to update import log", "id", id, "error", err)
	}
}

func dryRunFile(log *slog.Logger, path string, loc *time.Location) {
	f, err := os.Open(path)
	if err != nil {
		log.Error("open failed", "file", path, "error", err)
		return
	}
	defer f.Close()

	workouts, err := alpha.ParseIn(f, loc)
	if err != nil {
		log.Error("parse failed", "file", path, "error", err)
		return
	}
	sets := 0
	for _, w := range workouts {
		for _, ex := range w.Exercises {
			sets += len(ex.Sets)
		}
	}
	log.Info("parsed", "file", path, "sessions", len(workouts), "sets", sets)
}

// findExports returns path itself when it is a file, or every .csv file below it.
func findExports(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".csv") {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}
