package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/claude/ironlog/internal/ingest"
	"github.com/claude/ironlog/internal/models"
)

// Importer stores imported sessions, replacing earlier imports of the same days.
type Importer interface {
	ImportSessions(ctx context.Context, userID int, source string, sessions []models.Session) (int64, int64, error)
}

// Provider processes Alpha Progression CSV exports.
type Provider struct {
	importer Importer
	loc      *time.Location
	log      *slog.Logger
}

// NewProvider creates a new Alpha Progression ingest provider. Session times
// in exports are read in loc; nil means UTC.
func NewProvider(importer Importer, loc *time.Location, log *slog.Logger) *Provider {
	if loc == nil {
		loc = time.UTC
	}
	return &Provider{importer: importer, loc: loc, log: log}
}

// Ingest parses a CSV export and stores its sessions. Sessions already
// imported for the same days are replaced.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error) {
	workouts, err := ParseIn(r, p.loc)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	sessions := ToSessions(workouts, userID)
	result := &ingest.Result{SessionsReceived: len(sessions)}
	for _, s := range sessions {
		for _, ex := range s.Exercises {
			result.SetsReceived += len(ex.Sets)
		}
	}
	if len(sessions) == 0 {
		result.Message = "no sessions found"
		return result, nil
	}

	replaced, inserted, err := p.importer.ImportSessions(ctx, userID, Source, sessions)
	if err != nil {
		return nil, fmt.Errorf("storing sessions: %w", err)
	}
	result.SessionsReplaced = replaced
	result.SetsInserted = inserted

	p.log.Info("alpha import", "user_id", userID, "sessions", len(sessions),
		"replaced", replaced, "sets", inserted)
	return result, nil
}
