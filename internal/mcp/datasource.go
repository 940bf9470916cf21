package mcp

import (
	"context"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/records"
	"github.com/claude/ironlog/internal/strength"
	"github.com/claude/ironlog/internal/training"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools. Both *training.Service
// (local) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListSessions(ctx context.Context, userID int, start, end time.Time) ([]models.SessionSummary, error)
	GetSession(ctx context.Context, userID int, sessionID uuid.UUID) (*models.Session, error)
	SessionRecords(ctx context.Context, userID int, sessionID uuid.UUID) (*records.Result, error)
	StrengthLevels(ctx context.Context, userID int) (*strength.Levels, error)
	BestLifts(ctx context.Context, userID int) ([]strength.ExerciseData, error)
	ExerciseHistory(ctx context.Context, userID int, filter string, start, end time.Time) ([]models.ExerciseSetRow, error)
	Profile(ctx context.Context, userID int) (*models.Profile, error)
}

// Compile-time check: *training.Service satisfies DataSource.
var _ DataSource = (*training.Service)(nil)
