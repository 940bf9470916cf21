package records

import (
	"context"
	"time"

	"github.com/claude/ironlog/internal/models"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=records_test

// HistoryFetcher returns a user's sets for one exercise from sessions created
// strictly before the cutoff.
type HistoryFetcher interface {
	FetchHistoricSets(ctx context.Context, userID int, exerciseID string, before time.Time) ([]models.Set, error)
}

// DefaultFetchConcurrency bounds parallel history fetches per computation.
const DefaultFetchConcurrency = 4

// Engine computes personal records for sessions.
type Engine struct {
	history     HistoryFetcher
	concurrency int
}

// NewEngine creates an Engine. A concurrency below 1 uses DefaultFetchConcurrency.
func NewEngine(history HistoryFetcher, concurrency int) *Engine {
	if concurrency < 1 {
		concurrency = DefaultFetchConcurrency
	}
	return &Engine{history: history, concurrency: concurrency}
}

// ComputeForSession detects the PRs of every exercise in the session.
// History for each exercise is fetched in parallel; the first fetch error is
// returned as is and cancels the remaining fetches.
func (e *Engine) ComputeForSession(ctx context.Context, sc models.SessionContext) (*Result, error) {
	histories := make([][]models.Set, len(sc.Exercises))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, ex := range sc.Exercises {
		if len(ex.Sets) == 0 {
			continue
		}
		g.Go(func() error {
			sets, err := e.history.FetchHistoricSets(gctx, sc.UserID, ex.ExerciseID, sc.CreatedAt)
			if err != nil {
				return err
			}
			histories[i] = sets
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{PerExercise: []ExerciseRecords{}}
	for i, ex := range sc.Exercises {
		prs := Detect(ex.Sets, histories[i])
		if len(prs) == 0 {
			continue
		}
		result.PerExercise = append(result.PerExercise, ExerciseRecords{
			ExerciseID:   ex.ExerciseID,
			ExerciseName: ex.ExerciseName,
			PRs:          prs,
		})
		result.TotalPRs += len(prs)
	}
	return result, nil
}
