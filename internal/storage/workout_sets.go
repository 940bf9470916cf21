package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/records"
	"github.com/jackc/pgx/v5"
)

var _ records.HistoryFetcher = (*DB)(nil)

// FetchHistoricSets returns the user's working sets of one exercise from
// sessions created strictly before the cutoff.
func (db *DB) FetchHistoricSets(ctx context.Context, userID int, exerciseID string, before time.Time) ([]models.Set, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT ws.reps, ws.weight_kg
		 FROM workout_sets ws
		 JOIN workout_sessions s ON s.id = ws.session_id
		 WHERE ws.user_id = $1 AND ws.exercise_id = $2 AND s.created_at < $3
		 AND NOT ws.is_warmup`,
		userID, exerciseID, before)
	if err != nil {
		return nil, fmt.Errorf("querying history of %s: %w", exerciseID, err)
	}
	defer rows.Close()

	var result []models.Set
	for rows.Next() {
		var s models.Set
		if err := rows.Scan(&s.Reps, &s.WeightKg); err != nil {
			return nil, fmt.Errorf("scanning historic set: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// QueryExerciseSets retrieves sets in a date range, optionally filtered by a
// case-insensitive substring of the exercise name.
func (db *DB) QueryExerciseSets(ctx context.Context, userID int, exercise string, start, end time.Time) ([]models.ExerciseSetRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT ws.session_id, s.created_at, ws.exercise_id, e.name, e.muscle_group,
		 ws.set_number, ws.reps, ws.weight_kg, ws.is_warmup
		 FROM workout_sets ws
		 JOIN workout_sessions s ON s.id = ws.session_id
		 JOIN exercises e ON e.id = ws.exercise_id
		 WHERE ws.user_id = $1 AND s.created_at >= $2 AND s.created_at < $3
		 AND ($4 = '' OR e.name ILIKE $4)
		 ORDER BY s.created_at DESC, ws.exercise_number ASC, ws.is_warmup DESC, ws.set_number ASC`,
		userID, start, end, likePattern(exercise))
	if err != nil {
		return nil, fmt.Errorf("querying exercise sets: %w", err)
	}
	defer rows.Close()

	return scanSetRows(rows)
}

// QueryLiftRows returns every weighted working set of the user, the input of
// best-lift derivation.
func (db *DB) QueryLiftRows(ctx context.Context, userID int) ([]models.ExerciseSetRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT ws.session_id, s.created_at, ws.exercise_id, e.name, e.muscle_group,
		 ws.set_number, ws.reps, ws.weight_kg, ws.is_warmup
		 FROM workout_sets ws
		 JOIN workout_sessions s ON s.id = ws.session_id
		 JOIN exercises e ON e.id = ws.exercise_id
		 WHERE ws.user_id = $1 AND NOT ws.is_warmup
		 AND ws.weight_kg > 0 AND ws.reps > 0
		 ORDER BY s.created_at ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying lift rows: %w", err)
	}
	defer rows.Close()

	return scanSetRows(rows)
}

func scanSetRows(rows pgx.Rows) ([]models.ExerciseSetRow, error) {
	var result []models.ExerciseSetRow
	for rows.Next() {
		var r models.ExerciseSetRow
		if err := rows.Scan(&r.SessionID, &r.SessionDate, &r.ExerciseID, &r.ExerciseName,
			&r.MuscleGroup, &r.SetNumber, &r.Reps, &r.WeightKg, &r.IsWarmup); err != nil {
			return nil, fmt.Errorf("scanning set row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// likePattern turns a user filter into an ILIKE substring pattern with the
// LIKE metacharacters escaped. An empty filter matches everything.
func likePattern(filter string) string {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return ""
	}
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(filter) + "%"
}
