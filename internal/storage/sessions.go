package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const setColumns = 8

// InsertSession stores a session with its exercises and sets in one
// transaction. Returns the number of sets inserted.
func (db *DB) InsertSession(ctx context.Context, s *models.Session) (int64, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	n, err := insertSession(ctx, tx, s)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing session: %w", err)
	}
	return n, nil
}

// ReplaceSessions deletes the user's sessions from source on every calendar
// day (UTC) touched by sessions, then inserts sessions tagged with source.
// Re-importing an export is therefore idempotent.
func (db *DB) ReplaceSessions(ctx context.Context, userID int, source string, sessions []models.Session) (*models.Replacement, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	res := &models.Replacement{}
	seen := make(map[time.Time]bool)
	removed := make(map[string]bool)
	for i := range sessions {
		start, _ := dayRange(sessions[i].CreatedAt)
		if seen[start] {
			continue
		}
		seen[start] = true

		ids, err := exercisesOn(ctx, tx, userID, start, source)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if !removed[id] {
				removed[id] = true
				res.RemovedExercises = append(res.RemovedExercises, id)
			}
		}
		n, err := deleteSessionsOn(ctx, tx, userID, start, source)
		if err != nil {
			return nil, err
		}
		res.SessionsDeleted += n
	}
	for i := range sessions {
		s := &sessions[i]
		s.UserID = userID
		s.Source = source
		n, err := insertSession(ctx, tx, s)
		if err != nil {
			return nil, err
		}
		res.SetsInserted += n
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing import: %w", err)
	}
	return res, nil
}

// exercisesOn lists the exercises logged in the user's sessions from source
// on date's calendar day (UTC).
func exercisesOn(ctx context.Context, tx pgx.Tx, userID int, date time.Time, source string) ([]string, error) {
	start, end := dayRange(date)
	rows, err := tx.Query(ctx,
		`SELECT DISTINCT ws.exercise_id
		 FROM workout_sets ws
		 JOIN workout_sessions s ON s.id = ws.session_id
		 WHERE s.user_id = $1 AND s.created_at >= $2 AND s.created_at < $3
		 AND ($4 = '' OR s.source = $4)`,
		userID, start, end, source)
	if err != nil {
		return nil, fmt.Errorf("querying exercises on %s: %w", start.Format(time.DateOnly), err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning exercise id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func insertSession(ctx context.Context, tx pgx.Tx, s *models.Session) (int64, error) {
	for _, ex := range s.Exercises {
		if err := upsertExercise(ctx, tx, models.Exercise{
			ID: ex.ExerciseID, Name: ex.ExerciseName, MuscleGroup: ex.MuscleGroup,
		}); err != nil {
			return 0, err
		}
	}

	source := s.Source
	if source == "" {
		source = "api"
	}
	_, err := tx.Exec(ctx,
		`INSERT INTO workout_sessions (id, user_id, name, created_at, duration, source)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		s.ID, s.UserID, s.Name, s.CreatedAt, s.Duration, source)
	if err != nil {
		return 0, fmt.Errorf("inserting session: %w", err)
	}

	var args []any
	rowCount := 0
	for exNum, ex := range s.Exercises {
		for setNum, set := range ex.Sets {
			args = append(args, s.ID, s.UserID, ex.ExerciseID, exNum+1, setNum+1,
				set.Reps, set.WeightKg, set.IsWarmup)
			rowCount++
		}
	}
	if rowCount == 0 {
		return 0, nil
	}

	query := `INSERT INTO workout_sets (session_id, user_id, exercise_id, exercise_number,
		set_number, reps, weight_kg, is_warmup) VALUES ` + valuesClause(rowCount, setColumns)

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting sets: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetSession loads one of the user's sessions with its sets. Exercises and
// sets keep their logged order.
func (db *DB) GetSession(ctx context.Context, userID int, id uuid.UUID) (*models.Session, error) {
	s := &models.Session{ID: id, UserID: userID}
	err := db.Pool.QueryRow(ctx,
		`SELECT name, created_at, duration, source FROM workout_sessions
		 WHERE id = $1 AND user_id = $2`,
		id, userID).Scan(&s.Name, &s.CreatedAt, &s.Duration, &s.Source)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying session: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT ws.exercise_number, ws.exercise_id, e.name, e.muscle_group,
		 ws.reps, ws.weight_kg, ws.is_warmup
		 FROM workout_sets ws
		 JOIN exercises e ON e.id = ws.exercise_id
		 WHERE ws.session_id = $1
		 ORDER BY ws.exercise_number, ws.set_number`,
		id)
	if err != nil {
		return nil, fmt.Errorf("querying session sets: %w", err)
	}
	defer rows.Close()

	lastNum := 0
	for rows.Next() {
		var (
			num int
			ex  models.SessionExercise
			set models.Set
		)
		if err := rows.Scan(&num, &ex.ExerciseID, &ex.ExerciseName, &ex.MuscleGroup,
			&set.Reps, &set.WeightKg, &set.IsWarmup); err != nil {
			return nil, fmt.Errorf("scanning session set: %w", err)
		}
		if num != lastNum {
			s.Exercises = append(s.Exercises, ex)
			lastNum = num
		}
		cur := &s.Exercises[len(s.Exercises)-1]
		cur.Sets = append(cur.Sets, set)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading session sets: %w", err)
	}
	return s, nil
}

// ListSessions returns session headers in [start, end), newest first.
func (db *DB) ListSessions(ctx context.Context, userID int, start, end time.Time) ([]models.SessionSummary, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT s.id, s.name, s.created_at, s.source,
		 COUNT(DISTINCT ws.exercise_number), COUNT(ws.id)
		 FROM workout_sessions s
		 LEFT JOIN workout_sets ws ON ws.session_id = s.id
		 WHERE s.user_id = $1 AND s.created_at >= $2 AND s.created_at < $3
		 GROUP BY s.id
		 ORDER BY s.created_at DESC`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []models.SessionSummary
	for rows.Next() {
		var s models.SessionSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt, &s.Source, &s.ExerciseCount, &s.SetCount); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// DeleteSession removes one of the user's sessions with its sets.
func (db *DB) DeleteSession(ctx context.Context, userID int, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM workout_sessions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// deleteSessionsOn removes the user's sessions created on date's calendar day
// (UTC), limited to one source unless source is empty.
func deleteSessionsOn(ctx context.Context, q execer, userID int, date time.Time, source string) (int64, error) {
	start, end := dayRange(date)
	tag, err := q.Exec(ctx,
		`DELETE FROM workout_sessions
		 WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		 AND ($4 = '' OR source = $4)`,
		userID, start, end, source)
	if err != nil {
		return 0, fmt.Errorf("deleting sessions on %s: %w", start.Format(time.DateOnly), err)
	}
	return tag.RowsAffected(), nil
}

// dayRange returns the UTC calendar day containing t as [start, end).
func dayRange(t time.Time) (time.Time, time.Time) {
	y, m, d := t.UTC().Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
