package storage

import (
	"context"
	"fmt"

	"github.com/claude/ironlog/internal/models"
)

// upsertExercise adds an exercise to the catalog. An existing entry keeps its
// name; an unknown muscle group is filled in when a better one arrives.
func upsertExercise(ctx context.Context, q execer, ex models.Exercise) error {
	muscle := ex.MuscleGroup
	if muscle == "" {
		muscle = "other"
	}
	_, err := q.Exec(ctx, `
		INSERT INTO exercises (id, name, muscle_group)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
			SET muscle_group = CASE WHEN exercises.muscle_group = 'other'
				THEN EXCLUDED.muscle_group ELSE exercises.muscle_group END
	`, ex.ID, ex.Name, muscle)
	if err != nil {
		return fmt.Errorf("upserting exercise %s: %w", ex.ID, err)
	}
	return nil
}

// ListExercises returns the catalog ordered by name.
func (db *DB) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, muscle_group FROM exercises ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		var e models.Exercise
		if err := rows.Scan(&e.ID, &e.Name, &e.MuscleGroup); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
