package alpha

import (
	"fmt"

	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/strength"
	"github.com/google/uuid"
)

// Source tags sessions created by this importer.
const Source = "alpha"

var sessionNamespace = uuid.MustParse("6f1c3f5e-8a8e-4d0b-9d6e-2b7c1a4e9f10")

// ToSessions converts parsed workouts into sessions of userID. Session IDs are
// derived from the user, date and name, so re-imports keep them stable.
// Workouts sharing all three are told apart by their order in the export.
func ToSessions(workouts []Workout, userID int) []models.Session {
	sessions := make([]models.Session, 0, len(workouts))
	seen := make(map[string]int, len(workouts))
	for _, w := range workouts {
		key := fmt.Sprintf("%d|%s|%s", userID, w.Date.UTC().Format("2006-01-02T15:04"), w.Name)
		seen[key]++
		if n := seen[key]; n > 1 {
			key = fmt.Sprintf("%s|%d", key, n)
		}
		s := models.Session{
			ID:        uuid.NewSHA1(sessionNamespace, []byte(key)),
			UserID:    userID,
			Name:      w.Name,
			CreatedAt: w.Date.UTC(),
			Duration:  w.Duration,
			Source:    Source,
			Exercises: make([]models.SessionExercise, 0, len(w.Exercises)),
		}
		for _, ex := range w.Exercises {
			s.Exercises = append(s.Exercises, models.SessionExercise{
				ExerciseID:   models.ExerciseSlug(ex.Name),
				ExerciseName: ex.Name,
				MuscleGroup:  strength.MuscleGroupFor(ex.Name),
				Sets:         toSets(ex.Sets),
			})
		}
		sessions = append(sessions, s)
	}
	return sessions
}

func toSets(in []Set) []models.Set {
	out := make([]models.Set, len(in))
	for i, s := range in {
		reps := s.Reps
		out[i] = models.Set{Reps: &reps, IsWarmup: s.Warmup}
		if s.WeightKg > 0 {
			w := s.WeightKg
			out[i].WeightKg = &w
		}
	}
	return out
}
