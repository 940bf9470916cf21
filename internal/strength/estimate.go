package strength

import (
	"sort"
	"time"

	"github.com/claude/ironlog/internal/models"
)

// EstimateOneRepMax estimates a one-rep max with the Epley formula.
// A single rep returns the weight itself; zero reps estimate nothing.
func EstimateOneRepMax(weightKg float64, reps int) float64 {
	if reps <= 0 || weightKg <= 0 {
		return 0
	}
	if reps == 1 {
		return weightKg
	}
	return weightKg * (1 + float64(reps)/30)
}

// BuildExerciseData derives each exercise's all-time best estimated 1RM and
// its best set per day from stored working sets. Exercises are returned
// sorted by name.
func BuildExerciseData(rows []models.ExerciseSetRow) []ExerciseData {
	type dayKey struct {
		exercise string
		day      time.Time
	}

	byExercise := make(map[string]*ExerciseData)
	bestOfDay := make(map[dayKey]LiftRecord)

	for _, r := range rows {
		if r.IsWarmup || r.Reps == nil || r.WeightKg == nil {
			continue
		}
		reps, weight := *r.Reps, *r.WeightKg
		e1rm := EstimateOneRepMax(weight, reps)
		if e1rm == 0 {
			continue
		}

		ex, ok := byExercise[r.ExerciseID]
		if !ok {
			ex = &ExerciseData{
				ExerciseID:   r.ExerciseID,
				ExerciseName: r.ExerciseName,
				MuscleGroup:  r.MuscleGroup,
			}
			byExercise[r.ExerciseID] = ex
		}
		if e1rm > ex.Max1RM {
			ex.Max1RM = e1rm
		}

		y, m, d := r.SessionDate.Date()
		k := dayKey{exercise: r.ExerciseID, day: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
		best, seen := bestOfDay[k]
		if !seen || weight > best.WeightKg || (weight == best.WeightKg && reps > best.Reps) {
			bestOfDay[k] = LiftRecord{Date: k.day, WeightKg: weight, Reps: reps}
		}
	}

	for k, rec := range bestOfDay {
		ex := byExercise[k.exercise]
		ex.Records = append(ex.Records, rec)
	}

	out := make([]ExerciseData, 0, len(byExercise))
	for _, ex := range byExercise {
		sort.Slice(ex.Records, func(i, j int) bool {
			return ex.Records[i].Date.Before(ex.Records[j].Date)
		})
		out = append(out, *ex)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ExerciseName != out[j].ExerciseName {
			return out[i].ExerciseName < out[j].ExerciseName
		}
		return out[i].ExerciseID < out[j].ExerciseID
	})
	return out
}
