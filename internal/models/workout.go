package models

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Set is one performed set. Reps and WeightKg are nullable; a set without a
// positive weight is treated as unweighted.
type Set struct {
	Reps     *int     `json:"reps"`
	WeightKg *float64 `json:"weight_kg"`
	IsWarmup bool     `json:"is_warmup,omitempty"`
}

// Weight returns the set weight and whether it is usable for comparisons.
func (s Set) Weight() (float64, bool) {
	if s.WeightKg == nil || *s.WeightKg <= 0 {
		return 0, false
	}
	return *s.WeightKg, true
}

// RepCount returns the rep count, or -1 when reps were not recorded.
func (s Set) RepCount() int {
	if s.Reps == nil {
		return -1
	}
	return *s.Reps
}

// SessionExercise is one exercise performed within a session.
type SessionExercise struct {
	ExerciseID   string `json:"exercise_id"`
	ExerciseName string `json:"exercise_name"`
	MuscleGroup  string `json:"muscle_group,omitempty"`
	Sets         []Set  `json:"sets"`
}

// Session is a logged workout.
type Session struct {
	ID        uuid.UUID         `json:"id"`
	UserID    int               `json:"user_id"`
	Name      string            `json:"name"`
	CreatedAt time.Time         `json:"created_at"`
	Duration  string            `json:"duration,omitempty"`
	Source    string            `json:"source,omitempty"`
	Exercises []SessionExercise `json:"exercises"`
}

// SessionContext is the input of a PR computation. CreatedAt is the cutoff:
// only sets from sessions strictly before it count as history.
type SessionContext struct {
	SessionID uuid.UUID
	UserID    int
	CreatedAt time.Time
	Exercises []SessionExercise
}

// Context builds the PR computation input for a stored session.
func (s *Session) Context() SessionContext {
	return SessionContext{
		SessionID: s.ID,
		UserID:    s.UserID,
		CreatedAt: s.CreatedAt,
		Exercises: s.Exercises,
	}
}

// SessionSummary is a session header without its sets.
type SessionSummary struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"created_at"`
	Source        string    `json:"source"`
	ExerciseCount int       `json:"exercise_count"`
	SetCount      int       `json:"set_count"`
}

// Replacement reports a source-scoped re-import. RemovedExercises lists the
// exercises that had sets in the deleted sessions.
type Replacement struct {
	SessionsDeleted  int64
	SetsInserted     int64
	RemovedExercises []string
}

// ExerciseSetRow is a stored working set joined with its session date and
// exercise metadata.
type ExerciseSetRow struct {
	SessionID    uuid.UUID `json:"session_id"`
	SessionDate  time.Time `json:"session_date"`
	ExerciseID   string    `json:"exercise_id"`
	ExerciseName string    `json:"exercise_name"`
	MuscleGroup  string    `json:"muscle_group"`
	SetNumber    int       `json:"set_number"`
	Reps         *int      `json:"reps"`
	WeightKg     *float64  `json:"weight_kg"`
	IsWarmup     bool      `json:"is_warmup"`
}

// Gender values understood by the strength standards.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Profile holds the body data needed for strength scoring.
type Profile struct {
	UserID   int      `json:"user_id"`
	Gender   string   `json:"gender,omitempty"`
	WeightKg *float64 `json:"weight_kg,omitempty"`
}

// Complete reports whether the profile has both gender and body weight.
func (p *Profile) Complete() bool {
	return p != nil && p.Gender != "" && p.WeightKg != nil && *p.WeightKg > 0
}

// Exercise is a row of the exercises catalog.
type Exercise struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MuscleGroup string `json:"muscle_group"`
}

// ExerciseSlug derives a stable exercise ID from a display name:
// "Bench Press (Barbell)" becomes "bench-press-barbell".
func ExerciseSlug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
