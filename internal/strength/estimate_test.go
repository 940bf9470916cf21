package strength

import (
	"testing"
	"time"

	"github.com/claude/ironlog/internal/models"
)

func TestEstimateOneRepMax(t *testing.T) {
	tests := []struct {
		weight float64
		reps   int
		want   float64
	}{
		{weight: 100, reps: 1, want: 100},
		{weight: 100, reps: 5, want: 100 * (1 + 5.0/30)},
		{weight: 60, reps: 10, want: 80},
		{weight: 100, reps: 0, want: 0},
		{weight: 0, reps: 5, want: 0},
	}
	for _, tt := range tests {
		if got := EstimateOneRepMax(tt.weight, tt.reps); !approx(got, tt.want) {
			t.Errorf("EstimateOneRepMax(%v, %d) = %v, want %v", tt.weight, tt.reps, got, tt.want)
		}
	}
}

func row(exerciseID, name string, day time.Time, reps int, weight float64, warmup bool) models.ExerciseSetRow {
	return models.ExerciseSetRow{
		SessionDate:  day,
		ExerciseID:   exerciseID,
		ExerciseName: name,
		MuscleGroup:  MuscleGroupFor(name),
		Reps:         &reps,
		WeightKg:     &weight,
		IsWarmup:     warmup,
	}
}

// TestBuildExerciseData verifies the best e1RM per exercise, the best set per
// day and that warmups and incomplete sets are ignored.
func TestBuildExerciseData(t *testing.T) {
	d1 := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 3, 8, 7, 30, 0, 0, time.UTC)

	rows := []models.ExerciseSetRow{
		row("squat", "Squat", d2, 3, 140, false),
		row("squat", "Squat", d1, 5, 120, false),
		row("squat", "Squat", d1, 8, 120, false),
		row("squat", "Squat", d1, 1, 200, true),
		row("bench-press", "Bench Press", d1, 5, 90, false),
		{ExerciseID: "bench-press", ExerciseName: "Bench Press", SessionDate: d2},
	}

	got := BuildExerciseData(rows)
	if len(got) != 2 {
		t.Fatalf("exercises = %d, want 2", len(got))
	}
	if got[0].ExerciseName != "Bench Press" || got[1].ExerciseName != "Squat" {
		t.Fatalf("order = %s, %s; want Bench Press, Squat", got[0].ExerciseName, got[1].ExerciseName)
	}

	bench := got[0]
	if !approx(bench.Max1RM, 105) {
		t.Errorf("bench max = %v, want 105", bench.Max1RM)
	}
	if len(bench.Records) != 1 {
		t.Errorf("bench records = %d, want 1", len(bench.Records))
	}

	squat := got[1]
	if !approx(squat.Max1RM, 154) {
		t.Errorf("squat max = %v, want 154", squat.Max1RM)
	}
	if squat.MuscleGroup != "quads" {
		t.Errorf("squat muscle group = %q, want quads", squat.MuscleGroup)
	}
	if len(squat.Records) != 2 {
		t.Fatalf("squat records = %d, want 2", len(squat.Records))
	}
	first := squat.Records[0]
	if !first.Date.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first record date = %v, want 2026-03-01", first.Date)
	}
	if first.WeightKg != 120 || first.Reps != 8 {
		t.Errorf("first record = %+v, want 120kg x 8", first)
	}
	if squat.Records[1].WeightKg != 140 {
		t.Errorf("second record weight = %v, want 140", squat.Records[1].WeightKg)
	}
}

func TestBuildExerciseDataEmpty(t *testing.T) {
	if got := BuildExerciseData(nil); len(got) != 0 {
		t.Errorf("BuildExerciseData(nil) = %v, want empty", got)
	}
}
