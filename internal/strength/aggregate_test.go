package strength

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/claude/ironlog/internal/models"
)

// fakeStandards returns fixed standards per exercise name. Names in missing
// report Has()==true but fail the lookup.
type fakeStandards struct {
	table   map[string]Standard
	missing map[string]bool
}

func (f fakeStandards) Has(name string) bool {
	_, ok := f.table[name]
	return ok || f.missing[name]
}

func (f fakeStandards) Lookup(name, _ string, _, _ float64) (Standard, bool) {
	s, ok := f.table[name]
	return s, ok
}

func profile(gender string, weight float64) *models.Profile {
	return &models.Profile{UserID: 1, Gender: gender, WeightKg: &weight}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

var balancedFixture = fakeStandards{table: map[string]Standard{
	"Bench Press": {Level: Advanced, Progress: 50},
	"Barbell Row": {Level: Advanced, Progress: 60},
	"Squat":       {Level: Novice, Progress: 0},
}}

var balancedData = []ExerciseData{
	{ExerciseID: "bench-press", ExerciseName: "Bench Press", MuscleGroup: "chest", Max1RM: 120},
	{ExerciseID: "barbell-row", ExerciseName: "Barbell Row", MuscleGroup: "back", Max1RM: 100},
	{ExerciseID: "squat", ExerciseName: "Squat", MuscleGroup: "quads", Max1RM: 90},
}

// TestComputeBalancedLevel checks the harmonic mean across Push/Pull/Lower and
// the weakest group flag when the gap spans more than a full level.
func TestComputeBalancedLevel(t *testing.T) {
	levels := Compute(profile(models.GenderMale, 80), balancedData, balancedFixture)
	if levels == nil {
		t.Fatal("Compute returned nil")
	}

	o := levels.Overall
	if !approx(o.AverageScore, 3.7) {
		t.Errorf("overall average = %v, want 3.7", o.AverageScore)
	}
	if o.Level != Intermediate {
		t.Errorf("overall level = %v, want Intermediate", o.Level)
	}
	if o.NextLevel == nil || *o.NextLevel != Advanced {
		t.Errorf("overall next level = %v, want Advanced", o.NextLevel)
	}
	if !approx(o.Progress, 70) {
		t.Errorf("overall progress = %v, want 70", o.Progress)
	}

	wantBalanced := 3 / (1/4.5 + 1/4.6 + 1/2.0)
	if o.BalancedScore == nil || !approx(*o.BalancedScore, wantBalanced) {
		t.Fatalf("balanced score = %v, want %v", o.BalancedScore, wantBalanced)
	}
	if *o.BalancedLevel != Intermediate {
		t.Errorf("balanced level = %v, want Intermediate", *o.BalancedLevel)
	}
	if !approx(*o.BalancedProgress, (wantBalanced-3)*100) {
		t.Errorf("balanced progress = %v, want %v", *o.BalancedProgress, (wantBalanced-3)*100)
	}
	if o.WeakestGroup == nil || *o.WeakestGroup != GroupLower {
		t.Errorf("weakest group = %v, want Lower", o.WeakestGroup)
	}

	if len(levels.Groups) != 3 {
		t.Fatalf("groups = %d, want 3", len(levels.Groups))
	}
	wantGroups := []ExerciseGroup{GroupPush, GroupPull, GroupLower}
	for i, g := range levels.Groups {
		if g.Group != wantGroups[i] {
			t.Errorf("groups[%d] = %s, want %s", i, g.Group, wantGroups[i])
		}
	}
	if !approx(levels.Groups[1].AverageScore, 4.6) {
		t.Errorf("pull average = %v, want 4.6", levels.Groups[1].AverageScore)
	}
}

// TestComputeHarmonicBelowArithmetic confirms the balanced score is pulled down
// by the weakest group more than the plain mean of group averages would be.
func TestComputeHarmonicBelowArithmetic(t *testing.T) {
	levels := Compute(profile(models.GenderMale, 80), balancedData, balancedFixture)
	arithmetic := (4.5 + 4.6 + 2.0) / 3
	if *levels.Overall.BalancedScore >= arithmetic {
		t.Errorf("balanced %v not below arithmetic mean %v", *levels.Overall.BalancedScore, arithmetic)
	}
}

// TestComputeNoWeakestGroupWithinOneLevel verifies small gaps are not flagged.
func TestComputeNoWeakestGroupWithinOneLevel(t *testing.T) {
	std := fakeStandards{table: map[string]Standard{
		"Bench Press": {Level: Intermediate, Progress: 90},
		"Squat":       {Level: Intermediate, Progress: 0},
	}}
	data := []ExerciseData{
		{ExerciseName: "Bench Press", Max1RM: 100},
		{ExerciseName: "Squat", Max1RM: 120},
	}
	levels := Compute(profile(models.GenderFemale, 60), data, std)
	if levels.Overall.WeakestGroup != nil {
		t.Errorf("weakest group = %v, want nil for a 0.9 gap", *levels.Overall.WeakestGroup)
	}
	if len(levels.Groups) != 2 {
		t.Errorf("groups = %d, want 2 (Pull omitted)", len(levels.Groups))
	}
}

// TestComputeExactlyOneLevelGapIsFlagged verifies the boundary is inclusive.
func TestComputeExactlyOneLevelGapIsFlagged(t *testing.T) {
	std := fakeStandards{table: map[string]Standard{
		"Bench Press": {Level: Advanced, Progress: 0},
		"Squat":       {Level: Intermediate, Progress: 0},
	}}
	data := []ExerciseData{
		{ExerciseName: "Bench Press", Max1RM: 100},
		{ExerciseName: "Squat", Max1RM: 120},
	}
	levels := Compute(profile(models.GenderMale, 80), data, std)
	if levels.Overall.WeakestGroup == nil || *levels.Overall.WeakestGroup != GroupLower {
		t.Errorf("weakest group = %v, want Lower", levels.Overall.WeakestGroup)
	}
}

// TestComputeSkipsExercisesWithoutStandards verifies unscored exercises are
// excluded from every average instead of counting as zero.
func TestComputeSkipsExercisesWithoutStandards(t *testing.T) {
	std := fakeStandards{
		table:   map[string]Standard{"Squat": {Level: Elite, Progress: 50}},
		missing: map[string]bool{"Leg Press": true},
	}
	data := []ExerciseData{
		{ExerciseName: "Squat", MuscleGroup: "quads", Max1RM: 200},
		{ExerciseName: "Cable Crossover", MuscleGroup: "chest", Max1RM: 40},
		{ExerciseName: "Leg Press", MuscleGroup: "quads", Max1RM: 300},
	}
	levels := Compute(profile(models.GenderMale, 80), data, std)
	if levels == nil {
		t.Fatal("Compute returned nil")
	}
	if levels.Overall.ExerciseCount != 1 {
		t.Errorf("exercise count = %d, want 1", levels.Overall.ExerciseCount)
	}
	if !approx(levels.Overall.AverageScore, 5.5) {
		t.Errorf("average = %v, want 5.5", levels.Overall.AverageScore)
	}
	if len(levels.MuscleGroups) != 1 || levels.MuscleGroups[0].MuscleGroup != "quads" {
		t.Errorf("muscle groups = %+v, want only quads", levels.MuscleGroups)
	}
}

// TestComputeWorldClassCeiling verifies progress is pinned at 100 with no next level.
func TestComputeWorldClassCeiling(t *testing.T) {
	std := fakeStandards{table: map[string]Standard{"Deadlift": {Level: WorldClass}}}
	levels := Compute(profile(models.GenderMale, 80), []ExerciseData{{ExerciseName: "Deadlift", Max1RM: 300}}, std)

	o := levels.Overall
	if o.Level != WorldClass {
		t.Errorf("level = %v, want World Class", o.Level)
	}
	if o.NextLevel != nil {
		t.Errorf("next level = %v, want nil", *o.NextLevel)
	}
	if o.Progress != 100 {
		t.Errorf("progress = %v, want 100", o.Progress)
	}
}

// TestComputeNoData verifies that missing profile fields or unscored data
// produce nil rather than a Beginner default.
func TestComputeNoData(t *testing.T) {
	tests := []struct {
		name    string
		profile *models.Profile
		data    []ExerciseData
	}{
		{name: "nil profile", profile: nil, data: balancedData},
		{name: "no gender", profile: profile("", 80), data: balancedData},
		{name: "no weight", profile: &models.Profile{Gender: models.GenderMale}, data: balancedData},
		{name: "no exercises", profile: profile(models.GenderMale, 80)},
		{name: "nothing scored", profile: profile(models.GenderMale, 80), data: []ExerciseData{{ExerciseName: "Cable Crossover"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compute(tt.profile, tt.data, balancedFixture); got != nil {
				t.Errorf("Compute() = %+v, want nil", got)
			}
		})
	}
}

// TestComputeUnclassifiedExercise verifies an exercise outside Push/Pull/Lower
// still counts toward the overall level but no group, and balanced stays unset.
func TestComputeUnclassifiedExercise(t *testing.T) {
	std := fakeStandards{table: map[string]Standard{"Farmer Carry": {Level: Novice, Progress: 40}}}
	data := []ExerciseData{{ExerciseName: "Farmer Carry", MuscleGroup: "other", Max1RM: 80}}

	levels := Compute(profile(models.GenderMale, 80), data, std)
	if levels == nil {
		t.Fatal("Compute returned nil")
	}
	if len(levels.Groups) != 0 {
		t.Errorf("groups = %d, want 0", len(levels.Groups))
	}
	o := levels.Overall
	if o.BalancedScore != nil || o.BalancedLevel != nil || o.BalancedProgress != nil || o.WeakestGroup != nil {
		t.Errorf("balanced fields set without groups: %+v", o)
	}
}

// TestComputeIdempotent verifies identical inputs give byte-identical output.
func TestComputeIdempotent(t *testing.T) {
	p := profile(models.GenderMale, 82.5)
	table := DefaultTable()
	data := []ExerciseData{
		{ExerciseID: "squat", ExerciseName: "Squat", MuscleGroup: "quads", Max1RM: 160},
		{ExerciseID: "bench-press", ExerciseName: "Bench Press", MuscleGroup: "chest", Max1RM: 110},
		{ExerciseID: "deadlift", ExerciseName: "Deadlift", MuscleGroup: "hamstrings", Max1RM: 200},
		{ExerciseID: "ohp", ExerciseName: "Overhead Press", MuscleGroup: "shoulders", Max1RM: 60},
		{ExerciseID: "row", ExerciseName: "Barbell Row", MuscleGroup: "back", Max1RM: 90},
	}

	first, err := json.Marshal(Compute(p, data, table))
	if err != nil {
		t.Fatal(err)
	}
	second, err := json.Marshal(Compute(p, data, table))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Errorf("outputs differ:\n%s\n%s", first, second)
	}
}
