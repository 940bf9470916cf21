package models

import "testing"

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

// TestSetWeight verifies that null and non-positive weights are unusable.
func TestSetWeight(t *testing.T) {
	tests := []struct {
		name   string
		weight *float64
		want   float64
		wantOK bool
	}{
		{name: "nil", weight: nil},
		{name: "zero", weight: floatPtr(0)},
		{name: "negative", weight: floatPtr(-5)},
		{name: "positive", weight: floatPtr(62.5), want: 62.5, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Set{WeightKg: tt.weight}.Weight()
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Weight() = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

// TestSetRepCount verifies the -1 sentinel for unrecorded reps.
func TestSetRepCount(t *testing.T) {
	if got := (Set{}).RepCount(); got != -1 {
		t.Errorf("RepCount() = %d, want -1", got)
	}
	if got := (Set{Reps: intPtr(5)}).RepCount(); got != 5 {
		t.Errorf("RepCount() = %d, want 5", got)
	}
}

// TestProfileComplete verifies that both gender and a positive body weight are required.
func TestProfileComplete(t *testing.T) {
	var nilProfile *Profile
	if nilProfile.Complete() {
		t.Error("nil profile reported complete")
	}
	if (&Profile{Gender: GenderMale}).Complete() {
		t.Error("profile without weight reported complete")
	}
	if (&Profile{WeightKg: floatPtr(80)}).Complete() {
		t.Error("profile without gender reported complete")
	}
	if !(&Profile{Gender: GenderFemale, WeightKg: floatPtr(60)}).Complete() {
		t.Error("full profile reported incomplete")
	}
}

func TestExerciseSlug(t *testing.T) {
	tests := map[string]string{
		"Bench Press":           "bench-press",
		"Bench Press (Barbell)": "bench-press-barbell",
		"  Pull-Ups ":           "pull-ups",
		"45° Leg Press":         "45-leg-press",
		"":                      "",
	}
	for in, want := range tests {
		if got := ExerciseSlug(in); got != want {
			t.Errorf("ExerciseSlug(%q) = %q, want %q", in, got, want)
		}
	}
}
