package storage

import (
	"testing"
	"time"
)

// TestValuesClause verifies placeholder numbering for multi-row inserts.
func TestValuesClause(t *testing.T) {
	if got, want := valuesClause(2, 3), "($1,$2,$3),($4,$5,$6)"; got != want {
		t.Errorf("valuesClause(2, 3) = %q, want %q", got, want)
	}
	if got, want := valuesClause(1, 1), "($1)"; got != want {
		t.Errorf("valuesClause(1, 1) = %q, want %q", got, want)
	}
}

// TestDayRange verifies that a local timestamp maps to its UTC calendar day.
func TestDayRange(t *testing.T) {
	berlin := time.FixedZone("CET", 3600)
	start, end := dayRange(time.Date(2026, 3, 15, 0, 30, 0, 0, berlin))

	wantStart := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}
	if !end.Equal(wantStart.AddDate(0, 0, 1)) {
		t.Errorf("end = %v, want %v", end, wantStart.AddDate(0, 0, 1))
	}
}

// TestLikePattern verifies that user input cannot inject LIKE wildcards.
func TestLikePattern(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"   ", ""},
		{"bench", "%bench%"},
		{" Squat ", "%Squat%"},
		{"100%", `%100\%%`},
		{"a_b", `%a\_b%`},
	}
	for _, tt := range tests {
		if got := likePattern(tt.in); got != tt.want {
			t.Errorf("likePattern(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
