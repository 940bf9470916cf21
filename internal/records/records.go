// Package records detects personal records in a logged session by comparing
// its sets against the lifter's history for the same exercise.
package records

import "fmt"

// Kind identifies which record a PR belongs to.
type Kind string

const (
	KindSingleRepMax Kind = "single-rep-max"
	KindRepMax       Kind = "rep-max"
	KindSchemeMax    Kind = "scheme-max"
)

const (
	schemeReps = 5
	schemeSets = 5

	labelSingleRepMax = "1RM"
	labelSchemeMax    = "Best 5x5 total"
)

// Detail is one detected personal record.
type Detail struct {
	Kind       Kind     `json:"kind"`
	Label      string   `json:"label"`
	Previous   *float64 `json:"previous,omitempty"`
	Current    float64  `json:"current"`
	SetIndices []int    `json:"set_indices,omitempty"`
}

// ExerciseRecords groups the PRs of one exercise.
type ExerciseRecords struct {
	ExerciseID   string   `json:"exercise_id"`
	ExerciseName string   `json:"exercise_name"`
	PRs          []Detail `json:"prs"`
}

// Result is the outcome of a PR computation. Exercises without PRs are omitted.
type Result struct {
	TotalPRs    int               `json:"total_prs"`
	PerExercise []ExerciseRecords `json:"per_exercise"`
}

func repMaxLabel(reps int) string {
	return fmt.Sprintf("%d-rep max", reps)
}
