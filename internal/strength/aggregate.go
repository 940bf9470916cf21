// Package strength scores a lifter's best lifts against population standards
// and aggregates them into levels per exercise, muscle group, exercise group
// (Push/Pull/Lower) and overall.
package strength

import (
	"sort"
	"time"

	"github.com/claude/ironlog/internal/models"
)

// imbalanceThreshold is the gap between the strongest and weakest exercise
// group averages, in levels, at which the weakest group is reported.
const imbalanceThreshold = 1.0

// LiftRecord is one historical best-weight point of an exercise.
type LiftRecord struct {
	Date     time.Time `json:"date"`
	WeightKg float64   `json:"weight_kg"`
	Reps     int       `json:"reps"`
}

// ExerciseData is a lifter's all-time best for one exercise.
type ExerciseData struct {
	ExerciseID   string       `json:"exercise_id"`
	ExerciseName string       `json:"exercise_name"`
	MuscleGroup  string       `json:"muscle_group"`
	Max1RM       float64      `json:"max_1rm"`
	Records      []LiftRecord `json:"records,omitempty"`
}

// LevelData is a score reduced to a level and the progress through it.
type LevelData struct {
	Level         Level   `json:"level"`
	NextLevel     *Level  `json:"next_level"`
	Progress      float64 `json:"progress"`
	AverageScore  float64 `json:"average_score"`
	ExerciseCount int     `json:"exercise_count"`
}

// ExerciseLevel is the scored level of a single exercise.
type ExerciseLevel struct {
	ExerciseID   string         `json:"exercise_id"`
	ExerciseName string         `json:"exercise_name"`
	MuscleGroup  string         `json:"muscle_group"`
	Group        *ExerciseGroup `json:"group,omitempty"`
	Max1RM       float64        `json:"max_1rm"`
	Score        float64        `json:"score"`
	Standard     Standard       `json:"standard"`
}

// GroupLevelData is the level of one exercise group.
type GroupLevelData struct {
	Group ExerciseGroup `json:"group"`
	LevelData
}

// MuscleGroupData is the level of one muscle group.
type MuscleGroupData struct {
	MuscleGroup string `json:"muscle_group"`
	LevelData
}

// OverallLevelData is the overall level plus the balanced level, which uses
// the harmonic mean of the exercise group averages. Balanced fields are nil
// when no exercise group has a scored exercise.
type OverallLevelData struct {
	LevelData
	BalancedLevel     *Level         `json:"balanced_level"`
	BalancedNextLevel *Level         `json:"balanced_next_level"`
	BalancedProgress  *float64       `json:"balanced_progress"`
	BalancedScore     *float64       `json:"balanced_score"`
	WeakestGroup      *ExerciseGroup `json:"weakest_group"`
}

// Levels is the full aggregation result.
type Levels struct {
	Overall      OverallLevelData  `json:"overall"`
	Groups       []GroupLevelData  `json:"groups"`
	MuscleGroups []MuscleGroupData `json:"muscle_groups"`
	Exercises    []ExerciseLevel   `json:"exercises"`
}

// Compute scores every exercise with a known standard and aggregates the
// scores. It returns nil when the profile lacks gender or body weight, or
// when no exercise could be scored.
func Compute(profile *models.Profile, data []ExerciseData, standards Standards) *Levels {
	if !profile.Complete() {
		return nil
	}
	bodyWeight := *profile.WeightKg

	var scored []ExerciseLevel
	for _, ex := range data {
		if !standards.Has(ex.ExerciseName) {
			continue
		}
		std, ok := standards.Lookup(ex.ExerciseName, profile.Gender, bodyWeight, ex.Max1RM)
		if !ok {
			continue
		}
		el := ExerciseLevel{
			ExerciseID:   ex.ExerciseID,
			ExerciseName: ex.ExerciseName,
			MuscleGroup:  ex.MuscleGroup,
			Max1RM:       ex.Max1RM,
			Score:        float64(std.Level.Score()) + std.Progress/100,
			Standard:     std,
		}
		if g, ok := GroupFor(ex.ExerciseName, ex.MuscleGroup); ok {
			el.Group = &g
		}
		scored = append(scored, el)
	}
	if len(scored) == 0 {
		return nil
	}

	levels := &Levels{
		Overall:      OverallLevelData{LevelData: reduce(scores(scored))},
		Groups:       groupLevels(scored),
		MuscleGroups: muscleGroupLevels(scored),
		Exercises:    scored,
	}
	applyBalanced(&levels.Overall, levels.Groups)

	sort.SliceStable(levels.Exercises, func(i, j int) bool {
		return levels.Exercises[i].ExerciseName < levels.Exercises[j].ExerciseName
	})
	return levels
}

func groupLevels(scored []ExerciseLevel) []GroupLevelData {
	byGroup := make(map[ExerciseGroup][]float64)
	for _, el := range scored {
		if el.Group != nil {
			byGroup[*el.Group] = append(byGroup[*el.Group], el.Score)
		}
	}

	var out []GroupLevelData
	for _, g := range ExerciseGroups {
		if s := byGroup[g]; len(s) > 0 {
			out = append(out, GroupLevelData{Group: g, LevelData: reduce(s)})
		}
	}
	return out
}

func muscleGroupLevels(scored []ExerciseLevel) []MuscleGroupData {
	byMuscle := make(map[string][]float64)
	var names []string
	for _, el := range scored {
		if _, ok := byMuscle[el.MuscleGroup]; !ok {
			names = append(names, el.MuscleGroup)
		}
		byMuscle[el.MuscleGroup] = append(byMuscle[el.MuscleGroup], el.Score)
	}
	sort.Strings(names)

	out := make([]MuscleGroupData, 0, len(names))
	for _, name := range names {
		out = append(out, MuscleGroupData{MuscleGroup: name, LevelData: reduce(byMuscle[name])})
	}
	return out
}

// applyBalanced fills the balanced fields from the non-empty groups.
func applyBalanced(overall *OverallLevelData, groups []GroupLevelData) {
	if len(groups) == 0 {
		return
	}

	var invSum float64
	weakest, strongest := groups[0], groups[0]
	for _, g := range groups {
		invSum += 1 / g.AverageScore
		if g.AverageScore < weakest.AverageScore {
			weakest = g
		}
		if g.AverageScore > strongest.AverageScore {
			strongest = g
		}
	}

	score := float64(len(groups)) / invSum
	level, next, progress := fromScore(score)
	overall.BalancedScore = &score
	overall.BalancedLevel = &level
	overall.BalancedNextLevel = next
	overall.BalancedProgress = &progress

	if strongest.AverageScore-weakest.AverageScore >= imbalanceThreshold {
		g := weakest.Group
		overall.WeakestGroup = &g
	}
}

func reduce(scores []float64) LevelData {
	var sum float64
	for _, s := range scores {
		sum += s
	}
	avg := sum / float64(len(scores))
	level, next, progress := fromScore(avg)
	return LevelData{
		Level:         level,
		NextLevel:     next,
		Progress:      progress,
		AverageScore:  avg,
		ExerciseCount: len(scores),
	}
}

func scores(scored []ExerciseLevel) []float64 {
	out := make([]float64, len(scored))
	for i, el := range scored {
		out[i] = el.Score
	}
	return out
}
