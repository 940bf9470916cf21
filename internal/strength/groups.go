package strength

import "strings"

// ExerciseGroup is the coarse movement class used for the balanced level.
type ExerciseGroup string

const (
	GroupPush  ExerciseGroup = "Push"
	GroupPull  ExerciseGroup = "Pull"
	GroupLower ExerciseGroup = "Lower"
)

// ExerciseGroups lists the groups in display order.
var ExerciseGroups = []ExerciseGroup{GroupPush, GroupPull, GroupLower}

type catalogEntry struct {
	name        string
	muscleGroup string
	group       ExerciseGroup
	aliases     []string
}

var catalog = []catalogEntry{
	{"Bench Press", "chest", GroupPush, []string{"Barbell Bench Press", "Flat Bench Press", "BB Bench"}},
	{"Incline Bench Press", "chest", GroupPush, []string{"Incline Barbell Press", "Incline Press"}},
	{"Dumbbell Bench Press", "chest", GroupPush, []string{"DB Bench Press", "Dumbbell Press"}},
	{"Close Grip Bench Press", "triceps", GroupPush, []string{"Close-Grip Bench Press", "CGBP"}},
	{"Overhead Press", "shoulders", GroupPush, []string{"OHP", "Military Press", "Standing Press", "Barbell Shoulder Press"}},
	{"Dips", "triceps", GroupPush, []string{"Weighted Dips", "Chest Dips"}},
	{"Barbell Row", "back", GroupPull, []string{"Bent Over Row", "BB Row", "Pendlay Row"}},
	{"Lat Pulldown", "back", GroupPull, []string{"Wide Grip Lat Pulldown", "Cable Pulldown"}},
	{"Seated Cable Row", "back", GroupPull, []string{"Cable Row", "Seated Row"}},
	{"Pull Ups", "back", GroupPull, []string{"Pull-Ups", "Weighted Pull Ups", "Chin Ups"}},
	{"Barbell Curl", "biceps", GroupPull, []string{"BB Curl", "Standing Barbell Curl"}},
	{"Squat", "quads", GroupLower, []string{"Back Squat", "Barbell Squat", "High Bar Squat", "Low Bar Squat"}},
	{"Front Squat", "quads", GroupLower, []string{"Barbell Front Squat"}},
	{"Deadlift", "hamstrings", GroupLower, []string{"Conventional Deadlift", "Barbell Deadlift", "Sumo Deadlift"}},
	{"Romanian Deadlift", "hamstrings", GroupLower, []string{"RDL", "Stiff Leg Deadlift"}},
	{"Leg Press", "quads", GroupLower, []string{"Machine Leg Press", "45 Degree Leg Press"}},
	{"Hip Thrust", "glutes", GroupLower, []string{"Barbell Hip Thrust", "Glute Bridge"}},
	{"Hack Squats", "quads", GroupLower, []string{"Hack Squat", "Machine Hack Squat"}},
	{"Standing Calf Raises", "calves", GroupLower, []string{"Calf Raise", "Standing Calf Raise"}},
}

var catalogIndex = buildCatalogIndex()

func buildCatalogIndex() map[string]catalogEntry {
	idx := make(map[string]catalogEntry, len(catalog)*3)
	for _, e := range catalog {
		idx[normalizeName(e.name)] = e
		for _, a := range e.aliases {
			idx[normalizeName(a)] = e
		}
	}
	return idx
}

var muscleGroupClass = map[string]ExerciseGroup{
	"chest":      GroupPush,
	"shoulders":  GroupPush,
	"triceps":    GroupPush,
	"back":       GroupPull,
	"lats":       GroupPull,
	"biceps":     GroupPull,
	"forearms":   GroupPull,
	"legs":       GroupLower,
	"quads":      GroupLower,
	"hamstrings": GroupLower,
	"glutes":     GroupLower,
	"calves":     GroupLower,
}

// GroupFor classifies an exercise as Push, Pull or Lower. Known exercise names
// win; otherwise the muscle group decides. Unclassifiable exercises return false.
func GroupFor(exerciseName, muscleGroup string) (ExerciseGroup, bool) {
	if e, ok := catalogIndex[normalizeName(exerciseName)]; ok {
		return e.group, true
	}
	g, ok := muscleGroupClass[strings.ToLower(strings.TrimSpace(muscleGroup))]
	return g, ok
}

// muscleKeywords is checked in order; the first keyword contained in the
// normalized exercise name decides.
var muscleKeywords = []struct {
	keyword     string
	muscleGroup string
}{
	{"calf", "calves"},
	{"leg curl", "hamstrings"},
	{"curl", "biceps"},
	{"tricep", "triceps"},
	{"pushdown", "triceps"},
	{"skull", "triceps"},
	{"lateral raise", "shoulders"},
	{"shoulder", "shoulders"},
	{"overhead", "shoulders"},
	{"bench", "chest"},
	{"fly", "chest"},
	{"chest", "chest"},
	{"row", "back"},
	{"pulldown", "back"},
	{"pull up", "back"},
	{"chin", "back"},
	{"deadlift", "hamstrings"},
	{"hamstring", "hamstrings"},
	{"hip", "glutes"},
	{"glute", "glutes"},
	{"lunge", "quads"},
	{"squat", "quads"},
	{"leg press", "quads"},
	{"leg extension", "quads"},
	{"hyperextension", "back"},
	{"leg raise", "core"},
	{"crunch", "core"},
	{"plank", "core"},
}

// MuscleGroupFor guesses an exercise's muscle group from its name.
// It returns "other" when nothing matches.
func MuscleGroupFor(exerciseName string) string {
	n := normalizeName(exerciseName)
	if e, ok := catalogIndex[n]; ok {
		return e.muscleGroup
	}
	for _, k := range muscleKeywords {
		if strings.Contains(n, k.keyword) {
			return k.muscleGroup
		}
	}
	return "other"
}

// normalizeName lowercases, turns hyphens into spaces and collapses whitespace.
func normalizeName(name string) string {
	name = strings.ToLower(strings.ReplaceAll(name, "-", " "))
	return strings.Join(strings.Fields(name), " ")
}
