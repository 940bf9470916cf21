package strength

import (
	"encoding/json"
	"fmt"
	"math"
)

// Level is an ordered strength level. Its integer value is the level's base score.
type Level int

const (
	Beginner Level = iota + 1
	Novice
	Intermediate
	Advanced
	Elite
	WorldClass
)

// LevelOrder lists the levels from weakest to strongest.
var LevelOrder = []Level{Beginner, Novice, Intermediate, Advanced, Elite, WorldClass}

var levelNames = map[Level]string{
	Beginner:     "Beginner",
	Novice:       "Novice",
	Intermediate: "Intermediate",
	Advanced:     "Advanced",
	Elite:        "Elite",
	WorldClass:   "World Class",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Score returns the level's base score, 1 for Beginner up to 6 for World Class.
func (l Level) Score() int {
	return int(l)
}

func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *Level) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for lvl, n := range levelNames {
		if n == name {
			*l = lvl
			return nil
		}
	}
	return fmt.Errorf("unknown strength level %q", name)
}

// maxScore is the score at which progress is pinned to 100.
const maxScore = float64(WorldClass)

// fromScore maps a continuous score to its level, the next level (nil at
// World Class) and the progress through the current level in percent.
func fromScore(score float64) (Level, *Level, float64) {
	base := math.Floor(score)
	idx := int(base) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(LevelOrder)-1 {
		idx = len(LevelOrder) - 1
	}

	level := LevelOrder[idx]
	var next *Level
	if idx < len(LevelOrder)-1 {
		n := LevelOrder[idx+1]
		next = &n
	}

	progress := (score - base) * 100
	if score >= maxScore {
		progress = 100
	}
	return level, next, progress
}
