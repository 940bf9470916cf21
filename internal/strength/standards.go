package strength

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/claude/ironlog/internal/models"
	"gopkg.in/yaml.v3"
)

// Standard is the result of a strength standard lookup.
type Standard struct {
	Level    Level   `json:"level"`
	Progress float64 `json:"progress"`
}

// Standards maps a lift to a level given the lifter's gender and body weight.
type Standards interface {
	Has(exerciseName string) bool
	Lookup(exerciseName, gender string, bodyWeightKg, liftKg float64) (Standard, bool)
}

//go:embed standards.yaml
var defaultStandardsYAML []byte

// thresholdCount is the number of levels above Beginner.
const thresholdCount = 5

type tableFile struct {
	Exercises []tableEntry `yaml:"exercises"`
}

type tableEntry struct {
	Name    string    `yaml:"name"`
	Aliases []string  `yaml:"aliases"`
	Male    []float64 `yaml:"male"`
	Female  []float64 `yaml:"female"`
}

// Table is a Standards implementation backed by body-weight-ratio thresholds.
type Table struct {
	entries map[string]*tableEntry
}

var _ Standards = (*Table)(nil)

// DefaultTable returns the built-in standards table.
func DefaultTable() *Table {
	t, err := ParseTable(defaultStandardsYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in strength standards: %v", err))
	}
	return t
}

// LoadTable reads a standards table from a YAML file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading standards file: %w", err)
	}
	t, err := ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("parsing standards file %s: %w", path, err)
	}
	return t, nil
}

// ParseTable parses and validates a YAML standards table.
func ParseTable(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	t := &Table{entries: make(map[string]*tableEntry)}
	for i := range f.Exercises {
		e := &f.Exercises[i]
		if e.Name == "" {
			return nil, fmt.Errorf("exercise %d: name is required", i)
		}
		if err := validateThresholds(e.Male); err != nil {
			return nil, fmt.Errorf("%s male: %w", e.Name, err)
		}
		if err := validateThresholds(e.Female); err != nil {
			return nil, fmt.Errorf("%s female: %w", e.Name, err)
		}
		t.entries[normalizeName(e.Name)] = e
		for _, a := range e.Aliases {
			t.entries[normalizeName(a)] = e
		}
	}
	return t, nil
}

func validateThresholds(th []float64) error {
	if len(th) != thresholdCount {
		return fmt.Errorf("want %d thresholds, got %d", thresholdCount, len(th))
	}
	prev := 0.0
	for _, v := range th {
		if v <= prev {
			return fmt.Errorf("thresholds must be positive and increasing: %v", th)
		}
		prev = v
	}
	return nil
}

// Has reports whether the exercise has standards.
func (t *Table) Has(exerciseName string) bool {
	_, ok := t.entries[normalizeName(exerciseName)]
	return ok
}

// Lookup places liftKg within the exercise's bands for the given gender.
// Progress is the position within the band in percent; World Class has no
// upper bound and reports 0.
func (t *Table) Lookup(exerciseName, gender string, bodyWeightKg, liftKg float64) (Standard, bool) {
	e, ok := t.entries[normalizeName(exerciseName)]
	if !ok || bodyWeightKg <= 0 || liftKg <= 0 {
		return Standard{}, false
	}

	var th []float64
	switch gender {
	case models.GenderMale:
		th = e.Male
	case models.GenderFemale:
		th = e.Female
	default:
		return Standard{}, false
	}

	ratio := liftKg / bodyWeightKg
	idx := 0
	for idx < len(th) && ratio >= th[idx] {
		idx++
	}
	if idx == len(th) {
		return Standard{Level: WorldClass}, true
	}

	lo := 0.0
	if idx > 0 {
		lo = th[idx-1]
	}
	hi := th[idx]
	progress := (ratio - lo) / (hi - lo) * 100
	return Standard{Level: LevelOrder[idx], Progress: progress}, true
}
