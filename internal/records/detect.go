package records

import (
	"sort"

	"github.com/claude/ironlog/internal/models"
)

// Detect compares the working sets of one exercise against its history and
// returns the records they set, in single-rep-max, rep-max, scheme-max order.
// Warmup sets are ignored on both sides; set indices refer to positions in current.
func Detect(current, history []models.Set) []Detail {
	var prs []Detail

	if d, ok := detectRepMax(current, history, 1); ok {
		d.Kind = KindSingleRepMax
		d.Label = labelSingleRepMax
		prs = append(prs, d)
	}

	for _, reps := range distinctReps(current) {
		if d, ok := detectRepMax(current, history, reps); ok {
			d.Kind = KindRepMax
			d.Label = repMaxLabel(reps)
			prs = append(prs, d)
		}
	}

	if d, ok := detectScheme(current, history); ok {
		prs = append(prs, d)
	}

	return prs
}

// detectRepMax reports a record when the heaviest current set at exactly reps
// beats the heaviest historical set at the same rep count, or history has none.
func detectRepMax(current, history []models.Set, reps int) (Detail, bool) {
	cur, ok := maxWeightAt(current, reps)
	if !ok {
		return Detail{}, false
	}
	prev, hasPrev := maxWeightAt(history, reps)
	if hasPrev && cur <= prev {
		return Detail{}, false
	}

	d := Detail{Current: cur}
	if hasPrev {
		d.Previous = &prev
	}
	for i, s := range current {
		if s.IsWarmup || s.RepCount() != reps {
			continue
		}
		if w, ok := s.Weight(); ok && w == cur {
			d.SetIndices = append(d.SetIndices, i)
		}
	}
	return d, true
}

// detectScheme checks the best 5x5 total. The current session needs five
// qualifying sets; history without five qualifying sets has no total, which
// counts as no prior best.
func detectScheme(current, history []models.Set) (Detail, bool) {
	cur, ok := topSchemeTotal(current)
	if !ok {
		return Detail{}, false
	}
	prev, hasPrev := topSchemeTotal(history)
	if hasPrev && cur <= prev {
		return Detail{}, false
	}

	d := Detail{Kind: KindSchemeMax, Label: labelSchemeMax, Current: cur}
	if hasPrev {
		d.Previous = &prev
	}
	return d, true
}

func maxWeightAt(sets []models.Set, reps int) (float64, bool) {
	var best float64
	found := false
	for _, s := range sets {
		if s.IsWarmup || s.RepCount() != reps {
			continue
		}
		w, ok := s.Weight()
		if !ok {
			continue
		}
		if !found || w > best {
			best = w
			found = true
		}
	}
	return best, found
}

// distinctReps returns the ascending rep counts (> 0) of weighted working sets.
func distinctReps(sets []models.Set) []int {
	seen := make(map[int]bool)
	var reps []int
	for _, s := range sets {
		r := s.RepCount()
		if s.IsWarmup || r <= 0 || seen[r] {
			continue
		}
		if _, ok := s.Weight(); !ok {
			continue
		}
		seen[r] = true
		reps = append(reps, r)
	}
	sort.Ints(reps)
	return reps
}

func topSchemeTotal(sets []models.Set) (float64, bool) {
	var volumes []float64
	for _, s := range sets {
		if s.IsWarmup || s.RepCount() != schemeReps {
			continue
		}
		if w, ok := s.Weight(); ok {
			volumes = append(volumes, w*schemeReps)
		}
	}
	if len(volumes) < schemeSets {
		return 0, false
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(volumes)))

	var total float64
	for _, v := range volumes[:schemeSets] {
		total += v
	}
	return total, true
}
