package advisor

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

// Level is a named playing strength: the engine's skill option, the search
// limits, and how the suggestion is drawn from the top MultiPV lines.
type Level struct {
	Name             string
	SkillLevel       int
	MoveTimeMillis   int
	DepthCap         int
	MultiPV          int
	CandidateWeights []float64
}

var levels = map[string]Level{
	"level1": {Name: "level1", SkillLevel: 1, MoveTimeMillis: 20, DepthCap: 5, MultiPV: 3, CandidateWeights: []float64{0.5, 0.3, 0.2}},
	"level2": {Name: "level2", SkillLevel: 1, MoveTimeMillis: 60, DepthCap: 6, MultiPV: 3, CandidateWeights: []float64{0.6, 0.3, 0.1}},
	"level3": {Name: "level3", SkillLevel: 2, MoveTimeMillis: 80, DepthCap: 8, MultiPV: 3, CandidateWeights: []float64{0.7, 0.2, 0.1}},
	"level4": {Name: "level4", SkillLevel: 3, MoveTimeMillis: 140, DepthCap: 10, MultiPV: 3, CandidateWeights: []float64{0.65, 0.25, 0.1}},
	"level5": {Name: "level5", SkillLevel: 7, MoveTimeMillis: 200, DepthCap: 12, MultiPV: 3, CandidateWeights: []float64{0.7, 0.2, 0.1}},
	"level6": {Name: "level6", SkillLevel: 11, MoveTimeMillis: 300, DepthCap: 16, MultiPV: 2, CandidateWeights: []float64{0.8, 0.2}},
	"level7": {Name: "level7", SkillLevel: 16, MoveTimeMillis: 500, DepthCap: 20, MultiPV: 2, CandidateWeights: []float64{0.85, 0.15}},
	"level8": {Name: "level8", SkillLevel: 20, MoveTimeMillis: 1000, DepthCap: 30, MultiPV: 1, CandidateWeights: []float64{1.0}},
}

var levelAliases = map[string]string{
	"beginner":     "level1",
	"intermediate": "level5",
	"advanced":     "level7",
	"master":       "level8",
}

// LevelByName resolves level1..level8 or one of the aliases beginner,
// intermediate, advanced and master.
func LevelByName(name string) (Level, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := levelAliases[key]; ok {
		key = alias
	}
	l, ok := levels[key]
	if !ok {
		return Level{}, fmt.Errorf("unknown advisor level: %s", name)
	}
	l.CandidateWeights = append([]float64(nil), l.CandidateWeights...)
	return l, nil
}

// LevelNames lists the canonical level names in order.
func LevelNames() []string {
	out := make([]string, 0, len(levels))
	for k := range levels {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (l Level) validate() error {
	switch {
	case l.SkillLevel < 0 || l.SkillLevel > 20:
		return fmt.Errorf("skill level %d out of range 0-20", l.SkillLevel)
	case l.MultiPV <= 0:
		return fmt.Errorf("multipv must be > 0: %d", l.MultiPV)
	case len(l.CandidateWeights) < l.MultiPV:
		return fmt.Errorf("candidate weights (%d) must cover multipv (%d)", len(l.CandidateWeights), l.MultiPV)
	case l.MoveTimeMillis <= 0 && l.DepthCap <= 0:
		return fmt.Errorf("level %s does not define search limits", l.Name)
	}
	sum := 0.0
	for i, w := range l.CandidateWeights[:l.MultiPV] {
		if w < 0 {
			return fmt.Errorf("candidate weight at index %d is negative: %f", i, w)
		}
		sum += w
	}
	if sum == 0 {
		return errors.New("candidate weights sum to zero")
	}
	return nil
}

func (l Level) limits() Limits {
	return Limits{Depth: l.DepthCap, MoveTimeMillis: l.MoveTimeMillis, MultiPV: l.MultiPV}
}

// pickCandidate draws one of the first MultiPV candidates by weight.
func pickCandidate(l Level, candidates []Candidate, r *rand.Rand) (Candidate, error) {
	if len(candidates) == 0 {
		return Candidate{}, errors.New("no candidates to choose from")
	}
	limit := min(l.MultiPV, len(candidates))
	total := 0.0
	for i := range limit {
		total += l.CandidateWeights[i]
	}
	if total == 0 {
		return candidates[0], nil
	}
	threshold := r.Float64() * total
	for i := range limit {
		threshold -= l.CandidateWeights[i]
		if threshold <= 0 {
			return candidates[i], nil
		}
	}
	return candidates[limit-1], nil
}
