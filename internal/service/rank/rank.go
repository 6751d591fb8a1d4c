package rank

import (
	"fmt"
	"sort"

	"localvibe/internal/domain/experience"
	"localvibe/internal/domain/planner"
)

// Strategy names accepted by NewScorer
const (
	StrategyPopularity = "popularity"
	StrategyDemo       = "demo"
)

// Ranked is an experience with its score
type Ranked struct {
	Experience experience.Experience
	Score      float64
}

// Rank scores every experience and orders them by descending score. Equal
// scores keep their input order.
func Rank(experiences []experience.Experience, scorer planner.Scorer, ctx planner.EvalContext) []Ranked {
	out := make([]Ranked, len(experiences))
	for i, e := range experiences {
		out[i] = Ranked{Experience: e, Score: scorer.Score(e, ctx)}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	return out
}

// NewScorer builds the scorer for a configured strategy name
func NewScorer(strategy string, seed int64) (planner.Scorer, error) {
	switch strategy {
	case "", StrategyPopularity:
		return NewPopularityScorer(), nil
	case StrategyDemo:
		return NewDemoScorer(seed), nil
	default:
		return nil, fmt.Errorf("unknown ranking strategy: %s", strategy)
	}
}
