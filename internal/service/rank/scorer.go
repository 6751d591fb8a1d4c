// internal/service/rank/scorer.go

package rank

import (
	"math"
	"strings"
	"time"

	"localvibe/internal/domain/experience"
	"localvibe/internal/domain/planner"
	"localvibe/internal/service/filter"
)

// Score weights. These are presentation heuristics, not a statistical model.
const (
	MaxScore = 100.0

	LikeWeight   = 0.5
	SaveWeight   = 1.0
	ViewWeight   = 0.02
	ReviewWeight = 0.8
	RatingWeight = 4.0

	KeywordBonus   = 6.0
	PriceFitBonus  = 8.0
	RecencyBonus   = 10.0
	RecencyHorizon = 7 * 24 * time.Hour

	PeakMultiplier = 1.5
)

// peak describes when a category is most popular
type peak struct {
	parts   []planner.DayPart
	weekend bool
}

// categoryPeaks maps category keywords to their peak windows
var categoryPeaks = map[string]peak{
	"food":      {parts: []planner.DayPart{planner.Evening}},
	"dining":    {parts: []planner.DayPart{planner.Evening}},
	"nightlife": {parts: []planner.DayPart{planner.Night}, weekend: true},
	"music":     {parts: []planner.DayPart{planner.Evening, planner.Night}, weekend: true},
	"outdoor":   {parts: []planner.DayPart{planner.Morning}, weekend: true},
	"adventure": {parts: []planner.DayPart{planner.Morning}, weekend: true},
	"wellness":  {parts: []planner.DayPart{planner.Morning}},
	"arts":      {parts: []planner.DayPart{planner.Afternoon}},
	"culture":   {parts: []planner.DayPart{planner.Afternoon}},
	"sports":    {parts: []planner.DayPart{planner.Afternoon}, weekend: true},
	"family":    {parts: []planner.DayPart{planner.Morning, planner.Afternoon}, weekend: true},
}

// PopularityScorer scores by engagement counters plus relevance bonuses and
// boosts categories at their peak. Scores are deterministic, monotonic in
// every counter and capped at MaxScore.
type PopularityScorer struct{}

// NewPopularityScorer creates the default scorer
func NewPopularityScorer() *PopularityScorer {
	return &PopularityScorer{}
}

// Score implements planner.Scorer
func (s *PopularityScorer) Score(e experience.Experience, ctx planner.EvalContext) float64 {
	base := LikeWeight*float64(e.Likes) +
		SaveWeight*float64(e.Saves) +
		ViewWeight*float64(e.Views) +
		ReviewWeight*float64(e.Reviews) +
		RatingWeight*math.Max(0, e.Rating)

	base += KeywordBonus * float64(keywordMatches(e, ctx.Interests))
	base += priceFit(e, ctx.Budget)
	base += recency(e, ctx.Now)

	if inPeak(e.Category, ctx) {
		base *= PeakMultiplier
	}

	return clamp(base)
}

// keywordMatches counts the interests the experience matches
func keywordMatches(e experience.Experience, interests []string) int {
	n := 0
	for _, in := range interests {
		if filter.MatchesKeywords(e, filter.KeywordsFor(in)) {
			n++
		}
	}
	return n
}

// priceFit rewards experiences that leave room in the budget
func priceFit(e experience.Experience, budget *float64) float64 {
	if budget == nil || !e.PriceKnown || e.Price > *budget {
		return 0
	}
	if *budget == 0 {
		return PriceFitBonus
	}
	return PriceFitBonus * (1 - e.Price / *budget)
}

// recency rewards experiences starting soon; ongoing ones get nothing
func recency(e experience.Experience, now time.Time) float64 {
	if e.StartTime == nil || now.IsZero() {
		return 0
	}
	until := e.StartTime.Sub(now)
	if until < 0 || until > RecencyHorizon {
		return 0
	}
	return RecencyBonus * (1 - float64(until)/float64(RecencyHorizon))
}

// inPeak reports whether the evaluation context falls in the category's peak
func inPeak(category string, ctx planner.EvalContext) bool {
	category = strings.ToLower(category)

	parts := contextParts(ctx)
	weekend := ctx.Window == planner.WindowWeekend || (!ctx.Now.IsZero() && planner.IsWeekend(ctx.Now))

	for key, p := range categoryPeaks {
		if !strings.Contains(category, key) {
			continue
		}
		if p.weekend && weekend {
			return true
		}
		for _, want := range p.parts {
			if parts[want] {
				return true
			}
		}
	}
	return false
}

func contextParts(ctx planner.EvalContext) map[planner.DayPart]bool {
	parts := make(map[planner.DayPart]bool)
	for _, d := range ctx.DayParts {
		parts[d] = true
	}
	switch ctx.Window {
	case planner.WindowTonight:
		parts[planner.Evening] = true
		parts[planner.Night] = true
	case planner.WindowNow, "":
		if !ctx.Now.IsZero() {
			parts[planner.DayPartOf(ctx.Now)] = true
		}
	}
	return parts
}

func clamp(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return math.Min(MaxScore, v)
}
