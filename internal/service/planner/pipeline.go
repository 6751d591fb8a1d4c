// internal/service/planner/pipeline.go

package planner

import (
	"localvibe/internal/domain/experience"
	plannerDomain "localvibe/internal/domain/planner"
	"localvibe/internal/service/filter"
	"localvibe/internal/service/itinerary"
	"localvibe/internal/service/normalize"
	"localvibe/internal/service/rank"
)

// Request carries one planning pass's inputs beyond the experience list
type Request struct {
	Preferences plannerDomain.Preferences
	Window      plannerDomain.Window
	// Extra narrows the criteria derived from the preferences
	Extra filter.Criteria
}

// Criteria merges the preference-derived criteria with the extra filters
func (r Request) Criteria() filter.Criteria {
	c := filter.FromPreferences(r.Preferences)
	c.Date = r.Extra.Date
	c.Search = r.Extra.Search
	c.Near = r.Extra.Near
	c.RadiusKm = r.Extra.RadiusKm
	c.Moods = append(append([]string(nil), c.Moods...), r.Extra.Moods...)
	c.Categories = append(append([]string(nil), c.Categories...), r.Extra.Categories...)
	if r.Extra.Budget != nil && plannerDomain.ValidBudget(*r.Extra.Budget) && (c.Budget == nil || *r.Extra.Budget < *c.Budget) {
		c.Budget = r.Extra.Budget
	}
	return c
}

// Result is the output of a pass plus the counts behind it
type Result struct {
	Itinerary plannerDomain.Itinerary `json:"itinerary"`
	Input     int                     `json:"input"`
	Matched   int                     `json:"matched"`
	Rejected  int                     `json:"rejected"`
}

// Pipeline runs normalize, filter, rank and assemble in one synchronous pass.
// It performs no I/O; given the same clock reading it is deterministic apart
// from the itinerary id.
type Pipeline struct {
	normalizer *normalize.Normalizer
	scorer     plannerDomain.Scorer
	assembler  *itinerary.Assembler
	clock      plannerDomain.Clock
}

// NewPipeline creates a new pipeline
func NewPipeline(scorer plannerDomain.Scorer, assembler *itinerary.Assembler, clock plannerDomain.Clock) *Pipeline {
	if clock == nil {
		clock = plannerDomain.SystemClock{}
	}
	return &Pipeline{
		normalizer: normalize.NewNormalizer(),
		scorer:     scorer,
		assembler:  assembler,
		clock:      clock,
	}
}

// Run plans over already-normalized experiences
func (p *Pipeline) Run(experiences []experience.Experience, req Request) Result {
	prefs := req.Preferences.Normalize()
	req.Preferences = prefs
	now := p.clock.Now()

	matched := filter.Apply(experiences, req.Criteria())

	window := req.Window
	if window == "" {
		window = plannerDomain.WindowNow
	}
	ranked := rank.Rank(matched, p.scorer, plannerDomain.EvalContext{
		Now:       now,
		Window:    window,
		DayParts:  prefs.TimeOfDay,
		Interests: prefs.Interests,
		Budget:    prefs.Budget,
	})

	return Result{
		Itinerary: p.assembler.Assemble(ranked, prefs, now),
		Input:     len(experiences),
		Matched:   len(matched),
	}
}

// RunRaw normalizes raw records first; records without identity are skipped
// and counted as rejected
func (p *Pipeline) RunRaw(records []experience.RawRecord, req Request) Result {
	experiences, errs := p.normalizer.NormalizeAll(records)
	res := p.Run(experiences, req)
	res.Input = len(records)
	res.Rejected = len(errs)
	return res
}
