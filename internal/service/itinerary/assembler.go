// internal/service/itinerary/assembler.go

package itinerary

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"localvibe/internal/domain/experience"
	"localvibe/internal/domain/planner"
	"localvibe/internal/service/filter"
	"localvibe/internal/service/rank"
)

// Config holds the synthetic scheduling policy
type Config struct {
	MaxItems        int
	FirstSlotOffset time.Duration
	SlotDuration    time.Duration
	SlotSpacing     time.Duration
	HoursPerItem    float64
}

// DefaultConfig returns the standard policy: up to four one-hour slots, two
// hours apart, the first starting an hour from now
func DefaultConfig() Config {
	return Config{
		MaxItems:        4,
		FirstSlotOffset: time.Hour,
		SlotDuration:    time.Hour,
		SlotSpacing:     2 * time.Hour,
		HoursPerItem:    2,
	}
}

// Validate rejects policies that would produce overlapping or empty slots
func (c Config) Validate() error {
	if c.MaxItems <= 0 {
		return fmt.Errorf("max items must be positive, got %d", c.MaxItems)
	}
	if c.SlotDuration <= 0 {
		return fmt.Errorf("slot duration must be positive, got %s", c.SlotDuration)
	}
	if c.SlotSpacing < c.SlotDuration {
		return fmt.Errorf("slot spacing %s is shorter than slot duration %s", c.SlotSpacing, c.SlotDuration)
	}
	if c.FirstSlotOffset < 0 {
		return fmt.Errorf("first slot offset must not be negative, got %s", c.FirstSlotOffset)
	}
	return nil
}

// ErrInvalidItinerary is returned when an itinerary breaks the slot policy
var ErrInvalidItinerary = errors.New("invalid itinerary")

// Assembler builds itineraries from ranked experiences
type Assembler struct {
	config    Config
	narrative NarrativeTemplate
	newID     func() string
}

// Option configures an Assembler
type Option func(*Assembler)

// WithIDGenerator overrides the itinerary id generator
func WithIDGenerator(fn func() string) Option {
	return func(a *Assembler) {
		a.newID = fn
	}
}

// WithNarrative overrides the text templates
func WithNarrative(n NarrativeTemplate) Option {
	return func(a *Assembler) {
		a.narrative = n
	}
}

// NewAssembler creates a new assembler
func NewAssembler(config Config, opts ...Option) *Assembler {
	a := &Assembler{
		config:    config,
		narrative: DefaultNarrative{},
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble takes the top ranked experiences and places them into synthetic,
// non-overlapping slots starting from now
func (a *Assembler) Assemble(ranked []rank.Ranked, p planner.Preferences, now time.Time) planner.Itinerary {
	n := len(ranked)
	if n > a.config.MaxItems {
		n = a.config.MaxItems
	}

	items := make([]planner.Item, 0, n)
	var totalCost float64

	for i := 0; i < n; i++ {
		e := ranked[i].Experience
		start := now.Add(a.config.FirstSlotOffset + time.Duration(i)*a.config.SlotSpacing)

		price := e.Price
		if !e.PriceKnown {
			price = 0
		}
		totalCost += price

		items = append(items, planner.Item{
			ExperienceID: e.ID,
			Title:        e.Title,
			Category:     e.Category,
			Location:     e.Location,
			ImageURL:     e.ImageURL,
			Coordinates:  e.Coordinates,
			Price:        price,
			Currency:     e.Currency,
			StartTime:    start,
			EndTime:      start.Add(a.config.SlotDuration),
			Reason:       reasonFor(e, p),
			Score:        ranked[i].Score,
		})
	}

	return planner.Itinerary{
		ID:                 a.newID(),
		Title:              a.narrative.Title(p.City),
		Description:        a.narrative.Description(p.City, len(items)),
		City:               p.City,
		Items:              items,
		TotalCost:          totalCost,
		TotalDurationHours: float64(len(items)) * a.config.HoursPerItem,
		Insights:           a.narrative.Insights(p, len(items)),
		Recommendations:    a.narrative.Recommendations(p, len(items)),
		GeneratedAt:        now,
	}
}

// Conform checks an itinerary built elsewhere against the slot policy: at most
// MaxItems items, each with an experience id, a non-negative price and a slot
// that starts after the previous one ends. Totals are recomputed from the items.
func (a *Assembler) Conform(it planner.Itinerary) (planner.Itinerary, error) {
	if len(it.Items) > a.config.MaxItems {
		return it, fmt.Errorf("%w: %d items exceeds the limit of %d", ErrInvalidItinerary, len(it.Items), a.config.MaxItems)
	}

	items := make([]planner.Item, len(it.Items))
	copy(items, it.Items)

	var totalCost float64
	for i, item := range items {
		if item.ExperienceID == "" {
			return it, fmt.Errorf("%w: item %d has no experience id", ErrInvalidItinerary, i)
		}
		if math.IsNaN(item.Price) || math.IsInf(item.Price, 0) || item.Price < 0 {
			return it, fmt.Errorf("%w: item %d has an invalid price", ErrInvalidItinerary, i)
		}
		if !item.EndTime.After(item.StartTime) {
			return it, fmt.Errorf("%w: item %d ends before it starts", ErrInvalidItinerary, i)
		}
		if i > 0 && item.StartTime.Before(items[i-1].EndTime) {
			return it, fmt.Errorf("%w: item %d overlaps the previous slot", ErrInvalidItinerary, i)
		}
		totalCost += item.Price
	}

	it.Items = items
	it.TotalCost = totalCost
	it.TotalDurationHours = float64(len(items)) * a.config.HoursPerItem
	return it, nil
}

// reasonFor explains an inclusion from the first matching interest and the budget
func reasonFor(e experience.Experience, p planner.Preferences) string {
	reason := "A highly rated local favorite"
	for _, in := range p.Interests {
		if filter.MatchesKeywords(e, filter.KeywordsFor(in)) {
			reason = fmt.Sprintf("Perfect for your interest in %s", in)
			break
		}
	}

	if p.Budget != nil && e.PriceKnown && e.Price <= *p.Budget {
		if e.Price == 0 {
			return reason + " and it's free"
		}
		return fmt.Sprintf("%s, within your $%.0f budget", reason, *p.Budget)
	}
	return reason
}
