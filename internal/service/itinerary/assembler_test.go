package itinerary

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"localvibe/internal/domain/experience"
	"localvibe/internal/domain/planner"
	"localvibe/internal/service/rank"
)

var now = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func rankedN(n int) []rank.Ranked {
	out := make([]rank.Ranked, n)
	for i := range out {
		out[i] = rank.Ranked{
			Experience: experience.Experience{
				ID:         string(rune('a' + i)),
				Title:      "Experience",
				Price:      float64(10 * (i + 1)),
				PriceKnown: true,
			},
			Score: float64(100 - i),
		}
	}
	return out
}

func fixedID() string { return "itin-1" }

func TestAssembleSlotsAndCap(t *testing.T) {
	a := NewAssembler(DefaultConfig(), WithIDGenerator(fixedID))

	it := a.Assemble(rankedN(10), planner.Preferences{City: "Austin"}, now)

	if len(it.Items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(it.Items))
	}

	for i, item := range it.Items {
		wantStart := now.Add(time.Duration(2*i+1) * time.Hour)
		wantEnd := now.Add(time.Duration(2*i+2) * time.Hour)
		if !item.StartTime.Equal(wantStart) || !item.EndTime.Equal(wantEnd) {
			t.Errorf("item %d: got [%s, %s], want [%s, %s]", i, item.StartTime, item.EndTime, wantStart, wantEnd)
		}
		if i > 0 && it.Items[i-1].EndTime.After(item.StartTime) {
			t.Errorf("item %d overlaps the previous slot", i)
		}
	}

	if it.TotalDurationHours != 8 {
		t.Errorf("expected 8 hours, got %v", it.TotalDurationHours)
	}
	if it.TotalCost != 100 {
		t.Errorf("expected total cost 100, got %v", it.TotalCost)
	}
	if it.ID != "itin-1" || it.Title != "Your Austin Adventure" {
		t.Errorf("unexpected id/title %q %q", it.ID, it.Title)
	}
}

func TestAssembleEmpty(t *testing.T) {
	a := NewAssembler(DefaultConfig())

	it := a.Assemble(nil, planner.Preferences{City: "Seattle"}, now)

	if len(it.Items) != 0 || it.TotalCost != 0 || it.TotalDurationHours != 0 {
		t.Fatalf("expected empty itinerary, got %+v", it)
	}
	if len(it.Insights) == 0 || len(it.Recommendations) == 0 {
		t.Fatal("expected generic insight and recommendation text")
	}
	if it.ID == "" {
		t.Error("expected a generated id")
	}
}

func TestAssembleUnknownPriceCountsZero(t *testing.T) {
	ranked := []rank.Ranked{
		{Experience: experience.Experience{ID: "a", Price: 20, PriceKnown: true}},
		{Experience: experience.Experience{ID: "b", PriceKnown: false}},
	}

	it := NewAssembler(DefaultConfig()).Assemble(ranked, planner.Preferences{}, now)

	var sum float64
	for _, item := range it.Items {
		sum += item.Price
	}
	if math.Abs(it.TotalCost-sum) > 1e-9 || it.TotalCost != 20 {
		t.Errorf("expected additive cost 20, got %v (items %v)", it.TotalCost, sum)
	}
}

func TestAssembleCustomPolicy(t *testing.T) {
	cfg := Config{MaxItems: 2, FirstSlotOffset: 30 * time.Minute, SlotDuration: 90 * time.Minute, SlotSpacing: 3 * time.Hour, HoursPerItem: 3}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	it := NewAssembler(cfg).Assemble(rankedN(5), planner.Preferences{}, now)

	if len(it.Items) != 2 || it.TotalDurationHours != 6 {
		t.Fatalf("unexpected itinerary %+v", it)
	}
	if want := now.Add(210 * time.Minute); !it.Items[1].StartTime.Equal(want) {
		t.Errorf("expected second slot at %s, got %s", want, it.Items[1].StartTime)
	}
}

func TestConfigValidate(t *testing.T) {
	bad := []Config{
		{MaxItems: 0, SlotDuration: time.Hour, SlotSpacing: time.Hour},
		{MaxItems: 4, SlotDuration: 0, SlotSpacing: time.Hour},
		{MaxItems: 4, SlotDuration: 2 * time.Hour, SlotSpacing: time.Hour},
		{MaxItems: 4, SlotDuration: time.Hour, SlotSpacing: time.Hour, FirstSlotOffset: -time.Minute},
	}
	for i, c := range bad {
		if err := c.Validate(); err == nil {
			t.Errorf("config %d: expected validation error", i)
		}
	}
}

func TestReasons(t *testing.T) {
	budget := 30.0
	p := planner.Preferences{Interests: []string{"foodie", "relaxed"}, Budget: &budget}

	spa := experience.Experience{ID: "s", Tags: []string{"spa"}, Price: 25, PriceKnown: true}
	if got := reasonFor(spa, p); !strings.Contains(got, "relaxed") || !strings.Contains(got, "$30") {
		t.Errorf("unexpected reason %q", got)
	}

	free := experience.Experience{ID: "f", Title: "Food truck rally", PriceKnown: true}
	if got := reasonFor(free, p); !strings.Contains(got, "foodie") || !strings.Contains(got, "free") {
		t.Errorf("unexpected reason %q", got)
	}

	if got := reasonFor(experience.Experience{ID: "x"}, planner.Preferences{}); got != "A highly rated local favorite" {
		t.Errorf("unexpected fallback reason %q", got)
	}
}

func TestInsightsInterpolatePreferences(t *testing.T) {
	a := NewAssembler(DefaultConfig())
	p := planner.Preferences{
		City:      "Austin",
		Interests: []string{"music", "food"},
		TimeOfDay: []planner.DayPart{planner.Evening},
	}

	it := a.Assemble(rankedN(2), p, now)
	joined := strings.Join(it.Insights, " ")

	for _, want := range []string{"Austin", "music and food", "Evening"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected insights to mention %q: %v", want, it.Insights)
		}
	}
}

func TestConformAcceptsAssembledItinerary(t *testing.T) {
	a := NewAssembler(DefaultConfig(), WithIDGenerator(fixedID))
	it := a.Assemble(rankedN(3), planner.Preferences{City: "Austin"}, now)

	it.TotalCost = 9999
	it.TotalDurationHours = 42

	got, err := a.Conform(it)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TotalCost != 60 || got.TotalDurationHours != 6 {
		t.Errorf("expected recomputed totals 60 and 6, got %v and %v", got.TotalCost, got.TotalDurationHours)
	}
}

func TestConformRejectsPolicyViolations(t *testing.T) {
	a := NewAssembler(DefaultConfig(), WithIDGenerator(fixedID))
	base := a.Assemble(rankedN(3), planner.Preferences{City: "Austin"}, now)

	withItems := func(mutate func(items []planner.Item) []planner.Item) planner.Itinerary {
		it := base
		items := make([]planner.Item, len(base.Items))
		copy(items, base.Items)
		it.Items = mutate(items)
		return it
	}

	tests := []struct {
		name string
		it   planner.Itinerary
	}{
		{"too many items", withItems(func(items []planner.Item) []planner.Item {
			for i := 0; i < 2; i++ {
				next := items[len(items)-1]
				next.ExperienceID += "x"
				next.StartTime = next.EndTime.Add(time.Hour)
				next.EndTime = next.StartTime.Add(time.Hour)
				items = append(items, next)
			}
			return items
		})},
		{"overlapping slots", withItems(func(items []planner.Item) []planner.Item {
			items[1].StartTime = items[0].StartTime.Add(30 * time.Minute)
			return items
		})},
		{"empty slot", withItems(func(items []planner.Item) []planner.Item {
			items[0].EndTime = items[0].StartTime
			return items
		})},
		{"negative price", withItems(func(items []planner.Item) []planner.Item {
			items[2].Price = -5
			return items
		})},
		{"missing experience id", withItems(func(items []planner.Item) []planner.Item {
			items[0].ExperienceID = ""
			return items
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.Conform(tt.it); !errors.Is(err, ErrInvalidItinerary) {
				t.Errorf("expected ErrInvalidItinerary, got %v", err)
			}
		})
	}
}
