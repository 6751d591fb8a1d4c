package rank

import (
	"testing"
	"time"

	"localvibe/internal/domain/experience"
	"localvibe/internal/domain/planner"
)

// Wednesday mid-afternoon
var wednesday = time.Date(2026, 10, 14, 14, 0, 0, 0, time.UTC)

func TestPopularityScoreBounded(t *testing.T) {
	s := NewPopularityScorer()
	ctx := planner.EvalContext{Now: wednesday}

	huge := experience.Experience{ID: "h", Likes: 1_000_000, Saves: 50_000, Rating: 5}
	if got := s.Score(huge, ctx); got != MaxScore {
		t.Errorf("expected score capped at %v, got %v", MaxScore, got)
	}

	empty := experience.Experience{ID: "e"}
	if got := s.Score(empty, ctx); got != 0 {
		t.Errorf("expected zero score for no signal, got %v", got)
	}
}

func TestPopularityScoreMonotonic(t *testing.T) {
	s := NewPopularityScorer()
	ctx := planner.EvalContext{Now: wednesday}

	low := experience.Experience{ID: "l", Likes: 4, Saves: 2, Rating: 3.5}
	bumps := []experience.Experience{
		{ID: "l", Likes: 5, Saves: 2, Rating: 3.5},
		{ID: "l", Likes: 4, Saves: 3, Rating: 3.5},
		{ID: "l", Likes: 4, Saves: 2, Rating: 4.5},
		{ID: "l", Likes: 4, Saves: 2, Rating: 3.5, Views: 100},
		{ID: "l", Likes: 4, Saves: 2, Rating: 3.5, Reviews: 1},
	}

	base := s.Score(low, ctx)
	for i, b := range bumps {
		if got := s.Score(b, ctx); got <= base {
			t.Errorf("bump %d: expected score above %v, got %v", i, base, got)
		}
	}
}

func TestPeakMultiplier(t *testing.T) {
	s := NewPopularityScorer()
	food := experience.Experience{ID: "f", Category: "food", Likes: 20}

	afternoon := s.Score(food, planner.EvalContext{Now: wednesday})
	tonight := s.Score(food, planner.EvalContext{Now: wednesday, Window: planner.WindowTonight})

	if tonight != afternoon*PeakMultiplier {
		t.Errorf("expected evening peak boost: afternoon %v, tonight %v", afternoon, tonight)
	}

	outdoor := experience.Experience{ID: "o", Category: "outdoor", Likes: 20}
	weekday := s.Score(outdoor, planner.EvalContext{Now: wednesday})
	weekend := s.Score(outdoor, planner.EvalContext{Now: wednesday, Window: planner.WindowWeekend})
	if weekend <= weekday {
		t.Errorf("expected weekend boost for outdoor: %v vs %v", weekday, weekend)
	}
}

func TestRelevanceBonuses(t *testing.T) {
	s := NewPopularityScorer()
	soon := wednesday.Add(2 * time.Hour)
	budget := 50.0

	plain := experience.Experience{ID: "p", Category: "general", Price: 10, PriceKnown: true, Likes: 2}
	tagged := plain
	tagged.Tags = []string{"spa"}
	dated := plain
	dated.StartTime = &soon

	ctx := planner.EvalContext{Now: wednesday, Interests: []string{"relaxed"}, Budget: &budget}
	base := s.Score(plain, ctx)

	if got := s.Score(tagged, ctx); got <= base {
		t.Errorf("expected keyword bonus, got %v vs %v", got, base)
	}
	if got := s.Score(dated, ctx); got <= base {
		t.Errorf("expected recency bonus, got %v vs %v", got, base)
	}

	pricey := plain
	pricey.Price = 40
	if s.Score(pricey, ctx) >= base {
		t.Error("expected cheaper experience to fit the budget better")
	}
}

func TestRankStableTies(t *testing.T) {
	items := []experience.Experience{
		{ID: "a", Likes: 10},
		{ID: "b", Likes: 30},
		{ID: "c", Likes: 10},
		{ID: "d", Likes: 10},
	}

	got := Rank(items, NewPopularityScorer(), planner.EvalContext{Now: wednesday})

	want := []string{"b", "a", "c", "d"}
	for i, id := range want {
		if got[i].Experience.ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].Experience.ID)
		}
	}
}

func TestDemoScorerStable(t *testing.T) {
	s := NewDemoScorer(42)
	e := experience.Experience{ID: "exp-1"}

	first := s.Score(e, planner.EvalContext{})
	if first < 0 || first >= MaxScore {
		t.Fatalf("demo score out of range: %v", first)
	}
	if again := s.Score(e, planner.EvalContext{Now: wednesday}); again != first {
		t.Errorf("expected stable demo score, got %v then %v", first, again)
	}
	if other := NewDemoScorer(43).Score(e, planner.EvalContext{}); other == first {
		t.Log("different seeds happened to collide")
	}
}

func TestNewScorer(t *testing.T) {
	if _, err := NewScorer("popularity", 0); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := NewScorer("demo", 1); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := NewScorer("oracle", 0); err == nil {
		t.Error("expected error for unknown strategy")
	}
}
