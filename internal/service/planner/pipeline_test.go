package planner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"localvibe/internal/domain/experience"
	plannerDomain "localvibe/internal/domain/planner"
	"localvibe/internal/service/filter"
	"localvibe/internal/service/itinerary"
	"localvibe/internal/service/rank"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

func newTestPipeline() *Pipeline {
	assembler := itinerary.NewAssembler(itinerary.DefaultConfig(), itinerary.WithIDGenerator(func() string { return "itin" }))
	return NewPipeline(&rank.PopularityScorer{}, assembler, fixedClock{testNow})
}

func austinExperiences(prices ...float64) []experience.Experience {
	out := make([]experience.Experience, len(prices))
	for i, p := range prices {
		out[i] = experience.Experience{
			ID:         fmt.Sprintf("exp-%d", i),
			Title:      fmt.Sprintf("Experience %d", i),
			City:       "Austin",
			Category:   "Music",
			Price:      p,
			PriceKnown: true,
			Likes:      10 * (i + 1),
		}
	}
	return out
}

func TestRunBudgetFilter(t *testing.T) {
	budget := plannerDomain.ParseBudget("25")
	req := Request{Preferences: plannerDomain.Preferences{City: "Austin", Budget: budget}}

	res := newTestPipeline().Run(austinExperiences(10, 20, 30, 40, 50), req)

	if res.Matched != 2 {
		t.Fatalf("expected 2 survivors, got %d", res.Matched)
	}
	if len(res.Itinerary.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(res.Itinerary.Items))
	}
	for _, item := range res.Itinerary.Items {
		if item.Price > 25 {
			t.Errorf("item %s over budget: %v", item.ExperienceID, item.Price)
		}
	}
	if res.Itinerary.TotalCost > 25*float64(len(res.Itinerary.Items)) {
		t.Errorf("total cost %v exceeds budget bound", res.Itinerary.TotalCost)
	}
}

func TestRunEmptyInput(t *testing.T) {
	res := newTestPipeline().Run(nil, Request{Preferences: plannerDomain.Preferences{City: "Austin"}})

	it := res.Itinerary
	if len(it.Items) != 0 || it.TotalCost != 0 || it.TotalDurationHours != 0 {
		t.Fatalf("expected empty itinerary, got %+v", it)
	}
	if len(it.Insights) == 0 || it.Insights[0] == "" {
		t.Error("expected generic insights")
	}
}

func TestRunCityWithoutExperiences(t *testing.T) {
	res := newTestPipeline().Run(austinExperiences(10, 20), Request{
		Preferences: plannerDomain.Preferences{City: "Seattle"},
	})

	if res.Matched != 0 || len(res.Itinerary.Items) != 0 {
		t.Fatalf("expected nothing for Seattle, got matched=%d items=%d", res.Matched, len(res.Itinerary.Items))
	}
}

func TestRunSelectsTopFour(t *testing.T) {
	exps := austinExperiences(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)

	res := newTestPipeline().Run(exps, Request{Preferences: plannerDomain.Preferences{City: "All"}})

	if len(res.Itinerary.Items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(res.Itinerary.Items))
	}
	// likes grow with the index, so the last four rank highest
	want := []string{"exp-9", "exp-8", "exp-7", "exp-6"}
	for i, item := range res.Itinerary.Items {
		if item.ExperienceID != want[i] {
			t.Errorf("slot %d: expected %s, got %s", i, want[i], item.ExperienceID)
		}
		start := testNow.Add(time.Duration(2*i+1) * time.Hour)
		if !item.StartTime.Equal(start) || !item.EndTime.Equal(start.Add(time.Hour)) {
			t.Errorf("slot %d at [%s, %s]", i, item.StartTime, item.EndTime)
		}
	}
}

func TestRunMoodFilter(t *testing.T) {
	exps := []experience.Experience{
		{ID: "spa", Title: "Day pass", City: "Austin", Tags: []string{"spa"}, PriceKnown: true},
		{ID: "club", Title: "Late set", City: "Austin", Tags: []string{"nightlife"}, PriceKnown: true},
	}

	res := newTestPipeline().Run(exps, Request{Preferences: plannerDomain.Preferences{
		City:      "Austin",
		Interests: []string{"relaxed"},
	}})

	if res.Matched != 1 || res.Itinerary.Items[0].ExperienceID != "spa" {
		t.Fatalf("expected only the spa experience, got %+v", res.Itinerary.Items)
	}
	if !strings.Contains(res.Itinerary.Items[0].Reason, "relaxed") {
		t.Errorf("unexpected reason %q", res.Itinerary.Items[0].Reason)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	p := newTestPipeline()
	exps := austinExperiences(5, 15, 25, 35, 45, 55)
	req := Request{Preferences: plannerDomain.Preferences{City: "Austin", Interests: []string{"music"}}}

	first := p.Run(exps, req)
	second := p.Run(exps, req)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("expected identical results for identical input and clock")
	}
}

func TestRunExtraCriteria(t *testing.T) {
	exps := austinExperiences(10, 20, 30)
	exps[1].Title = "Jazz brunch"
	extraBudget := 15.0
	prefBudget := 100.0

	req := Request{
		Preferences: plannerDomain.Preferences{City: "Austin", Budget: &prefBudget},
		Extra:       filter.Criteria{Search: "jazz"},
	}
	if res := newTestPipeline().Run(exps, req); res.Matched != 1 {
		t.Errorf("expected search to narrow to one, got %d", res.Matched)
	}

	req.Extra = filter.Criteria{Budget: &extraBudget}
	if c := req.Criteria(); *c.Budget != 15 {
		t.Errorf("expected the tighter budget, got %v", *c.Budget)
	}
}

func TestRunIgnoresNonFiniteBudgets(t *testing.T) {
	nan := math.NaN()
	inf := math.Inf(1)

	tests := []struct {
		name string
		req  Request
	}{
		{"NaN preference", Request{Preferences: plannerDomain.Preferences{City: "Austin", Budget: &nan}}},
		{"NaN extra", Request{Preferences: plannerDomain.Preferences{City: "Austin"}, Extra: filter.Criteria{Budget: &nan}}},
		{"infinite extra", Request{Preferences: plannerDomain.Preferences{City: "Austin"}, Extra: filter.Criteria{Budget: &inf}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newTestPipeline().Run(austinExperiences(10, 20, 30), tt.req)
			if res.Matched != 3 || len(res.Itinerary.Items) != 3 {
				t.Errorf("expected no budget constraint, got matched=%d items=%d", res.Matched, len(res.Itinerary.Items))
			}
		})
	}
}

func TestRunRawCountsRejected(t *testing.T) {
	records := []experience.RawRecord{
		{Source: experience.SourceInternal, Fields: map[string]interface{}{"id": "a", "title": "Tour", "city": "Austin", "price": 12}},
		{Source: experience.SourceInternal, Fields: map[string]interface{}{"title": "No identity"}},
	}

	res := newTestPipeline().RunRaw(records, Request{Preferences: plannerDomain.Preferences{City: "Austin"}})

	if res.Input != 2 || res.Rejected != 1 || res.Matched != 1 {
		t.Fatalf("unexpected counts %+v", res)
	}
}

type fakeSource struct {
	experiences []experience.Experience
	err         error
	lastQuery   experience.ListQuery
}

func (f *fakeSource) FetchExperiences(ctx context.Context, q experience.ListQuery) ([]experience.Experience, error) {
	f.lastQuery = q
	return f.experiences, f.err
}

type recordingPublisher struct {
	subjects []string
}

func (r *recordingPublisher) Publish(subject string, data []byte) error {
	r.subjects = append(r.subjects, subject)
	return nil
}

func TestServicePlan(t *testing.T) {
	src := &fakeSource{experiences: austinExperiences(10, 20)}
	pub := &recordingPublisher{}
	svc := NewService(newTestPipeline(), src, pub, nil, ServiceConfig{EventsTopic: "localvibe", FetchLimit: 50})

	res, err := svc.Plan(context.Background(), Request{Preferences: plannerDomain.Preferences{City: "Austin"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Itinerary.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(res.Itinerary.Items))
	}
	if src.lastQuery.City != "Austin" || src.lastQuery.Limit != 50 {
		t.Errorf("unexpected source query %+v", src.lastQuery)
	}
	if len(pub.subjects) != 1 || pub.subjects[0] != "localvibe.itinerary.generated" {
		t.Errorf("unexpected published subjects %v", pub.subjects)
	}
}

func TestServicePlanRequiresCity(t *testing.T) {
	svc := NewService(newTestPipeline(), &fakeSource{}, nil, nil, ServiceConfig{})

	_, err := svc.Plan(context.Background(), Request{Preferences: plannerDomain.Preferences{City: "  "}})
	if !errors.Is(err, plannerDomain.ErrCityRequired) {
		t.Fatalf("expected ErrCityRequired, got %v", err)
	}
}

func TestServicePlanFetchFailure(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewService(newTestPipeline(), &fakeSource{err: errors.New("connection refused")}, pub, nil, ServiceConfig{})

	_, err := svc.Plan(context.Background(), Request{Preferences: plannerDomain.Preferences{City: "Austin"}})
	if !errors.Is(err, plannerDomain.ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
	if len(pub.subjects) != 0 {
		t.Error("expected no event for a failed fetch")
	}

	// an empty list is a valid, empty result
	svc = NewService(newTestPipeline(), &fakeSource{}, pub, nil, ServiceConfig{})
	res, err := svc.Plan(context.Background(), Request{Preferences: plannerDomain.Preferences{City: "Austin"}})
	if err != nil || len(res.Itinerary.Items) != 0 {
		t.Fatalf("expected empty itinerary without error, got %+v, %v", res, err)
	}
}
