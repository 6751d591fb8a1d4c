package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"localvibe/internal/domain/experience"
)

func TestBuildListQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    experience.ListQuery
		contains []string
		args     []interface{}
	}{
		{
			name:     "no filters",
			query:    experience.ListQuery{},
			contains: []string{"WHERE 1=1", "ORDER BY likes DESC", "LIMIT $1"},
			args:     []interface{}{defaultListLimit},
		},
		{
			name:     "city all is ignored",
			query:    experience.ListQuery{City: "All", Limit: 10},
			contains: []string{"LIMIT $1"},
			args:     []interface{}{10},
		},
		{
			name:     "city and category",
			query:    experience.ListQuery{City: "Austin", Category: "Music"},
			contains: []string{"city ILIKE $1", "category ILIKE $2", "LIMIT $3"},
			args:     []interface{}{"%Austin%", "%music%", defaultListLimit},
		},
		{
			name:     "multi-word category matches on its first word",
			query:    experience.ListQuery{Category: "Food & Dining"},
			contains: []string{"category ILIKE $1", "LIMIT $2"},
			args:     []interface{}{"%food%", defaultListLimit},
		},
		{
			name:     "category wildcards are escaped",
			query:    experience.ListQuery{Category: "100%_fun"},
			contains: []string{"category ILIKE $1"},
			args:     []interface{}{`%100\%\_fun%`, defaultListLimit},
		},
		{
			name:     "search with paging",
			query:    experience.ListQuery{Search: "jazz", Limit: 1000, Offset: 20},
			contains: []string{"title ILIKE $1", "LIMIT $2", "OFFSET $3"},
			args:     []interface{}{"%jazz%", maxListLimit, 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildListQuery(tt.query)

			for _, want := range tt.contains {
				if !strings.Contains(query, want) {
					t.Errorf("expected query to contain %q:\n%s", want, query)
				}
			}
			if len(args) != len(tt.args) {
				t.Fatalf("expected %d args, got %d: %v", len(tt.args), len(args), args)
			}
			for i := range args {
				if args[i] != tt.args[i] {
					t.Errorf("arg %d: expected %v, got %v", i, tt.args[i], args[i])
				}
			}
		})
	}
}

type countingLister struct {
	calls int
	err   error
}

func (c *countingLister) ListExperiences(ctx context.Context, q experience.ListQuery) ([]experience.Experience, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []experience.Experience{{ID: q.City}}, nil
}

func TestCachedSource(t *testing.T) {
	lister := &countingLister{}
	c := NewCachedSource(lister, time.Minute, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.FetchExperiences(ctx, experience.ListQuery{City: "Austin"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	// keys ignore case and surrounding space
	if _, err := c.ListExperiences(ctx, experience.ListQuery{City: " austin "}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lister.calls != 1 {
		t.Errorf("expected one load, got %d", lister.calls)
	}

	c.ListExperiences(ctx, experience.ListQuery{City: "Denver"})
	if c.Len() != 2 {
		t.Errorf("expected 2 cached listings, got %d", c.Len())
	}

	c.Invalidate()
	if c.Len() != 0 {
		t.Error("expected an empty cache after invalidation")
	}
	c.ListExperiences(ctx, experience.ListQuery{City: "Austin"})
	if lister.calls != 3 {
		t.Errorf("expected a reload after invalidation, got %d calls", lister.calls)
	}
}

func TestCachedSourceDoesNotCacheErrors(t *testing.T) {
	lister := &countingLister{err: errors.New("db down")}
	c := NewCachedSource(lister, time.Minute, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := c.FetchExperiences(context.Background(), experience.ListQuery{}); err == nil {
			t.Fatal("expected the load error")
		}
	}
	if lister.calls != 2 || c.Len() != 0 {
		t.Errorf("expected no caching of failures, calls=%d len=%d", lister.calls, c.Len())
	}
}
