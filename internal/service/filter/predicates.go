// Package filter composes independent experience filters into a single
// inclusion test. Every predicate is pure; unset criteria always pass.
package filter

import (
	"strings"
	"time"

	"localvibe/internal/domain/experience"
	"localvibe/internal/domain/planner"
	"localvibe/internal/service/geo"
)

// AllOption disables the city and category filters
const AllOption = "All"

// Criteria is the set of user-selected filters
type Criteria struct {
	City       string
	Categories []string
	Moods      []string
	Budget     *float64
	Date       *time.Time
	Search     string
	Near       *experience.Coordinates
	RadiusKm   float64
}

// Predicate is a single inclusion test
type Predicate func(e experience.Experience) bool

// Predicates returns the active predicates for c. Inactive filters contribute
// nothing, so an empty Criteria yields an empty list.
func (c Criteria) Predicates() []Predicate {
	var ps []Predicate

	if city := strings.TrimSpace(c.City); city != "" && !strings.EqualFold(city, AllOption) {
		ps = append(ps, cityPredicate(city))
	}
	if cats := activeCategories(c.Categories); len(cats) > 0 {
		ps = append(ps, categoryPredicate(cats))
	}
	if kws := moodKeywords(c.Moods); len(kws) > 0 {
		ps = append(ps, keywordPredicate(kws))
	}
	if c.Budget != nil {
		ps = append(ps, budgetPredicate(*c.Budget))
	}
	if c.Date != nil {
		ps = append(ps, datePredicate(*c.Date))
	}
	if q := strings.TrimSpace(c.Search); q != "" {
		ps = append(ps, searchPredicate(q))
	}
	if c.Near != nil && c.RadiusKm > 0 {
		ps = append(ps, radiusPredicate(*c.Near, c.RadiusKm))
	}

	return ps
}

// Matches reports whether e satisfies every active filter in c
func Matches(e experience.Experience, c Criteria) bool {
	for _, p := range c.Predicates() {
		if !p(e) {
			return false
		}
	}
	return true
}

// Apply returns the experiences matching c in input order
func Apply(experiences []experience.Experience, c Criteria) []experience.Experience {
	ps := c.Predicates()
	out := make([]experience.Experience, 0, len(experiences))

next:
	for _, e := range experiences {
		for _, p := range ps {
			if !p(e) {
				continue next
			}
		}
		out = append(out, e)
	}
	return out
}

// FromPreferences derives the filter criteria implied by user preferences
func FromPreferences(p planner.Preferences) Criteria {
	return Criteria{
		City:       p.City,
		Categories: p.ExperienceTypes,
		Moods:      p.Interests,
		Budget:     p.Budget,
	}
}

// MatchesKeywords reports whether any keyword appears in the experience's tags,
// title or description
func MatchesKeywords(e experience.Experience, keywords []string) bool {
	title := strings.ToLower(e.Title)
	desc := strings.ToLower(e.Description)
	for _, kw := range keywords {
		if strings.Contains(title, kw) || strings.Contains(desc, kw) {
			return true
		}
		for _, tag := range e.Tags {
			if strings.Contains(strings.ToLower(tag), kw) {
				return true
			}
		}
	}
	return false
}

func cityPredicate(city string) Predicate {
	want := strings.ToLower(city)
	return func(e experience.Experience) bool {
		have := e.City
		if have == "" {
			have = e.Location
		}
		return strings.Contains(strings.ToLower(have), want)
	}
}

// categoryPredicate matches when the first word of any selected label, such as
// "food" from "Food & Dining", occurs in the experience category
func categoryPredicate(labels []string) Predicate {
	words := make([]string, 0, len(labels))
	for _, l := range labels {
		if fields := strings.Fields(strings.ToLower(l)); len(fields) > 0 {
			words = append(words, fields[0])
		}
	}
	return func(e experience.Experience) bool {
		cat := strings.ToLower(e.Category)
		for _, w := range words {
			if strings.Contains(cat, w) {
				return true
			}
		}
		return false
	}
}

func keywordPredicate(keywords []string) Predicate {
	return func(e experience.Experience) bool {
		return MatchesKeywords(e, keywords)
	}
}

// budgetPredicate excludes experiences whose price could not be read
func budgetPredicate(budget float64) Predicate {
	return func(e experience.Experience) bool {
		return e.PriceKnown && e.Price <= budget
	}
}

func datePredicate(day time.Time) Predicate {
	y, m, d := day.Date()
	loc := day.Location()
	return func(e experience.Experience) bool {
		if e.StartTime == nil {
			return false
		}
		ey, em, ed := e.StartTime.In(loc).Date()
		return ey == y && em == m && ed == d
	}
}

func searchPredicate(q string) Predicate {
	q = strings.ToLower(q)
	return func(e experience.Experience) bool {
		for _, field := range []string{e.Title, e.Description, e.Location, e.City, e.Category} {
			if strings.Contains(strings.ToLower(field), q) {
				return true
			}
		}
		return false
	}
}

func radiusPredicate(center experience.Coordinates, radiusKm float64) Predicate {
	return func(e experience.Experience) bool {
		if e.Coordinates == nil {
			return false
		}
		return geo.Haversine(*e.Coordinates, center) <= radiusKm
	}
}

func activeCategories(labels []string) []string {
	var out []string
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if strings.EqualFold(l, AllOption) {
			return nil
		}
		out = append(out, l)
	}
	return out
}

func moodKeywords(names []string) []string {
	var out []string
	for _, n := range names {
		out = append(out, KeywordsFor(n)...)
	}
	return out
}
