// internal/domain/planner/preferences.go

package planner

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// DayPart is a coarse time-of-day bucket
type DayPart string

const (
	Morning   DayPart = "morning"
	Afternoon DayPart = "afternoon"
	Evening   DayPart = "evening"
	Night     DayPart = "night"
)

// ValidDayPart reports whether s names one of the known day parts
func ValidDayPart(s string) bool {
	switch DayPart(s) {
	case Morning, Afternoon, Evening, Night:
		return true
	}
	return false
}

// Preferences is the transient, client-held input of a planning pass
type Preferences struct {
	City                string    `json:"city"`
	ExperienceTypes     []string  `json:"experienceType"`
	Interests           []string  `json:"interests"`
	TimeOfDay           []DayPart `json:"timeOfDay"`
	Budget              *float64  `json:"budget,omitempty"`
	GroupSize           *int      `json:"groupSize,omitempty"`
	SpecialRequirements string    `json:"specialRequirements,omitempty"`
}

// Common errors
var (
	ErrCityRequired = errors.New("city is required")
	ErrFetchFailed  = errors.New("experience fetch failed")
)

// Validate checks the preferences are complete enough to plan with
func (p Preferences) Validate() error {
	if strings.TrimSpace(p.City) == "" {
		return ErrCityRequired
	}
	return nil
}

// Normalize returns a copy with trimmed values, duplicate set members removed
// and unknown day parts dropped
func (p Preferences) Normalize() Preferences {
	out := p
	out.City = strings.TrimSpace(p.City)
	out.ExperienceTypes = dedupe(p.ExperienceTypes)
	out.Interests = dedupe(p.Interests)

	var parts []DayPart
	seen := make(map[DayPart]bool)
	for _, d := range p.TimeOfDay {
		d = DayPart(strings.ToLower(strings.TrimSpace(string(d))))
		if !ValidDayPart(string(d)) || seen[d] {
			continue
		}
		seen[d] = true
		parts = append(parts, d)
	}
	out.TimeOfDay = parts

	if p.Budget != nil && !ValidBudget(*p.Budget) {
		out.Budget = nil
	}
	return out
}

// ToggleExperienceType adds the type if absent and removes it if present
func (p *Preferences) ToggleExperienceType(t string) {
	p.ExperienceTypes = Toggle(p.ExperienceTypes, t)
}

// ToggleInterest adds the interest if absent and removes it if present
func (p *Preferences) ToggleInterest(i string) {
	p.Interests = Toggle(p.Interests, i)
}

// ToggleTimeOfDay adds the day part if absent and removes it if present
func (p *Preferences) ToggleTimeOfDay(d DayPart) {
	for i, existing := range p.TimeOfDay {
		if existing == d {
			p.TimeOfDay = append(p.TimeOfDay[:i:i], p.TimeOfDay[i+1:]...)
			return
		}
	}
	p.TimeOfDay = append(p.TimeOfDay, d)
}

// Toggle flips membership of v in set without mutating the input slice
func Toggle(set []string, v string) []string {
	out := make([]string, 0, len(set)+1)
	found := false
	for _, s := range set {
		if s == v {
			found = true
			continue
		}
		out = append(out, s)
	}
	if !found {
		out = append(out, v)
	}
	return out
}

// UnmarshalJSON accepts budget and group size either as numbers or as the
// free-text strings form fields produce
func (p *Preferences) UnmarshalJSON(data []byte) error {
	type alias Preferences
	aux := struct {
		*alias
		Budget    json.RawMessage `json:"budget"`
		GroupSize json.RawMessage `json:"groupSize"`
	}{alias: (*alias)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	p.Budget = nil
	if b := rawString(aux.Budget); b != "" {
		p.Budget = ParseBudget(b)
	}

	p.GroupSize = nil
	if g := rawString(aux.GroupSize); g != "" {
		if n, err := strconv.Atoi(g); err == nil && n > 0 {
			p.GroupSize = &n
		}
	}

	return nil
}

// rawString returns a JSON scalar as text; null and empty yield ""
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}

// ParseBudget reads a budget ceiling such as "25", "$25" or "1,200".
// Anything unparseable means no constraint.
func ParseBudget(s string) *float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !ValidBudget(v) {
		return nil
	}
	return &v
}

// ValidBudget reports whether v can serve as a budget ceiling. NaN, infinite
// and negative values cannot.
func ValidBudget(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
