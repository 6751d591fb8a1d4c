// internal/domain/planner/context.go

package planner

import (
	"time"

	"localvibe/internal/domain/experience"
)

// Clock supplies the current time to planning code
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// Now returns time.Now
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Window is the discovery window a user is browsing
type Window string

const (
	WindowNow     Window = "now"
	WindowTonight Window = "tonight"
	WindowWeekend Window = "weekend"
)

// EvalContext is the explicit evaluation context for scoring
type EvalContext struct {
	Now       time.Time
	Window    Window
	DayParts  []DayPart
	Interests []string
	Budget    *float64
}

// Scorer assigns a bounded [0,100] relevance score to an experience
type Scorer interface {
	Score(e experience.Experience, ctx EvalContext) float64
}

// DayPartOf buckets a clock time into a day part
func DayPartOf(t time.Time) DayPart {
	h := t.Hour()
	switch {
	case h >= 5 && h < 12:
		return Morning
	case h >= 12 && h < 17:
		return Afternoon
	case h >= 17 && h < 21:
		return Evening
	default:
		return Night
	}
}

// IsWeekend reports whether t falls on Saturday or Sunday
func IsWeekend(t time.Time) bool {
	d := t.Weekday()
	return d == time.Saturday || d == time.Sunday
}
