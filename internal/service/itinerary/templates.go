// internal/service/itinerary/templates.go

package itinerary

import (
	"fmt"
	"strings"

	"localvibe/internal/domain/planner"
)

// NarrativeTemplate renders the human-readable text of an itinerary
type NarrativeTemplate interface {
	Title(city string) string
	Description(city string, itemCount int) string
	Insights(p planner.Preferences, itemCount int) []string
	Recommendations(p planner.Preferences, itemCount int) []string
}

// DefaultNarrative is the fixed sentence set used for generated plans
type DefaultNarrative struct{}

// Title implements NarrativeTemplate
func (DefaultNarrative) Title(city string) string {
	if city == "" {
		return "Your Local Adventure"
	}
	return fmt.Sprintf("Your %s Adventure", city)
}

// Description implements NarrativeTemplate
func (DefaultNarrative) Description(city string, itemCount int) string {
	place := cityOr(city, "your area")
	if itemCount == 0 {
		return fmt.Sprintf("We couldn't find experiences in %s that match every preference yet.", place)
	}
	noun := "experiences"
	if itemCount == 1 {
		noun = "experience"
	}
	return fmt.Sprintf("A hand-picked plan of %d %s in %s, spaced out so you can enjoy each one.", itemCount, noun, place)
}

// Insights implements NarrativeTemplate
func (DefaultNarrative) Insights(p planner.Preferences, itemCount int) []string {
	place := cityOr(p.City, "your area")

	if itemCount == 0 {
		return []string{
			fmt.Sprintf("New experiences are added to %s every week.", place),
			"Locals often discover the best spots by keeping their plans flexible.",
		}
	}

	insights := []string{
		fmt.Sprintf("%s has a vibrant scene waiting for you.", place),
	}
	if len(p.Interests) > 0 {
		insights = append(insights, fmt.Sprintf("Your love of %s shaped this plan.", joinList(p.Interests)))
	}
	if len(p.TimeOfDay) > 0 {
		insights = append(insights, fmt.Sprintf("%s is a great time to explore %s.", capitalize(joinDayParts(p.TimeOfDay)), place))
	}
	if p.GroupSize != nil && *p.GroupSize > 1 {
		insights = append(insights, fmt.Sprintf("Every stop can host a group of %d.", *p.GroupSize))
	}
	return insights
}

// Recommendations implements NarrativeTemplate
func (DefaultNarrative) Recommendations(p planner.Preferences, itemCount int) []string {
	if itemCount == 0 {
		recs := []string{"Try removing a filter or widening your interests."}
		if p.Budget != nil {
			recs = append(recs, "Raising your budget a little can unlock more options.")
		}
		return append(recs, "Check back soon as new events are synced daily.")
	}

	recs := []string{
		"Book early, popular experiences fill up fast.",
		"Leave time between stops to travel comfortably.",
	}
	if p.Budget != nil {
		recs = append(recs, fmt.Sprintf("Everything here stays within your $%.0f budget.", *p.Budget))
	}
	if strings.TrimSpace(p.SpecialRequirements) != "" {
		recs = append(recs, "Contact hosts ahead of time about your special requirements.")
	}
	return recs
}

func cityOr(city, fallback string) string {
	if strings.TrimSpace(city) == "" {
		return fallback
	}
	return city
}

func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}

func joinDayParts(parts []planner.DayPart) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = string(p)
	}
	return joinList(s)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
