package filter

import (
	"sort"
	"strings"
)

// Mood is a named preset mapping to a fixed keyword set
type Mood struct {
	Name     string   `json:"name"`
	Emoji    string   `json:"emoji"`
	Keywords []string `json:"keywords"`
}

var moods = map[string]Mood{
	"adventurous": {Name: "Adventurous", Emoji: "🧗", Keywords: []string{"adventure", "outdoor", "hiking", "climbing", "kayak", "zipline", "extreme", "explore"}},
	"relaxed":     {Name: "Relaxed", Emoji: "🧘", Keywords: []string{"spa", "wellness", "yoga", "meditation", "massage", "relax", "tea", "garden"}},
	"romantic":    {Name: "Romantic", Emoji: "💕", Keywords: []string{"romantic", "date", "wine", "sunset", "couples", "candlelight", "dinner"}},
	"social":      {Name: "Social", Emoji: "🎉", Keywords: []string{"party", "social", "meetup", "nightlife", "bar", "club", "trivia", "networking"}},
	"cultural":    {Name: "Cultural", Emoji: "🏛️", Keywords: []string{"museum", "art", "history", "culture", "gallery", "theater", "theatre", "heritage"}},
	"foodie":      {Name: "Foodie", Emoji: "🍜", Keywords: []string{"food", "dining", "restaurant", "tasting", "cooking", "brunch", "street food", "culinary"}},
	"energetic":   {Name: "Energetic", Emoji: "⚡", Keywords: []string{"fitness", "dance", "sports", "running", "cycling", "concert", "festival"}},
	"creative":    {Name: "Creative", Emoji: "🎨", Keywords: []string{"workshop", "craft", "painting", "pottery", "photography", "class", "diy"}},
	"family":      {Name: "Family", Emoji: "👨‍👩‍👧", Keywords: []string{"family", "kids", "children", "zoo", "aquarium", "park", "all ages"}},
}

// Moods returns the preset mood table sorted by name
func Moods() []Mood {
	out := make([]Mood, 0, len(moods))
	for _, m := range moods {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupMood finds a preset by case-insensitive name
func LookupMood(name string) (Mood, bool) {
	m, ok := moods[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}

// KeywordsFor returns the keyword set for a mood or interest. Names that are
// not presets act as their own single keyword.
func KeywordsFor(name string) []string {
	if m, ok := LookupMood(name); ok {
		return m.Keywords
	}
	kw := strings.ToLower(strings.TrimSpace(name))
	if kw == "" {
		return nil
	}
	return []string{kw}
}
