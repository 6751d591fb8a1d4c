// internal/domain/planner/itinerary.go

package planner

import (
	"context"
	"errors"
	"time"

	"localvibe/internal/domain/experience"
)

// Item is one experience placed into a synthetic time slot
type Item struct {
	ExperienceID string                  `json:"experienceId"`
	Title        string                  `json:"title"`
	Category     string                  `json:"category"`
	Location     string                  `json:"location"`
	ImageURL     string                  `json:"imageUrl"`
	Coordinates  *experience.Coordinates `json:"coordinates"`
	Price        float64                 `json:"price"`
	Currency     string                  `json:"currency"`
	StartTime    time.Time               `json:"startTime"`
	EndTime      time.Time               `json:"endTime"`
	Reason       string                  `json:"reason"`
	Score        float64                 `json:"score"`
}

// Itinerary is a generated, time-sequenced plan. It is rebuilt on every
// planning pass and never mutated after construction.
type Itinerary struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	City               string    `json:"city"`
	Items              []Item    `json:"items"`
	TotalCost          float64   `json:"totalCost"`
	TotalDurationHours float64   `json:"totalDuration"`
	Insights           []string  `json:"insights"`
	Recommendations    []string  `json:"recommendations"`
	GeneratedAt        time.Time `json:"generatedAt"`
}

// ErrItineraryNotFound is returned when no saved itinerary has the id
var ErrItineraryNotFound = errors.New("itinerary not found")

// Repository persists saved itineraries
type Repository interface {
	SaveItinerary(ctx context.Context, it Itinerary) error
	GetItinerary(ctx context.Context, id string) (*Itinerary, error)
}
