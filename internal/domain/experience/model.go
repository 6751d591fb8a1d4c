// internal/domain/experience/model.go

package experience

import (
	"errors"
	"fmt"
	"time"
)

// Source identifies where an experience record was ingested from
type Source string

const (
	SourceInternal     Source = "internal"
	SourceEventbrite   Source = "eventbrite"
	SourceTicketmaster Source = "ticketmaster"
	SourceGooglePlaces Source = "google_places"
)

// PriceType distinguishes free and paid experiences
type PriceType string

const (
	PriceFree PriceType = "free"
	PricePaid PriceType = "paid"
)

// Coordinates is a geographic point. A nil *Coordinates means the record has no
// usable location.
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Experience represents a bookable local activity or event
type Experience struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Tags        []string     `json:"tags"`
	HostName    string       `json:"hostName,omitempty"`
	ImageURL    string       `json:"imageUrl"`
	Location    string       `json:"location"`
	City        string       `json:"city,omitempty"`
	Coordinates *Coordinates `json:"coordinates"`
	StartTime   *time.Time   `json:"startTime,omitempty"`
	EndTime     *time.Time   `json:"endTime,omitempty"`
	Price       float64      `json:"price"`
	PriceKnown  bool         `json:"priceKnown"`
	PriceType   PriceType    `json:"type"`
	Currency    string       `json:"currency"`
	Likes       int          `json:"likes"`
	Saves       int          `json:"saves"`
	Views       int          `json:"views"`
	Rating      float64      `json:"rating"`
	Reviews     int          `json:"reviewCount"`
	Source      Source       `json:"source"`
	ExternalID  string       `json:"externalId,omitempty"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// HasLocation reports whether the experience can be placed on a map
func (e Experience) HasLocation() bool {
	return e.Coordinates != nil
}

// RawRecord is an untyped record as it arrives from a database row or a
// third-party catalog payload
type RawRecord struct {
	Source Source
	Fields map[string]interface{}
}

// ListQuery holds the parameters of an experience listing
type ListQuery struct {
	City     string
	Category string
	Search   string
	Limit    int
	Offset   int
}

// ValidationError reports a record that cannot become an Experience
type ValidationError struct {
	Source Source
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s record: %s %s", e.Source, e.Field, e.Reason)
}

// Common errors
var (
	ErrNotFound = errors.New("experience not found")
)
