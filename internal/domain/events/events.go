// internal/domain/events/events.go

package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Publisher publishes raw payloads to a subject. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Event kinds
const (
	KindItineraryGenerated = "itinerary.generated"
	KindItinerarySaved     = "itinerary.saved"
	KindCatalogSynced      = "catalog.synced"
)

// Envelope is the JSON body of every published event
type Envelope struct {
	Kind string          `json:"kind"`
	Time time.Time       `json:"time"`
	Data json.RawMessage `json:"data"`
}

// ItineraryGenerated is published after every successful planning pass
type ItineraryGenerated struct {
	ItineraryID string  `json:"itineraryId"`
	City        string  `json:"city"`
	ItemCount   int     `json:"itemCount"`
	TotalCost   float64 `json:"totalCost"`
	Matched     int     `json:"matched"`
}

// CatalogSynced is published after a provider sync completes
type CatalogSynced struct {
	Provider string `json:"provider"`
	City     string `json:"city"`
	Fetched  int    `json:"fetched"`
	Saved    int    `json:"saved"`
	Rejected int    `json:"rejected"`
}

// Subject joins the configured topic prefix and the event kind
func Subject(prefix, kind string) string {
	if prefix == "" {
		return kind
	}
	return fmt.Sprintf("%s.%s", prefix, kind)
}

// Publish wraps data in an envelope and publishes it
func Publish(p Publisher, prefix, kind string, data interface{}) error {
	if p == nil {
		return nil
	}

	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("error marshaling %s event: %w", kind, err)
	}

	msg, err := json.Marshal(Envelope{Kind: kind, Time: time.Now().UTC(), Data: body})
	if err != nil {
		return fmt.Errorf("error marshaling envelope: %w", err)
	}

	return p.Publish(Subject(prefix, kind), msg)
}
