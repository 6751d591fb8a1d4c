// internal/service/catalog/eventbrite.go

package catalog

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"localvibe/internal/domain/experience"
)

// EventbriteClient fetches events from the Eventbrite API
type EventbriteClient struct {
	httpClient
}

type eventbriteText struct {
	Text string `json:"text"`
}

type eventbriteEvent struct {
	ID          string         `json:"id"`
	Name        eventbriteText `json:"name"`
	Description eventbriteText `json:"description"`
	Start       struct {
		UTC string `json:"utc"`
	} `json:"start"`
	End struct {
		UTC string `json:"utc"`
	} `json:"end"`
	Logo *struct {
		URL string `json:"url"`
	} `json:"logo"`
	IsFree   bool `json:"is_free"`
	Category *struct {
		ShortName string `json:"short_name"`
	} `json:"category"`
	Organizer *struct {
		Name string `json:"name"`
	} `json:"organizer"`
	Venue *struct {
		Name    string `json:"name"`
		Address struct {
			City      string `json:"city"`
			Latitude  string `json:"latitude"`
			Longitude string `json:"longitude"`
		} `json:"address"`
	} `json:"venue"`
	TicketAvailability *struct {
		MinimumTicketPrice *struct {
			MajorValue string `json:"major_value"`
			Currency   string `json:"currency"`
		} `json:"minimum_ticket_price"`
	} `json:"ticket_availability"`
}

type eventbriteResponse struct {
	Events []eventbriteEvent `json:"events"`
}

// NewEventbriteClient creates a new Eventbrite client
func NewEventbriteClient(config ClientConfig) *EventbriteClient {
	return &EventbriteClient{httpClient: newHTTPClient(config, "https://www.eventbriteapi.com")}
}

// Name implements Provider
func (c *EventbriteClient) Name() string {
	return string(experience.SourceEventbrite)
}

// Fetch implements Provider
func (c *EventbriteClient) Fetch(ctx context.Context, city string) ([]experience.RawRecord, error) {
	query := url.Values{}
	query.Set("location.address", city)
	query.Set("expand", "venue,organizer,category,ticket_availability")
	query.Set("page_size", strconv.Itoa(c.PageSize))

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.APIKey)

	var resp eventbriteResponse
	if err := c.getJSON(ctx, "Eventbrite", "/v3/events/search/", query, header, &resp); err != nil {
		return nil, err
	}

	records := make([]experience.RawRecord, 0, len(resp.Events))
	for _, ev := range resp.Events {
		fields := map[string]interface{}{
			"id":          prefixedID(experience.SourceEventbrite, ev.ID),
			"external_id": ev.ID,
			"title":       ev.Name.Text,
			"description": ev.Description.Text,
			"start_time":  ev.Start.UTC,
			"end_time":    ev.End.UTC,
			"city":        city,
		}
		if ev.Logo != nil {
			fields["image_url"] = ev.Logo.URL
		}
		if ev.Category != nil {
			fields["category"] = ev.Category.ShortName
		}
		if ev.Organizer != nil {
			fields["organizer_name"] = ev.Organizer.Name
		}
		if ev.Venue != nil {
			fields["venue_name"] = ev.Venue.Name
			if ev.Venue.Address.City != "" {
				fields["city"] = ev.Venue.Address.City
			}
			fields["latitude"] = ev.Venue.Address.Latitude
			fields["longitude"] = ev.Venue.Address.Longitude
		}

		switch {
		case ev.IsFree:
			fields["price"] = "free"
		case ev.TicketAvailability != nil && ev.TicketAvailability.MinimumTicketPrice != nil:
			fields["price"] = ev.TicketAvailability.MinimumTicketPrice.MajorValue
			fields["currency"] = ev.TicketAvailability.MinimumTicketPrice.Currency
		default:
			// paid with no listed price
			fields["price"] = "unknown"
		}

		records = append(records, record(experience.SourceEventbrite, fields))
	}

	return records, nil
}
