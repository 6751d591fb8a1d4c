// internal/service/catalog/ticketmaster.go

package catalog

import (
	"context"
	"net/url"
	"strconv"

	"localvibe/internal/domain/experience"
)

// TicketmasterClient fetches events from the Ticketmaster Discovery API
type TicketmasterClient struct {
	httpClient
}

type ticketmasterEvent struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Info   string `json:"info"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
	Dates struct {
		Start struct {
			DateTime  string `json:"dateTime"`
			LocalDate string `json:"localDate"`
		} `json:"start"`
		End struct {
			DateTime string `json:"dateTime"`
		} `json:"end"`
	} `json:"dates"`
	Classifications []struct {
		Segment struct {
			Name string `json:"name"`
		} `json:"segment"`
		Genre struct {
			Name string `json:"name"`
		} `json:"genre"`
	} `json:"classifications"`
	PriceRanges []struct {
		Min      float64 `json:"min"`
		Currency string  `json:"currency"`
	} `json:"priceRanges"`
	Promoter *struct {
		Name string `json:"name"`
	} `json:"promoter"`
	Embedded struct {
		Venues []struct {
			Name string `json:"name"`
			City struct {
				Name string `json:"name"`
			} `json:"city"`
			Location *struct {
				Latitude  string `json:"latitude"`
				Longitude string `json:"longitude"`
			} `json:"location"`
		} `json:"venues"`
	} `json:"_embedded"`
}

type ticketmasterResponse struct {
	Embedded struct {
		Events []ticketmasterEvent `json:"events"`
	} `json:"_embedded"`
}

// NewTicketmasterClient creates a new Ticketmaster client
func NewTicketmasterClient(config ClientConfig) *TicketmasterClient {
	return &TicketmasterClient{httpClient: newHTTPClient(config, "https://app.ticketmaster.com")}
}

// Name implements Provider
func (c *TicketmasterClient) Name() string {
	return string(experience.SourceTicketmaster)
}

// Fetch implements Provider
func (c *TicketmasterClient) Fetch(ctx context.Context, city string) ([]experience.RawRecord, error) {
	query := url.Values{}
	query.Set("city", city)
	query.Set("apikey", c.APIKey)
	query.Set("size", strconv.Itoa(c.PageSize))
	query.Set("sort", "date,asc")

	var resp ticketmasterResponse
	if err := c.getJSON(ctx, "Ticketmaster", "/discovery/v2/events.json", query, nil, &resp); err != nil {
		return nil, err
	}

	records := make([]experience.RawRecord, 0, len(resp.Embedded.Events))
	for _, ev := range resp.Embedded.Events {
		fields := map[string]interface{}{
			"id":          prefixedID(experience.SourceTicketmaster, ev.ID),
			"external_id": ev.ID,
			"title":       ev.Name,
			"info":        ev.Info,
			"city":        city,
		}

		start := ev.Dates.Start.DateTime
		if start == "" {
			start = ev.Dates.Start.LocalDate
		}
		fields["start_time"] = start
		fields["end_time"] = ev.Dates.End.DateTime

		if len(ev.Images) > 0 {
			fields["image_url"] = ev.Images[0].URL
		}

		var tags []string
		for i, cl := range ev.Classifications {
			if i == 0 {
				fields["segment"] = cl.Segment.Name
			}
			if cl.Genre.Name != "" && cl.Genre.Name != "Undefined" {
				tags = append(tags, cl.Genre.Name)
			}
		}
		if len(tags) > 0 {
			fields["tags"] = tags
		}

		if len(ev.PriceRanges) > 0 {
			fields["min_price"] = ev.PriceRanges[0].Min
			fields["currency"] = ev.PriceRanges[0].Currency
		} else {
			fields["min_price"] = "unknown"
		}

		if ev.Promoter != nil {
			fields["promoter"] = ev.Promoter.Name
		}

		if len(ev.Embedded.Venues) > 0 {
			venue := ev.Embedded.Venues[0]
			fields["venue_name"] = venue.Name
			if venue.City.Name != "" {
				fields["city"] = venue.City.Name
			}
			if venue.Location != nil {
				fields["latitude"] = venue.Location.Latitude
				fields["longitude"] = venue.Location.Longitude
			}
		}

		records = append(records, record(experience.SourceTicketmaster, fields))
	}

	return records, nil
}
