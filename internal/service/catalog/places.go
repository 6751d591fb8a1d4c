// internal/service/catalog/places.go

package catalog

import (
	"context"
	"fmt"
	"net/url"

	"localvibe/internal/domain/experience"
)

// priceLevelEstimates maps Google price levels to a rough per-person cost
var priceLevelEstimates = map[int]float64{
	0: 0,
	1: 15,
	2: 35,
	3: 70,
	4: 120,
}

// GooglePlacesClient fetches venues from the Google Places text search API
type GooglePlacesClient struct {
	httpClient
}

type placeResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Types            []string `json:"types"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	PriceLevel       *int     `json:"price_level"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	Photos []struct {
		PhotoReference string `json:"photo_reference"`
	} `json:"photos"`
}

type placesResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
	Results      []placeResult `json:"results"`
}

// NewGooglePlacesClient creates a new Google Places client
func NewGooglePlacesClient(config ClientConfig) *GooglePlacesClient {
	return &GooglePlacesClient{httpClient: newHTTPClient(config, "https://maps.googleapis.com")}
}

// Name implements Provider
func (c *GooglePlacesClient) Name() string {
	return string(experience.SourceGooglePlaces)
}

// Fetch implements Provider
func (c *GooglePlacesClient) Fetch(ctx context.Context, city string) ([]experience.RawRecord, error) {
	query := url.Values{}
	query.Set("query", "things to do in "+city)
	query.Set("key", c.APIKey)

	var resp placesResponse
	if err := c.getJSON(ctx, "Google Places", "/maps/api/place/textsearch/json", query, nil, &resp); err != nil {
		return nil, err
	}

	switch resp.Status {
	case "OK", "ZERO_RESULTS":
	default:
		return nil, fmt.Errorf("Google Places API returned status %s: %s", resp.Status, resp.ErrorMessage)
	}

	records := make([]experience.RawRecord, 0, len(resp.Results))
	for _, p := range resp.Results {
		fields := map[string]interface{}{
			"id":                 prefixedID(experience.SourceGooglePlaces, p.PlaceID),
			"external_id":        p.PlaceID,
			"title":              p.Name,
			"formatted_address":  p.FormattedAddress,
			"city":               city,
			"rating":             p.Rating,
			"user_ratings_total": p.UserRatingsTotal,
			"lat":                p.Geometry.Location.Lat,
			"lng":                p.Geometry.Location.Lng,
		}

		if len(p.Types) > 0 {
			fields["primary_type"] = p.Types[0]
			fields["types"] = p.Types
		}

		if len(p.Photos) > 0 {
			fields["photo_url"] = fmt.Sprintf("%s/maps/api/place/photo?maxwidth=800&photo_reference=%s&key=%s",
				c.BaseURL, url.QueryEscape(p.Photos[0].PhotoReference), url.QueryEscape(c.APIKey))
		}

		if p.PriceLevel != nil {
			if est, ok := priceLevelEstimates[*p.PriceLevel]; ok {
				fields["price"] = est
			} else {
				fields["price"] = "unknown"
			}
		} else {
			fields["price"] = "unknown"
		}

		records = append(records, record(experience.SourceGooglePlaces, fields))
	}

	return records, nil
}
