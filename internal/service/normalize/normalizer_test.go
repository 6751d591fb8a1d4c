package normalize

import (
	"errors"
	"testing"
	"time"

	"localvibe/internal/domain/experience"
)

func TestNormalizeMissingIdentity(t *testing.T) {
	n := NewNormalizer()

	for _, fields := range []map[string]interface{}{
		{},
		{"id": ""},
		{"id": "   ", "title": "Sunset kayak"},
	} {
		_, err := n.Normalize(experience.RawRecord{Source: experience.SourceEventbrite, Fields: fields})

		var vErr *experience.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("fields %v: expected ValidationError, got %v", fields, err)
		}
		if vErr.Field != "id" {
			t.Errorf("expected id field error, got %q", vErr.Field)
		}
	}
}

func TestNormalizeDefaults(t *testing.T) {
	n := NewNormalizer()

	e, err := n.Normalize(experience.RawRecord{Fields: map[string]interface{}{"id": "exp-1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if e.Price != 0 || !e.PriceKnown || e.PriceType != experience.PriceFree {
		t.Errorf("missing price should be a known free 0, got %v %v %v", e.Price, e.PriceKnown, e.PriceType)
	}
	if e.Description != PlaceholderDescription {
		t.Errorf("expected placeholder description, got %q", e.Description)
	}
	if e.ImageURL != PlaceholderImage {
		t.Errorf("expected placeholder image, got %q", e.ImageURL)
	}
	if e.Category != DefaultCategory {
		t.Errorf("expected default category, got %q", e.Category)
	}
	if e.Coordinates != nil {
		t.Errorf("expected no location marker, got %+v", e.Coordinates)
	}
	if e.Source != experience.SourceInternal {
		t.Errorf("expected internal source, got %q", e.Source)
	}
}

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		name      string
		price     interface{}
		wantPrice float64
		wantKnown bool
		wantType  experience.PriceType
	}{
		{"number", 25.0, 25, true, experience.PricePaid},
		{"int", 40, 40, true, experience.PricePaid},
		{"dollar string", "$12.50", 12.5, true, experience.PricePaid},
		{"thousands", "1,200", 1200, true, experience.PricePaid},
		{"free word", "Free", 0, true, experience.PriceFree},
		{"zero", 0.0, 0, true, experience.PriceFree},
		{"garbage", "call for pricing", 0, false, experience.PricePaid},
		{"negative", -5.0, 0, false, experience.PricePaid},
	}

	n := NewNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := n.Normalize(experience.RawRecord{Fields: map[string]interface{}{
				"id":    "p",
				"price": tt.price,
			}})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if e.Price != tt.wantPrice || e.PriceKnown != tt.wantKnown || e.PriceType != tt.wantType {
				t.Errorf("got (%v, %v, %v), want (%v, %v, %v)",
					e.Price, e.PriceKnown, e.PriceType, tt.wantPrice, tt.wantKnown, tt.wantType)
			}
		})
	}
}

func TestNormalizeCoordinates(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]interface{}
		want   *experience.Coordinates
	}{
		{
			name:   "flat",
			fields: map[string]interface{}{"lat": 30.27, "lng": -97.74},
			want:   &experience.Coordinates{Latitude: 30.27, Longitude: -97.74},
		},
		{
			name:   "string values",
			fields: map[string]interface{}{"latitude": "47.6", "longitude": "-122.3"},
			want:   &experience.Coordinates{Latitude: 47.6, Longitude: -122.3},
		},
		{
			name: "nested google geometry",
			fields: map[string]interface{}{"geometry": map[string]interface{}{
				"location": map[string]interface{}{"lat": 40.7, "lng": -74.0},
			}},
			want: &experience.Coordinates{Latitude: 40.7, Longitude: -74.0},
		},
		{
			name:   "zero point",
			fields: map[string]interface{}{"lat": 0.0, "lng": 0.0},
		},
		{
			name:   "out of range",
			fields: map[string]interface{}{"lat": 120.0, "lng": 10.0},
		},
		{
			name:   "only latitude",
			fields: map[string]interface{}{"lat": 10.0},
		},
	}

	n := NewNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fields["id"] = "c"
			e, err := n.Normalize(experience.RawRecord{Fields: tt.fields})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			switch {
			case tt.want == nil && e.Coordinates != nil:
				t.Errorf("expected no coordinates, got %+v", e.Coordinates)
			case tt.want != nil && (e.Coordinates == nil || *e.Coordinates != *tt.want):
				t.Errorf("expected %+v, got %+v", tt.want, e.Coordinates)
			}
		})
	}
}

func TestNormalizeThirdPartyShape(t *testing.T) {
	n := NewNormalizer()

	e, err := n.Normalize(experience.RawRecord{
		Source: experience.SourceTicketmaster,
		Fields: map[string]interface{}{
			"event_id":   "tm-77",
			"name":       "Indie Night",
			"segment":    "Music",
			"genres":     []interface{}{"Indie", "indie", "Rock"},
			"venue_name": "Mohawk",
			"city":       "Austin",
			"min_price":  "35",
			"start":      "2026-10-20T20:00:00Z",
			"end":        "2026-10-20T18:00:00Z",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if e.ID != "tm-77" || e.ExternalID != "tm-77" {
		t.Errorf("unexpected identity %q / %q", e.ID, e.ExternalID)
	}
	if e.Category != "music" {
		t.Errorf("expected lower-cased category, got %q", e.Category)
	}
	if len(e.Tags) != 2 {
		t.Errorf("expected case-insensitive tag dedupe, got %v", e.Tags)
	}
	if e.Price != 35 || e.PriceType != experience.PricePaid {
		t.Errorf("unexpected price %v %v", e.Price, e.PriceType)
	}
	want := time.Date(2026, 10, 20, 20, 0, 0, 0, time.UTC)
	if e.StartTime == nil || !e.StartTime.Equal(want) {
		t.Errorf("unexpected start %v", e.StartTime)
	}
	if e.EndTime != nil {
		t.Errorf("end before start should be dropped, got %v", e.EndTime)
	}
}

func TestNormalizeAllKeepsOrder(t *testing.T) {
	n := NewNormalizer()

	out, errs := n.NormalizeAll([]experience.RawRecord{
		{Fields: map[string]interface{}{"id": "a"}},
		{Fields: map[string]interface{}{"title": "no id"}},
		{Fields: map[string]interface{}{"id": "b", "likes": -4}},
	})

	if len(errs) != 1 {
		t.Fatalf("expected 1 rejected record, got %d", len(errs))
	}
	if len(out) != 2 || out[0].ID != "a" || out[1].ID != "b" {
		t.Fatalf("unexpected output %+v", out)
	}
	if out[1].Likes != 0 {
		t.Errorf("negative counters should clamp to 0, got %d", out[1].Likes)
	}
}
