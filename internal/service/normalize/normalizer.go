// internal/service/normalize/normalizer.go

package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"localvibe/internal/domain/experience"
)

// Placeholders substituted for missing display fields
const (
	PlaceholderDescription = "No description available yet."
	PlaceholderImage       = "/static/img/experience-placeholder.jpg"
	PlaceholderLocation    = "Location to be announced"
	DefaultCategory        = "general"
	DefaultCurrency        = "USD"
)

// Field aliases across internal rows and third-party payloads
var (
	idKeys          = []string{"id", "eventid", "event_id", "place_id", "external_id"}
	titleKeys       = []string{"title", "name"}
	descriptionKeys = []string{"description", "summary", "info", "editorial_summary"}
	categoryKeys    = []string{"category", "segment", "type", "primary_type"}
	tagKeys         = []string{"tags", "keywords", "types", "genres"}
	hostKeys        = []string{"host_name", "hostName", "organizer_name", "organizer", "promoter"}
	imageKeys       = []string{"image", "image_url", "imageUrl", "banner", "logo_url", "photo_url"}
	locationKeys    = []string{"location", "venue_name", "venue", "placename", "formatted_address", "address"}
	cityKeys        = []string{"city", "locality"}
	priceKeys       = []string{"price", "min_price", "ticket_price", "cost"}
	currencyKeys    = []string{"currency", "currency_code"}
	startKeys       = []string{"start_time", "startTime", "start", "start_date_time", "date"}
	endKeys         = []string{"end_time", "endTime", "end", "end_date_time"}
)

// Normalizer turns raw records into canonical experiences. Every field except
// identity degrades to a default instead of failing.
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer creates a new normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// Normalize converts one raw record into an Experience
func (n *Normalizer) Normalize(rec experience.RawRecord) (experience.Experience, error) {
	f := rec.Fields
	source := rec.Source
	if source == "" {
		source = experience.SourceInternal
	}

	id := firstString(f, idKeys...)
	if id == "" {
		return experience.Experience{}, &experience.ValidationError{
			Source: source,
			Field:  "id",
			Reason: "is missing",
		}
	}

	e := experience.Experience{
		ID:          id,
		Title:       firstString(f, titleKeys...),
		Description: firstString(f, descriptionKeys...),
		Category:    strings.ToLower(firstString(f, categoryKeys...)),
		Tags:        normalizeTags(firstValue(f, tagKeys...)),
		HostName:    firstString(f, hostKeys...),
		ImageURL:    firstString(f, imageKeys...),
		Location:    firstString(f, locationKeys...),
		City:        firstString(f, cityKeys...),
		Coordinates: parseCoordinates(f),
		StartTime:   parseTime(firstValue(f, startKeys...)),
		EndTime:     parseTime(firstValue(f, endKeys...)),
		Currency:    strings.ToUpper(firstString(f, currencyKeys...)),
		Likes:       nonNegativeInt(firstValue(f, "likes", "like_count")),
		Saves:       nonNegativeInt(firstValue(f, "saves", "save_count")),
		Views:       nonNegativeInt(firstValue(f, "views", "view_count")),
		Reviews:     nonNegativeInt(firstValue(f, "review_count", "reviewCount", "reviews", "user_ratings_total")),
		Rating:      math.Max(0, toFloatOrZero(firstValue(f, "rating"))),
		Source:      source,
		ExternalID:  firstString(f, "external_id"),
		UpdatedAt:   n.now(),
	}

	if source != experience.SourceInternal && e.ExternalID == "" {
		e.ExternalID = id
	}
	if e.Title == "" {
		e.Title = "Untitled experience"
	}
	if e.Description == "" {
		e.Description = PlaceholderDescription
	}
	if e.ImageURL == "" {
		e.ImageURL = PlaceholderImage
	}
	if e.Location == "" {
		e.Location = PlaceholderLocation
	}
	if e.Category == "" {
		e.Category = DefaultCategory
	}
	if e.Currency == "" {
		e.Currency = DefaultCurrency
	}

	e.Price, e.PriceKnown, e.PriceType = parsePrice(f)

	if e.StartTime != nil && e.EndTime != nil && e.EndTime.Before(*e.StartTime) {
		e.EndTime = nil
	}

	return e, nil
}

// NormalizeAll normalizes a batch, keeping input order and collecting the
// errors of rejected records
func (n *Normalizer) NormalizeAll(records []experience.RawRecord) ([]experience.Experience, []error) {
	out := make([]experience.Experience, 0, len(records))
	var errs []error
	for i, rec := range records {
		e, err := n.Normalize(rec)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		out = append(out, e)
	}
	return out, errs
}

// parsePrice reads the price field. A missing price is a known zero and free;
// a present but unparseable or negative price is unknown.
func parsePrice(f map[string]interface{}) (float64, bool, experience.PriceType) {
	v := firstValue(f, priceKeys...)
	if v == nil {
		return 0, true, experience.PriceFree
	}

	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		switch strings.ToLower(s) {
		case "":
			return 0, true, experience.PriceFree
		case "free":
			return 0, true, experience.PriceFree
		}
		s = strings.TrimLeft(s, "$€£ ")
		s = strings.ReplaceAll(s, ",", "")
		v = s
	}

	p, ok := toFloat(v)
	if !ok || p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, false, experience.PricePaid
	}
	if p == 0 {
		return 0, true, experience.PriceFree
	}
	return p, true, experience.PricePaid
}

func parseCoordinates(f map[string]interface{}) *experience.Coordinates {
	lat, latOK := toFloat(firstValue(f, "lat", "latitude"))
	lng, lngOK := toFloat(firstValue(f, "lng", "lon", "long", "longitude"))

	if !latOK || !lngOK {
		for _, key := range []string{"coords", "coordinates", "geo", "geometry"} {
			nested, ok := f[key].(map[string]interface{})
			if !ok {
				continue
			}
			if inner, ok := nested["location"].(map[string]interface{}); ok {
				nested = inner
			}
			lat, latOK = toFloat(firstValue(nested, "lat", "latitude"))
			lng, lngOK = toFloat(firstValue(nested, "lng", "lon", "long", "longitude"))
			if latOK && lngOK {
				break
			}
		}
	}

	if !latOK || !lngOK {
		return nil
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil
	}
	// (0,0) is what unset numeric columns decode to, not a real venue
	if lat == 0 && lng == 0 {
		return nil
	}
	return &experience.Coordinates{Latitude: lat, Longitude: lng}
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(v interface{}) *time.Time {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return nil
		}
		return &t
	case *time.Time:
		if t == nil || t.IsZero() {
			return nil
		}
		c := *t
		return &c
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return &parsed
			}
		}
	case float64, int, int64:
		secs, _ := toFloat(t)
		if secs <= 0 {
			return nil
		}
		parsed := time.Unix(int64(secs), 0).UTC()
		return &parsed
	}
	return nil
}

func normalizeTags(v interface{}) []string {
	var raw []string
	switch t := v.(type) {
	case []string:
		raw = t
	case []interface{}:
		for _, item := range t {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	case string:
		raw = strings.Split(t, ",")
	}

	seen := make(map[string]bool, len(raw))
	tags := make([]string, 0, len(raw))
	for _, tag := range raw {
		tag = strings.TrimSpace(tag)
		key := strings.ToLower(tag)
		if tag == "" || seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, tag)
	}
	return tags
}

func firstValue(f map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := f[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func firstString(f map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		switch v := f[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		case int64:
			return strconv.FormatInt(v, 10)
		case bool:
			return strconv.FormatBool(v)
		}
	}
	return ""
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func toFloatOrZero(v interface{}) float64 {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) {
		return 0
	}
	return f
}

func nonNegativeInt(v interface{}) int {
	f := toFloatOrZero(v)
	if f < 0 {
		return 0
	}
	return int(f)
}
