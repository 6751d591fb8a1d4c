// internal/domain/experience/store.go

package experience

import (
	"context"
)

// Store defines persistence for experiences
type Store interface {
	// SaveExperience inserts or updates an experience
	SaveExperience(ctx context.Context, e Experience) error

	// GetExperience returns an experience by ID
	GetExperience(ctx context.Context, id string) (*Experience, error)

	// ListExperiences returns experiences matching the query
	ListExperiences(ctx context.Context, q ListQuery) ([]Experience, error)

	// ListNear returns experiences within radiusKm of a point
	ListNear(ctx context.Context, center Coordinates, radiusKm float64, limit int) ([]Experience, error)
}

// Fetcher supplies the experience list a planning pass runs over. A non-nil
// error means the fetch failed; an empty slice with a nil error means there
// was genuinely nothing to return.
type Fetcher interface {
	FetchExperiences(ctx context.Context, q ListQuery) ([]Experience, error)
}
