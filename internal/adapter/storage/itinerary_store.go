// internal/adapter/storage/itinerary_store.go

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"localvibe/internal/domain/planner"
)

// ItineraryStore implements storage for saved itineraries
type ItineraryStore struct {
	db *pgxpool.Pool
}

// NewItineraryStore creates a new itinerary store
func NewItineraryStore(db *pgxpool.Pool) *ItineraryStore {
	return &ItineraryStore{
		db: db,
	}
}

// SaveItinerary saves a generated itinerary
func (s *ItineraryStore) SaveItinerary(ctx context.Context, it planner.Itinerary) error {
	query := `
		INSERT INTO itineraries (
			id, title, description, city,
			items, total_cost, total_duration,
			insights, recommendations, generated_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7,
			$8, $9, $10
		)
		ON CONFLICT (id) DO UPDATE
		SET
			title = $2,
			description = $3,
			items = $5,
			total_cost = $6,
			total_duration = $7,
			insights = $8,
			recommendations = $9
	`

	itemsJSON, err := json.Marshal(it.Items)
	if err != nil {
		return fmt.Errorf("error marshaling items: %w", err)
	}

	insightsJSON, err := json.Marshal(it.Insights)
	if err != nil {
		return fmt.Errorf("error marshaling insights: %w", err)
	}

	recommendationsJSON, err := json.Marshal(it.Recommendations)
	if err != nil {
		return fmt.Errorf("error marshaling recommendations: %w", err)
	}

	_, err = s.db.Exec(
		ctx,
		query,
		it.ID,
		it.Title,
		it.Description,
		it.City,
		itemsJSON,
		it.TotalCost,
		it.TotalDurationHours,
		insightsJSON,
		recommendationsJSON,
		it.GeneratedAt,
	)

	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// GetItinerary retrieves a saved itinerary by ID
func (s *ItineraryStore) GetItinerary(ctx context.Context, id string) (*planner.Itinerary, error) {
	query := `
		SELECT
			id, title, description, city,
			items, total_cost, total_duration,
			insights, recommendations, generated_at
		FROM itineraries
		WHERE id = $1
	`

	var it planner.Itinerary
	var itemsJSON, insightsJSON, recommendationsJSON []byte

	err := s.db.QueryRow(ctx, query, id).Scan(
		&it.ID,
		&it.Title,
		&it.Description,
		&it.City,
		&itemsJSON,
		&it.TotalCost,
		&it.TotalDurationHours,
		&insightsJSON,
		&recommendationsJSON,
		&it.GeneratedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, planner.ErrItineraryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying itinerary: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &it.Items); err != nil {
		return nil, fmt.Errorf("error unmarshaling items: %w", err)
	}

	if err := json.Unmarshal(insightsJSON, &it.Insights); err != nil {
		return nil, fmt.Errorf("error unmarshaling insights: %w", err)
	}

	if err := json.Unmarshal(recommendationsJSON, &it.Recommendations); err != nil {
		return nil, fmt.Errorf("error unmarshaling recommendations: %w", err)
	}

	return &it, nil
}
