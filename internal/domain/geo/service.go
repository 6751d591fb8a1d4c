// internal/domain/geo/service.go

package geo

import (
	"context"

	"localvibe/internal/domain/experience"
)

// HeatCell is one cluster of nearby experiences on the discovery heat map
type HeatCell struct {
	Center        experience.Coordinates `json:"center"`
	Count         int                    `json:"count"`
	Intensity     float64                `json:"intensity"`
	ExperienceIDs []string               `json:"experienceIds"`
}

// Service defines the interface for geospatial services
type Service interface {
	// Distance calculates the distance between two points in kilometers
	Distance(a, b experience.Coordinates) float64

	// IsWithinBounds checks if a point lies within radiusKm of a center
	IsWithinBounds(point, center experience.Coordinates, radiusKm float64) bool

	// ClampRadius keeps a requested radius within configured limits
	ClampRadius(radiusKm float64) float64

	// Cluster groups nearby points together
	Cluster(points []experience.Coordinates, maxDistanceKm float64) [][]int

	// HeatMap clusters experiences and scores each cluster
	HeatMap(experiences []experience.Experience) []HeatCell

	// Nearby returns experiences near a point
	Nearby(ctx context.Context, center experience.Coordinates, radiusKm float64) ([]experience.Experience, error)
}
