// internal/service/geo/service.go

package geo

import (
	"context"
	"fmt"
	"math"
	"sort"

	"localvibe/internal/domain/experience"
	"localvibe/internal/domain/geo"
	"localvibe/internal/domain/planner"
)

const earthRadiusKm = 6371.0

// GeoSpatialConfig contains configuration for the geospatial service
type GeoSpatialConfig struct {
	DefaultRadius     float64
	MinRadius         float64
	MaxRadius         float64
	ClusterDistanceKm float64
	NearbyLimit       int
}

// GeoSpatialService implements the geo.Service interface
type GeoSpatialService struct {
	store  experience.Store
	scorer planner.Scorer
	clock  planner.Clock
	config GeoSpatialConfig
}

// NewGeoSpatialService creates a new geospatial service
func NewGeoSpatialService(
	store experience.Store,
	scorer planner.Scorer,
	clock planner.Clock,
	config GeoSpatialConfig,
) *GeoSpatialService {
	if clock == nil {
		clock = planner.SystemClock{}
	}
	return &GeoSpatialService{
		store:  store,
		scorer: scorer,
		clock:  clock,
		config: config,
	}
}

// Haversine returns the great-circle distance between two points in kilometers
func Haversine(a, b experience.Coordinates) float64 {
	lat1 := a.Latitude * math.Pi / 180.0
	lon1 := a.Longitude * math.Pi / 180.0
	lat2 := b.Latitude * math.Pi / 180.0
	lon2 := b.Longitude * math.Pi / 180.0

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	hSin := math.Sin(dLat / 2)
	hSin *= hSin

	vSin := math.Sin(dLon / 2)
	vSin *= vSin

	h := hSin + math.Cos(lat1)*math.Cos(lat2)*vSin

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// Distance calculates the distance between two points in kilometers
func (s *GeoSpatialService) Distance(a, b experience.Coordinates) float64 {
	return Haversine(a, b)
}

// IsWithinBounds checks if a point lies within radiusKm of a center
func (s *GeoSpatialService) IsWithinBounds(point, center experience.Coordinates, radiusKm float64) bool {
	return Haversine(point, center) <= radiusKm
}

// ClampRadius keeps a requested radius within configured limits. Zero or
// negative requests fall back to the default radius.
func (s *GeoSpatialService) ClampRadius(radiusKm float64) float64 {
	if radiusKm <= 0 {
		radiusKm = s.config.DefaultRadius
	}
	if s.config.MinRadius > 0 {
		radiusKm = math.Max(s.config.MinRadius, radiusKm)
	}
	if s.config.MaxRadius > 0 {
		radiusKm = math.Min(s.config.MaxRadius, radiusKm)
	}
	return radiusKm
}

// Cluster groups nearby points together and returns index groups into points
func (s *GeoSpatialService) Cluster(points []experience.Coordinates, maxDistanceKm float64) [][]int {
	if len(points) == 0 {
		return nil
	}

	var clusters [][]int
	visited := make(map[int]bool)

	for i, p := range points {
		if visited[i] {
			continue
		}

		cluster := []int{i}
		visited[i] = true

		for j, other := range points {
			if i == j || visited[j] {
				continue
			}

			if Haversine(p, other) <= maxDistanceKm {
				cluster = append(cluster, j)
				visited[j] = true
			}
		}

		clusters = append(clusters, cluster)
	}

	return clusters
}

// HeatMap clusters experiences that have coordinates and gives each cluster
// the mean score of its members, capped at 100
func (s *GeoSpatialService) HeatMap(experiences []experience.Experience) []geo.HeatCell {
	var located []experience.Experience
	var points []experience.Coordinates
	for _, e := range experiences {
		if e.Coordinates == nil {
			continue
		}
		located = append(located, e)
		points = append(points, *e.Coordinates)
	}

	evalCtx := planner.EvalContext{Now: s.clock.Now(), Window: planner.WindowNow}

	var cells []geo.HeatCell
	for _, group := range s.Cluster(points, s.config.ClusterDistanceKm) {
		var sumLat, sumLng, sumScore float64
		ids := make([]string, 0, len(group))
		for _, idx := range group {
			sumLat += points[idx].Latitude
			sumLng += points[idx].Longitude
			if s.scorer != nil {
				sumScore += s.scorer.Score(located[idx], evalCtx)
			}
			ids = append(ids, located[idx].ID)
		}

		n := float64(len(group))
		cells = append(cells, geo.HeatCell{
			Center: experience.Coordinates{
				Latitude:  sumLat / n,
				Longitude: sumLng / n,
			},
			Count:         len(group),
			Intensity:     math.Min(100, sumScore/n),
			ExperienceIDs: ids,
		})
	}

	sort.SliceStable(cells, func(i, j int) bool {
		return cells[i].Intensity > cells[j].Intensity
	})

	return cells
}

// Nearby returns experiences near a point, nearest first
func (s *GeoSpatialService) Nearby(
	ctx context.Context,
	center experience.Coordinates,
	radiusKm float64,
) ([]experience.Experience, error) {
	radiusKm = s.ClampRadius(radiusKm)

	found, err := s.store.ListNear(ctx, center, radiusKm, s.config.NearbyLimit)
	if err != nil {
		return nil, fmt.Errorf("error finding nearby experiences: %w", err)
	}

	// Stores may approximate the radius; enforce it exactly here
	var within []experience.Experience
	for _, e := range found {
		if e.Coordinates != nil && s.IsWithinBounds(*e.Coordinates, center, radiusKm) {
			within = append(within, e)
		}
	}

	sort.SliceStable(within, func(i, j int) bool {
		return Haversine(*within[i].Coordinates, center) < Haversine(*within[j].Coordinates, center)
	})

	return within, nil
}
