// internal/server/handlers/experience.go

package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"localvibe/internal/domain/experience"
	"localvibe/internal/domain/geo"
	"localvibe/internal/service/filter"
)

// ExperienceLister lists experiences, usually through the listing cache
type ExperienceLister interface {
	ListExperiences(ctx context.Context, q experience.ListQuery) ([]experience.Experience, error)
}

// ExperienceGetter loads a single experience
type ExperienceGetter interface {
	GetExperience(ctx context.Context, id string) (*experience.Experience, error)
}

// ExperienceHandler handles experience browsing requests
type ExperienceHandler struct {
	lister ExperienceLister
	getter ExperienceGetter
	geo    geo.Service
	logger *zap.Logger
}

// NewExperienceHandler creates a new experience handler
func NewExperienceHandler(lister ExperienceLister, getter ExperienceGetter, geoService geo.Service, logger *zap.Logger) *ExperienceHandler {
	return &ExperienceHandler{
		lister: lister,
		getter: getter,
		geo:    geoService,
		logger: logger,
	}
}

// ListExperiences returns experiences filtered by city, category and search text
func (h *ExperienceHandler) ListExperiences(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil || limit < 0 {
		respondWithError(w, h.logger, http.StatusBadRequest, "Invalid limit", err)
		return
	}

	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		respondWithError(w, h.logger, http.StatusBadRequest, "Invalid offset", err)
		return
	}

	q := experience.ListQuery{
		City:     r.URL.Query().Get("city"),
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("q"),
		Limit:    limit,
		Offset:   offset,
	}

	experiences, err := h.lister.ListExperiences(r.Context(), q)
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to list experiences", err)
		return
	}

	// The store matches loosely; apply the exact filter semantics on top
	experiences = filter.Apply(experiences, filter.Criteria{
		City:       q.City,
		Categories: nonEmpty(q.Category),
		Search:     q.Search,
	})

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"experiences": experiences,
		"count":       len(experiences),
	})
}

// GetExperience returns a specific experience
func (h *ExperienceHandler) GetExperience(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	e, err := h.getter.GetExperience(r.Context(), id)
	if errors.Is(err, experience.ErrNotFound) {
		respondWithError(w, h.logger, http.StatusNotFound, "Experience not found", nil)
		return
	}
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to get experience", err)
		return
	}

	respondWithJSON(w, http.StatusOK, e)
}

// GetNearbyExperiences returns experiences near a point, nearest first
func (h *ExperienceHandler) GetNearbyExperiences(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("lat") == "" || r.URL.Query().Get("lng") == "" {
		respondWithError(w, h.logger, http.StatusBadRequest, "Missing location parameters", nil)
		return
	}

	lat, err := queryFloat(r, "lat", 0)
	if err != nil || lat < -90 || lat > 90 {
		respondWithError(w, h.logger, http.StatusBadRequest, "Invalid latitude", err)
		return
	}

	lng, err := queryFloat(r, "lng", 0)
	if err != nil || lng < -180 || lng > 180 {
		respondWithError(w, h.logger, http.StatusBadRequest, "Invalid longitude", err)
		return
	}

	radius, err := queryFloat(r, "radius", 0)
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "Invalid radius", err)
		return
	}
	radius = h.geo.ClampRadius(radius)

	center := experience.Coordinates{Latitude: lat, Longitude: lng}
	experiences, err := h.geo.Nearby(r.Context(), center, radius)
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to find nearby experiences", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"experiences": experiences,
		"count":       len(experiences),
		"radiusKm":    radius,
	})
}

// GetHeatMap returns clustered experience intensity for a city
func (h *ExperienceHandler) GetHeatMap(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")

	experiences, err := h.lister.ListExperiences(r.Context(), experience.ListQuery{City: city})
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to list experiences", err)
		return
	}
	experiences = filter.Apply(experiences, filter.Criteria{City: city})

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"city":  city,
		"cells": h.geo.HeatMap(experiences),
	})
}

// ListMoods returns the mood presets
func ListMoods(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, filter.Moods())
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}
