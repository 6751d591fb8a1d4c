// internal/server/handlers/itinerary.go

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"localvibe/internal/domain/events"
	"localvibe/internal/domain/experience"
	plannerDomain "localvibe/internal/domain/planner"
	"localvibe/internal/service/filter"
	plannerService "localvibe/internal/service/planner"
)

// Planner runs planning passes
type Planner interface {
	Plan(ctx context.Context, req plannerService.Request) (plannerService.Result, error)
	Preview(ctx context.Context, req plannerService.Request, records []experience.RawRecord) (plannerService.Result, error)
	Conform(it plannerDomain.Itinerary) (plannerDomain.Itinerary, error)
}

// ItineraryHandler handles itinerary generation and saved plans
type ItineraryHandler struct {
	planner     Planner
	repo        plannerDomain.Repository
	eventBus    events.Publisher
	eventsTopic string
	logger      *zap.Logger
}

// NewItineraryHandler creates a new itinerary handler
func NewItineraryHandler(
	planner Planner,
	repo plannerDomain.Repository,
	eventBus events.Publisher,
	eventsTopic string,
	logger *zap.Logger,
) *ItineraryHandler {
	return &ItineraryHandler{
		planner:     planner,
		repo:        repo,
		eventBus:    eventBus,
		eventsTopic: eventsTopic,
		logger:      logger,
	}
}

// generateRequest is the body of a planning request
type generateRequest struct {
	Preferences plannerDomain.Preferences `json:"preferences"`
	Window      string                    `json:"window,omitempty"`
	Date        string                    `json:"date,omitempty"`
	Search      string                    `json:"search,omitempty"`
	Moods       []string                  `json:"moods,omitempty"`
	Categories  []string                  `json:"categories,omitempty"`
	Near        *experience.Coordinates   `json:"near,omitempty"`
	RadiusKm    float64                   `json:"radiusKm,omitempty"`
}

type rawRecord struct {
	Source experience.Source       `json:"source"`
	Fields map[string]interface{} `json:"fields"`
}

type previewRequest struct {
	generateRequest
	Records []rawRecord `json:"records"`
}

// toRequest validates the optional filters and builds a planner request
func (g generateRequest) toRequest() (plannerService.Request, error) {
	req := plannerService.Request{
		Preferences: g.Preferences,
		Extra: filter.Criteria{
			Search:     g.Search,
			Moods:      g.Moods,
			Categories: g.Categories,
			Near:       g.Near,
			RadiusKm:   g.RadiusKm,
		},
	}

	switch w := plannerDomain.Window(strings.ToLower(g.Window)); w {
	case "", plannerDomain.WindowNow, plannerDomain.WindowTonight, plannerDomain.WindowWeekend:
		req.Window = w
	default:
		return req, errors.New("Invalid window")
	}

	if g.Date != "" {
		day, err := time.Parse("2006-01-02", g.Date)
		if err != nil {
			return req, errors.New("Invalid date, expected YYYY-MM-DD")
		}
		req.Extra.Date = &day
	}

	if g.Near != nil && (g.Near.Latitude < -90 || g.Near.Latitude > 90 || g.Near.Longitude < -180 || g.Near.Longitude > 180) {
		return req, errors.New("Invalid location")
	}

	return req, nil
}

// GenerateItinerary plans an itinerary over the stored experiences
func (h *ItineraryHandler) GenerateItinerary(w http.ResponseWriter, r *http.Request) {
	var body generateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	req, err := body.toRequest()
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}

	res, err := h.planner.Plan(r.Context(), req)
	if err != nil {
		h.respondWithPlanError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, res)
}

// PreviewItinerary plans an itinerary over records supplied in the request
func (h *ItineraryHandler) PreviewItinerary(w http.ResponseWriter, r *http.Request) {
	var body previewRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	req, err := body.toRequest()
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}

	records := make([]experience.RawRecord, len(body.Records))
	for i, rec := range body.Records {
		records[i] = experience.RawRecord{Source: rec.Source, Fields: rec.Fields}
	}

	res, err := h.planner.Preview(r.Context(), req, records)
	if err != nil {
		h.respondWithPlanError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, res)
}

// SaveItinerary stores a generated itinerary
func (h *ItineraryHandler) SaveItinerary(w http.ResponseWriter, r *http.Request) {
	var it plannerDomain.Itinerary
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if it.ID == "" {
		respondWithError(w, h.logger, http.StatusBadRequest, "Itinerary ID is required", nil)
		return
	}
	it, err := h.planner.Conform(it)
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if it.GeneratedAt.IsZero() {
		it.GeneratedAt = time.Now().UTC()
	}

	if err := h.repo.SaveItinerary(r.Context(), it); err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to save itinerary", err)
		return
	}

	if err := events.Publish(h.eventBus, h.eventsTopic, events.KindItinerarySaved, map[string]string{
		"itineraryId": it.ID,
		"city":        it.City,
	}); err != nil {
		h.logger.Warn("Failed to publish itinerary saved event", zap.Error(err))
	}

	respondWithJSON(w, http.StatusCreated, it)
}

// GetItinerary returns a saved itinerary
func (h *ItineraryHandler) GetItinerary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	it, err := h.repo.GetItinerary(r.Context(), id)
	if errors.Is(err, plannerDomain.ErrItineraryNotFound) {
		respondWithError(w, h.logger, http.StatusNotFound, "Itinerary not found", nil)
		return
	}
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to get itinerary", err)
		return
	}

	respondWithJSON(w, http.StatusOK, it)
}

func (h *ItineraryHandler) respondWithPlanError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, plannerDomain.ErrCityRequired):
		respondWithError(w, h.logger, http.StatusBadRequest, "City is required", nil)
	case errors.Is(err, plannerDomain.ErrFetchFailed):
		respondWithError(w, h.logger, http.StatusBadGateway, "Experiences are temporarily unavailable", err)
	default:
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to generate itinerary", err)
	}
}
