// internal/service/planner/service.go

package planner

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"localvibe/internal/domain/events"
	"localvibe/internal/domain/experience"
	plannerDomain "localvibe/internal/domain/planner"
)

// ServiceConfig contains configuration for the planner service
type ServiceConfig struct {
	EventsTopic string
	FetchLimit  int
}

// Service wraps the pipeline with its I/O boundaries: the experience source
// it plans over and the event bus it reports to
type Service struct {
	pipeline *Pipeline
	source   experience.Fetcher
	eventBus events.Publisher
	logger   *zap.Logger
	config   ServiceConfig
}

// NewService creates a new planner service
func NewService(
	pipeline *Pipeline,
	source experience.Fetcher,
	eventBus events.Publisher,
	logger *zap.Logger,
	config ServiceConfig,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		pipeline: pipeline,
		source:   source,
		eventBus: eventBus,
		logger:   logger,
		config:   config,
	}
}

// Plan fetches the experiences for the requested city and runs one planning
// pass. A failed fetch is reported as ErrFetchFailed rather than planned over
// as an empty list.
func (s *Service) Plan(ctx context.Context, req Request) (Result, error) {
	ctx, span := otel.Tracer("PlannerService").Start(ctx, "Plan", trace.WithAttributes(
		attribute.String("preferences.city", req.Preferences.City),
		attribute.Int("preferences.interests", len(req.Preferences.Interests)),
	))
	defer span.End()

	if err := req.Preferences.Validate(); err != nil {
		span.SetStatus(codes.Error, "invalid preferences")
		return Result{}, err
	}

	experiences, err := s.source.FetchExperiences(ctx, experience.ListQuery{
		City:  req.Preferences.City,
		Limit: s.config.FetchLimit,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		s.logger.Error("Failed to fetch experiences for planning",
			zap.String("city", req.Preferences.City),
			zap.Error(err))
		return Result{}, fmt.Errorf("%w: %v", plannerDomain.ErrFetchFailed, err)
	}

	res := s.pipeline.Run(experiences, req)
	s.finish(span, res)

	return res, nil
}

// Preview runs a planning pass over caller-supplied raw records
func (s *Service) Preview(ctx context.Context, req Request, records []experience.RawRecord) (Result, error) {
	_, span := otel.Tracer("PlannerService").Start(ctx, "Preview", trace.WithAttributes(
		attribute.Int("records.count", len(records)),
	))
	defer span.End()

	if err := req.Preferences.Validate(); err != nil {
		span.SetStatus(codes.Error, "invalid preferences")
		return Result{}, err
	}

	res := s.pipeline.RunRaw(records, req)
	if res.Rejected > 0 {
		s.logger.Warn("Skipped records without identity",
			zap.Int("rejected", res.Rejected),
			zap.Int("input", res.Input))
	}
	s.finish(span, res)

	return res, nil
}

// Conform checks a saved itinerary against the slot policy and recomputes its
// totals
func (s *Service) Conform(it plannerDomain.Itinerary) (plannerDomain.Itinerary, error) {
	return s.pipeline.assembler.Conform(it)
}

func (s *Service) finish(span trace.Span, res Result) {
	span.SetAttributes(
		attribute.Int("experiences.input", res.Input),
		attribute.Int("experiences.matched", res.Matched),
		attribute.Int("itinerary.items", len(res.Itinerary.Items)),
	)
	span.SetStatus(codes.Ok, "itinerary generated")

	s.logger.Info("Itinerary generated",
		zap.String("id", res.Itinerary.ID),
		zap.String("city", res.Itinerary.City),
		zap.Int("matched", res.Matched),
		zap.Int("items", len(res.Itinerary.Items)),
		zap.Float64("total_cost", res.Itinerary.TotalCost))

	// Publishing is best effort; the itinerary is returned either way
	if err := events.Publish(s.eventBus, s.config.EventsTopic, events.KindItineraryGenerated, events.ItineraryGenerated{
		ItineraryID: res.Itinerary.ID,
		City:        res.Itinerary.City,
		ItemCount:   len(res.Itinerary.Items),
		TotalCost:   res.Itinerary.TotalCost,
		Matched:     res.Matched,
	}); err != nil {
		s.logger.Warn("Failed to publish itinerary event", zap.Error(err))
	}
}
