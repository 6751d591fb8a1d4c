// internal/service/catalog/syncer.go

package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"localvibe/internal/domain/events"
	"localvibe/internal/domain/experience"
	"localvibe/internal/service/normalize"
)

// Invalidator drops cached listings after new experiences are saved
type Invalidator interface {
	Invalidate()
}

// SyncerConfig contains configuration for the catalog syncer
type SyncerConfig struct {
	Cities       []string
	SyncInterval time.Duration
	EventsTopic  string
}

// Report summarizes one provider sync
type Report struct {
	Provider string        `json:"provider"`
	City     string        `json:"city"`
	Fetched  int           `json:"fetched"`
	Saved    int           `json:"saved"`
	Rejected int           `json:"rejected"`
	Duration time.Duration `json:"duration"`
}

// Syncer pulls third-party catalogs into the experience store
type Syncer struct {
	providers     map[string]Provider
	providersLock sync.RWMutex
	normalizer    *normalize.Normalizer
	store         experience.Store
	cache         Invalidator
	eventBus      events.Publisher
	logger        *zap.Logger
	config        SyncerConfig
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// NewSyncer creates a new catalog syncer
func NewSyncer(
	store experience.Store,
	cache Invalidator,
	eventBus events.Publisher,
	logger *zap.Logger,
	config SyncerConfig,
) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{
		providers:  make(map[string]Provider),
		normalizer: normalize.NewNormalizer(),
		store:      store,
		cache:      cache,
		eventBus:   eventBus,
		logger:     logger,
		config:     config,
	}
}

// Register adds a provider, replacing any provider with the same name
func (s *Syncer) Register(p Provider) {
	s.providersLock.Lock()
	defer s.providersLock.Unlock()

	s.providers[p.Name()] = p
}

// Providers returns the registered provider names in order
func (s *Syncer) Providers() []string {
	s.providersLock.RLock()
	defer s.providersLock.RUnlock()

	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sync fetches one provider's catalog for a city and saves what normalizes.
// Records without identity are counted as rejected and skipped.
func (s *Syncer) Sync(ctx context.Context, name, city string) (Report, error) {
	s.providersLock.RLock()
	p, ok := s.providers[name]
	s.providersLock.RUnlock()
	if !ok {
		return Report{}, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}

	ctx, span := otel.Tracer("CatalogSyncer").Start(ctx, "Sync", trace.WithAttributes(
		attribute.String("provider", name),
		attribute.String("city", city),
	))
	defer span.End()

	started := time.Now()
	report := Report{Provider: name, City: city}

	records, err := p.Fetch(ctx, city)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return report, fmt.Errorf("error fetching %s catalog: %w", name, err)
	}
	report.Fetched = len(records)

	experiences, errs := s.normalizer.NormalizeAll(records)
	report.Rejected = len(errs)
	for _, err := range errs {
		s.logger.Debug("Rejected catalog record", zap.String("provider", name), zap.Error(err))
	}

	for _, e := range experiences {
		if err := s.store.SaveExperience(ctx, e); err != nil {
			s.logger.Warn("Failed to save experience",
				zap.String("provider", name),
				zap.String("id", e.ID),
				zap.Error(err))
			continue
		}
		report.Saved++
	}
	report.Duration = time.Since(started)

	if report.Saved > 0 && s.cache != nil {
		s.cache.Invalidate()
	}

	span.SetAttributes(
		attribute.Int("records.fetched", report.Fetched),
		attribute.Int("records.saved", report.Saved),
	)
	span.SetStatus(codes.Ok, "synced")

	s.logger.Info("Catalog synced",
		zap.String("provider", name),
		zap.String("city", city),
		zap.Int("fetched", report.Fetched),
		zap.Int("saved", report.Saved),
		zap.Int("rejected", report.Rejected),
		zap.Duration("duration", report.Duration))

	if err := events.Publish(s.eventBus, s.config.EventsTopic, events.KindCatalogSynced, events.CatalogSynced{
		Provider: report.Provider,
		City:     report.City,
		Fetched:  report.Fetched,
		Saved:    report.Saved,
		Rejected: report.Rejected,
	}); err != nil {
		s.logger.Warn("Failed to publish sync event", zap.Error(err))
	}

	return report, nil
}

// SyncAll syncs every registered provider for every configured city
func (s *Syncer) SyncAll(ctx context.Context) []Report {
	var reports []Report
	for _, name := range s.Providers() {
		for _, city := range s.config.Cities {
			if ctx.Err() != nil {
				return reports
			}
			report, err := s.Sync(ctx, name, city)
			if err != nil {
				s.logger.Error("Catalog sync failed",
					zap.String("provider", name),
					zap.String("city", city),
					zap.Error(err))
				continue
			}
			reports = append(reports, report)
		}
	}
	return reports
}

// Start begins periodic syncing. A non-positive interval disables it.
func (s *Syncer) Start(ctx context.Context) error {
	if s.config.SyncInterval <= 0 {
		s.logger.Info("Periodic catalog sync disabled")
		return nil
	}

	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.run(ctx)

	return nil
}

func (s *Syncer) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SyncAll(ctx)
		}
	}
}

// Stop stops periodic syncing and waits for an in-flight pass to finish
func (s *Syncer) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	c := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(c)
	}()

	select {
	case <-c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
