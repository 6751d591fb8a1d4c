// cmd/api/main.go

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"localvibe/internal/adapter/storage"
	"localvibe/internal/config"
	plannerDomain "localvibe/internal/domain/planner"
	"localvibe/internal/logger"
	"localvibe/internal/server"
	"localvibe/internal/service/catalog"
	geoService "localvibe/internal/service/geo"
	"localvibe/internal/service/itinerary"
	plannerService "localvibe/internal/service/planner"
	"localvibe/internal/service/rank"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Initialize dependencies
	db, err := initDatabase(ctx, cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := storage.Migrate(ctx, db); err != nil {
			zapLogger.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	natsConn, err := initNATS(cfg.NATS, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer natsConn.Close()

	// Initialize storage adapters
	experienceStore := storage.NewExperienceStore(db)
	itineraryStore := storage.NewItineraryStore(db)
	cachedSource := storage.NewCachedSource(experienceStore, cfg.Cache.TTL, cfg.Cache.CleanupInterval)

	// Initialize planning services
	scorer, err := rank.NewScorer(cfg.Ranking.Strategy, cfg.Ranking.DemoSeed)
	if err != nil {
		zapLogger.Fatal("Failed to build scorer", zap.Error(err))
	}

	slots := itinerary.Config{
		MaxItems:        cfg.Planner.MaxItems,
		FirstSlotOffset: cfg.Planner.FirstSlotOffset,
		SlotDuration:    cfg.Planner.SlotDuration,
		SlotSpacing:     cfg.Planner.SlotSpacing,
		HoursPerItem:    cfg.Planner.HoursPerItem,
	}
	if err := slots.Validate(); err != nil {
		zapLogger.Fatal("Invalid itinerary policy", zap.Error(err))
	}

	pipeline := plannerService.NewPipeline(scorer, itinerary.NewAssembler(slots), plannerDomain.SystemClock{})
	planner := plannerService.NewService(
		pipeline,
		cachedSource,
		natsConn,
		zapLogger,
		plannerService.ServiceConfig{
			EventsTopic: cfg.NATS.EventsTopic,
			FetchLimit:  cfg.Planner.FetchLimit,
		},
	)

	// Initialize geospatial service
	geoSpatialService := geoService.NewGeoSpatialService(
		experienceStore,
		scorer,
		plannerDomain.SystemClock{},
		geoService.GeoSpatialConfig{
			DefaultRadius:     cfg.Geo.DefaultRadius,
			MinRadius:         cfg.Geo.MinRadius,
			MaxRadius:         cfg.Geo.MaxRadius,
			ClusterDistanceKm: cfg.Geo.ClusterDistanceKm,
			NearbyLimit:       cfg.Geo.NearbyLimit,
		},
	)

	// Initialize catalog syncer
	syncer := catalog.NewSyncer(
		experienceStore,
		cachedSource,
		natsConn,
		zapLogger,
		catalog.SyncerConfig{
			Cities:       cfg.Catalog.Cities,
			SyncInterval: cfg.Catalog.SyncInterval,
			EventsTopic:  cfg.NATS.EventsTopic,
		},
	)
	registerProviders(syncer, cfg.Catalog)

	// Start periodic catalog sync
	if err := syncer.Start(ctx); err != nil {
		zapLogger.Fatal("Failed to start catalog syncer", zap.Error(err))
	}

	// Initialize HTTP server
	httpServer := server.NewServer(cfg.Server, cfg.RateLimit, server.Dependencies{
		Lister:      cachedSource,
		Getter:      experienceStore,
		Geo:         geoSpatialService,
		Planner:     planner,
		Itineraries: itineraryStore,
		Syncer:      syncer,
		EventBus:    natsConn,
		Feed:        natsConn,
		EventsTopic: cfg.NATS.EventsTopic,
		Logger:      zapLogger,
	})

	// Start HTTP server
	go func() {
		zapLogger.Info("Starting HTTP server",
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port),
			zap.String("environment", cfg.Environment),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	zapLogger.Info("Shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Shutdown HTTP server
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// Stop catalog syncer
	if err := syncer.Stop(shutdownCtx); err != nil {
		zapLogger.Error("Catalog syncer shutdown error", zap.Error(err))
	}

	if err := natsConn.Drain(); err != nil {
		zapLogger.Warn("NATS drain error", zap.Error(err))
	}

	zapLogger.Info("Shutdown complete")
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig, logger *zap.Logger) (*nats.Conn, error) {
	options := []nats.Option{
		nats.Name("localvibe-api"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}

// Register enabled catalog providers
func registerProviders(syncer *catalog.Syncer, cfg config.CatalogConfig) {
	clientConfig := func(p config.ProviderConfig) catalog.ClientConfig {
		return catalog.ClientConfig{
			BaseURL:  p.BaseURL,
			APIKey:   p.APIKey,
			PageSize: p.PageSize,
			Timeout:  cfg.Timeout,
		}
	}

	if cfg.Eventbrite.Enabled {
		syncer.Register(catalog.NewEventbriteClient(clientConfig(cfg.Eventbrite)))
	}
	if cfg.Ticketmaster.Enabled {
		syncer.Register(catalog.NewTicketmasterClient(clientConfig(cfg.Ticketmaster)))
	}
	if cfg.GooglePlaces.Enabled {
		syncer.Register(catalog.NewGooglePlacesClient(clientConfig(cfg.GooglePlaces)))
	}
}
