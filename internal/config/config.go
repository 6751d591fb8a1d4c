// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Planner     PlannerConfig
	Ranking     RankingConfig
	Geo         GeoConfig
	Catalog     CatalogConfig
	Cache       CacheConfig
	RateLimit   RateLimitConfig
	Log         LogConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
	AutoMigrate  bool
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
	EventsTopic    string
}

// PlannerConfig holds the itinerary slot policy
type PlannerConfig struct {
	MaxItems        int
	FirstSlotOffset time.Duration
	SlotDuration    time.Duration
	SlotSpacing     time.Duration
	HoursPerItem    float64
	FetchLimit      int
}

// RankingConfig selects the scoring strategy
type RankingConfig struct {
	Strategy string
	DemoSeed int64
}

// GeoConfig holds geospatial service configuration
type GeoConfig struct {
	DefaultRadius     float64
	MinRadius         float64
	MaxRadius         float64
	ClusterDistanceKm float64
	NearbyLimit       int
}

// ProviderConfig holds one third-party catalog's credentials
type ProviderConfig struct {
	Enabled  bool
	BaseURL  string
	APIKey   string
	PageSize int
}

// CatalogConfig holds catalog sync configuration
type CatalogConfig struct {
	Cities       []string
	SyncInterval time.Duration
	Timeout      time.Duration
	Eventbrite   ProviderConfig
	Ticketmaster ProviderConfig
	GooglePlaces ProviderConfig
}

// CacheConfig holds listing cache configuration
type CacheConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

// RateLimitConfig holds per-IP rate limits for planning routes
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	VisitorTTL        time.Duration
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from an optional .env file and the environment
func Load() (Config, error) {
	// A missing .env is fine; the environment still applies
	_ = godotenv.Load()

	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "localvibe"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			AutoMigrate:  getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
			EventsTopic:    getEnv("NATS_EVENTS_TOPIC", "localvibe"),
		},
		Planner: PlannerConfig{
			MaxItems:        getEnvAsInt("PLANNER_MAX_ITEMS", 4),
			FirstSlotOffset: getEnvAsDuration("PLANNER_FIRST_SLOT_OFFSET", 1*time.Hour),
			SlotDuration:    getEnvAsDuration("PLANNER_SLOT_DURATION", 1*time.Hour),
			SlotSpacing:     getEnvAsDuration("PLANNER_SLOT_SPACING", 2*time.Hour),
			HoursPerItem:    getEnvAsFloat("PLANNER_HOURS_PER_ITEM", 2),
			FetchLimit:      getEnvAsInt("PLANNER_FETCH_LIMIT", 200),
		},
		Ranking: RankingConfig{
			Strategy: getEnv("RANKING_STRATEGY", "popularity"),
			DemoSeed: int64(getEnvAsInt("RANKING_DEMO_SEED", 42)),
		},
		Geo: GeoConfig{
			DefaultRadius:     getEnvAsFloat("GEO_DEFAULT_RADIUS", 5.0),
			MinRadius:         getEnvAsFloat("GEO_MIN_RADIUS", 0.5),
			MaxRadius:         getEnvAsFloat("GEO_MAX_RADIUS", 50.0),
			ClusterDistanceKm: getEnvAsFloat("GEO_CLUSTER_DISTANCE_KM", 0.5),
			NearbyLimit:       getEnvAsInt("GEO_NEARBY_LIMIT", 100),
		},
		Catalog: CatalogConfig{
			Cities:       getEnvAsSlice("CATALOG_CITIES", []string{}),
			SyncInterval: getEnvAsDuration("CATALOG_SYNC_INTERVAL", 0),
			Timeout:      getEnvAsDuration("CATALOG_TIMEOUT", 10*time.Second),
			Eventbrite:   getProviderConfig("EVENTBRITE"),
			Ticketmaster: getProviderConfig("TICKETMASTER"),
			GooglePlaces: getProviderConfig("GOOGLE_PLACES"),
		},
		Cache: CacheConfig{
			TTL:             getEnvAsDuration("CACHE_TTL", 5*time.Minute),
			CleanupInterval: getEnvAsDuration("CACHE_CLEANUP_INTERVAL", 10*time.Minute),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 2),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 10),
			VisitorTTL:        getEnvAsDuration("RATE_LIMIT_VISITOR_TTL", 3*time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return config, validate(config)
}

// DSN returns the Postgres connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
		c.SSLMode,
		c.MaxOpenConns,
	)
}

// validate checks if config is valid
func validate(config Config) error {
	p := config.Planner
	if p.MaxItems <= 0 {
		return fmt.Errorf("planner max items must be positive")
	}
	if p.SlotDuration <= 0 || p.SlotSpacing < p.SlotDuration {
		return fmt.Errorf("planner slots would overlap: duration %s, spacing %s", p.SlotDuration, p.SlotSpacing)
	}
	if p.FirstSlotOffset < 0 {
		return fmt.Errorf("planner first slot offset must not be negative")
	}

	g := config.Geo
	if g.MinRadius <= 0 || g.MinRadius > g.MaxRadius {
		return fmt.Errorf("geo radius bounds are invalid: min %v, max %v", g.MinRadius, g.MaxRadius)
	}

	if config.RateLimit.RequestsPerSecond <= 0 || config.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit must allow at least one request")
	}

	for name, pc := range map[string]ProviderConfig{
		"eventbrite":    config.Catalog.Eventbrite,
		"ticketmaster":  config.Catalog.Ticketmaster,
		"google_places": config.Catalog.GooglePlaces,
	} {
		if pc.Enabled && pc.APIKey == "" && config.Environment != "development" {
			return fmt.Errorf("%s is enabled without an API key", name)
		}
	}

	return nil
}

// Helper functions

func getProviderConfig(prefix string) ProviderConfig {
	return ProviderConfig{
		Enabled:  getEnvAsBool(prefix+"_ENABLED", false),
		BaseURL:  getEnv(prefix+"_BASE_URL", ""),
		APIKey:   getEnv(prefix+"_API_KEY", ""),
		PageSize: getEnvAsInt(prefix+"_PAGE_SIZE", 50),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
