// internal/adapter/storage/migrate.go

package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS postgis`,
	`CREATE TABLE IF NOT EXISTS experiences (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		tags TEXT[] NOT NULL DEFAULT '{}',
		host_name TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		coordinates GEOGRAPHY(POINT),
		start_time TIMESTAMPTZ,
		end_time TIMESTAMPTZ,
		price DOUBLE PRECISION NOT NULL DEFAULT 0,
		price_known BOOLEAN NOT NULL DEFAULT TRUE,
		price_type TEXT NOT NULL DEFAULT 'free',
		currency TEXT NOT NULL DEFAULT 'USD',
		likes INTEGER NOT NULL DEFAULT 0,
		saves INTEGER NOT NULL DEFAULT 0,
		views INTEGER NOT NULL DEFAULT 0,
		rating DOUBLE PRECISION NOT NULL DEFAULT 0,
		reviews INTEGER NOT NULL DEFAULT 0,
		source TEXT NOT NULL DEFAULT 'internal',
		external_id TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS experiences_city_idx ON experiences (lower(city))`,
	`CREATE INDEX IF NOT EXISTS experiences_coordinates_idx ON experiences USING GIST (coordinates)`,
	`CREATE TABLE IF NOT EXISTS itineraries (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		items JSONB NOT NULL DEFAULT '[]',
		total_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_duration DOUBLE PRECISION NOT NULL DEFAULT 0,
		insights JSONB NOT NULL DEFAULT '[]',
		recommendations JSONB NOT NULL DEFAULT '[]',
		generated_at TIMESTAMPTZ NOT NULL,
		saved_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates the schema if it does not exist
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for i, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("error applying schema statement %d: %w", i, err)
		}
	}
	return nil
}
