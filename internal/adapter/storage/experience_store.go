// internal/adapter/storage/experience_store.go

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"localvibe/internal/domain/experience"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

const experienceColumns = `
	id, title, description, category, tags, host_name, image_url,
	location, city,
	ST_X(coordinates::geometry) as lng, ST_Y(coordinates::geometry) as lat,
	start_time, end_time,
	price, price_known, price_type, currency,
	likes, saves, views, rating, reviews,
	source, external_id, updated_at`

// ExperienceStore implements storage for experiences
type ExperienceStore struct {
	db *pgxpool.Pool
}

// NewExperienceStore creates a new experience store
func NewExperienceStore(db *pgxpool.Pool) *ExperienceStore {
	return &ExperienceStore{
		db: db,
	}
}

// SaveExperience inserts or updates an experience
func (s *ExperienceStore) SaveExperience(ctx context.Context, e experience.Experience) error {
	ctx, span := otel.Tracer("ExperienceStore").Start(ctx, "SaveExperience", trace.WithAttributes(
		attribute.String("experience.id", e.ID),
		attribute.String("experience.source", string(e.Source)),
	))
	defer span.End()

	query := `
		INSERT INTO experiences (
			id, title, description, category, tags, host_name, image_url,
			location, city, coordinates,
			start_time, end_time,
			price, price_known, price_type, currency,
			likes, saves, views, rating, reviews,
			source, external_id, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, CASE WHEN $10::float8 IS NOT NULL AND $11::float8 IS NOT NULL THEN ST_MakePoint($10, $11)::geography END,
			$12, $13,
			$14, $15, $16, $17,
			$18, $19, $20, $21, $22,
			$23, $24, $25
		)
		ON CONFLICT (id) DO UPDATE
		SET
			title = $2,
			description = $3,
			category = $4,
			tags = $5,
			host_name = $6,
			image_url = $7,
			location = $8,
			city = $9,
			coordinates = CASE WHEN $10::float8 IS NOT NULL AND $11::float8 IS NOT NULL THEN ST_MakePoint($10, $11)::geography ELSE experiences.coordinates END,
			start_time = $12,
			end_time = $13,
			price = $14,
			price_known = $15,
			price_type = $16,
			currency = $17,
			likes = GREATEST(experiences.likes, $18),
			saves = GREATEST(experiences.saves, $19),
			views = GREATEST(experiences.views, $20),
			rating = $21,
			reviews = $22,
			external_id = $24,
			updated_at = $25
	`

	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = time.Now()
	}

	var lng, lat *float64
	if e.Coordinates != nil {
		lng = &e.Coordinates.Longitude
		lat = &e.Coordinates.Latitude
	}

	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}

	_, err := s.db.Exec(
		ctx,
		query,
		e.ID,
		e.Title,
		e.Description,
		e.Category,
		tags,
		e.HostName,
		e.ImageURL,
		e.Location,
		e.City,
		lng,
		lat,
		e.StartTime,
		e.EndTime,
		e.Price,
		e.PriceKnown,
		string(e.PriceType),
		e.Currency,
		e.Likes,
		e.Saves,
		e.Views,
		e.Rating,
		e.Reviews,
		string(e.Source),
		e.ExternalID,
		e.UpdatedAt,
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upsert failed")
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// GetExperience retrieves an experience by ID
func (s *ExperienceStore) GetExperience(ctx context.Context, id string) (*experience.Experience, error) {
	query := `SELECT ` + experienceColumns + ` FROM experiences WHERE id = $1`

	e, err := scanExperience(s.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, experience.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying experience: %w", err)
	}

	return &e, nil
}

// ListExperiences returns experiences matching the query, most popular first
func (s *ExperienceStore) ListExperiences(ctx context.Context, q experience.ListQuery) ([]experience.Experience, error) {
	ctx, span := otel.Tracer("ExperienceStore").Start(ctx, "ListExperiences", trace.WithAttributes(
		attribute.String("query.city", q.City),
		attribute.String("query.category", q.Category),
	))
	defer span.End()

	query, args := buildListQuery(q)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	experiences, err := scanExperiences(rows)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("results", len(experiences)))

	return experiences, nil
}

// ListNear returns experiences within radiusKm of center, nearest first
func (s *ExperienceStore) ListNear(
	ctx context.Context,
	center experience.Coordinates,
	radiusKm float64,
	limit int,
) ([]experience.Experience, error) {
	query := `SELECT ` + experienceColumns + `
		FROM experiences
		WHERE coordinates IS NOT NULL
		AND ST_DWithin(coordinates, ST_MakePoint($1, $2)::geography, $3 * 1000)
		ORDER BY ST_Distance(coordinates, ST_MakePoint($1, $2)::geography) ASC
		LIMIT $4
	`

	rows, err := s.db.Query(ctx, query, center.Longitude, center.Latitude, radiusKm, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	return scanExperiences(rows)
}

// FetchExperiences lets the store act as the planner's experience source
func (s *ExperienceStore) FetchExperiences(ctx context.Context, q experience.ListQuery) ([]experience.Experience, error) {
	return s.ListExperiences(ctx, q)
}

// buildListQuery renders the listing SQL with positional arguments
func buildListQuery(q experience.ListQuery) (string, []interface{}) {
	query := `SELECT ` + experienceColumns + ` FROM experiences WHERE 1=1`

	var args []interface{}
	argIndex := 1

	if city := strings.TrimSpace(q.City); city != "" && !strings.EqualFold(city, "All") {
		query += fmt.Sprintf(" AND (city ILIKE $%d OR (city = '' AND location ILIKE $%d))", argIndex, argIndex)
		args = append(args, "%"+city+"%")
		argIndex++
	}

	// A label matches on its first word anywhere in the category
	if category := strings.TrimSpace(q.Category); category != "" && !strings.EqualFold(category, "All") {
		if fields := strings.Fields(strings.ToLower(category)); len(fields) > 0 {
			query += fmt.Sprintf(" AND category ILIKE $%d", argIndex)
			args = append(args, "%"+escapeLike(fields[0])+"%")
			argIndex++
		}
	}

	if search := strings.TrimSpace(q.Search); search != "" {
		query += fmt.Sprintf(
			" AND (title ILIKE $%d OR description ILIKE $%d OR location ILIKE $%d OR city ILIKE $%d OR category ILIKE $%d)",
			argIndex, argIndex, argIndex, argIndex, argIndex,
		)
		args = append(args, "%"+search+"%")
		argIndex++
	}

	query += " ORDER BY likes DESC, id ASC"

	query += fmt.Sprintf(" LIMIT $%d", argIndex)
	args = append(args, clampLimit(q.Limit))
	argIndex++

	if q.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, q.Offset)
	}

	return query, args
}

// escapeLike quotes ILIKE wildcards in a user-supplied pattern
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

// scanExperiences drains rows into experiences
func scanExperiences(rows pgx.Rows) ([]experience.Experience, error) {
	var experiences []experience.Experience
	for rows.Next() {
		e, err := scanExperience(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning experience: %w", err)
		}
		experiences = append(experiences, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating experiences: %w", err)
	}

	return experiences, nil
}

func scanExperience(row pgx.Row) (experience.Experience, error) {
	var e experience.Experience
	var lng, lat *float64
	var priceType, source string

	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&e.Category,
		&e.Tags,
		&e.HostName,
		&e.ImageURL,
		&e.Location,
		&e.City,
		&lng,
		&lat,
		&e.StartTime,
		&e.EndTime,
		&e.Price,
		&e.PriceKnown,
		&priceType,
		&e.Currency,
		&e.Likes,
		&e.Saves,
		&e.Views,
		&e.Rating,
		&e.Reviews,
		&source,
		&e.ExternalID,
		&e.UpdatedAt,
	)
	if err != nil {
		return e, err
	}

	e.PriceType = experience.PriceType(priceType)
	e.Source = experience.Source(source)

	if lng != nil && lat != nil {
		e.Coordinates = &experience.Coordinates{
			Longitude: *lng,
			Latitude:  *lat,
		}
	}

	return e, nil
}
