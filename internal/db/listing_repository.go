package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

var ErrHappyHourNotFound = errors.New("happy hour not found")

type Restaurant struct {
	ID          int64
	Name        string
	Address     string
	Description string
	ImageURL    string
}

// HappyHour is a promotional time window owned by a restaurant. Exactly one
// of DayOfWeek and SpecificDate is set: a dated row is a one-time event,
// otherwise the happy hour recurs weekly.
type HappyHour struct {
	ID           int64
	Title        string
	Tagline      string
	Description  string
	DayOfWeek    *int
	SpecificDate *time.Time
	StartTime    string
	EndTime      string
	Tags         []string
	ImageURL     string
	CreatedAt    time.Time
	Restaurant   Restaurant
}

type ListingRepository struct {
	db *DB
}

func NewListingRepository(db *DB) *ListingRepository {
	return &ListingRepository{db: db}
}

const happyHourColumns = `
	hh.id,
	hh.title,
	hh.tagline,
	hh.description,
	hh.day_of_week,
	hh.specific_date,
	hh.start_time,
	hh.end_time,
	hh.tags,
	hh.image_url,
	hh.created_at,
	r.id,
	r.name,
	r.address,
	r.description,
	r.image_url
`

// List runs a single query for all happy hours matching the given filters,
// joined with their owning restaurant, ordered by start time. An empty result
// is a valid result, not an error.
func (r *ListingRepository) List(ctx context.Context, filters Filters) ([]HappyHour, error) {
	where, args := buildWhere(filters.predicates())

	query := `
		SELECT ` + happyHourColumns + `
		FROM happy_hours hh
		JOIN restaurants r ON hh.restaurant_id = r.id` +
		where + `
		ORDER BY hh.start_time ASC
	`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	happyHours := []HappyHour{}
	for rows.Next() {
		hh, err := scanHappyHour(rows)
		if err != nil {
			return nil, err
		}
		happyHours = append(happyHours, hh)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return happyHours, nil
}

// GetByID fetches a single happy hour with its restaurant.
func (r *ListingRepository) GetByID(ctx context.Context, id int64) (*HappyHour, error) {
	query := `
		SELECT ` + happyHourColumns + `
		FROM happy_hours hh
		JOIN restaurants r ON hh.restaurant_id = r.id
		WHERE hh.id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)
	hh, err := scanHappyHour(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHappyHourNotFound
		}
		return nil, err
	}

	return &hh, nil
}

// Exists reports whether a happy hour with the given id exists.
func (r *ListingRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var found int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM happy_hours WHERE id = $1`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHappyHour(row rowScanner) (HappyHour, error) {
	var hh HappyHour
	var dayOfWeek sql.NullInt64
	var specificDate sql.NullTime
	var startTime, endTime time.Time

	err := row.Scan(
		&hh.ID, &hh.Title, &hh.Tagline, &hh.Description,
		&dayOfWeek, &specificDate, &startTime, &endTime,
		pq.Array(&hh.Tags), &hh.ImageURL, &hh.CreatedAt,
		&hh.Restaurant.ID, &hh.Restaurant.Name, &hh.Restaurant.Address,
		&hh.Restaurant.Description, &hh.Restaurant.ImageURL,
	)
	if err != nil {
		return HappyHour{}, err
	}

	if dayOfWeek.Valid {
		day := int(dayOfWeek.Int64)
		hh.DayOfWeek = &day
	}
	if specificDate.Valid {
		date := specificDate.Time
		hh.SpecificDate = &date
	}

	// TIME columns arrive as a time.Time on the zero date; keep the clock part
	hh.StartTime = startTime.Format("15:04:05")
	hh.EndTime = endTime.Format("15:04:05")

	return hh, nil
}
