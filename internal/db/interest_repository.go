package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var ErrInterestExists = errors.New("interest already exists")
var ErrInterestNotFound = errors.New("interest not found")

type Interest struct {
	ID          int64
	UserID      uuid.UUID
	HappyHourID int64
	CreatedAt   time.Time
}

// SavedHappyHour is one of a user's saves, denormalized with the happy hour
// and its restaurant.
type SavedHappyHour struct {
	InterestID int64
	SavedAt    time.Time
	HappyHour  HappyHour
}

type InterestRepository struct {
	db *DB
}

func NewInterestRepository(db *DB) *InterestRepository {
	return &InterestRepository{db: db}
}

// Create saves a happy hour for a user. The membership pre-check gives a fast
// ErrInterestExists, but the UNIQUE(user_id, happy_hour_id) constraint is the
// actual guarantee: a concurrent save that slips past the pre-check fails at
// insert and is reported with the same sentinel.
func (r *InterestRepository) Create(ctx context.Context, userID uuid.UUID, happyHourID int64) (*Interest, error) {
	var existing int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM user_interests WHERE user_id = $1 AND happy_hour_id = $2`,
		userID, happyHourID,
	).Scan(&existing)
	if err == nil {
		return nil, ErrInterestExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	interest := &Interest{
		UserID:      userID,
		HappyHourID: happyHourID,
	}
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO user_interests (user_id, happy_hour_id) VALUES ($1, $2) RETURNING id, created_at`,
		userID, happyHourID,
	).Scan(&interest.ID, &interest.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrInterestExists
		}
		return nil, err
	}

	return interest, nil
}

// ListByUser returns all of a user's saves, most recently saved first.
func (r *InterestRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]SavedHappyHour, error) {
	query := `
		SELECT
			ui.id,
			ui.created_at,
			` + happyHourColumns + `
		FROM user_interests ui
		JOIN happy_hours hh ON ui.happy_hour_id = hh.id
		JOIN restaurants r ON hh.restaurant_id = r.id
		WHERE ui.user_id = $1
		ORDER BY ui.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	saves := []SavedHappyHour{}
	for rows.Next() {
		var s SavedHappyHour
		var hh HappyHour
		var dayOfWeek sql.NullInt64
		var specificDate sql.NullTime
		var startTime, endTime time.Time

		err := rows.Scan(
			&s.InterestID, &s.SavedAt,
			&hh.ID, &hh.Title, &hh.Tagline, &hh.Description,
			&dayOfWeek, &specificDate, &startTime, &endTime,
			pq.Array(&hh.Tags), &hh.ImageURL, &hh.CreatedAt,
			&hh.Restaurant.ID, &hh.Restaurant.Name, &hh.Restaurant.Address,
			&hh.Restaurant.Description, &hh.Restaurant.ImageURL,
		)
		if err != nil {
			return nil, err
		}

		if dayOfWeek.Valid {
			day := int(dayOfWeek.Int64)
			hh.DayOfWeek = &day
		}
		if specificDate.Valid {
			date := specificDate.Time
			hh.SpecificDate = &date
		}
		hh.StartTime = startTime.Format("15:04:05")
		hh.EndTime = endTime.Format("15:04:05")

		s.HappyHour = hh
		saves = append(saves, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return saves, nil
}

// Delete removes an interest owned by the given user. Ownership is part of
// the lookup, so a row belonging to another user reads the same as no row at
// all.
func (r *InterestRepository) Delete(ctx context.Context, id int64, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM user_interests WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrInterestNotFound
	}

	return nil
}
