package meals

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"mealtrack/internal/store"
)

// Repository persists attendance records.
type Repository struct {
	db *store.DB
}

// NewRepository creates a repo.
func NewRepository(db *store.DB) *Repository {
	return &Repository{db: db}
}

// ensure materializes the record for (userID, date) with all flags false.
// Insert-or-ignore keeps first-writes idempotent: two near-simultaneous
// requests for a new pair both succeed and exactly one row exists after.
func (r *Repository) ensure(ctx context.Context, userID, date string) error {
	_, err := r.db.Client.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO meals (id, user_id, date)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, date) DO NOTHING
	`), uuid.NewString(), userID, date)
	return err
}

// Day returns the record for (userID, date), creating it first if absent.
// Reading has a write side effect on purpose: viewing a user's window
// materializes its rows, and later writes rely on them existing.
func (r *Repository) Day(ctx context.Context, userID, date string) (Day, error) {
	if err := r.ensure(ctx, userID, date); err != nil {
		return Day{}, err
	}
	row := r.db.Client.QueryRowContext(ctx, r.db.Rebind(`
		SELECT breakfast, lunch, dinner FROM meals
		WHERE user_id = ? AND date = ?
	`), userID, date)
	var b, l, d int64
	if err := row.Scan(&b, &l, &d); err != nil {
		return Day{}, err
	}
	return Day{Date: date, Breakfast: b == 1, Lunch: l == 1, Dinner: d == 1}, nil
}

// SetFlag sets one meal flag for (userID, date), vivifying the record first.
// The meal type dispatches to one of three static statements; caller input
// never reaches a column selector.
func (r *Repository) SetFlag(ctx context.Context, userID, date string, meal Type, status bool) error {
	var query string
	switch meal {
	case Breakfast:
		query = `UPDATE meals SET breakfast = ? WHERE user_id = ? AND date = ?`
	case Lunch:
		query = `UPDATE meals SET lunch = ? WHERE user_id = ? AND date = ?`
	case Dinner:
		query = `UPDATE meals SET dinner = ? WHERE user_id = ? AND date = ?`
	default:
		return ErrUnknownMeal
	}

	if err := r.ensure(ctx, userID, date); err != nil {
		return err
	}
	val := 0
	if status {
		val = 1
	}
	_, err := r.db.Client.ExecContext(ctx, r.db.Rebind(query), val, userID, date)
	return err
}

// RecordCount reports how many records exist for (userID, date). Used by
// tests to prove rejected writes touch nothing.
func (r *Repository) RecordCount(ctx context.Context, userID, date string) (int, error) {
	row := r.db.Client.QueryRowContext(ctx, r.db.Rebind(`
		SELECT COUNT(*) FROM meals WHERE user_id = ? AND date = ?
	`), userID, date)
	var n int
	err := row.Scan(&n)
	return n, err
}

// Recount recomputes the headcount for date from the attendance rows and
// upserts it into meal_counts.
func (r *Repository) Recount(ctx context.Context, date string) error {
	row := r.db.Client.QueryRowContext(ctx, r.db.Rebind(`
		SELECT COALESCE(SUM(breakfast), 0), COALESCE(SUM(lunch), 0), COALESCE(SUM(dinner), 0)
		FROM meals WHERE date = ?
	`), date)
	var b, l, d int64
	if err := row.Scan(&b, &l, &d); err != nil {
		return err
	}
	_, err := r.db.Client.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO meal_counts (date, breakfast, lunch, dinner, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (date) DO UPDATE SET
			breakfast = excluded.breakfast,
			lunch = excluded.lunch,
			dinner = excluded.dinner,
			updated_at = CURRENT_TIMESTAMP
	`), date, b, l, d)
	return err
}

// CountsFor returns the materialized headcount for date. A date the worker
// has not seen yet reads as all zeros.
func (r *Repository) CountsFor(ctx context.Context, date string) (Counts, error) {
	row := r.db.Client.QueryRowContext(ctx, r.db.Rebind(`
		SELECT breakfast, lunch, dinner FROM meal_counts WHERE date = ?
	`), date)
	c := Counts{Date: date}
	if err := row.Scan(&c.Breakfast, &c.Lunch, &c.Dinner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c, nil
		}
		return Counts{}, err
	}
	return c, nil
}
