// Package identity resolves scanned or typed codes to user records.
package identity

import (
	"context"
	"database/sql"
	"errors"

	"mealtrack/internal/store"
)

// ErrNotFound signals an identifier with no matching user.
var ErrNotFound = errors.New("user not found")

// ErrDuplicate signals a create with an already-registered identifier.
var ErrDuplicate = errors.New("user already exists")

// User is a registered attendee. The identifier is externally assigned (it is
// the text encoded in the user's QR badge) and immutable once created.
type User struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	CreatedAt string  `json:"created_at"`
}

// Repository persists user records.
type Repository struct {
	db *store.DB
}

// NewRepository creates a repo.
func NewRepository(db *store.DB) *Repository {
	return &Repository{db: db}
}

// Resolve returns the user matching id. Lookup is exact-match and
// case-sensitive; normalizing manual input is the caller's concern.
func (r *Repository) Resolve(ctx context.Context, id string) (*User, error) {
	row := r.db.Client.QueryRowContext(ctx, r.db.Rebind(`
		SELECT id, name, email, phone, created_at
		FROM users WHERE id = ?
	`), id)
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// List returns all users ordered by identifier.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.Client.QueryContext(ctx, `
		SELECT id, name, email, phone, created_at
		FROM users ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Create inserts a new user. A taken identifier returns ErrDuplicate; the
// insert-or-ignore keeps the existence check and the write atomic.
func (r *Repository) Create(ctx context.Context, u User) error {
	if u.ID == "" || u.Name == "" {
		return errors.New("id and name required")
	}
	res, err := r.db.Client.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO users (id, name, email, phone)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`), u.ID, u.Name, u.Email, u.Phone)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDuplicate
	}
	return nil
}

// Ensure inserts a user if absent and does nothing otherwise. Used for
// idempotent demo seeding at startup.
func (r *Repository) Ensure(ctx context.Context, u User) error {
	_, err := r.db.Client.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO users (id, name, email, phone)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`), u.ID, u.Name, u.Email, u.Phone)
	return err
}
