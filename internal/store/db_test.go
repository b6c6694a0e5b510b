package store

import (
	"context"
	"testing"
)

func TestRebindPostgres(t *testing.T) {
	d := &DB{driver: driverPostgres}
	got := d.Rebind(`INSERT INTO meals (id, user_id, date) VALUES (?, ?, ?)`)
	want := `INSERT INTO meals (id, user_id, date) VALUES ($1, $2, $3)`
	if got != want {
		t.Fatalf("Rebind = %q, want %q", got, want)
	}
}

func TestRebindSQLiteIsIdentity(t *testing.T) {
	d := &DB{driver: driverSQLite}
	q := `SELECT * FROM users WHERE id = ?`
	if got := d.Rebind(q); got != q {
		t.Fatalf("Rebind changed sqlite query: %q", got)
	}
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	// Second run must be a no-op.
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate rerun: %v", err)
	}

	var n int
	if err := db.Client.QueryRowContext(ctx, `SELECT COUNT(*) FROM meals`).Scan(&n); err != nil {
		t.Fatalf("schema missing meals table: %v", err)
	}
}
