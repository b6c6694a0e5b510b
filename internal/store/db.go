package store

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	driverSQLite   = "sqlite"
	driverPostgres = "pgx"
)

// DB wraps sql.DB over either a local sqlite file or Postgres.
type DB struct {
	Client *sql.DB
	driver string
}

// Open connects to the database named by dsn. A postgres:// DSN selects the
// pgx driver; anything else is treated as a sqlite file path.
func Open(dsn string) (*DB, error) {
	driver := driverSQLite
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = driverPostgres
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == driverSQLite {
		// modernc's :memory: databases are per-connection; a single
		// connection also sidesteps file-lock contention.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	}

	d := &DB{Client: db, driver: driver}
	return d, db.PingContext(context.Background())
}

// Rebind rewrites ? placeholders to the $N form Postgres expects. Queries in
// the repositories are written once with ? and rebound per engine.
func (d *DB) Rebind(query string) string {
	if d.driver != driverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
