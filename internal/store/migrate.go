package store

import (
	"context"
	"embed"
	"strings"
)

//go:embed schema.sql
var ddl embed.FS

// Migrate applies the embedded schema. All statements are IF NOT EXISTS, so
// running it on every startup is safe. Statements run one at a time because
// pgx's extended protocol rejects multi-statement Exec.
func (d *DB) Migrate(ctx context.Context) error {
	b, err := ddl.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	for _, stmt := range strings.Split(string(b), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := d.Client.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
