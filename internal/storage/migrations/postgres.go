package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"sort"

	"tokencard/internal/storage/postgres"
)

// RunPostgresMigrations applies the embedded schema files in lexical order.
// Every statement is idempotent, so reapplying the set on boot is safe.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	files, err := fs.Glob(PostgresFS, "postgres/*.sql")
	if err != nil {
		return fmt.Errorf("glob embedded migrations: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		sql, err := fs.ReadFile(PostgresFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}
	return nil
}
