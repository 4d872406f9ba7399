// Package db embeds the SQL migrations for the Postgres backend.
package db

import (
	"context"
	"embed"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

//go:embed migrations/*.sql
var migrations embed.FS

// UpFiles lists the forward migrations in apply order.
func UpFiles() ([]string, error) {
	files, err := fs.Glob(migrations, "migrations/*_*.up.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Apply runs every forward migration. The statements are idempotent.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	files, err := UpFiles()
	if err != nil {
		return errors.Wrap(err, "list migrations")
	}
	if len(files) == 0 {
		return errors.New("no migration files found")
	}
	for _, path := range files {
		payload, err := migrations.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "read migration %s", path)
		}
		if _, err := pool.Exec(ctx, string(payload)); err != nil {
			return errors.Wrapf(err, "apply migration %s", path)
		}
	}
	return nil
}
