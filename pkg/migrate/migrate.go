// Package migrate applies the goose SQL migrations that ship inside the
// binary, and offers the file helpers used by cmd/migrate.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
)

// DefaultDir is where new migrations are written, relative to the repo root.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/*.sql
var embedded embed.FS

// Source returns the embedded migrations when dir is empty and the files
// under dir otherwise.
func Source(dir string) (fs.FS, error) {
	if dir == "" {
		return fs.Sub(embedded, "migrations")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("migrations dir %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("migrations dir %q is not a directory", dir)
	}
	return os.DirFS(filepath.Clean(dir)), nil
}

// Status is one row of `migrate -cmd status`.
type Status struct {
	Version   int64
	Name      string
	Applied   bool
	AppliedAt time.Time
}

// Runner drives a goose provider against Postgres.
type Runner struct {
	provider *goose.Provider
}

func NewRunner(db *sql.DB, fsys fs.FS) (*Runner, error) {
	if db == nil {
		return nil, errors.New("migrate: db is required")
	}
	if fsys == nil {
		return nil, errors.New("migrate: migration source is required")
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("migrate: goose provider: %w", err)
	}
	return &Runner{provider: provider}, nil
}

// Up applies every pending migration and reports how many ran.
func (r *Runner) Up(ctx context.Context) (int, error) {
	results, err := r.provider.Up(ctx)
	if err != nil {
		return len(results), fmt.Errorf("migrate up: %w", err)
	}
	return len(results), nil
}

// Down rolls back the most recent migration.
func (r *Runner) Down(ctx context.Context) error {
	if _, err := r.provider.Down(ctx); err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	rows, err := r.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate status: %w", err)
	}
	out := make([]Status, 0, len(rows))
	for _, row := range rows {
		out = append(out, Status{
			Version:   row.Source.Version,
			Name:      filepath.Base(row.Source.Path),
			Applied:   row.State == goose.StateApplied,
			AppliedAt: row.AppliedAt,
		})
	}
	return out, nil
}

// To moves the schema up or down until target (YYYYMMDDHHMMSS) is the
// current version.
func (r *Runner) To(ctx context.Context, target string) error {
	version, err := ParseVersion(target)
	if err != nil {
		return err
	}
	current, err := r.provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("migrate: current version: %w", err)
	}
	switch {
	case version > current:
		_, err = r.provider.UpTo(ctx, version)
	case version < current:
		_, err = r.provider.DownTo(ctx, version)
	}
	if err != nil {
		return fmt.Errorf("migrate to %d: %w", version, err)
	}
	return nil
}

func ParseVersion(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) != versionLayoutLen {
		return 0, fmt.Errorf("migrate: version %q must be %d digits (YYYYMMDDHHMMSS)", raw, versionLayoutLen)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("migrate: version %q: %w", raw, err)
	}
	return v, nil
}
