package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strings"
)

const versionLayoutLen = 14

var migrationFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// ValidateDir checks the migrations in dir. See ValidateFS.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("migrate: dir is required")
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return ValidateFS(os.DirFS(dir))
}

// ValidateFS requires every .sql file to be named <version>_<slug>.sql with
// a unique version and to carry both goose Up and Down sections.
func ValidateFS(fsys fs.FS) error {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return fmt.Errorf("migrate: list migrations: %w", err)
	}
	sort.Strings(names)

	versions := make(map[string]string, len(names))
	for _, name := range names {
		m := migrationFileRe.FindStringSubmatch(name)
		if m == nil {
			return fmt.Errorf("migrate: %q is not named YYYYMMDDHHMMSS_name.sql", name)
		}
		if other, dup := versions[m[1]]; dup {
			return fmt.Errorf("migrate: version %s used by both %q and %q", m[1], other, name)
		}
		versions[m[1]] = name

		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("migrate: read %q: %w", name, err)
		}
		for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
			if !strings.Contains(string(body), marker) {
				return fmt.Errorf("migrate: %q has no %q section", name, marker)
			}
		}
	}
	return nil
}
