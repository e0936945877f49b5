package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

const upStub = `-- Migration: %s
-- %s

BEGIN;


COMMIT;
`

const downStub = `-- Migration: %s (rollback)
-- Reverts: %s

BEGIN;


COMMIT;
`

// MigrationFile is the up/down pair stamped by CreateMigration.
type MigrationFile struct {
	Version  string
	Name     string
	UpPath   string
	DownPath string
}

// CreateMigration stamps a timestamped up/down SQL pair in the layout
// the existing migrations use: a header comment and an empty
// transactional body.
func CreateMigration(migrationsDir, name, description string) (*MigrationFile, error) {
	if err := os.MkdirAll(migrationsDir, 0755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}

	// Timestamp versions sort after the existing ledger migrations.
	version := time.Now().Format("20060102150405")
	slug := sanitizeName(name)
	if description == "" {
		description = name
	}

	mf := &MigrationFile{
		Version:  version,
		Name:     slug,
		UpPath:   filepath.Join(migrationsDir, fmt.Sprintf("%s_%s.up.sql", version, slug)),
		DownPath: filepath.Join(migrationsDir, fmt.Sprintf("%s_%s.down.sql", version, slug)),
	}

	if err := os.WriteFile(mf.UpPath, []byte(fmt.Sprintf(upStub, slug, description)), 0644); err != nil {
		return nil, fmt.Errorf("write up migration: %w", err)
	}
	if err := os.WriteFile(mf.DownPath, []byte(fmt.Sprintf(downStub, slug, description)), 0644); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("write down migration: %w", err)
	}
	return mf, nil
}

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// sanitizeName lowercases a migration name and collapses every run of
// non-alphanumeric characters into a single underscore.
func sanitizeName(name string) string {
	slug := slugCleaner.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim(slug, "_")
}

// ListMigrations returns the sorted base names of every up migration in
// the directory. A missing directory lists as empty.
func ListMigrations(migrationsDir string) ([]string, error) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	migrations := make([]string, 0, len(entries)/2)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		migrations = append(migrations, strings.TrimSuffix(entry.Name(), ".up.sql"))
	}
	sort.Strings(migrations)
	return migrations, nil
}
