package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/pressly/goose/v3"
)

const (
	DefaultDir = "pkg/migrate/migrations"

	// dialect of the shipped SQL; sqlite dev databases use AutoMigrate instead.
	dialect = "postgres"
)

// Run validates dir and executes a goose command against db.
func Run(ctx context.Context, db *sql.DB, dir string, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	if err := ValidateDir(dir); err != nil {
		return fmt.Errorf("refusing to run goose %s: %w", command, err)
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion migrates up or down to targetVersion, which must be 0 or
// the version of a migration in dir.
func MigrateToVersion(ctx context.Context, db *sql.DB, dir string, targetVersion string) error {
	target, err := parseTarget(dir, targetVersion)
	if err != nil {
		return err
	}
	if db == nil {
		return fmt.Errorf("db is required")
	}

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	current, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil
	case current < target:
		if err := goose.UpToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
	default:
		if err := goose.DownToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
	}
	return nil
}

func parseTarget(dir, targetVersion string) (int64, error) {
	if targetVersion == "" {
		return 0, fmt.Errorf("targetVersion is required")
	}
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}
	if target == 0 {
		return 0, nil
	}
	if err := ValidateDir(dir); err != nil {
		return 0, err
	}
	files, err := listMigrations(dir)
	if err != nil {
		return 0, err
	}
	for _, f := range files {
		if f.version == target {
			return target, nil
		}
	}
	return 0, fmt.Errorf("no migration with version %d in %q", target, dir)
}
