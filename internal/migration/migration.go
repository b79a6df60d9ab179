package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"

	_ "modernc.org/sqlite"
)

// Migration represents a single database schema migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Runner manages database schema migrations
type Runner struct {
	db         *sql.DB
	migrations []Migration
}

// NewRunner creates a new migration runner over the given migration set
func NewRunner(db *sql.DB, migrations []Migration) *Runner {
	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Version < sorted[j].Version
	})
	return &Runner{
		db:         db,
		migrations: sorted,
	}
}

// EnsureSchemaVersionTable creates the schema_version table if it doesn't exist
func (r *Runner) EnsureSchemaVersionTable() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`)
	return err
}

// GetCurrentVersion returns the current schema version from the database.
// Returns 0 if no version is set (fresh database).
func (r *Runner) GetCurrentVersion() (int, error) {
	if err := r.EnsureSchemaVersionTable(); err != nil {
		return 0, fmt.Errorf("failed to ensure schema_version table: %w", err)
	}

	var version int
	err := r.db.QueryRow("SELECT version FROM schema_version").Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// LatestVersion returns the highest version in the migration set
func (r *Runner) LatestVersion() int {
	if len(r.migrations) == 0 {
		return 0
	}
	return r.migrations[len(r.migrations)-1].Version
}

// ApplyMigrations applies all pending migrations in order, each inside its
// own transaction. Returns the number of migrations applied.
func (r *Runner) ApplyMigrations(logf func(string)) (int, error) {
	current, err := r.GetCurrentVersion()
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, m := range r.migrations {
		if m.Version <= current {
			continue
		}

		tx, err := r.db.Begin()
		if err != nil {
			return applied, fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return applied, fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}

		if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
			tx.Rollback()
			return applied, fmt.Errorf("failed to clear schema version: %w", err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			tx.Rollback()
			return applied, fmt.Errorf("failed to record schema version %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return applied, fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}

		if logf != nil {
			logf(fmt.Sprintf("Applied migration %d: %s", m.Version, m.Name))
		}
		applied++
	}

	return applied, nil
}

// ValidateVersion checks that the database schema is at the latest known
// version, returning an error when the binary and the database disagree.
func (r *Runner) ValidateVersion() error {
	current, err := r.GetCurrentVersion()
	if err != nil {
		return err
	}

	latest := r.LatestVersion()
	if current < latest {
		return fmt.Errorf("database schema version %d is behind expected version %d, run 'vocealarm init' to migrate", current, latest)
	}
	if current > latest {
		return fmt.Errorf("database schema version %d is newer than this binary supports (%d)", current, latest)
	}
	return nil
}
