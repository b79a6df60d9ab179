package cli

import (
	"fmt"
	"time"

	"github.com/julianstephens/vocealarm/internal/backup"
	"github.com/julianstephens/vocealarm/internal/migration"
	"github.com/julianstephens/vocealarm/internal/storage"
	"github.com/julianstephens/vocealarm/internal/validation"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	storeReachable := false

	// Check 1: store reachable
	if err := checkStoreReachable(ctx); err != nil {
		fmt.Printf("❌ Store reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Store reachable: OK\n")
		storeReachable = true
	}

	// Check 2: schema version (SQLite only)
	if err := checkSchemaVersion(ctx); err != nil {
		fmt.Printf("❌ Schema version: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Schema version: OK\n")
	}

	// Check 3: backups present (warning only)
	if err := checkBackupsPresent(ctx); err != nil {
		fmt.Printf("⚠ Backups present: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Backups present: OK\n")
	}

	// Check 4: alarm validation (only if the store is reachable)
	if storeReachable {
		if err := checkValidation(ctx); err != nil {
			fmt.Printf("❌ Alarm validation: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Alarm validation: OK\n")
		}
	} else {
		fmt.Printf("⊘ Alarm validation: SKIPPED (store not reachable)\n")
	}

	// Check 5: clock/timezone sanity
	if err := checkClockTimezone(); err != nil {
		fmt.Printf("❌ Clock/timezone: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Clock/timezone: OK\n")
	}

	// Check 6: daemon status (informational)
	if pid := runningDaemonPID(ctx.Store.GetConfigPath()); pid != 0 {
		fmt.Printf("✓ Daemon: running (pid %d)\n", pid)
	} else {
		fmt.Printf("⚠ Daemon: not running - alarms will not ring ('vocealarm run')\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkStoreReachable(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}

	if sqliteStore, ok := ctx.Store.(*storage.SQLiteStore); ok {
		db := sqliteStore.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}
	return nil
}

func checkSchemaVersion(ctx *Context) error {
	sqliteStore, ok := ctx.Store.(*storage.SQLiteStore)
	if !ok {
		// JSON store has no schema version
		return nil
	}

	db := sqliteStore.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	runner := migration.NewRunner(db, storage.Migrations)
	current, err := runner.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	latest := runner.LatestVersion()
	if current > latest {
		return fmt.Errorf("store schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'vocealarm backup create'")
	}
	return nil
}

func checkValidation(ctx *Context) error {
	alarms, err := ctx.Store.GetAllAlarms()
	if err != nil {
		return fmt.Errorf("failed to get alarms: %w", err)
	}

	seen := make(map[string]bool)
	for _, alarm := range alarms {
		if seen[alarm.ID] {
			return fmt.Errorf("duplicate alarm ID found: %s", alarm.ID)
		}
		seen[alarm.ID] = true
	}

	result := validation.New().ValidateAlarms(alarms)
	if result.HasConflicts() {
		return fmt.Errorf("%d conflicts - run 'vocealarm validate' for details", len(result.Conflicts))
	}
	return nil
}

func checkClockTimezone() error {
	now := time.Now()

	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	_, offset := now.Zone()
	if offset == 0 && now.Location() == time.UTC {
		fmt.Printf("   Note: timezone is UTC\n")
	}
	return nil
}
