package persistence

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"idle-fm-api/infrastructure/logger"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration commands accepted by Migrate.
const (
	MigrateUp     = "up"
	MigrateDown   = "down"
	MigrateStatus = "status"
	MigrateReset  = "reset"
)

// Migrator applies the embedded schema migrations with goose.
type Migrator struct {
	provider *goose.Provider
	// allowReset guards the destructive reset command.
	allowReset bool
}

func NewMigrator(db *sql.DB, allowReset bool) (*Migrator, error) {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectMSSQL, db, sub)
	if err != nil {
		return nil, fmt.Errorf("failed to create goose provider: %w", err)
	}
	return &Migrator{provider: provider, allowReset: allowReset}, nil
}

// Run executes one of up, down, status or reset.
func (m *Migrator) Run(ctx context.Context, command string) error {
	switch command {
	case MigrateUp:
		results, err := m.provider.Up(ctx)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		m.logResults("Migrated", results...)
		if len(results) == 0 {
			logger.GetLogger().Info("Database schema is up to date")
		}
	case MigrateDown:
		result, err := m.provider.Down(ctx)
		if err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		m.logResults("Rolled back", result)
	case MigrateReset:
		if !m.allowReset {
			return fmt.Errorf("reset is only allowed in development")
		}
		results, err := m.provider.DownTo(ctx, 0)
		if err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		m.logResults("Rolled back", results...)
	case MigrateStatus:
		statuses, err := m.provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("status failed: %w", err)
		}
		for _, s := range statuses {
			logger.GetLogger().WithFields(map[string]interface{}{
				"version":    s.Source.Version,
				"file":       s.Source.Path,
				"state":      s.State,
				"applied_at": s.AppliedAt,
			}).Info("Migration status")
		}
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
	return nil
}

func (m *Migrator) logResults(action string, results ...*goose.MigrationResult) {
	for _, r := range results {
		if r == nil || r.Source == nil {
			continue
		}
		logger.GetLogger().WithFields(map[string]interface{}{
			"file":     r.Source.Path,
			"duration": r.Duration.String(),
		}).Info(action)
	}
}
