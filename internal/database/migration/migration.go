package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id          BIGSERIAL    PRIMARY KEY,
  name        VARCHAR(100) NOT NULL,
  phone_num   VARCHAR(20)  NOT NULL,
  account_id  VARCHAR(100),
  created_at  TIMESTAMPTZ  NOT NULL DEFAULT now(),
  measure_cnt INTEGER      NOT NULL DEFAULT 0 CHECK (measure_cnt >= 0),
  CONSTRAINT unique_name_phone UNIQUE (name, phone_num)
);`,
	},
	{
		Name: "create_index_users_phone_num",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_users_phone_num ON users (phone_num);`,
	},
	{
		Name: "create_table_measurements",
		SQL: `CREATE TABLE IF NOT EXISTS measurements (
  id             BIGSERIAL    PRIMARY KEY,
  user_id        BIGINT       NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  image_url      VARCHAR(500) NOT NULL,
  leftover_ratio REAL         NOT NULL CHECK (leftover_ratio >= 0 AND leftover_ratio <= 1),
  measured_at    TIMESTAMPTZ  NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_measurements_user_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_measurements_user_id ON measurements (user_id);`,
	},
	{
		Name: "create_index_measurements_measured_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_measurements_measured_at ON measurements (measured_at);`,
	},
}

// sentinelRelation is created by the last step, so it exists only once every step has run.
const sentinelRelation = "idx_measurements_measured_at"

// EnsureMigrated checks whether the last migrated relation exists and runs all steps if it doesn't.
// The steps are idempotent, so a partially applied schema is completed on the next start.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *slog.Logger, dbHost string) error {
	start := time.Now()
	log := logger.With("component", "database", "db_host", dbHost)

	log.Info("db_migration_check", "status", "starting")

	var exists bool
	query := "SELECT to_regclass('public." + sentinelRelation + "') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			"status", "error",
			"error_message", fmt.Sprintf("failed to check sentinel table: %v", err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			"status", "success",
			"detail", "schema already exists, skipping migration",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	log.Info("db_migration_start", "status", "in_progress", "steps", len(steps))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	log.Info("db_migration_success",
		"status", "success",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
