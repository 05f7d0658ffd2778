package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"fieldservice-backend/internal/logger"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS devices (
		id           SERIAL PRIMARY KEY,
		device_name  VARCHAR(255) NOT NULL DEFAULT 'Unnamed Device',
		serial_no    VARCHAR(100) NOT NULL UNIQUE,
		model        VARCHAR(255) NOT NULL,
		availability VARCHAR(20)  NOT NULL DEFAULT 'available'
		             CHECK (availability IN ('available', 'rented', 'maintenance')),
		created_at   TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS rentals (
		id                     SERIAL PRIMARY KEY,
		customer_name          VARCHAR(255) NOT NULL,
		phone_number           VARCHAR(50)  NOT NULL DEFAULT '',
		device_serial          VARCHAR(100) NOT NULL,
		from_date              DATE         NOT NULL,
		to_date                DATE         NOT NULL,
		rental_days            INTEGER      NOT NULL CHECK (rental_days > 0),
		security_deposit_cents BIGINT       NOT NULL DEFAULT 0,
		status                 VARCHAR(20)  NOT NULL DEFAULT 'active'
		                       CHECK (status IN ('active', 'returned')),
		returned_at            TIMESTAMPTZ,
		created_at             TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS rentals_one_active_per_device
		ON rentals (device_serial) WHERE status = 'active'`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id            SERIAL PRIMARY KEY,
		customer_name VARCHAR(255) NOT NULL,
		phone_number  VARCHAR(50)  NOT NULL DEFAULT '',
		location      VARCHAR(255) NOT NULL,
		issue         TEXT         NOT NULL,
		work_date     DATE         NOT NULL,
		priority      VARCHAR(10)  NOT NULL DEFAULT 'medium'
		              CHECK (priority IN ('low', 'medium', 'high')),
		status        VARCHAR(20)  NOT NULL DEFAULT 'open'
		              CHECK (status IN ('open', 'in_progress', 'completed')),
		assigned_to   INTEGER,
		assigned_at   TIMESTAMPTZ,
		created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		CHECK ((status = 'open') = (assigned_to IS NULL))
	)`,
	`CREATE TABLE IF NOT EXISTS job_reports (
		id               SERIAL PRIMARY KEY,
		job_id           INTEGER NOT NULL REFERENCES jobs (id) ON DELETE CASCADE,
		company_name     VARCHAR(255) NOT NULL,
		time_taken       VARCHAR(100) NOT NULL DEFAULT '',
		equipment_used   TEXT NOT NULL DEFAULT '',
		work_description TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates the tables and indexes the repositories expect. It is
// safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		logger.DatabaseCall("migrate", stmt, "step", i)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d failed: %w", i, err)
		}
	}
	logger.Info("Database schema is up to date", "steps", len(schema))
	return nil
}
