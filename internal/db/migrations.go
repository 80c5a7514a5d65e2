package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS inspections (
		id TEXT PRIMARY KEY,
		enterprise_id TEXT NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL,
		plan_name TEXT NOT NULL DEFAULT '',
		vehicle_plate TEXT NOT NULL DEFAULT '',
		driver_name TEXT NOT NULL DEFAULT '',
		compliant BOOLEAN NOT NULL DEFAULT FALSE,
		score DOUBLE PRECISION
	);`,
	`CREATE INDEX IF NOT EXISTS idx_inspections_enterprise_timestamp ON inspections (enterprise_id, timestamp DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_inspections_enterprise_plan ON inspections (enterprise_id, plan_name);`,
	`CREATE INDEX IF NOT EXISTS idx_inspections_enterprise_compliant ON inspections (enterprise_id, compliant);`,
	`CREATE TABLE IF NOT EXISTS garage_assignments (
		vehicle_plate TEXT PRIMARY KEY,
		garage_name TEXT NOT NULL
	);`,
	`CREATE OR REPLACE VIEW v_inspection_monthly AS
	SELECT
		DATE_TRUNC('month', i.timestamp) AS bucket,
		i.enterprise_id,
		i.plan_name,
		COUNT(*) AS total_inspections,
		SUM(CASE WHEN i.compliant THEN 1 ELSE 0 END) AS compliant_inspections
	FROM inspections i
	GROUP BY 1, i.enterprise_id, i.plan_name;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
