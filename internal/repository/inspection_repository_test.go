package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// dryRunDB builds statements without ever opening a connection.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=127.0.0.1 user=bi dbname=bi sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestSummaryQueryReadsMonthlyView(t *testing.T) {
	repo := NewInspectionRepository(dryRunDB(t), "ent-1")

	var row summaryRow
	stmt := repo.summaryQuery(context.Background(), true).Find(&row).Statement

	sql := stmt.SQL.String()
	assert.Contains(t, sql, `FROM "v_inspection_monthly"`)
	assert.Contains(t, sql, "SUM(total_inspections)")
	assert.Contains(t, sql, "enterprise_id = $1")
	assert.Equal(t, []interface{}{"ent-1"}, stmt.Vars)
}

func TestSummaryQueryFallsBackToBaseTable(t *testing.T) {
	repo := NewInspectionRepository(dryRunDB(t), "ent-1")

	var row summaryRow
	stmt := repo.summaryQuery(context.Background(), false).Find(&row).Statement

	sql := stmt.SQL.String()
	assert.Contains(t, sql, `FROM "inspections"`)
	assert.NotContains(t, sql, monthlyView)
	assert.Contains(t, sql, "COUNT(*)")
	assert.Equal(t, []interface{}{"ent-1"}, stmt.Vars)
}

func TestSummarizeRoundsAndGuardsEmpty(t *testing.T) {
	empty := summarize(0, 0)
	assert.Zero(t, empty.ComplianceRate)

	m := summarize(3, 2)
	assert.Equal(t, 1, m.NonCompliantCount)
	assert.Equal(t, 66.7, m.ComplianceRate)
}
