package repository

import (
	"context"
	"math"

	"gorm.io/gorm"

	"bi-service/internal/model"
)

const (
	DefaultRecentLimit = 10

	monthlyView = "v_inspection_monthly"
)

type summaryRow struct {
	Total     int64
	Compliant int64
}

type InspectionRepository struct {
	db           *gorm.DB
	enterpriseID string
}

func NewInspectionRepository(db *gorm.DB, enterpriseID string) *InspectionRepository {
	return &InspectionRepository{db: db, enterpriseID: enterpriseID}
}

func (r *InspectionRepository) Find(ctx context.Context, filter model.InspectionFilter) ([]model.InspectionRecord, error) {
	query := r.scoped(ctx)
	query = applyInspectionFilter(query, filter)

	var records []model.InspectionRecord
	if err := query.Order("timestamp ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *InspectionRepository) Recent(ctx context.Context, limit int) ([]model.InspectionRecord, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	var records []model.InspectionRecord
	err := r.scoped(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Summary totals the monthly rollup view when it is installed and falls back
// to counting the base table otherwise.
func (r *InspectionRepository) Summary(ctx context.Context) (model.GeneralMetrics, error) {
	useView := relationExists(ctx, r.db, monthlyView)

	var row summaryRow
	if err := r.summaryQuery(ctx, useView).Find(&row).Error; err != nil {
		return model.GeneralMetrics{}, err
	}

	return summarize(int(row.Total), int(row.Compliant)), nil
}

func (r *InspectionRepository) summaryQuery(ctx context.Context, useView bool) *gorm.DB {
	if useView {
		return r.db.WithContext(ctx).
			Table(monthlyView).
			Where("enterprise_id = ?", r.enterpriseID).
			Select(`COALESCE(SUM(total_inspections), 0) AS total,
				COALESCE(SUM(compliant_inspections), 0) AS compliant`)
	}
	return r.scoped(ctx).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN compliant THEN 1 ELSE 0 END), 0) AS compliant`)
}

func (r *InspectionRepository) scoped(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.InspectionRecord{}).
		Where("enterprise_id = ?", r.enterpriseID)
}

func applyInspectionFilter(query *gorm.DB, filter model.InspectionFilter) *gorm.DB {
	if filter.StartDate != nil {
		query = query.Where("timestamp >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("timestamp <= ?", *filter.EndDate)
	}
	if filter.PlanName != nil {
		query = query.Where("plan_name = ?", *filter.PlanName)
	}
	if filter.Compliant != nil {
		query = query.Where("compliant = ?", *filter.Compliant)
	}
	return query
}

func summarize(total, compliant int) model.GeneralMetrics {
	rate := 0.0
	if total > 0 {
		rate = clamp(math.Round(float64(compliant)/float64(total)*1000) / 10)
	}
	return model.GeneralMetrics{
		TotalInspections:     total,
		CompliantInspections: compliant,
		NonCompliantCount:    total - compliant,
		ComplianceRate:       rate,
	}
}

func clamp(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}
