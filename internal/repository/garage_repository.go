package repository

import (
	"context"

	"gorm.io/gorm"

	"bi-service/internal/model"
)

// GarageRepository reads the static plate to garage assignment table.
type GarageRepository struct {
	db *gorm.DB
}

func NewGarageRepository(db *gorm.DB) *GarageRepository {
	return &GarageRepository{db: db}
}

func (r *GarageRepository) GarageByPlate(ctx context.Context) (map[string]string, error) {
	if !relationExists(ctx, r.db, model.GarageAssignment{}.TableName()) {
		return map[string]string{}, nil
	}

	var rows []model.GarageAssignment
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}

	directory := make(map[string]string, len(rows))
	for _, row := range rows {
		directory[row.VehiclePlate] = row.GarageName
	}
	return directory, nil
}
