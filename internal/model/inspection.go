package model

import "time"

type InspectionRecord struct {
	ID           string    `gorm:"column:id;primaryKey" json:"id"`
	EnterpriseID string    `gorm:"column:enterprise_id" json:"enterpriseId"`
	Timestamp    time.Time `gorm:"column:timestamp" json:"timestamp"`
	PlanName     string    `gorm:"column:plan_name" json:"planName"`
	VehiclePlate string    `gorm:"column:vehicle_plate" json:"vehiclePlate"`
	DriverName   string    `gorm:"column:driver_name" json:"driverName"`
	Compliant    bool      `gorm:"column:compliant" json:"compliant"`
	Score        *float64  `gorm:"column:score" json:"score,omitempty"`
}

func (InspectionRecord) TableName() string {
	return "inspections"
}

type GarageAssignment struct {
	VehiclePlate string `gorm:"column:vehicle_plate;primaryKey"`
	GarageName   string `gorm:"column:garage_name"`
}

func (GarageAssignment) TableName() string {
	return "garage_assignments"
}
