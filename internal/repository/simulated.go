package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"bi-service/internal/model"
)

type simDriver struct {
	name      string
	plate     string
	plan      string
	garage    string
	failEvery int
}

var simDrivers = []simDriver{
	{"João Silva", "ABC1234", "Veículos Leves", "São Paulo", 5},
	{"Maria Oliveira", "DEF5678", "Veículos Médios", "Rio de Janeiro", 12},
	{"Pedro Santos", "GHI9012", "Veículos Pesados", "Belo Horizonte", 4},
	{"Ana Costa", "JKL3456", "Veículos Leves", "Brasília", 7},
	{"Carlos Ferreira", "MNO7890", "Veículos Especiais", "São Paulo", 4},
	{"Lúcia Martins", "PQR1357", "Veículos Médios", "Rio de Janeiro", 18},
	{"Roberto Almeida", "STU2468", "Veículos Especiais", "Belo Horizonte", 5},
}

const simMonths = 12

var simNamespace = uuid.MustParse("6f1c5b0e-7a53-4c1e-9a4e-3b2d1f0c9e8a")

// SimulatedStore serves a deterministic demo dataset covering the twelve
// months up to the clock's current day. It is only wired in demo mode.
type SimulatedStore struct {
	enterpriseID string
	records      []model.InspectionRecord
	garages      map[string]string
}

func NewSimulatedStore(enterpriseID string, now time.Time) *SimulatedStore {
	s := &SimulatedStore{
		enterpriseID: enterpriseID,
		garages:      make(map[string]string, len(simDrivers)),
	}
	for _, d := range simDrivers {
		s.garages[d.plate] = d.garage
	}
	s.records = generateRecords(enterpriseID, now.UTC())
	return s
}

func generateRecords(enterpriseID string, now time.Time) []model.InspectionRecord {
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	records := make([]model.InspectionRecord, 0, simMonths*len(simDrivers)*12)

	for m := simMonths - 1; m >= 0; m-- {
		month := current.AddDate(0, -m, 0)
		for di, d := range simDrivers {
			count := 8 + (m+di)%5
			for j := 0; j < count; j++ {
				day := 1 + (j*3+di)%27
				ts := month.AddDate(0, 0, day-1).Add(time.Duration(8+j%9) * time.Hour)
				if ts.After(now) {
					continue
				}
				id := uuid.NewSHA1(simNamespace, []byte(fmt.Sprintf("%s/%d/%d", month.Format("2006-01"), di, j)))
				score := float64(60 + (j*7+di*3)%41)
				records = append(records, model.InspectionRecord{
					ID:           id.String(),
					EnterpriseID: enterpriseID,
					Timestamp:    ts,
					PlanName:     d.plan,
					VehiclePlate: d.plate,
					DriverName:   d.name,
					Compliant:    (j+m)%d.failEvery != 0,
					Score:        &score,
				})
			}
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records
}

func (s *SimulatedStore) Find(ctx context.Context, filter model.InspectionFilter) ([]model.InspectionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]model.InspectionRecord, 0, len(s.records))
	for _, rec := range s.records {
		if matches(rec, filter) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *SimulatedStore) Recent(ctx context.Context, limit int) ([]model.InspectionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	out := make([]model.InspectionRecord, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

func (s *SimulatedStore) Summary(ctx context.Context) (model.GeneralMetrics, error) {
	if err := ctx.Err(); err != nil {
		return model.GeneralMetrics{}, err
	}
	compliant := 0
	for _, rec := range s.records {
		if rec.Compliant {
			compliant++
		}
	}
	return summarize(len(s.records), compliant), nil
}

func (s *SimulatedStore) GarageByPlate(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(s.garages))
	for plate, garage := range s.garages {
		out[plate] = garage
	}
	return out, nil
}

func matches(rec model.InspectionRecord, filter model.InspectionFilter) bool {
	if filter.StartDate != nil && rec.Timestamp.Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && rec.Timestamp.After(*filter.EndDate) {
		return false
	}
	if filter.PlanName != nil && rec.PlanName != *filter.PlanName {
		return false
	}
	if filter.Compliant != nil && rec.Compliant != *filter.Compliant {
		return false
	}
	return true
}
