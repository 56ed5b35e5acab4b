package repository

import (
	"context"

	"go-leximed/pkg/models"
)

// defaultHospitals is demo data; it is not filtered by keyword or location.
var defaultHospitals = []models.Hospital{
	{
		Name:    "Bangalore Multispeciality Hospital",
		Link:    "https://www.google.com/maps?q=Bangalore+Hospital",
		Address: "MG Road, Bangalore",
	},
	{
		Name:    "City Care Multispeciality",
		Link:    "https://www.google.com/maps?q=City+Care+Hospital",
		Address: "Indiranagar, Bangalore",
	},
	{
		Name:    "HealthPlus Clinic",
		Link:    "https://www.google.com/maps?q=HealthPlus+Clinic",
		Address: "Koramangala, Bangalore",
	},
}

// StaticHospitalRepository implements HospitalRepository over a fixed list
type StaticHospitalRepository struct {
	hospitals []models.Hospital
}

// NewStaticHospitalRepository creates a repository over the built-in list
func NewStaticHospitalRepository() HospitalRepository {
	return &StaticHospitalRepository{hospitals: defaultHospitals}
}

// NewStaticHospitalRepositoryWith creates a repository over a custom list
func NewStaticHospitalRepositoryWith(hospitals []models.Hospital) HospitalRepository {
	return &StaticHospitalRepository{hospitals: hospitals}
}

// ListHospitals returns a fresh copy so callers may annotate entries freely
func (r *StaticHospitalRepository) ListHospitals(ctx context.Context, _ string) ([]models.Hospital, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.hospitals == nil {
		return nil, ErrRepositoryUnavailable
	}
	out := make([]models.Hospital, len(r.hospitals))
	copy(out, r.hospitals)
	return out, nil
}
