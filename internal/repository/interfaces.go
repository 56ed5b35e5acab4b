package repository

import (
	"context"

	"go-leximed/pkg/models"
)

// HospitalRepository defines the interface for hospital data access operations
type HospitalRepository interface {
	// ListHospitals returns hospital suggestions for a search keyword.
	// Callers own the returned slice.
	ListHospitals(ctx context.Context, keyword string) ([]models.Hospital, error)
}
