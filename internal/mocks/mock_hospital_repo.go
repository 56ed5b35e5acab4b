package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"go-leximed/pkg/models"
)

type MockHospitalRepo struct {
	mock.Mock
}

func (m *MockHospitalRepo) ListHospitals(ctx context.Context, keyword string) ([]models.Hospital, error) {
	args := m.Called(ctx, keyword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Hospital), args.Error(1)
}
