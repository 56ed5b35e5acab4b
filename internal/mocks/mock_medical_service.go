package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"go-leximed/internal/service"
	"go-leximed/pkg/models"
)

type MockMedicalService struct {
	mock.Mock
}

func (m *MockMedicalService) NutritionalScan(ctx context.Context, in service.NutritionalScanInput) (*models.NutritionalScanResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.NutritionalScanResponse), args.Error(1)
}

func (m *MockMedicalService) Simplify(ctx context.Context, in service.SimplifyInput) (*models.SimplifyResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SimplifyResponse), args.Error(1)
}

func (m *MockMedicalService) ReadPrescription(ctx context.Context, in service.PrescriptionInput) (*models.PrescriptionResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PrescriptionResponse), args.Error(1)
}

func (m *MockMedicalService) ChatReport(ctx context.Context, in service.ChatInput) (*models.ChatResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatResponse), args.Error(1)
}

func (m *MockMedicalService) LocateHospital(ctx context.Context, in service.HospitalInput) (*models.HospitalResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HospitalResponse), args.Error(1)
}

func (m *MockMedicalService) AIConfigured() bool {
	args := m.Called()
	return args.Bool(0)
}
