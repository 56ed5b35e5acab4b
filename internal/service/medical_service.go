package service

import (
	"context"

	"go-leximed/internal/ai"
	apperrors "go-leximed/internal/errors"
	"go-leximed/internal/extractor"
	"go-leximed/internal/observer"
	"go-leximed/internal/repository"
	"go-leximed/pkg/models"
)

const msgModelsNotConfigured = "Gemini API models not configured."

// MedicalService defines the five report and prescription pipelines
type MedicalService interface {
	NutritionalScan(ctx context.Context, in NutritionalScanInput) (*models.NutritionalScanResponse, error)
	Simplify(ctx context.Context, in SimplifyInput) (*models.SimplifyResponse, error)
	ReadPrescription(ctx context.Context, in PrescriptionInput) (*models.PrescriptionResponse, error)
	ChatReport(ctx context.Context, in ChatInput) (*models.ChatResponse, error)
	LocateHospital(ctx context.Context, in HospitalInput) (*models.HospitalResponse, error)

	// AIConfigured reports whether both model roles are available
	AIConfigured() bool
}

// NutritionalScanInput is a lab report plus a meal photo
type NutritionalScanInput struct {
	Report    *models.UploadedFile
	FoodImage *models.UploadedFile
	Language  string
}

// SimplifyInput is a report to summarize
type SimplifyInput struct {
	File     *models.UploadedFile
	Language string
}

// PrescriptionInput is a photo of a handwritten prescription
type PrescriptionInput struct {
	File *models.UploadedFile
}

// ChatInput is a question about previously extracted report text
type ChatInput struct {
	OriginalText string
	Question     string
}

// HospitalInput is a search keyword and an optional simplified report as JSON
type HospitalInput struct {
	Keyword    string
	ReportJSON *models.UploadedFile
}

// Dependencies are the collaborators a MedicalService needs
type Dependencies struct {
	Models    ai.Models
	Extractor extractor.TextExtractor
	Hospitals repository.HospitalRepository
	Events    observer.Subject
}

// medicalService implements MedicalService
type medicalService struct {
	models    ai.Models
	extractor extractor.TextExtractor
	hospitals repository.HospitalRepository
	events    observer.Subject
}

// NewMedicalService creates a new medical service
func NewMedicalService(deps Dependencies) MedicalService {
	return &medicalService{
		models:    deps.Models,
		extractor: deps.Extractor,
		hospitals: deps.Hospitals,
		events:    deps.Events,
	}
}

func (s *medicalService) AIConfigured() bool {
	return s.models.Configured()
}

// requireModels fails fast when a role the pipeline needs is missing
func (s *medicalService) requireModels(roles ...ai.Role) *apperrors.AppError {
	if err := s.models.Ready(roles...); err != nil {
		return apperrors.NewUnavailableError(msgModelsNotConfigured, nil)
	}
	return nil
}
