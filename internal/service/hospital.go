package service

import (
	"context"
	"encoding/json"
	"strings"

	apperrors "go-leximed/internal/errors"
	"go-leximed/pkg/models"
)

const (
	msgKeywordRequired = "keyword is required."
	msgInvalidJSON     = "Invalid JSON file"
	msgHospitalLookup  = "Failed to look up hospitals"

	recommendedNote = "Recommended based on your blood test results"
)

// LocateHospital returns hospital suggestions. When a non-empty report is attached
// the first suggestion is marked as recommended for it.
func (s *medicalService) LocateHospital(ctx context.Context, in HospitalInput) (*models.HospitalResponse, error) {
	run := s.begin(ctx, pipelineLocateHospital)

	if strings.TrimSpace(in.Keyword) == "" {
		return nil, run.fail(stageHospitals, apperrors.NewValidationError(msgKeywordRequired, nil))
	}

	var patientData any
	if in.ReportJSON != nil {
		if err := json.Unmarshal(in.ReportJSON.Data, &patientData); err != nil {
			return nil, run.fail(stageReportJSON, apperrors.NewValidationError(msgInvalidJSON, err))
		}
		run.stageDone(stageReportJSON, nil)
	}

	hospitals, err := s.hospitals.ListHospitals(ctx, in.Keyword)
	if err != nil {
		return nil, run.fail(stageHospitals, apperrors.NewInternalError(msgHospitalLookup, err))
	}
	if len(hospitals) > 0 && hasContent(patientData) {
		hospitals[0].Note = recommendedNote
	}
	run.stageDone(stageHospitals, map[string]interface{}{"hospitals": len(hospitals)})

	run.finish()
	return &models.HospitalResponse{Hospitals: hospitals}, nil
}

// hasContent reports whether a decoded JSON value carries anything:
// null, false, zero, "" and empty containers do not.
func hasContent(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}
