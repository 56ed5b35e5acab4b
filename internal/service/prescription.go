package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"go-leximed/internal/ai"
	apperrors "go-leximed/internal/errors"
	"go-leximed/internal/extractor"
	"go-leximed/internal/parser"
	"go-leximed/internal/prompt"
	"go-leximed/pkg/models"

	"github.com/arbovm/levenshtein"
)

const (
	msgInvalidPrescriptionType = "Invalid file type. Please upload a JPG or PNG image."
	msgEmptyPrescription       = "The uploaded prescription image is empty."
	msgTranscription           = "Transcription failed"
	msgExplanations            = "Failed to explain medications"

	fallbackExplanation = "Could not retrieve explanation."
	searchURLPrefix     = "https://www.google.com/search?q="

	// Names shorter than this are only merged on an exact (case-insensitive) match.
	fuzzyMatchMinRunes = 5
)

var errBlankExplanation = errors.New("model returned a blank explanation")

// ReadPrescription transcribes a handwritten prescription, lists the medications on it
// and explains each one. Only the transcription is mandatory; later stages degrade.
func (s *medicalService) ReadPrescription(ctx context.Context, in PrescriptionInput) (*models.PrescriptionResponse, error) {
	run := s.begin(ctx, pipelineReadPrescription)

	if appErr := s.requireModels(ai.RoleText, ai.RoleVision); appErr != nil {
		return nil, run.fail("", appErr)
	}
	if in.File == nil {
		return nil, run.fail(stageTranscription, apperrors.NewValidationError(msgInvalidPrescriptionType, nil))
	}
	mediaType := extractor.ResolveMediaType(in.File.MediaType, in.File.Data)
	if !extractor.IsImage(mediaType) {
		return nil, run.fail(stageTranscription, apperrors.NewValidationError(msgInvalidPrescriptionType, nil))
	}
	if in.File.Empty() {
		return nil, run.fail(stageTranscription, apperrors.NewValidationError(msgEmptyPrescription, nil))
	}

	// Stage 1: transcription
	p, err := prompt.Build(prompt.TaskPrescriptionTranscription, prompt.Input{})
	if err != nil {
		return nil, run.fail(stageTranscription, apperrors.NewInternalError(msgTranscription, err))
	}
	transcription, err := s.models.Vision.Generate(ctx, p, ai.Attachment{MIMEType: mediaType, Data: in.File.Data})
	if err != nil {
		return nil, run.fail(stageTranscription, apperrors.NewUpstreamError(msgTranscription, err))
	}
	run.stageDone(stageTranscription, map[string]interface{}{"characters": len(transcription)})

	out := &models.PrescriptionResponse{Transcription: transcription, Medications: []models.Medication{}}
	if strings.TrimSpace(transcription) == "" {
		out.Transcription = ""
		run.finish()
		return out, nil
	}

	// Stage 2: medication names
	names, err := s.medicationNames(ctx, transcription)
	if err != nil {
		run.fallback(stageMedicationList, err)
	} else {
		run.stageDone(stageMedicationList, map[string]interface{}{"medications": len(names)})
	}

	// Stage 3: one explanation per medication, sequentially
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, run.fail(stageExplanation, apperrors.NewUpstreamError(msgExplanations, err))
		}
		explanation, err := s.explainMedication(ctx, name)
		if err != nil {
			run.fallback(stageExplanation, fmt.Errorf("%s: %w", name, err))
			explanation = fallbackExplanation
		}
		out.Medications = append(out.Medications, models.Medication{
			Name:        name,
			Explanation: explanation,
			Link:        MedicationSearchLink(name),
		})
	}
	if len(names) > 0 {
		run.stageDone(stageExplanation, nil)
	}

	run.finish()
	return out, nil
}

func (s *medicalService) medicationNames(ctx context.Context, transcription string) ([]string, error) {
	p, err := prompt.Build(prompt.TaskMedicationExtraction, prompt.Input{Text: transcription})
	if err != nil {
		return nil, err
	}
	raw, err := s.models.Text.Generate(ctx, p)
	if err != nil {
		return nil, err
	}
	list, err := parser.ParseArray(raw)
	if err != nil {
		return nil, err
	}
	return NormalizeMedicationNames(list), nil
}

func (s *medicalService) explainMedication(ctx context.Context, name string) (string, error) {
	p, err := prompt.Build(prompt.TaskMedicationExplanation, prompt.Input{Medication: name})
	if err != nil {
		return "", err
	}
	text, err := s.models.Text.Generate(ctx, p)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errBlankExplanation
	}
	return text, nil
}

// NormalizeMedicationNames turns the model's list into clean, distinct names.
// Entries may be strings or objects with a "name" field; blanks are dropped and
// near-duplicates (one edit apart, ignoring case) keep their first spelling.
func NormalizeMedicationNames(list []any) []string {
	names := make([]string, 0, len(list))
	for _, item := range list {
		name := medicationName(item)
		if name == "" || isDuplicateName(names, name) {
			continue
		}
		names = append(names, name)
	}
	return names
}

func medicationName(item any) string {
	switch v := item.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		if n, ok := v["name"].(string); ok {
			return strings.TrimSpace(n)
		}
	case float64, bool:
		return fmt.Sprint(v)
	}
	return ""
}

func isDuplicateName(seen []string, name string) bool {
	lower := strings.ToLower(name)
	for _, existing := range seen {
		other := strings.ToLower(existing)
		if other == lower {
			return true
		}
		if utf8.RuneCountInString(lower) < fuzzyMatchMinRunes || utf8.RuneCountInString(other) < fuzzyMatchMinRunes {
			continue
		}
		if levenshtein.Distance(lower, other) <= 1 {
			return true
		}
	}
	return false
}

// MedicationSearchLink builds a web search URL for buying the named medication.
func MedicationSearchLink(name string) string {
	return searchURLPrefix + url.QueryEscape("buy "+name+" online")
}
