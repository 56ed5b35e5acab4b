// Package prompt renders the instruction text sent to the generative models.
package prompt

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"
)

// Task identifies which instruction to render.
type Task string

const (
	TaskNutritionReport           Task = "nutrition_report"
	TaskFoodAnalysis              Task = "food_analysis"
	TaskNutritionComparison       Task = "nutrition_comparison"
	TaskStructuredSummary         Task = "structured_summary"
	TaskPrescriptionTranscription Task = "prescription_transcription"
	TaskMedicationExtraction      Task = "medication_extraction"
	TaskMedicationExplanation     Task = "medication_explanation"
	TaskReportChat                Task = "report_chat"
)

const DefaultLanguage = "English"

// ComparisonStatuses are the only values the comparison stage may report.
var ComparisonStatuses = []string{"Good Match", "Cautionary Risk", "Major Concern", "Balanced"}

var (
	ErrUnknownTask  = errors.New("unknown prompt task")
	ErrMissingInput = errors.New("missing prompt input")
)

// Input carries everything a task might interpolate. Unused fields are ignored.
type Input struct {
	Language   string
	Text       string
	Question   string
	Medication string
	Report     any
	Food       any
}

type templateData struct {
	Language   string
	Text       string
	Question   string
	Medication string
	ReportJSON string
	FoodJSON   string
	Statuses   []string
}

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("prompts").Option("missingkey=error").ParseFS(templateFS, "templates/*.tmpl"))

// required lists the inputs each task cannot render without.
var required = map[Task][]string{
	TaskNutritionReport:           {"Text"},
	TaskFoodAnalysis:              nil,
	TaskNutritionComparison:       {"Report", "Food"},
	TaskStructuredSummary:         {"Text"},
	TaskPrescriptionTranscription: nil,
	TaskMedicationExtraction:      {"Text"},
	TaskMedicationExplanation:     {"Medication"},
	TaskReportChat:                {"Text", "Question"},
}

// Build renders the instruction for task. It performs no I/O and is deterministic.
func Build(task Task, in Input) (string, error) {
	fields, ok := required[task]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTask, task)
	}
	for _, f := range fields {
		if missing(in, f) {
			return "", fmt.Errorf("%w: %s requires %s", ErrMissingInput, task, f)
		}
	}

	data := templateData{
		Language:   strings.TrimSpace(in.Language),
		Text:       in.Text,
		Question:   in.Question,
		Medication: in.Medication,
		Statuses:   ComparisonStatuses,
	}
	if data.Language == "" {
		data.Language = DefaultLanguage
	}
	if in.Report != nil {
		b, err := json.Marshal(in.Report)
		if err != nil {
			return "", fmt.Errorf("encode report context: %w", err)
		}
		data.ReportJSON = string(b)
	}
	if in.Food != nil {
		b, err := json.Marshal(in.Food)
		if err != nil {
			return "", fmt.Errorf("encode food context: %w", err)
		}
		data.FoodJSON = string(b)
	}

	var sb strings.Builder
	if err := templates.ExecuteTemplate(&sb, string(task)+".tmpl", data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", task, err)
	}
	return sb.String(), nil
}

func missing(in Input, field string) bool {
	switch field {
	case "Text":
		return strings.TrimSpace(in.Text) == ""
	case "Question":
		return strings.TrimSpace(in.Question) == ""
	case "Medication":
		return strings.TrimSpace(in.Medication) == ""
	case "Report":
		return in.Report == nil
	case "Food":
		return in.Food == nil
	}
	return false
}
