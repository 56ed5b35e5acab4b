package service

import (
	"context"
	"strings"

	"go-leximed/internal/ai"
	apperrors "go-leximed/internal/errors"
	"go-leximed/internal/extractor"
	"go-leximed/internal/parser"
	"go-leximed/internal/prompt"
	"go-leximed/pkg/models"
)

const (
	msgReportExtraction  = "Could not extract text from the medical report."
	msgFoodImageRequired = "A food image is required."
	msgFoodImageType     = "Invalid food image type. Please upload an image."
	msgReportSummary     = "Failed to simplify report or parse JSON"
	msgFoodAnalysis      = "Failed to analyze food image or parse JSON"
	msgComparison        = "Failed to generate comparison or parse JSON"
)

// NutritionalScan OCRs the report, summarizes its nutritional implications,
// analyzes the meal photo and compares the two.
func (s *medicalService) NutritionalScan(ctx context.Context, in NutritionalScanInput) (*models.NutritionalScanResponse, error) {
	run := s.begin(ctx, pipelineNutritionalScan)

	if appErr := s.requireModels(ai.RoleText, ai.RoleVision); appErr != nil {
		return nil, run.fail("", appErr)
	}
	if in.FoodImage.Empty() {
		return nil, run.fail(stageFoodAnalysis, apperrors.NewValidationError(msgFoodImageRequired, nil))
	}
	foodType := extractor.ResolveMediaType(in.FoodImage.MediaType, in.FoodImage.Data)
	if !strings.HasPrefix(foodType, "image/") {
		return nil, run.fail(stageFoodAnalysis, apperrors.NewValidationError(msgFoodImageType, nil))
	}

	// Stage 1: report text
	if in.Report.Empty() {
		return nil, run.fail(stageExtract, apperrors.NewExtractionError(msgReportExtraction, nil))
	}
	res := s.extractor.Extract(ctx, in.Report.Data, in.Report.MediaType)
	if !res.OK() || res.Blank() {
		return nil, run.fail(stageExtract, apperrors.NewExtractionError(msgReportExtraction, nil))
	}
	run.stageDone(stageExtract, map[string]interface{}{"media_type": res.MediaType, "pages": res.Pages})

	// Stage 2: nutrition-focused report summary
	report, appErr := s.structuredStage(ctx, s.models.Text, prompt.TaskNutritionReport,
		prompt.Input{Language: in.Language, Text: res.Text}, parser.SchemaNutritionReport, msgReportSummary)
	if appErr != nil {
		return nil, run.fail(stageReportSummary, appErr)
	}
	run.stageDone(stageReportSummary, nil)

	// Stage 3: meal photo
	food, appErr := s.structuredStage(ctx, s.models.Vision, prompt.TaskFoodAnalysis,
		prompt.Input{Language: in.Language}, parser.SchemaFoodAnalysis, msgFoodAnalysis,
		ai.Attachment{MIMEType: foodType, Data: in.FoodImage.Data})
	if appErr != nil {
		return nil, run.fail(stageFoodAnalysis, appErr)
	}
	run.stageDone(stageFoodAnalysis, nil)

	// Stage 4: compare the meal against the report's needs
	comparison, appErr := s.structuredStage(ctx, s.models.Text, prompt.TaskNutritionComparison,
		prompt.Input{Language: in.Language, Report: report, Food: food}, parser.SchemaComparison, msgComparison)
	if appErr != nil {
		return nil, run.fail(stageComparison, appErr)
	}
	run.stageDone(stageComparison, map[string]interface{}{"status": comparison["status"]})

	run.finish()
	return &models.NutritionalScanResponse{
		SimplifiedReport: report,
		FoodAnalysis:     food,
		Comparison:       comparison,
	}, nil
}

// structuredStage renders a prompt, calls the model and parses a schema-checked object.
// Every failure is terminal and reported under message.
func (s *medicalService) structuredStage(
	ctx context.Context,
	client ai.Client,
	task prompt.Task,
	in prompt.Input,
	schema parser.Schema,
	message string,
	attachments ...ai.Attachment,
) (map[string]any, *apperrors.AppError) {
	p, err := prompt.Build(task, in)
	if err != nil {
		return nil, apperrors.NewInternalError(message, err)
	}
	raw, err := client.Generate(ctx, p, attachments...)
	if err != nil {
		return nil, apperrors.NewUpstreamError(message, err)
	}
	obj, err := parser.ParseValidated(raw, schema)
	if err != nil {
		return nil, apperrors.NewParseError(message, err)
	}
	return obj, nil
}
