package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"go-leximed/internal/ai"
	apperrors "go-leximed/internal/errors"
	"go-leximed/internal/extractor"
	"go-leximed/internal/parser"
	"go-leximed/internal/prompt"
	"go-leximed/pkg/models"
)

// minSignificantText is the shortest trimmed extraction worth summarizing, in runes.
const minSignificantText = 10

const (
	msgInsignificantText = "Could not extract significant text from the file."
	msgProcessingFile    = "Error processing file"
	msgSimplify          = "Failed to generate or parse simplified report"
)

// Simplify OCRs a report and asks the text model for a sectioned, patient-friendly summary.
// When the answer cannot be parsed the raw model text is returned instead.
func (s *medicalService) Simplify(ctx context.Context, in SimplifyInput) (*models.SimplifyResponse, error) {
	run := s.begin(ctx, pipelineSimplify)

	if appErr := s.requireModels(ai.RoleText); appErr != nil {
		return nil, run.fail("", appErr)
	}
	if in.File.Empty() {
		return nil, run.fail(stageExtract, apperrors.NewExtractionError(msgInsignificantText, nil))
	}

	res := s.extractor.Extract(ctx, in.File.Data, in.File.MediaType)
	switch res.Status {
	case extractor.StatusFailed:
		return nil, run.fail(stageExtract, apperrors.NewExtractionError(msgProcessingFile, res.Err))
	case extractor.StatusUnsupported:
		return nil, run.fail(stageExtract, apperrors.NewExtractionError(msgInsignificantText, nil))
	}
	if utf8.RuneCountInString(strings.TrimSpace(res.Text)) < minSignificantText {
		return nil, run.fail(stageExtract, apperrors.NewExtractionError(msgInsignificantText, nil))
	}
	run.stageDone(stageExtract, map[string]interface{}{"media_type": res.MediaType, "pages": res.Pages})

	p, err := prompt.Build(prompt.TaskStructuredSummary, prompt.Input{Language: in.Language, Text: res.Text})
	if err != nil {
		return nil, run.fail(stageStructured, apperrors.NewInternalError(msgSimplify, err))
	}
	raw, err := s.models.Text.Generate(ctx, p)
	if err != nil {
		return nil, run.fail(stageStructured, apperrors.NewUpstreamError(msgSimplify, err))
	}

	out := &models.SimplifyResponse{OriginalText: res.Text}
	data, err := parser.ParseObject(raw)
	if err != nil {
		run.fallback(stageStructured, err)
		out.SimplifiedReportRaw = &raw
	} else {
		run.stageDone(stageStructured, nil)
		out.SimplifiedData = data
	}

	run.finish()
	return out, nil
}
