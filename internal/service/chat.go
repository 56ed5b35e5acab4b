package service

import (
	"context"
	"strings"

	"go-leximed/internal/ai"
	apperrors "go-leximed/internal/errors"
	"go-leximed/internal/prompt"
	"go-leximed/pkg/models"
)

const (
	msgChatFieldsRequired = "Both original_text and user_question are required."
	msgChatAnswer         = "Failed to generate answer"
)

// ChatReport answers a free-text question grounded in previously extracted report text
func (s *medicalService) ChatReport(ctx context.Context, in ChatInput) (*models.ChatResponse, error) {
	run := s.begin(ctx, pipelineChatReport)

	if appErr := s.requireModels(ai.RoleText); appErr != nil {
		return nil, run.fail("", appErr)
	}
	if strings.TrimSpace(in.OriginalText) == "" || strings.TrimSpace(in.Question) == "" {
		return nil, run.fail(stageAnswer, apperrors.NewValidationError(msgChatFieldsRequired, nil))
	}

	p, err := prompt.Build(prompt.TaskReportChat, prompt.Input{Text: in.OriginalText, Question: in.Question})
	if err != nil {
		return nil, run.fail(stageAnswer, apperrors.NewInternalError(msgChatAnswer, err))
	}
	answer, err := s.models.Text.Generate(ctx, p)
	if err != nil {
		return nil, run.fail(stageAnswer, apperrors.NewUpstreamError(msgChatAnswer, err))
	}
	run.stageDone(stageAnswer, nil)

	run.finish()
	return &models.ChatResponse{Answer: strings.TrimSpace(answer)}, nil
}
