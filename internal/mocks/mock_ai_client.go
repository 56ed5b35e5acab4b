package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"go-leximed/internal/ai"
)

type MockAIClient struct {
	mock.Mock
}

func (m *MockAIClient) Generate(ctx context.Context, prompt string, attachments ...ai.Attachment) (string, error) {
	args := m.Called(ctx, prompt, attachments)
	return args.String(0), args.Error(1)
}
