package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"go-leximed/internal/extractor"
)

type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) Extract(ctx context.Context, data []byte, mediaType string) extractor.Result {
	args := m.Called(ctx, data, mediaType)
	return args.Get(0).(extractor.Result)
}
