package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	resp  *genai.GenerateContentResponse
	err   error
	parts []genai.Part
}

func (f *fakeGenerator) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.parts = parts
	return f.resp, f.err
}

func textResponse(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func TestGemini_Generate(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse(genai.Text(`{"ok": true}`))}
	g := &Gemini{model: "gemini-2.5-flash", gen: gen}

	out, err := g.Generate(context.Background(), "describe", Attachment{MIMEType: "image/png", Data: []byte{1, 2}})

	require.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, out)
	require.Len(t, gen.parts, 2)
	assert.Equal(t, genai.Text("describe"), gen.parts[0])
	blob, ok := gen.parts[1].(*genai.Blob)
	require.True(t, ok)
	assert.Equal(t, "image/png", blob.MIMEType)
	assert.Equal(t, []byte{1, 2}, blob.Data)
}

func TestGemini_SkipsNonTextParts(t *testing.T) {
	gen := &fakeGenerator{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: nil},
			{Content: &genai.Content{Parts: []genai.Part{&genai.Blob{MIMEType: "image/png"}, genai.Text("second")}}},
		},
	}}
	g := &Gemini{gen: gen}

	out, err := g.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "second", out)
}

func TestGemini_JoinsTextParts(t *testing.T) {
	gen := &fakeGenerator{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{
				genai.Text(`{"summary": "x",`),
				&genai.Blob{MIMEType: "image/png"},
				genai.Text(` "status": "Balanced"}`),
			}}},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("other candidate")}}},
		},
	}}
	g := &Gemini{gen: gen}

	out, err := g.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, `{"summary": "x", "status": "Balanced"}`, out)
}

func TestGemini_ClientBlockedError(t *testing.T) {
	gen := &countingGenerator{err: &genai.BlockedError{
		PromptFeedback: &genai.PromptFeedback{BlockReason: genai.BlockReasonSafety},
	}}
	c := WithRetry(&Gemini{model: "m", gen: gen}, 3, time.Millisecond)

	out, err := c.Generate(context.Background(), "p")

	require.Error(t, err)
	assert.Empty(t, out)
	assert.ErrorIs(t, err, ErrBlocked)
	assert.Equal(t, 1, gen.calls)
}

type countingGenerator struct {
	err   error
	calls int
}

func (g *countingGenerator) GenerateContent(_ context.Context, _ ...genai.Part) (*genai.GenerateContentResponse, error) {
	g.calls++
	return nil, g.err
}

func TestGemini_Errors(t *testing.T) {
	tests := []struct {
		name    string
		gen     *fakeGenerator
		wantErr error
	}{
		{
			name:    "transport error",
			gen:     &fakeGenerator{err: errors.New("quota exceeded")},
			wantErr: nil,
		},
		{
			name:    "nil response",
			gen:     &fakeGenerator{},
			wantErr: ErrEmptyResponse,
		},
		{
			name:    "no candidates",
			gen:     &fakeGenerator{resp: &genai.GenerateContentResponse{}},
			wantErr: ErrEmptyResponse,
		},
		{
			name: "prompt blocked",
			gen: &fakeGenerator{resp: &genai.GenerateContentResponse{
				PromptFeedback: &genai.PromptFeedback{BlockReason: genai.BlockReasonSafety},
			}},
			wantErr: ErrBlocked,
		},
		{
			name: "candidate stopped for safety",
			gen: &fakeGenerator{resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
			}},
			wantErr: ErrBlocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &Gemini{model: "m", gen: tt.gen}
			out, err := g.Generate(context.Background(), "p")
			require.Error(t, err)
			assert.Empty(t, out)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestSafetySettings(t *testing.T) {
	settings := SafetySettings()
	require.Len(t, settings, 4)

	categories := map[genai.HarmCategory]bool{}
	for _, s := range settings {
		assert.Equal(t, genai.HarmBlockMediumAndAbove, s.Threshold)
		categories[s.Category] = true
	}
	assert.True(t, categories[genai.HarmCategoryHarassment])
	assert.True(t, categories[genai.HarmCategoryHateSpeech])
	assert.True(t, categories[genai.HarmCategorySexuallyExplicit])
	assert.True(t, categories[genai.HarmCategoryDangerousContent])
}

func TestNewGeminiModels_RequiresKey(t *testing.T) {
	_, closeFn, err := NewGeminiModels(context.Background(), GeminiConfig{APIKey: "  "})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Nil(t, closeFn)
}

type stubClient struct {
	responses []string
	errs      []error
	calls     int
}

func (s *stubClient) Generate(_ context.Context, _ string, _ ...Attachment) (string, error) {
	i := s.calls
	s.calls++
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return "", nil
}

func TestModels_Ready(t *testing.T) {
	stub := &stubClient{}

	assert.NoError(t, Models{Text: stub, Vision: stub}.Ready())
	assert.True(t, Models{Text: stub, Vision: stub}.Configured())
	assert.NoError(t, Models{Text: stub}.Ready(RoleText))

	err := Models{Text: stub}.Ready()
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Contains(t, err.Error(), "vision")

	assert.ErrorIs(t, Models{}.Ready(RoleText), ErrNotConfigured)
	assert.False(t, Models{}.Configured())
}

func TestWithRetry(t *testing.T) {
	t.Run("disabled returns the same client", func(t *testing.T) {
		stub := &stubClient{}
		assert.Same(t, stub, WithRetry(stub, 0, time.Millisecond))
	})

	t.Run("recovers after transient failure", func(t *testing.T) {
		stub := &stubClient{
			errs:      []error{errors.New("503"), nil},
			responses: []string{"", "answer"},
		}
		c := WithRetry(stub, 2, time.Millisecond)

		out, err := c.Generate(context.Background(), "q")
		require.NoError(t, err)
		assert.Equal(t, "answer", out)
		assert.Equal(t, 2, stub.calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		stub := &stubClient{errs: []error{errors.New("a"), errors.New("b"), errors.New("c")}}
		c := WithRetry(stub, 2, time.Millisecond)

		_, err := c.Generate(context.Background(), "q")
		assert.EqualError(t, err, "c")
		assert.Equal(t, 3, stub.calls)
	})

	t.Run("blocked is terminal", func(t *testing.T) {
		stub := &stubClient{errs: []error{ErrBlocked, nil}}
		c := WithRetry(stub, 3, time.Millisecond)

		_, err := c.Generate(context.Background(), "q")
		assert.ErrorIs(t, err, ErrBlocked)
		assert.Equal(t, 1, stub.calls)
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		stub := &stubClient{errs: []error{errors.New("x"), nil}}
		c := WithRetry(stub, 3, time.Millisecond)

		_, err := c.Generate(ctx, "q")
		assert.Error(t, err)
		assert.Equal(t, 1, stub.calls)
	})
}
