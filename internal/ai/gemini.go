package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiConfig selects the models backing each role.
type GeminiConfig struct {
	APIKey      string
	TextModel   string
	VisionModel string
}

// generator is the subset of *genai.GenerativeModel the adapter uses.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Gemini is a Client backed by one Gemini model.
type Gemini struct {
	model string
	gen   generator
}

// SafetySettings blocks medium-and-above harm in all four categories; both roles share it.
func SafetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockMediumAndAbove},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockMediumAndAbove},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockMediumAndAbove},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockMediumAndAbove},
	}
}

// NewGeminiModels opens one API client and derives the text and vision roles from it.
// The returned close func releases the underlying connection.
func NewGeminiModels(ctx context.Context, cfg GeminiConfig) (Models, func() error, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return Models{}, nil, fmt.Errorf("gemini: %w: GEMINI_API_KEY is empty", ErrNotConfigured)
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return Models{}, nil, fmt.Errorf("gemini: create client: %w", err)
	}

	text := newGenerativeModel(cl, cfg.TextModel)
	vision := newGenerativeModel(cl, cfg.VisionModel)

	return Models{
		Text:   &Gemini{model: cfg.TextModel, gen: text},
		Vision: &Gemini{model: cfg.VisionModel, gen: vision},
	}, cl.Close, nil
}

func newGenerativeModel(cl *genai.Client, name string) *genai.GenerativeModel {
	m := cl.GenerativeModel(strings.TrimSpace(name))
	m.SafetySettings = SafetySettings()
	return m
}

func (g *Gemini) Model() string { return g.model }

func (g *Gemini) Generate(ctx context.Context, prompt string, attachments ...Attachment) (string, error) {
	parts := make([]genai.Part, 0, 1+len(attachments))
	parts = append(parts, genai.Text(prompt))
	for _, a := range attachments {
		parts = append(parts, &genai.Blob{MIMEType: a.MIMEType, Data: a.Data})
	}

	resp, err := g.gen.GenerateContent(ctx, parts...)
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return "", fmt.Errorf("gemini %s: %w: %v", g.model, ErrBlocked, blocked)
		}
		return "", fmt.Errorf("gemini %s: %w", g.model, err)
	}
	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrEmptyResponse
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("%w: prompt %s", ErrBlocked, resp.PromptFeedback.BlockReason)
	}
	if txt, ok := candidateText(resp); ok {
		return txt, nil
	}
	for _, c := range resp.Candidates {
		if c != nil && c.FinishReason == genai.FinishReasonSafety {
			return "", fmt.Errorf("%w: candidate finished with %s", ErrBlocked, c.FinishReason)
		}
	}
	return "", ErrEmptyResponse
}

// candidateText joins the text parts of the first candidate that has any.
func candidateText(resp *genai.GenerateContentResponse) (string, bool) {
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var b strings.Builder
		found := false
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
				found = true
			}
		}
		if found {
			return b.String(), true
		}
	}
	return "", false
}
