package factory

import (
	"context"
	"fmt"

	"go-leximed/internal/ai"
	"go-leximed/internal/config"
	"go-leximed/internal/extractor"
	"go-leximed/internal/extractor/mupdf"
	"go-leximed/internal/extractor/tesseract"
)

// ProviderType represents different generative model backends
type ProviderType string

const (
	// GeminiProvider for Google Gemini models
	GeminiProvider ProviderType = ProviderType(config.ProviderGemini)
	// DisabledProvider yields no models; every AI endpoint reports it is not configured
	DisabledProvider ProviderType = ProviderType(config.ProviderDisabled)
)

// ModelFactory creates the text and vision model clients
type ModelFactory interface {
	CreateModels(ctx context.Context, providerType ProviderType) (ai.Models, func() error, error)
}

// ExtractorFactory creates the OCR pipeline
type ExtractorFactory interface {
	CreateExtractor(pool *extractor.WorkerPool) *extractor.Extractor
}

// modelFactory implements ModelFactory
type modelFactory struct {
	cfg config.AIConfig
}

// NewModelFactory creates a new model factory
func NewModelFactory(cfg config.AIConfig) ModelFactory {
	return &modelFactory{cfg: cfg}
}

func noopClose() error { return nil }

// CreateModels builds clients for the provider, wrapping each with the configured retry policy
func (f *modelFactory) CreateModels(ctx context.Context, providerType ProviderType) (ai.Models, func() error, error) {
	switch providerType {
	case GeminiProvider:
		models, closeFn, err := ai.NewGeminiModels(ctx, ai.GeminiConfig{
			APIKey:      f.cfg.APIKey,
			TextModel:   f.cfg.TextModel,
			VisionModel: f.cfg.VisionModel,
		})
		if err != nil {
			return ai.Models{}, noopClose, err
		}
		return ai.Models{
			Text:   ai.WithRetry(models.Text, f.cfg.MaxRetries, f.cfg.RetryBackoff),
			Vision: ai.WithRetry(models.Vision, f.cfg.MaxRetries, f.cfg.RetryBackoff),
		}, closeFn, nil
	case DisabledProvider:
		return ai.Models{}, noopClose, nil
	default:
		return ai.Models{}, noopClose, fmt.Errorf("unsupported model provider: %s", providerType)
	}
}

// extractorFactory implements ExtractorFactory
type extractorFactory struct {
	cfg config.OCRConfig
}

// NewExtractorFactory creates a new extractor factory
func NewExtractorFactory(cfg config.OCRConfig) ExtractorFactory {
	return &extractorFactory{cfg: cfg}
}

// CreateExtractor wires Tesseract and MuPDF into an extractor running on pool
func (f *extractorFactory) CreateExtractor(pool *extractor.WorkerPool) *extractor.Extractor {
	return extractor.New(extractor.Options{
		OCR:       tesseract.NewEngine(f.cfg.Language, f.cfg.TessdataPrefix),
		Renderer:  mupdf.NewRenderer(),
		RenderDPI: f.cfg.RenderDPI,
		Pool:      pool,
	})
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	ModelFactory     ModelFactory
	ExtractorFactory ExtractorFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		ModelFactory:     NewModelFactory(cfg.AI),
		ExtractorFactory: NewExtractorFactory(cfg.OCR),
	}
}
