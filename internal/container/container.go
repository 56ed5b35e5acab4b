package container

import (
	"context"
	"errors"
	"net/http"

	"go-leximed/internal/ai"
	"go-leximed/internal/config"
	"go-leximed/internal/extractor"
	"go-leximed/internal/factory"
	"go-leximed/internal/logger"
	"go-leximed/internal/observer"
	"go-leximed/internal/repository"
	"go-leximed/internal/service"
	"go-leximed/internal/transport"

	"github.com/sirupsen/logrus"
)

// Container holds all application dependencies
type Container struct {
	config         *config.Config
	pool           *extractor.WorkerPool
	textExtractor  extractor.TextExtractor
	models         ai.Models
	closeModels    func() error
	hospitals      repository.HospitalRepository
	publisher      *observer.EventPublisher
	metrics        *observer.MetricsObserver
	medicalService service.MedicalService
	handler        http.Handler
}

// NewContainer creates a new dependency injection container.
// A missing or broken model backend is not fatal: AI endpoints then answer 500.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("container: nil config")
	}

	components := factory.NewComponentFactory(cfg)

	pool := extractor.NewWorkerPool(cfg.OCR.Workers)
	pool.Start()
	textExtractor := components.ExtractorFactory.CreateExtractor(pool)

	models, closeModels := createModels(ctx, components.ModelFactory, cfg)

	publisher := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	hospitals := repository.NewStaticHospitalRepository()
	medicalService := service.NewMedicalService(service.Dependencies{
		Models:    models,
		Extractor: textExtractor,
		Hospitals: hospitals,
		Events:    publisher,
	})
	handler := transport.NewHandler(medicalService, metrics, pool, cfg)

	return &Container{
		config:         cfg,
		pool:           pool,
		textExtractor:  textExtractor,
		models:         models,
		closeModels:    closeModels,
		hospitals:      hospitals,
		publisher:      publisher,
		metrics:        metrics,
		medicalService: medicalService,
		handler:        handler,
	}, nil
}

func createModels(ctx context.Context, f factory.ModelFactory, cfg *config.Config) (ai.Models, func() error) {
	provider := factory.DisabledProvider
	if cfg.AIConfigured() {
		provider = factory.GeminiProvider
	}

	models, closeFn, err := f.CreateModels(ctx, provider)
	if err != nil {
		logger.WithError(err).WithField("provider", provider).
			Error("Failed to initialize AI models, AI endpoints will be unavailable")
		return ai.Models{}, func() error { return nil }
	}
	if !models.Configured() {
		logger.WithField("provider", provider).Warn("AI models not configured, AI endpoints will be unavailable")
	} else {
		logger.WithFields(logrus.Fields{
			"provider":     provider,
			"text_model":   cfg.AI.TextModel,
			"vision_model": cfg.AI.VisionModel,
		}).Info("AI models initialized")
	}
	return models, closeFn
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the medical service
func (c *Container) Service() service.MedicalService {
	return c.medicalService
}

// Close stops the OCR workers and releases the model client
func (c *Container) Close() error {
	c.pool.Close()
	if c.closeModels == nil {
		return nil
	}
	return c.closeModels()
}
