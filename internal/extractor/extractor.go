// Package extractor turns uploaded PDFs and images into plain text via OCR.
package extractor

import (
	"context"
	"fmt"
	"time"

	"go-leximed/internal/logger"

	"github.com/sirupsen/logrus"
)

const DefaultRenderDPI = 150.0

// TextExtractor is what the pipelines depend on.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, mediaType string) Result
}

// Options configures an Extractor.
type Options struct {
	OCR       OCREngine
	Renderer  PageRenderer
	RenderDPI float64
	Pool      *WorkerPool
}

// Extractor dispatches uploads to a strategy by media type and runs the work on a pool.
type Extractor struct {
	strategies map[string]ExtractionStrategy
	pool       *WorkerPool
}

// New wires the strategies. A nil Pool runs extraction on the caller's goroutine.
func New(opts Options) *Extractor {
	dpi := opts.RenderDPI
	if dpi <= 0 {
		dpi = DefaultRenderDPI
	}
	strategies := map[string]ExtractionStrategy{
		MediaTypePNG:  newImageStrategy(opts.OCR, MediaTypePNG),
		MediaTypeJPEG: newImageStrategy(opts.OCR, MediaTypeJPEG),
	}
	if opts.Renderer != nil {
		strategies[MediaTypePDF] = newPDFStrategy(opts.Renderer, opts.OCR, dpi)
	}
	return &Extractor{strategies: strategies, pool: opts.Pool}
}

// Extract never returns a Go error: every failure is folded into the Result.
func (e *Extractor) Extract(ctx context.Context, data []byte, mediaType string) Result {
	mt := ResolveMediaType(mediaType, data)
	strategy, ok := e.strategies[mt]
	if !ok {
		logger.WithContext(ctx).WithFields(logrus.Fields{
			"declared_type": mediaType,
			"media_type":    mt,
		}).Info("Unsupported upload type for extraction")
		return unsupported(mt)
	}

	start := time.Now()
	res := e.run(ctx, strategy, data, mt)

	entry := logger.WithContext(ctx).WithFields(logrus.Fields{
		"strategy":           strategy.GetStrategyName(),
		"media_type":         mt,
		"status":             res.Status,
		"pages":              res.Pages,
		"characters":         len(res.Text),
		"processing_time_ms": time.Since(start).Milliseconds(),
	})
	if res.Err != nil {
		entry.WithError(res.Err).WithField("reason", res.Reason).Warn("Text extraction failed")
	} else {
		entry.Info("Text extraction completed")
	}
	return res
}

func (e *Extractor) run(ctx context.Context, strategy ExtractionStrategy, data []byte, mt string) (res Result) {
	if e.pool == nil {
		return safeExtract(ctx, strategy, data, mt)
	}

	done := make(chan Result, 1)
	err := e.pool.Submit(ctx, func() {
		done <- safeExtract(ctx, strategy, data, mt)
	})
	if err != nil {
		return failed(mt, ReasonOCRFailure, fmt.Errorf("schedule extraction: %w", err))
	}

	select {
	case res = <-done:
		return res
	case <-ctx.Done():
		return failed(mt, ReasonOCRFailure, ctx.Err())
	}
}

// safeExtract keeps a panicking engine from taking down a worker.
func safeExtract(ctx context.Context, strategy ExtractionStrategy, data []byte, mt string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = failed(mt, ReasonOCRFailure, fmt.Errorf("extraction panicked: %v", r))
		}
	}()
	return strategy.Extract(ctx, data)
}
