package extractor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"strings"
)

// OCREngine recognizes text in a single encoded raster image.
type OCREngine interface {
	Recognize(ctx context.Context, img []byte) (string, error)
}

// PageRenderer rasterizes every page of a PDF at the given resolution.
type PageRenderer interface {
	Render(ctx context.Context, pdf []byte, dpi float64) ([]image.Image, error)
}

// ExtractionStrategy turns one family of media types into text
type ExtractionStrategy interface {
	Extract(ctx context.Context, data []byte) Result
	GetStrategyName() string
}

// pdfStrategy renders pages and runs OCR on each one
type pdfStrategy struct {
	renderer PageRenderer
	ocr      OCREngine
	dpi      float64
}

func newPDFStrategy(renderer PageRenderer, ocr OCREngine, dpi float64) ExtractionStrategy {
	return &pdfStrategy{renderer: renderer, ocr: ocr, dpi: dpi}
}

func (s *pdfStrategy) Extract(ctx context.Context, data []byte) Result {
	pages, err := s.renderer.Render(ctx, data, s.dpi)
	if err != nil {
		return failed(MediaTypePDF, ReasonRenderFailure, err)
	}

	var sb strings.Builder
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return failed(MediaTypePDF, ReasonOCRFailure, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, page); err != nil {
			return failed(MediaTypePDF, ReasonRenderFailure, fmt.Errorf("encode page %d: %w", i+1, err))
		}
		text, err := s.ocr.Recognize(ctx, buf.Bytes())
		if err != nil {
			return failed(MediaTypePDF, ReasonOCRFailure, fmt.Errorf("page %d: %w", i+1, err))
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return Result{Status: StatusOK, Text: sb.String(), Pages: len(pages), MediaType: MediaTypePDF}
}

func (s *pdfStrategy) GetStrategyName() string {
	return "pdf_ocr"
}

// imageStrategy runs OCR directly on a PNG or JPEG upload
type imageStrategy struct {
	ocr       OCREngine
	mediaType string
}

func newImageStrategy(ocr OCREngine, mediaType string) ExtractionStrategy {
	return &imageStrategy{ocr: ocr, mediaType: mediaType}
}

func (s *imageStrategy) Extract(ctx context.Context, data []byte) Result {
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return failed(s.mediaType, ReasonDecodeFailure, err)
	}
	text, err := s.ocr.Recognize(ctx, data)
	if err != nil {
		return failed(s.mediaType, ReasonOCRFailure, err)
	}
	return Result{Status: StatusOK, Text: text, Pages: 1, MediaType: s.mediaType}
}

func (s *imageStrategy) GetStrategyName() string {
	return "image_ocr"
}
