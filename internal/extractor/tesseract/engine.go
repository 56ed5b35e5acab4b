// Package tesseract adapts gosseract to the extractor's OCR engine interface.
package tesseract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Engine runs Tesseract OCR. A fresh client is used per call since gosseract
// clients are not safe for concurrent use.
type Engine struct {
	language       string
	tessdataPrefix string
}

func NewEngine(language, tessdataPrefix string) *Engine {
	if language == "" {
		language = "eng"
	}
	return &Engine{language: language, tessdataPrefix: tessdataPrefix}
}

func (e *Engine) Recognize(ctx context.Context, img []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if e.tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(e.tessdataPrefix); err != nil {
			return "", fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(e.language); err != nil {
		return "", fmt.Errorf("set language %q: %w", e.language, err)
	}
	if err := client.SetImageFromBytes(img); err != nil {
		return "", fmt.Errorf("load image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}
