package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ProviderGemini   = "gemini"
	ProviderDisabled = "disabled"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64

	AI  AIConfig
	OCR OCRConfig

	CORSAllowedOrigins []string
	LogLevel           string
	LogFormat          string
}

// AIConfig holds generative model settings.
type AIConfig struct {
	Provider     string
	APIKey       string
	TextModel    string
	VisionModel  string
	MaxRetries   int
	RetryBackoff time.Duration
}

// OCRConfig holds text extraction settings.
type OCRConfig struct {
	Language       string
	TessdataPrefix string
	RenderDPI      float64
	Workers        int
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// AIConfigured reports whether a model provider can be constructed at all.
func (c *Config) AIConfigured() bool {
	return c.AI.Provider == ProviderGemini && strings.TrimSpace(c.AI.APIKey) != ""
}

func LoadFromEnv() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", "8000")
	v.SetDefault("REQUEST_TIMEOUT", "180s")
	v.SetDefault("MAX_REQUEST_BODY_SIZE", 20*1024*1024) // 20MB

	v.SetDefault("AI_PROVIDER", ProviderGemini)
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_TEXT_MODEL", "gemini-2.5-flash")
	v.SetDefault("GEMINI_VISION_MODEL", "gemini-2.5-flash")
	v.SetDefault("AI_MAX_RETRIES", 0)
	v.SetDefault("AI_RETRY_BACKOFF", "500ms")

	v.SetDefault("OCR_LANGUAGE", "eng")
	v.SetDefault("TESSDATA_PREFIX", "")
	v.SetDefault("PDF_RENDER_DPI", 150)
	v.SetDefault("OCR_WORKERS", 0)

	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	requestTimeout, err := durationValue(v, "REQUEST_TIMEOUT")
	if err != nil {
		return nil, err
	}
	retryBackoff, err := durationValue(v, "AI_RETRY_BACKOFF")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Host:               strings.TrimSpace(v.GetString("HOST")),
		Port:               strings.TrimSpace(v.GetString("PORT")),
		RequestTimeout:     requestTimeout,
		MaxRequestBodySize: v.GetInt64("MAX_REQUEST_BODY_SIZE"),
		AI: AIConfig{
			Provider:     strings.ToLower(strings.TrimSpace(v.GetString("AI_PROVIDER"))),
			APIKey:       strings.TrimSpace(v.GetString("GEMINI_API_KEY")),
			TextModel:    strings.TrimSpace(v.GetString("GEMINI_TEXT_MODEL")),
			VisionModel:  strings.TrimSpace(v.GetString("GEMINI_VISION_MODEL")),
			MaxRetries:   v.GetInt("AI_MAX_RETRIES"),
			RetryBackoff: retryBackoff,
		},
		OCR: OCRConfig{
			Language:       strings.TrimSpace(v.GetString("OCR_LANGUAGE")),
			TessdataPrefix: strings.TrimSpace(v.GetString("TESSDATA_PREFIX")),
			RenderDPI:      v.GetFloat64("PDF_RENDER_DPI"),
			Workers:        v.GetInt("OCR_WORKERS"),
		},
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		LogLevel:           strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL"))),
		LogFormat:          strings.ToLower(strings.TrimSpace(v.GetString("LOG_FORMAT"))),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	// Validate port is numeric and in range
	p, err := strconv.Atoi(c.Port)
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0 (got %s)", c.RequestTimeout)
	}
	switch c.AI.Provider {
	case ProviderGemini, ProviderDisabled:
	default:
		return fmt.Errorf("invalid AI_PROVIDER: %q", c.AI.Provider)
	}
	if c.AI.MaxRetries < 0 {
		return fmt.Errorf("AI_MAX_RETRIES must be >= 0 (got %d)", c.AI.MaxRetries)
	}
	if c.AI.RetryBackoff < 0 {
		return fmt.Errorf("AI_RETRY_BACKOFF must be >= 0 (got %s)", c.AI.RetryBackoff)
	}
	if c.OCR.RenderDPI < 50 || c.OCR.RenderDPI > 600 {
		return fmt.Errorf("PDF_RENDER_DPI must be within [50, 600] (got %v)", c.OCR.RenderDPI)
	}
	if c.OCR.Workers < 0 {
		return fmt.Errorf("OCR_WORKERS must be >= 0 (got %d)", c.OCR.Workers)
	}
	if c.OCR.Language == "" {
		return fmt.Errorf("OCR_LANGUAGE must not be empty")
	}
	return nil
}

func durationValue(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
