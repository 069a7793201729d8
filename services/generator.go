package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"roamlist/config"
)

// Generator turns a prompt into free-form generated text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

var (
	ErrNoCredential    = errors.New("api key not configured")
	ErrEmptyGeneration = errors.New("no content generated")
)

// UpstreamError reports a failed call to the generative backend. Status is 0 when no response was received.
type UpstreamError struct {
	Provider string
	Status   int
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: upstream status %d: %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NewGenerator returns the client for the configured provider, or nil when its key is absent so the
// planner goes straight to fallback content.
func NewGenerator(cfg config.AIConfig, logger *slog.Logger) Generator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Credential() == "" {
		logger.Warn("AI key not set, itineraries and packing lists will use fallback content", "provider", cfg.Provider)
		return nil
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	switch cfg.Provider {
	case config.ProviderHuggingFace:
		logger.Info("AI initialized", "provider", cfg.Provider, "model", cfg.HFModel)
		return NewHuggingFaceClient(cfg.HuggingFaceKey, cfg.HFModel, "", httpClient)
	default:
		logger.Info("AI initialized", "provider", cfg.Provider, "model", cfg.GeminiModel)
		return NewGeminiClient(cfg.GeminiKey, cfg.GeminiModel, cfg.GeminiBaseURL, httpClient)
	}
}
