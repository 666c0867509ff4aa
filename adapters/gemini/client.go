package gemini

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/viralforge/server/domain/repositories"
)

const (
	defaultPollInterval    = 10 * time.Second
	defaultPollMaxAttempts = 30
)

// Studio implements every generative capability against the Gemini API. It is
// constructed explicitly by the composition root and passed down; when no
// credential is configured the root wires the mock adapters instead, so a
// Studio always has a working client.
type Studio struct {
	client *genai.Client
	logger *zap.Logger

	pollInterval    time.Duration
	pollMaxAttempts int
	sleep           func(ctx context.Context, d time.Duration) error
}

var (
	_ repositories.ScriptGenerator   = (*Studio)(nil)
	_ repositories.TrendAnalyzer     = (*Studio)(nil)
	_ repositories.ChatResponder     = (*Studio)(nil)
	_ repositories.ImageGenerator    = (*Studio)(nil)
	_ repositories.ImageEditor       = (*Studio)(nil)
	_ repositories.VideoGenerator    = (*Studio)(nil)
	_ repositories.SpeechSynthesizer = (*Studio)(nil)
	_ repositories.LiveTransport     = (*Studio)(nil)
)

// New creates a Studio from an API key.
func New(ctx context.Context, apiKey string, logger *zap.Logger) (*Studio, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Studio{
		client:          client,
		logger:          logger,
		pollInterval:    defaultPollInterval,
		pollMaxAttempts: defaultPollMaxAttempts,
		sleep:           sleepContext,
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
