package mock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/viralforge/server/domain"
	"github.com/viralforge/server/domain/repositories"
)

// Studio is a placeholder implementation of every generation capability. It
// answers with deterministic canned content after a short artificial delay so
// the rest of the system behaves the same with or without provider credentials.
type Studio struct {
	logger *zap.Logger
	delay  time.Duration
}

var (
	_ repositories.ScriptGenerator   = (*Studio)(nil)
	_ repositories.TrendAnalyzer     = (*Studio)(nil)
	_ repositories.ChatResponder     = (*Studio)(nil)
	_ repositories.ImageGenerator    = (*Studio)(nil)
	_ repositories.ImageEditor       = (*Studio)(nil)
	_ repositories.VideoGenerator    = (*Studio)(nil)
	_ repositories.SpeechSynthesizer = (*Studio)(nil)
	_ repositories.Transcriber       = (*Studio)(nil)
	_ repositories.VoiceCloner       = (*Studio)(nil)
	_ repositories.LiveTransport     = (*Studio)(nil)
)

// New creates a mock studio. A non-positive delay disables the artificial
// latency, which tests rely on.
func New(logger *zap.Logger, delay time.Duration) *Studio {
	return &Studio{
		logger: logger,
		delay:  delay,
	}
}

func (s *Studio) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// GenerateScript implements repositories.ScriptGenerator
func (s *Studio) GenerateScript(ctx context.Context, req domain.ScriptRequest) (domain.ScriptResult, error) {
	if err := s.wait(ctx); err != nil {
		return domain.ScriptResult{}, err
	}
	s.logger.Info("Serving mock script", zap.String("topic", req.Topic))

	tag := "#" + strings.ToLower(strings.ReplaceAll(req.Topic, " ", ""))
	return domain.ScriptResult{
		Title:               fmt.Sprintf("Viral %s Video", req.Topic),
		Hook:                fmt.Sprintf("Stop doing %s WRONG! Here's what actually works.", req.Topic),
		Body:                fmt.Sprintf("Step one: pick a single angle on %s. Step two: show the result before the method. Step three: end on an open loop so viewers rewatch.", req.Topic),
		CTA:                 "Follow for more daily tips!",
		EstimatedViralScore: 85,
		Hashtags:            []string{tag, "#viral", "#fyp"},
	}, nil
}

// AnalyzeTrend implements repositories.TrendAnalyzer
func (s *Studio) AnalyzeTrend(ctx context.Context, req domain.TrendRequest) (domain.TrendResult, error) {
	if err := s.wait(ctx); err != nil {
		return domain.TrendResult{}, err
	}

	// Derived from the keyword so repeated queries stay stable.
	score := 40 + (len(req.Keyword)*7)%60
	return domain.TrendResult{
		Prediction: fmt.Sprintf("'%s' is seeing steady creator interest. Short tutorial formats are the safest entry point this week.", req.Keyword),
		Score:      score,
	}, nil
}

// Respond implements repositories.ChatResponder
func (s *Studio) Respond(ctx context.Context, req domain.ChatRequest) (domain.ChatResult, error) {
	if err := s.wait(ctx); err != nil {
		return domain.ChatResult{}, err
	}
	s.logger.Info("Serving mock chat turn", zap.String("mode", string(req.Augmentation())))

	return domain.ChatResult{
		Text:    "I'm just a mock AI without an API key. Add a Gemini key to get real answers, but here's a tip: consistency beats perfection.",
		Sources: []string{},
	}, nil
}

// GenerateImage implements repositories.ImageGenerator
func (s *Studio) GenerateImage(ctx context.Context, req domain.ImageGenRequest) (domain.ImageResult, error) {
	if err := s.wait(ctx); err != nil {
		return domain.ImageResult{}, err
	}
	return domain.ImageResult{MIMEType: "image/png", Data: patternBytes(512)}, nil
}

// EditImage implements repositories.ImageEditor
func (s *Studio) EditImage(ctx context.Context, req domain.ImageEditRequest) (domain.ImageResult, error) {
	if err := s.wait(ctx); err != nil {
		return domain.ImageResult{}, err
	}
	return domain.ImageResult{MIMEType: "image/png", Data: patternBytes(512)}, nil
}

// GenerateVideo implements repositories.VideoGenerator
func (s *Studio) GenerateVideo(ctx context.Context, req domain.VideoGenRequest) (domain.VideoResult, error) {
	if err := s.wait(ctx); err != nil {
		return domain.VideoResult{}, err
	}
	return domain.VideoResult{
		URI: fmt.Sprintf("https://mock.viralforge.local/videos/clip-%03d.mp4", len(req.Prompt)%1000),
	}, nil
}

// SynthesizeSpeech implements repositories.SpeechSynthesizer
func (s *Studio) SynthesizeSpeech(ctx context.Context, text string, providerVoiceID string) (domain.SpeechResult, error) {
	if err := s.wait(ctx); err != nil {
		return domain.SpeechResult{}, err
	}
	s.logger.Info("Serving mock speech",
		zap.String("voice", providerVoiceID),
		zap.Int("textLength", len(text)))

	// Roughly 20ms of audio per character keeps playback length plausible.
	samples := len(text) * 480
	if samples == 0 {
		samples = 480
	}
	return domain.SpeechResult{Audio: patternBytes(samples * 2), SampleRate: 24000}, nil
}

// Transcribe implements repositories.Transcriber
func (s *Studio) Transcribe(ctx context.Context, req domain.TranscriptionRequest) (domain.TranscriptionResult, error) {
	if err := s.wait(ctx); err != nil {
		return domain.TranscriptionResult{}, err
	}

	// Longer recordings get longer canned transcripts.
	size := len(req.Audio.Payload())
	var text string
	switch {
	case size > 10000:
		text = "Hey everyone, welcome back to the channel. Today I'm breaking down the three things that made my last video take off."
	case size > 1000:
		text = "Quick tip before you post: write the caption first."
	default:
		text = "Testing, one two three."
	}
	return domain.TranscriptionResult{Text: text}, nil
}

// CloneVoice implements repositories.VoiceCloner
func (s *Studio) CloneVoice(ctx context.Context, name string, sample domain.Attachment) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}
	id := "mock-voice-" + strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
	s.logger.Info("Registered mock cloned voice", zap.String("providerId", id))
	return id, nil
}

func patternBytes(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 256)
	}
	return data
}
