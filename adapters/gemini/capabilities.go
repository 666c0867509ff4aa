package gemini

import (
	"context"

	"go.uber.org/zap"

	"github.com/viralforge/server/domain"
)

// GenerateScript produces a structured script for one topic/platform/tone.
func (s *Studio) GenerateScript(ctx context.Context, req domain.ScriptRequest) (domain.ScriptResult, error) {
	p := scriptPayload(req)
	resp, err := s.client.Models.GenerateContent(ctx, p.Model, p.Contents, p.Config)
	if err != nil {
		return domain.ScriptResult{}, &domain.TransportError{Op: "generate script", Err: err}
	}

	result, err := normalizeScript(responseText(resp))
	if err != nil {
		return domain.ScriptResult{}, err
	}
	s.logger.Info("Script generated",
		zap.String("topic", req.Topic),
		zap.String("platform", req.Platform),
		zap.Int("viralScore", result.EstimatedViralScore))
	return result, nil
}

// AnalyzeTrend scores the growth potential of a keyword.
func (s *Studio) AnalyzeTrend(ctx context.Context, req domain.TrendRequest) (domain.TrendResult, error) {
	p := trendPayload(req)
	resp, err := s.client.Models.GenerateContent(ctx, p.Model, p.Contents, p.Config)
	if err != nil {
		return domain.TrendResult{}, &domain.TransportError{Op: "analyze trend", Err: err}
	}
	return normalizeTrend(responseText(resp))
}

// Respond answers one conversation turn in the request's augmentation mode.
func (s *Studio) Respond(ctx context.Context, req domain.ChatRequest) (domain.ChatResult, error) {
	p, err := chatPayload(req)
	if err != nil {
		return domain.ChatResult{}, err
	}

	resp, err := s.client.Models.GenerateContent(ctx, p.Model, p.Contents, p.Config)
	if err != nil {
		return domain.ChatResult{}, &domain.TransportError{Op: "chat", Err: err}
	}

	text := responseText(resp)
	if text == "" {
		return domain.ChatResult{}, &domain.NormalizationError{Reason: "chat response has no text"}
	}
	result := domain.ChatResult{Text: text, Sources: responseSources(resp)}
	s.logger.Info("Chat turn completed",
		zap.String("mode", string(req.Augmentation())),
		zap.Int("sources", len(result.Sources)))
	return result, nil
}

// GenerateImage renders a single image for the prompt.
func (s *Studio) GenerateImage(ctx context.Context, req domain.ImageGenRequest) (domain.ImageResult, error) {
	resp, err := s.client.Models.GenerateImages(ctx, ModelImagen, imagePrompt(req), imageConfig(req))
	if err != nil {
		return domain.ImageResult{}, &domain.TransportError{Op: "generate image", Err: err}
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil || len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		return domain.ImageResult{}, &domain.NormalizationError{Reason: "no image generated"}
	}
	return domain.ImageResult{
		MIMEType: "image/jpeg",
		Data:     resp.GeneratedImages[0].Image.ImageBytes,
	}, nil
}

// EditImage applies an instruction to a source image.
func (s *Studio) EditImage(ctx context.Context, req domain.ImageEditRequest) (domain.ImageResult, error) {
	p, err := editPayload(req)
	if err != nil {
		return domain.ImageResult{}, err
	}

	resp, err := s.client.Models.GenerateContent(ctx, p.Model, p.Contents, p.Config)
	if err != nil {
		return domain.ImageResult{}, &domain.TransportError{Op: "edit image", Err: err}
	}

	data, mime, err := normalizeInlineBytes(resp, "image/png")
	if err != nil {
		return domain.ImageResult{}, err
	}
	return domain.ImageResult{MIMEType: mime, Data: data}, nil
}

// SynthesizeSpeech converts text into raw 24kHz PCM with a prebuilt voice.
func (s *Studio) SynthesizeSpeech(ctx context.Context, text string, providerVoiceID string) (domain.SpeechResult, error) {
	p := speechPayload(text, providerVoiceID)
	resp, err := s.client.Models.GenerateContent(ctx, p.Model, p.Contents, p.Config)
	if err != nil {
		return domain.SpeechResult{}, &domain.TransportError{Op: "synthesize speech", Err: err}
	}

	data, _, err := normalizeInlineBytes(resp, "audio/pcm")
	if err != nil {
		return domain.SpeechResult{}, err
	}
	return domain.SpeechResult{Audio: data, SampleRate: 24000}, nil
}
