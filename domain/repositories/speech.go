package repositories

import (
	"context"

	"github.com/viralforge/server/domain"
)

// SpeechSynthesizer converts text to raw PCM audio for one provider voice.
type SpeechSynthesizer interface {
	SynthesizeSpeech(ctx context.Context, text string, providerVoiceID string) (domain.SpeechResult, error)
}

// Transcriber converts recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, req domain.TranscriptionRequest) (domain.TranscriptionResult, error)
}

// VoiceCloner trains a new synthesis voice from a single audio sample and
// returns the provider's identifier for it.
type VoiceCloner interface {
	CloneVoice(ctx context.Context, name string, sample domain.Attachment) (string, error)
}
