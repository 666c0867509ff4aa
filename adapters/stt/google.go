package stt

import (
	"context"
	"encoding/base64"
	"fmt"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/viralforge/server/domain"
	"github.com/viralforge/server/domain/repositories"
)

const defaultLanguage = "en-US"

// GoogleTranscriber implements Transcriber for Google Cloud Speech-to-Text.
// A client is dialed per request; transcription is an occasional operation
// here, not a hot path.
type GoogleTranscriber struct {
	logger *zap.Logger
}

var _ repositories.Transcriber = (*GoogleTranscriber)(nil)

// NewGoogleTranscriber creates a new Google Cloud transcriber. Credentials
// come from the ambient GOOGLE_APPLICATION_CREDENTIALS setup.
func NewGoogleTranscriber(logger *zap.Logger) *GoogleTranscriber {
	return &GoogleTranscriber{logger: logger}
}

// Transcribe converts one recorded audio attachment into text.
func (g *GoogleTranscriber) Transcribe(ctx context.Context, req domain.TranscriptionRequest) (domain.TranscriptionResult, error) {
	if err := req.Validate(); err != nil {
		return domain.TranscriptionResult{}, err
	}

	encoding, err := audioEncoding(req.Audio.MIMEType)
	if err != nil {
		return domain.TranscriptionResult{}, err
	}

	audioData, err := base64.StdEncoding.DecodeString(req.Audio.Payload())
	if err != nil {
		return domain.TranscriptionResult{}, fmt.Errorf("failed to decode audio payload: %w", err)
	}

	language := req.Language
	if language == "" {
		language = defaultLanguage
	}

	client, err := speech.NewClient(ctx)
	if err != nil {
		return domain.TranscriptionResult{}, &domain.TransportError{Op: "create speech client", Err: err}
	}
	defer client.Close()

	config := &speechpb.RecognitionConfig{
		Encoding:     encoding,
		LanguageCode: language,
	}
	if req.SampleRate > 0 {
		config.SampleRateHertz = int32(req.SampleRate)
	}

	resp, err := client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: config,
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audioData},
		},
	})
	if err != nil {
		return domain.TranscriptionResult{}, &domain.TransportError{Op: "transcribe audio", Err: err}
	}

	var text string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			if text != "" {
				text += " "
			}
			text += result.Alternatives[0].Transcript
		}
	}
	if text == "" {
		return domain.TranscriptionResult{}, &domain.NormalizationError{Reason: "no speech detected in audio"}
	}

	g.logger.Info("Audio transcribed",
		zap.Int("audioBytes", len(audioData)),
		zap.String("language", language),
		zap.Int("textLength", len(text)))
	return domain.TranscriptionResult{Text: text}, nil
}

// audioEncoding maps a browser media type to the Google Speech API enum.
func audioEncoding(mimeType string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch mimeType {
	case "audio/wav", "audio/x-wav", "audio/pcm", "audio/pcm;rate=16000":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "audio/flac":
		return speechpb.RecognitionConfig_FLAC, nil
	case "audio/ogg", "audio/ogg;codecs=opus":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case "audio/webm", "audio/webm;codecs=opus":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported audio type: %s", mimeType)
	}
}
