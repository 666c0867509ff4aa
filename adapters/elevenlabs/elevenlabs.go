package elevenlabs

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/viralforge/server/domain"
	"github.com/viralforge/server/domain/repositories"
)

const (
	defaultAPIBaseURL   = "https://api.elevenlabs.io/v1"
	defaultModelID      = "eleven_multilingual_v2"
	defaultOutputFormat = "pcm_24000"
	defaultStability    = 0.5
	defaultClarity      = 0.75

	outputSampleRate = 24000
)

// Config holds configuration for the Eleven Labs adapter.
// Required fields:
// - APIKey: Your Eleven Labs API key
// Optional fields with defaults:
// - APIBaseURL: The base URL for the Eleven Labs API (default: "https://api.elevenlabs.io/v1")
// - ModelID: The model ID to use (default: "eleven_multilingual_v2")
// - Stability: Voice stability value between 0 and 1 (default: 0.5)
// - Clarity: Voice clarity/similarity boost value between 0 and 1 (default: 0.75)
type Config struct {
	APIKey     string
	APIBaseURL string
	ModelID    string
	Stability  float64
	Clarity    float64
}

// ValidateConfig validates the Config
func ValidateConfig(config Config) error {
	if config.APIKey == "" {
		return fmt.Errorf("eleven labs API key is required")
	}
	if config.Stability != 0 && (config.Stability < 0 || config.Stability > 1) {
		return fmt.Errorf("stability must be between 0 and 1, got %f", config.Stability)
	}
	if config.Clarity != 0 && (config.Clarity < 0 || config.Clarity > 1) {
		return fmt.Errorf("clarity must be between 0 and 1, got %f", config.Clarity)
	}
	return nil
}

// NewConfigFromEnv creates a new Config from environment variables
func NewConfigFromEnv() Config {
	config := Config{
		APIKey:     os.Getenv("ELEVEN_LABS_API_KEY"),
		APIBaseURL: os.Getenv("ELEVEN_LABS_API_BASE_URL"),
		ModelID:    os.Getenv("ELEVEN_LABS_MODEL_ID"),
	}

	if stabilityStr := os.Getenv("ELEVEN_LABS_STABILITY"); stabilityStr != "" {
		if stability, err := strconv.ParseFloat(stabilityStr, 64); err == nil && stability >= 0 && stability <= 1 {
			config.Stability = stability
		}
	}
	if clarityStr := os.Getenv("ELEVEN_LABS_CLARITY"); clarityStr != "" {
		if clarity, err := strconv.ParseFloat(clarityStr, 64); err == nil && clarity >= 0 && clarity <= 1 {
			config.Clarity = clarity
		}
	}

	return config
}

// Synthesizer talks to the Eleven Labs API for speech synthesis and voice
// cloning. It serves the cloned-voice side of the voice catalog; built-in
// voices are synthesized by the Gemini adapter.
type Synthesizer struct {
	apiKey     string
	apiBaseURL string
	modelID    string
	stability  float64
	clarity    float64
	httpClient *http.Client
	logger     *zap.Logger
}

var (
	_ repositories.SpeechSynthesizer = (*Synthesizer)(nil)
	_ repositories.VoiceCloner       = (*Synthesizer)(nil)
)

// New creates a new Eleven Labs synthesizer
func New(config Config, logger *zap.Logger) (*Synthesizer, error) {
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	apiBaseURL := config.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIBaseURL
	}
	modelID := config.ModelID
	if modelID == "" {
		modelID = defaultModelID
	}
	stability := config.Stability
	if stability == 0 {
		stability = defaultStability
	}
	clarity := config.Clarity
	if clarity == 0 {
		clarity = defaultClarity
	}

	return &Synthesizer{
		apiKey:     config.APIKey,
		apiBaseURL: apiBaseURL,
		modelID:    modelID,
		stability:  stability,
		clarity:    clarity,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}, nil
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style,omitempty"`
	UseSpeakerBoost bool    `json:"use_speaker_boost,omitempty"`
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// SynthesizeSpeech converts text into raw 24kHz PCM with a cloned voice.
func (e *Synthesizer) SynthesizeSpeech(ctx context.Context, text string, providerVoiceID string) (domain.SpeechResult, error) {
	if strings.TrimSpace(text) == "" {
		return domain.SpeechResult{}, &domain.MissingFieldError{Field: "text"}
	}
	if providerVoiceID == "" {
		return domain.SpeechResult{}, &domain.MissingFieldError{Field: "voice_id"}
	}

	request := synthesisRequest{
		Text:    text,
		ModelID: e.modelID,
		VoiceSettings: voiceSettings{
			Stability:       e.stability,
			SimilarityBoost: e.clarity,
			UseSpeakerBoost: true,
		},
	}
	requestBody, err := json.Marshal(request)
	if err != nil {
		return domain.SpeechResult{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s/stream?output_format=%s&enable_logging=false",
		e.apiBaseURL, providerVoiceID, defaultOutputFormat)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestBody))
	if err != nil {
		return domain.SpeechResult{}, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Accept", "audio/pcm")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return domain.SpeechResult{}, &domain.TransportError{Op: "synthesize speech", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)
		return domain.SpeechResult{}, &domain.TransportError{
			Op:  "synthesize speech",
			Err: fmt.Errorf("API returned %d: %s", resp.StatusCode, string(errorBody)),
		}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.SpeechResult{}, &domain.TransportError{Op: "read audio stream", Err: err}
	}
	if len(audio) == 0 {
		return domain.SpeechResult{}, &domain.NormalizationError{Reason: "synthesis returned no audio"}
	}

	e.logger.Info("Speech synthesized",
		zap.String("voiceID", providerVoiceID),
		zap.Int("audioBytes", len(audio)))
	return domain.SpeechResult{Audio: audio, SampleRate: outputSampleRate}, nil
}

// CloneVoice trains a new voice from one audio sample and returns the
// provider's voice identifier.
func (e *Synthesizer) CloneVoice(ctx context.Context, name string, sample domain.Attachment) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", &domain.MissingFieldError{Field: "name"}
	}
	if sample.IsEmpty() {
		return "", &domain.MissingFieldError{Field: "sample"}
	}

	audio, err := base64.StdEncoding.DecodeString(sample.Payload())
	if err != nil {
		return "", fmt.Errorf("failed to decode voice sample: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("name", name); err != nil {
		return "", fmt.Errorf("failed to write form field: %w", err)
	}
	part, err := writer.CreateFormFile("files", "sample.wav")
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("failed to write voice sample: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize form: %w", err)
	}

	url := fmt.Sprintf("%s/voices/add", e.apiBaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return "", &domain.TransportError{Op: "clone voice", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)
		return "", &domain.TransportError{
			Op:  "clone voice",
			Err: fmt.Errorf("API returned %d: %s", resp.StatusCode, string(errorBody)),
		}
	}

	var cloneResponse struct {
		VoiceID string `json:"voice_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&cloneResponse); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if cloneResponse.VoiceID == "" {
		return "", &domain.NormalizationError{Reason: "clone response has no voice id"}
	}

	e.logger.Info("Voice cloned",
		zap.String("name", name),
		zap.String("providerVoiceID", cloneResponse.VoiceID))
	return cloneResponse.VoiceID, nil
}

// ListVoices retrieves the account's voices from the Eleven Labs API.
func (e *Synthesizer) ListVoices(ctx context.Context) ([]domain.VoiceProfile, error) {
	url := fmt.Sprintf("%s/voices", e.apiBaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, &domain.TransportError{Op: "list voices", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)
		return nil, &domain.TransportError{
			Op:  "list voices",
			Err: fmt.Errorf("API returned %d: %s", resp.StatusCode, string(errorBody)),
		}
	}

	var voicesResponse struct {
		Voices []struct {
			VoiceID  string `json:"voice_id"`
			Name     string `json:"name"`
			Category string `json:"category"`
		} `json:"voices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&voicesResponse); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	profiles := make([]domain.VoiceProfile, 0, len(voicesResponse.Voices))
	for _, v := range voicesResponse.Voices {
		provenance := domain.VoiceBuiltIn
		if v.Category == "cloned" {
			provenance = domain.VoiceCloned
		}
		profiles = append(profiles, domain.VoiceProfile{
			ID:         v.VoiceID,
			Name:       v.Name,
			Style:      v.Category,
			Provenance: provenance,
			ProviderID: v.VoiceID,
		})
	}

	e.logger.Info("Retrieved voices", zap.Int("count", len(profiles)))
	return profiles, nil
}
