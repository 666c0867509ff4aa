package domain

import "strings"

// AugmentationMode selects how a chat request is augmented. Modes are mutually
// exclusive: a request carries exactly one of them.
type AugmentationMode string

const (
	AugmentPlain         AugmentationMode = "plain"
	AugmentSearch        AugmentationMode = "search"
	AugmentMaps          AugmentationMode = "maps"
	AugmentDeepReasoning AugmentationMode = "deep_reasoning"
)

// Attachment is a binary payload (image, video or audio) attached to a request.
// Data is base64, optionally prefixed with a data-URI header as produced by
// browser file readers.
type Attachment struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

// Payload returns the base64 payload with any data-URI header stripped.
// Payloads without a header pass through unchanged.
func (a Attachment) Payload() string {
	if idx := strings.Index(a.Data, "base64,"); idx >= 0 {
		return a.Data[idx+len("base64,"):]
	}
	return a.Data
}

// IsEmpty reports whether the attachment carries no payload.
func (a Attachment) IsEmpty() bool {
	return strings.TrimSpace(a.Data) == ""
}

// ScriptRequest asks for a short-form video script.
type ScriptRequest struct {
	Topic    string `json:"topic"`
	Platform string `json:"platform"`
	Tone     string `json:"tone"`
	Language string `json:"language"`
}

// Validate checks required fields. Language defaults downstream.
func (r ScriptRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return &MissingFieldError{Field: "topic"}
	}
	if strings.TrimSpace(r.Platform) == "" {
		return &MissingFieldError{Field: "platform"}
	}
	return nil
}

// ScriptResult is the structured script produced by the model.
type ScriptResult struct {
	Title               string   `json:"title"`
	Hook                string   `json:"hook"`
	Body                string   `json:"body"`
	CTA                 string   `json:"cta"`
	EstimatedViralScore int      `json:"estimatedViralScore"`
	Hashtags            []string `json:"hashtags"`
}

// TrendRequest asks for a growth analysis of one keyword.
type TrendRequest struct {
	Keyword string `json:"keyword"`
}

func (r TrendRequest) Validate() error {
	if strings.TrimSpace(r.Keyword) == "" {
		return &MissingFieldError{Field: "keyword"}
	}
	return nil
}

// TrendResult carries a prediction sentence and a score in [0,100].
type TrendResult struct {
	Prediction string `json:"prediction"`
	Score      int    `json:"score"`
}

// ImageGenRequest asks for a generated image.
type ImageGenRequest struct {
	Prompt      string `json:"prompt"`
	Style       string `json:"style"`
	AspectRatio string `json:"aspect_ratio"`
}

func (r ImageGenRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return &MissingFieldError{Field: "prompt"}
	}
	return nil
}

// ImageEditRequest asks for an edit of an existing image.
type ImageEditRequest struct {
	Source      Attachment `json:"source"`
	Instruction string     `json:"instruction"`
}

func (r ImageEditRequest) Validate() error {
	if r.Source.IsEmpty() {
		return &MissingFieldError{Field: "source"}
	}
	if strings.TrimSpace(r.Instruction) == "" {
		return &MissingFieldError{Field: "instruction"}
	}
	return nil
}

// ImageResult is raw encoded image bytes plus their media type. Wrapping into a
// displayable data URI happens at the presentation boundary, not here.
type ImageResult struct {
	MIMEType string
	Data     []byte
}

// VideoGenRequest asks for a generated video clip.
type VideoGenRequest struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio"`
}

func (r VideoGenRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return &MissingFieldError{Field: "prompt"}
	}
	return nil
}

// VideoResult points at the finished clip.
type VideoResult struct {
	URI string `json:"uri"`
}

// SpeechRequest asks for synthesized speech for a voice profile.
type SpeechRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voice_id"`
}

func (r SpeechRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return &MissingFieldError{Field: "text"}
	}
	return nil
}

// SpeechResult is raw PCM audio.
type SpeechResult struct {
	Audio      []byte
	SampleRate int
}

// TranscriptionRequest asks for a transcript of an audio attachment.
type TranscriptionRequest struct {
	Audio      Attachment `json:"audio"`
	SampleRate int        `json:"sample_rate"`
	Language   string     `json:"language"`
}

func (r TranscriptionRequest) Validate() error {
	if r.Audio.IsEmpty() {
		return &MissingFieldError{Field: "audio"}
	}
	return nil
}

// TranscriptionResult is the recognized text.
type TranscriptionResult struct {
	Text string `json:"text"`
}

// ChatRequest is one turn of the assistant conversation. The boolean toggles
// mirror the UI switches; Augmentation collapses them into the single mode that
// actually applies.
type ChatRequest struct {
	Message     string      `json:"message"`
	UseSearch   bool        `json:"use_search"`
	UseMaps     bool        `json:"use_maps"`
	UseThinking bool        `json:"use_thinking"`
	Attachment  *Attachment `json:"attachment,omitempty"`
}

func (r ChatRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return &MissingFieldError{Field: "message"}
	}
	return nil
}

// Augmentation resolves the toggles into one mode. Deep reasoning takes
// exclusive precedence: when set, search and maps are disabled no matter what
// the caller asked for.
func (r ChatRequest) Augmentation() AugmentationMode {
	switch {
	case r.UseThinking:
		return AugmentDeepReasoning
	case r.UseSearch:
		return AugmentSearch
	case r.UseMaps:
		return AugmentMaps
	default:
		return AugmentPlain
	}
}

// ChatResult is the assistant's reply plus any grounding citations.
type ChatResult struct {
	Text    string   `json:"text"`
	Sources []string `json:"sources"`
}

// ClampScore normalizes a model-reported score into [0,100].
func ClampScore(score float64) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(score)
}
