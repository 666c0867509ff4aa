package api

import "github.com/viralforge/server/domain"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ChatAPIRequest is one assistant turn. ConversationID is optional; leaving it
// empty starts a new conversation.
type ChatAPIRequest struct {
	domain.ChatRequest
	ConversationID string `json:"conversation_id,omitempty"`
}

// ChatAPIResponse carries the reply and the conversation to continue with.
type ChatAPIResponse struct {
	Text           string   `json:"text"`
	Sources        []string `json:"sources"`
	ConversationID string   `json:"conversation_id"`
}

// ImageResponse wraps generated image bytes as a displayable data URI.
type ImageResponse struct {
	Image string `json:"image"`
}

// SpeechResponse carries synthesized audio as base64 PCM.
type SpeechResponse struct {
	Audio      string `json:"audio"`
	SampleRate int    `json:"sample_rate"`
}

// VoiceCloneRequest asks to train a voice from one audio sample.
type VoiceCloneRequest struct {
	Name   string            `json:"name"`
	Sample domain.Attachment `json:"sample"`
}

// VoiceRenameRequest changes the display name of a cloned voice.
type VoiceRenameRequest struct {
	Name string `json:"name"`
}
