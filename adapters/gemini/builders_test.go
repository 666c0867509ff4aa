package gemini

import (
	"encoding/base64"
	"testing"

	"github.com/viralforge/server/domain"
)

func TestScriptPayloadSchemaAndModel(t *testing.T) {
	p := scriptPayload(domain.ScriptRequest{Topic: "home workouts", Platform: "TikTok", Tone: "Energetic"})

	if p.Model != ModelFlash {
		t.Errorf("Expected model %s, got %s", ModelFlash, p.Model)
	}
	if p.Config.ResponseMIMEType != "application/json" {
		t.Errorf("Expected JSON response mime type, got %s", p.Config.ResponseMIMEType)
	}
	if p.Config.ResponseSchema == nil {
		t.Fatal("Expected a response schema for structured output")
	}
	if _, ok := p.Config.ResponseSchema.Properties["estimatedViralScore"]; !ok {
		t.Error("Expected estimatedViralScore in the response schema")
	}
}

func TestChatPayloadSearchMode(t *testing.T) {
	p, err := chatPayload(domain.ChatRequest{Message: "weather today", UseSearch: true})
	if err != nil {
		t.Fatalf("chatPayload failed: %v", err)
	}

	if p.Model != ModelFlash {
		t.Errorf("Expected flash-tier model for search mode, got %s", p.Model)
	}
	if len(p.Config.Tools) != 1 || p.Config.Tools[0].GoogleSearch == nil {
		t.Fatal("Expected exactly one web-search tool entry")
	}
}

func TestChatPayloadDeepReasoningDisablesTools(t *testing.T) {
	// Deep reasoning is a hard mutual exclusion: search and maps requests are
	// forcibly dropped, not merely deprioritized.
	p, err := chatPayload(domain.ChatRequest{
		Message:     "weather today",
		UseSearch:   true,
		UseMaps:     true,
		UseThinking: true,
	})
	if err != nil {
		t.Fatalf("chatPayload failed: %v", err)
	}

	if p.Model != ModelPro {
		t.Errorf("Expected pro-tier model for deep reasoning, got %s", p.Model)
	}
	if len(p.Config.Tools) != 0 {
		t.Errorf("Expected no tool entries in deep reasoning mode, got %d", len(p.Config.Tools))
	}
	if p.Config.ThinkingConfig == nil {
		t.Error("Expected a thinking config in deep reasoning mode")
	}
}

func TestChatPayloadMapsMode(t *testing.T) {
	p, err := chatPayload(domain.ChatRequest{Message: "cafes near me", UseMaps: true})
	if err != nil {
		t.Fatalf("chatPayload failed: %v", err)
	}
	if len(p.Config.Tools) != 1 || p.Config.Tools[0].GoogleMaps == nil {
		t.Fatal("Expected exactly one maps tool entry")
	}
}

func TestAttachmentBytesStripsDataURIHeader(t *testing.T) {
	raw := []byte{0xde, 0xad, 0xbe, 0xef}
	encoded := base64.StdEncoding.EncodeToString(raw)

	withHeader := domain.Attachment{MIMEType: "image/jpeg", Data: "data:image/jpeg;base64," + encoded}
	data, err := attachmentBytes(withHeader)
	if err != nil {
		t.Fatalf("attachmentBytes failed: %v", err)
	}
	if string(data) != string(raw) {
		t.Error("Expected header-prefixed payload to decode to the raw bytes")
	}

	bare := domain.Attachment{MIMEType: "image/jpeg", Data: encoded}
	data, err = attachmentBytes(bare)
	if err != nil {
		t.Fatalf("attachmentBytes failed: %v", err)
	}
	if string(data) != string(raw) {
		t.Error("Expected bare payload to pass through unchanged")
	}
}

func TestEditPayloadCarriesSourceAndInstruction(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("jpegdata"))
	p, err := editPayload(domain.ImageEditRequest{
		Source:      domain.Attachment{MIMEType: "image/jpeg", Data: "data:image/jpeg;base64," + encoded},
		Instruction: "add neon lighting",
	})
	if err != nil {
		t.Fatalf("editPayload failed: %v", err)
	}

	if p.Model != ModelFlashImage {
		t.Errorf("Expected model %s, got %s", ModelFlashImage, p.Model)
	}
	if len(p.Config.ResponseModalities) != 1 || p.Config.ResponseModalities[0] != "IMAGE" {
		t.Error("Expected IMAGE response modality")
	}
	if len(p.Contents) != 1 || len(p.Contents[0].Parts) != 2 {
		t.Fatal("Expected one content with image part and instruction part")
	}
}

func TestSpeechPayloadVoiceSelection(t *testing.T) {
	p := speechPayload("hello creators", "Kore")

	if p.Model != ModelTTS {
		t.Errorf("Expected model %s, got %s", ModelTTS, p.Model)
	}
	if len(p.Config.ResponseModalities) != 1 || p.Config.ResponseModalities[0] != "AUDIO" {
		t.Error("Expected AUDIO response modality")
	}
	voice := p.Config.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName
	if voice != "Kore" {
		t.Errorf("Expected voice Kore, got %s", voice)
	}
}

func TestImageConfigDefaults(t *testing.T) {
	cfg := imageConfig(domain.ImageGenRequest{Prompt: "sunset"})
	if cfg.AspectRatio != "16:9" {
		t.Errorf("Expected default aspect ratio 16:9, got %s", cfg.AspectRatio)
	}
	if cfg.NumberOfImages != 1 {
		t.Errorf("Expected a single image, got %d", cfg.NumberOfImages)
	}

	prompt := imagePrompt(domain.ImageGenRequest{Prompt: "sunset", Style: "Cinematic"})
	if prompt != "Cinematic style: sunset" {
		t.Errorf("Unexpected styled prompt: %s", prompt)
	}
}
