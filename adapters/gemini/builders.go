package gemini

import (
	"encoding/base64"
	"fmt"

	"google.golang.org/genai"

	"github.com/viralforge/server/domain"
)

// Model identifiers per capability tier.
const (
	ModelFlash      = "gemini-2.5-flash"
	ModelPro        = "gemini-3-pro-preview"
	ModelImagen     = "imagen-4.0-generate-001"
	ModelFlashImage = "gemini-2.5-flash-image"
	ModelVeo        = "veo-3.1-generate-preview"
	ModelTTS        = "gemini-2.5-flash-preview-tts"
	ModelLive       = "gemini-2.5-flash-native-audio-preview-09-2025"
)

const defaultLanguage = "English"

// payload is a fully built request: model identifier, contents and generation
// config. Builders are pure; they assume validated requests.
type payload struct {
	Model    string
	Contents []*genai.Content
	Config   *genai.GenerateContentConfig
}

var scriptSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":               {Type: genai.TypeString},
		"hook":                {Type: genai.TypeString},
		"body":                {Type: genai.TypeString},
		"cta":                 {Type: genai.TypeString},
		"estimatedViralScore": {Type: genai.TypeNumber},
		"hashtags": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"title", "hook", "body", "cta", "estimatedViralScore", "hashtags"},
}

var trendSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"prediction": {Type: genai.TypeString},
		"score":      {Type: genai.TypeNumber},
	},
	Required: []string{"prediction", "score"},
}

func scriptPayload(req domain.ScriptRequest) payload {
	language := req.Language
	if language == "" {
		language = defaultLanguage
	}
	prompt := fmt.Sprintf(`Create a viral video script for %s about "%s".
Language: %s (Ensure the script is written entirely in this language).
Tone: %s.
Structure:
1. Hook (Grab attention in 3 seconds)
2. Body (Value proposition)
3. CTA (Call to action)

Also estimate a viral score from 0-100 based on current trends, and suggest 3 hashtags.`,
		req.Platform, req.Topic, language, req.Tone)

	return payload{
		Model:    ModelFlash,
		Contents: []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		Config: &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   scriptSchema,
		},
	}
}

func trendPayload(req domain.TrendRequest) payload {
	prompt := fmt.Sprintf(
		`Analyze the growth potential for the keyword %q on social media. Provide a short prediction sentence and a score out of 100.`,
		req.Keyword)

	return payload{
		Model:    ModelFlash,
		Contents: []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		Config: &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   trendSchema,
		},
	}
}

// chatPayload builds one conversation turn. The augmentation mode is a closed
// choice: deep reasoning always yields the pro-tier model with an empty tool
// list, no matter which toggles the caller set.
func chatPayload(req domain.ChatRequest) (payload, error) {
	parts := []*genai.Part{}
	if req.Attachment != nil && !req.Attachment.IsEmpty() {
		data, err := attachmentBytes(*req.Attachment)
		if err != nil {
			return payload{}, err
		}
		parts = append(parts, genai.NewPartFromBytes(data, req.Attachment.MIMEType))
	}
	parts = append(parts, genai.NewPartFromText(req.Message))

	p := payload{
		Contents: []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		Config:   &genai.GenerateContentConfig{},
	}

	switch req.Augmentation() {
	case domain.AugmentDeepReasoning:
		p.Model = ModelPro
		p.Config.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(int32(8192)),
		}
	case domain.AugmentSearch:
		p.Model = ModelFlash
		p.Config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	case domain.AugmentMaps:
		p.Model = ModelFlash
		p.Config.Tools = []*genai.Tool{{GoogleMaps: &genai.GoogleMaps{}}}
	default:
		p.Model = ModelFlash
	}
	return p, nil
}

func editPayload(req domain.ImageEditRequest) (payload, error) {
	data, err := attachmentBytes(req.Source)
	if err != nil {
		return payload{}, err
	}
	mime := req.Source.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(data, mime),
		genai.NewPartFromText(req.Instruction),
	}
	return payload{
		Model:    ModelFlashImage,
		Contents: []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		Config: &genai.GenerateContentConfig{
			ResponseModalities: []string{"IMAGE"},
		},
	}, nil
}

func speechPayload(text, voiceName string) payload {
	return payload{
		Model:    ModelTTS,
		Contents: []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		Config: &genai.GenerateContentConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &genai.SpeechConfig{
				VoiceConfig: &genai.VoiceConfig{
					PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voiceName},
				},
			},
		},
	}
}

func imageConfig(req domain.ImageGenRequest) *genai.GenerateImagesConfig {
	aspect := req.AspectRatio
	if aspect == "" {
		aspect = "16:9"
	}
	return &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/jpeg",
		AspectRatio:    aspect,
	}
}

func imagePrompt(req domain.ImageGenRequest) string {
	if req.Style == "" {
		return req.Prompt
	}
	return fmt.Sprintf("%s style: %s", req.Style, req.Prompt)
}

func videoConfig(req domain.VideoGenRequest) *genai.GenerateVideosConfig {
	aspect := req.AspectRatio
	if aspect == "" {
		aspect = "9:16"
	}
	return &genai.GenerateVideosConfig{AspectRatio: aspect}
}

// attachmentBytes decodes an attachment payload, stripping any data-URI
// header first.
func attachmentBytes(att domain.Attachment) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(att.Payload())
	if err != nil {
		return nil, fmt.Errorf("failed to decode attachment payload: %w", err)
	}
	return data, nil
}
