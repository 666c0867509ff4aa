package gemini

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"google.golang.org/genai"

	"github.com/viralforge/server/domain"
)

// decodeStructured parses model-emitted JSON into v, repairing almost-valid
// output before failing closed. The raw payload travels with the error for
// diagnostics; nothing is partially populated.
func decodeStructured(raw string, v any) error {
	if strings.TrimSpace(raw) == "" {
		return &domain.NormalizationError{Reason: "empty response body", Raw: raw}
	}
	if err := json.Unmarshal([]byte(raw), v); err == nil {
		return nil
	}
	fixed, err := jsonrepair.JSONRepair(raw)
	if err != nil {
		return &domain.NormalizationError{Reason: "unparseable JSON", Raw: raw}
	}
	if err := json.Unmarshal([]byte(fixed), v); err != nil {
		return &domain.NormalizationError{Reason: "unexpected JSON shape", Raw: raw}
	}
	return nil
}

func normalizeScript(raw string) (domain.ScriptResult, error) {
	var decoded struct {
		Title               string   `json:"title"`
		Hook                string   `json:"hook"`
		Body                string   `json:"body"`
		CTA                 string   `json:"cta"`
		EstimatedViralScore float64  `json:"estimatedViralScore"`
		Hashtags            []string `json:"hashtags"`
	}
	if err := decodeStructured(raw, &decoded); err != nil {
		return domain.ScriptResult{}, err
	}
	if decoded.Title == "" || decoded.Body == "" {
		return domain.ScriptResult{}, &domain.NormalizationError{Reason: "script missing title or body", Raw: raw}
	}
	hashtags := decoded.Hashtags
	if hashtags == nil {
		hashtags = []string{}
	}
	return domain.ScriptResult{
		Title:               decoded.Title,
		Hook:                decoded.Hook,
		Body:                decoded.Body,
		CTA:                 decoded.CTA,
		EstimatedViralScore: domain.ClampScore(decoded.EstimatedViralScore),
		Hashtags:            hashtags,
	}, nil
}

func normalizeTrend(raw string) (domain.TrendResult, error) {
	var decoded struct {
		Prediction string  `json:"prediction"`
		Score      float64 `json:"score"`
	}
	if err := decodeStructured(raw, &decoded); err != nil {
		return domain.TrendResult{}, err
	}
	if decoded.Prediction == "" {
		return domain.TrendResult{}, &domain.NormalizationError{Reason: "trend missing prediction", Raw: raw}
	}
	return domain.TrendResult{
		Prediction: decoded.Prediction,
		Score:      domain.ClampScore(decoded.Score),
	}, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

// responseSources extracts every distinct grounding citation URI in first-seen
// order. Chunks without a usable URI are silently skipped.
func responseSources(resp *genai.GenerateContentResponse) []string {
	sources := []string{}
	if resp == nil || len(resp.Candidates) == 0 {
		return sources
	}
	meta := resp.Candidates[0].GroundingMetadata
	if meta == nil {
		return sources
	}
	seen := make(map[string]bool)
	for _, chunk := range meta.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		if seen[chunk.Web.URI] {
			continue
		}
		seen[chunk.Web.URI] = true
		sources = append(sources, chunk.Web.URI)
	}
	return sources
}

// normalizeInlineBytes returns the first inline blob of the first candidate.
// Normalizers hand back raw bytes plus media type; turning them into a
// displayable data URI is the presentation boundary's job.
func normalizeInlineBytes(resp *genai.GenerateContentResponse, fallbackMIME string) ([]byte, string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, "", &domain.NormalizationError{Reason: "response has no candidates"}
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		mime := part.InlineData.MIMEType
		if mime == "" {
			mime = fallbackMIME
		}
		return part.InlineData.Data, mime, nil
	}
	return nil, "", &domain.NormalizationError{Reason: "response carries no inline media", Raw: responseText(resp)}
}
