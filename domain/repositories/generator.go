package repositories

import (
	"context"

	"github.com/viralforge/server/domain"
)

// ScriptGenerator produces structured video scripts.
type ScriptGenerator interface {
	GenerateScript(ctx context.Context, req domain.ScriptRequest) (domain.ScriptResult, error)
}

// TrendAnalyzer scores the growth potential of a keyword.
type TrendAnalyzer interface {
	AnalyzeTrend(ctx context.Context, req domain.TrendRequest) (domain.TrendResult, error)
}

// ChatResponder answers one conversation turn, optionally grounded.
type ChatResponder interface {
	Respond(ctx context.Context, req domain.ChatRequest) (domain.ChatResult, error)
}
