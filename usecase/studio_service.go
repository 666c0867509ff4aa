package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/viralforge/server/domain"
	"github.com/viralforge/server/domain/repositories"
)

// Capabilities bundles the generation providers the studio delegates to. Each
// slot may be served by a real adapter or its mock, decided at startup from the
// available credentials.
type Capabilities struct {
	Scripts     repositories.ScriptGenerator
	Trends      repositories.TrendAnalyzer
	Chat        repositories.ChatResponder
	Images      repositories.ImageGenerator
	ImageEdits  repositories.ImageEditor
	Videos      repositories.VideoGenerator
	Transcriber repositories.Transcriber
}

// StudioService validates requests and delegates them to the configured
// providers. Failed calls are returned as-is; there are no retries here.
type StudioService struct {
	caps          Capabilities
	conversations *ConversationStore
	logger        *zap.Logger
}

// NewStudioService creates a new studio service
func NewStudioService(caps Capabilities, conversations *ConversationStore, logger *zap.Logger) *StudioService {
	return &StudioService{
		caps:          caps,
		conversations: conversations,
		logger:        logger,
	}
}

// GenerateScript produces a structured short-form video script.
func (s *StudioService) GenerateScript(ctx context.Context, req domain.ScriptRequest) (domain.ScriptResult, error) {
	if err := req.Validate(); err != nil {
		return domain.ScriptResult{}, err
	}
	return s.caps.Scripts.GenerateScript(ctx, req)
}

// AnalyzeTrend scores the growth potential of a keyword.
func (s *StudioService) AnalyzeTrend(ctx context.Context, req domain.TrendRequest) (domain.TrendResult, error) {
	if err := req.Validate(); err != nil {
		return domain.TrendResult{}, err
	}
	return s.caps.Trends.AnalyzeTrend(ctx, req)
}

// GenerateImage renders an image from a prompt.
func (s *StudioService) GenerateImage(ctx context.Context, req domain.ImageGenRequest) (domain.ImageResult, error) {
	if err := req.Validate(); err != nil {
		return domain.ImageResult{}, err
	}
	return s.caps.Images.GenerateImage(ctx, req)
}

// EditImage applies an instruction to a source image.
func (s *StudioService) EditImage(ctx context.Context, req domain.ImageEditRequest) (domain.ImageResult, error) {
	if err := req.Validate(); err != nil {
		return domain.ImageResult{}, err
	}
	return s.caps.ImageEdits.EditImage(ctx, req)
}

// GenerateVideo produces a video clip. Blocks until the clip is ready or the
// generation fails.
func (s *StudioService) GenerateVideo(ctx context.Context, req domain.VideoGenRequest) (domain.VideoResult, error) {
	if err := req.Validate(); err != nil {
		return domain.VideoResult{}, err
	}
	return s.caps.Videos.GenerateVideo(ctx, req)
}

// Transcribe converts recorded audio into text.
func (s *StudioService) Transcribe(ctx context.Context, req domain.TranscriptionRequest) (domain.TranscriptionResult, error) {
	if err := req.Validate(); err != nil {
		return domain.TranscriptionResult{}, err
	}
	return s.caps.Transcriber.Transcribe(ctx, req)
}

// Chat runs one assistant turn inside a conversation transcript. An empty
// conversationID starts a new conversation; the id in use is always returned
// so callers can continue the thread. On provider failure the pending
// assistant message is completed with a fallback line and the error is
// returned to the caller.
func (s *StudioService) Chat(ctx context.Context, conversationID string, req domain.ChatRequest) (domain.ChatResult, string, error) {
	if err := req.Validate(); err != nil {
		return domain.ChatResult{}, conversationID, err
	}

	id := s.conversations.GetOrCreate(conversationID)
	s.conversations.Append(id, domain.MessageRoleUser, req.Message, nil)
	s.conversations.AppendPending(id)

	result, err := s.caps.Chat.Respond(ctx, req)
	if err != nil {
		s.conversations.Complete(id, "Something went wrong. Please try again.", nil)
		s.logger.Error("Chat turn failed",
			zap.String("conversationID", id),
			zap.String("mode", string(req.Augmentation())),
			zap.Error(err))
		return domain.ChatResult{}, id, err
	}

	s.conversations.Complete(id, result.Text, result.Sources)
	return result, id, nil
}

// Conversation returns a copy of one transcript.
func (s *StudioService) Conversation(id string) (domain.Conversation, bool) {
	return s.conversations.Snapshot(id)
}
