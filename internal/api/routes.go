package api

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/viralforge/server/domain"
	"github.com/viralforge/server/internal/websocket"
	"github.com/viralforge/server/usecase"
)

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, hub *websocket.Hub, studio *usecase.StudioService, voices *usecase.VoiceService, logger *zap.Logger) {
	h := &handlers{studio: studio, voices: voices, logger: logger}

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "viralforge-server",
		})
	})

	// API v1 routes
	v1 := e.Group("/api/v1")

	// Generation APIs
	v1.POST("/scripts", h.generateScript)
	v1.POST("/trends", h.analyzeTrend)
	v1.POST("/images", h.generateImage)
	v1.POST("/images/edits", h.editImage)
	v1.POST("/videos", h.generateVideo)
	v1.POST("/speech", h.synthesizeSpeech)
	v1.POST("/transcriptions", h.transcribe)

	// Assistant APIs
	v1.POST("/chat", h.chat)
	v1.GET("/conversations/:id", h.getConversation)

	// Voice catalog APIs
	v1.GET("/voices", h.listVoices)
	v1.POST("/voices/clones", h.cloneVoice)
	v1.PUT("/voices/:id", h.renameVoice)

	// WebSocket endpoint for live voice sessions
	e.GET("/ws/live", func(c echo.Context) error {
		return websocket.HandleWebSocket(hub, c, logger)
	})
}

type handlers struct {
	studio *usecase.StudioService
	voices *usecase.VoiceService
	logger *zap.Logger
}

func (h *handlers) generateScript(c echo.Context) error {
	var req domain.ScriptRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, err)
	}
	result, err := h.studio.GenerateScript(c.Request().Context(), req)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *handlers) analyzeTrend(c echo.Context) error {
	var req domain.TrendRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, err)
	}
	result, err := h.studio.AnalyzeTrend(c.Request().Context(), req)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *handlers) generateImage(c echo.Context) error {
	var req domain.ImageGenRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, err)
	}
	result, err := h.studio.GenerateImage(c.Request().Context(), req)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, ImageResponse{Image: dataURI(result)})
}

func (h *handlers) editImage(c echo.Context) error {
	var req domain.ImageEditRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, err)
	}
	result, err := h.studio.EditImage(c.Request().Context(), req)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, ImageResponse{Image: dataURI(result)})
}

func (h *handlers) generateVideo(c echo.Context) error {
	var req domain.VideoGenRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, err)
	}
	result, err := h.studio.GenerateVideo(c.Request().Context(), req)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *handlers) synthesizeSpeech(c echo.Context) error {
	var req domain.SpeechRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, err)
	}
	result, err := h.voices.Synthesize(c.Request().Context(), req)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, SpeechResponse{
		Audio:      base64.StdEncoding.EncodeToString(result.Audio),
		SampleRate: result.SampleRate,
	})
}

func (h *handlers) transcribe(c echo.Context) error {
	var req domain.TranscriptionRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, err)
	}
	result, err := h.studio.Transcribe(c.Request().Context(), req)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *handlers) chat(c echo.Context) error {
	var req ChatAPIRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, err)
	}
	result, conversationID, err := h.studio.Chat(c.Request().Context(), req.ConversationID, req.ChatRequest)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, ChatAPIResponse{
		Text:           result.Text,
		Sources:        result.Sources,
		ConversationID: conversationID,
	})
}

func (h *handlers) getConversation(c echo.Context) error {
	conv, ok := h.studio.Conversation(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Conversation not found",
		})
	}
	return c.JSON(http.StatusOK, conv)
}

func (h *handlers) listVoices(c echo.Context) error {
	return c.JSON(http.StatusOK, h.voices.List())
}

func (h *handlers) cloneVoice(c echo.Context) error {
	var req VoiceCloneRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, err)
	}
	profile, err := h.voices.Clone(c.Request().Context(), req.Name, req.Sample)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, profile)
}

func (h *handlers) renameVoice(c echo.Context) error {
	var req VoiceRenameRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, err)
	}
	profile, err := h.voices.Rename(c.Param("id"), req.Name)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *handlers) badRequest(c echo.Context, err error) error {
	h.logger.Warn("Failed to bind request", zap.Error(err))
	return c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "invalid_request",
		Message: "Invalid request format",
	})
}

// writeError maps domain errors to HTTP status codes. Validation failures are
// the caller's fault, transport failures are the upstream's, everything else
// is ours.
func (h *handlers) writeError(c echo.Context, err error) error {
	switch {
	case domain.IsValidation(err):
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_field",
			Message: err.Error(),
		})
	case errors.Is(err, usecase.ErrVoiceNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "voice_not_found",
			Message: err.Error(),
		})
	case errors.Is(err, usecase.ErrBuiltInVoice):
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "built_in_voice",
			Message: err.Error(),
		})
	case domain.IsTransport(err):
		h.logger.Error("Upstream call failed", zap.Error(err))
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "upstream_failure",
			Message: "The generation provider could not be reached",
		})
	case domain.IsNormalization(err):
		h.logger.Error("Malformed provider response", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "malformed_response",
			Message: "The generation provider returned an unusable response",
		})
	default:
		h.logger.Error("Request failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Something went wrong",
		})
	}
}

// dataURI wraps image bytes for direct display in an <img> tag.
func dataURI(img domain.ImageResult) string {
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
