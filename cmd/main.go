package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/viralforge/server/adapters/elevenlabs"
	"github.com/viralforge/server/adapters/gemini"
	"github.com/viralforge/server/adapters/mock"
	"github.com/viralforge/server/adapters/stt"
	"github.com/viralforge/server/domain/repositories"
	"github.com/viralforge/server/internal/api"
	"github.com/viralforge/server/internal/config"
	"github.com/viralforge/server/internal/websocket"
	"github.com/viralforge/server/usecase"
)

func main() {
	// .env is optional; real deployments set the environment directly
	godotenv.Load()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.NewConfigFromEnv()
	if err := config.ValidateConfig(cfg); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Every capability falls back to its mock when the credential is absent,
	// so the server always starts.
	mockStudio := mock.New(logger, cfg.MockDelay)

	caps := usecase.Capabilities{
		Scripts:     mockStudio,
		Trends:      mockStudio,
		Chat:        mockStudio,
		Images:      mockStudio,
		ImageEdits:  mockStudio,
		Videos:      mockStudio,
		Transcriber: mockStudio,
	}
	var builtinSynth repositories.SpeechSynthesizer = mockStudio
	var clonedSynth repositories.SpeechSynthesizer = mockStudio
	var cloner repositories.VoiceCloner = mockStudio
	var transport repositories.LiveTransport = mockStudio

	if cfg.GeminiAPIKey != "" {
		studio, err := gemini.New(context.Background(), cfg.GeminiAPIKey, logger)
		if err != nil {
			logger.Fatal("Failed to create gemini adapter", zap.Error(err))
		}
		caps.Scripts = studio
		caps.Trends = studio
		caps.Chat = studio
		caps.Images = studio
		caps.ImageEdits = studio
		caps.Videos = studio
		builtinSynth = studio
		transport = studio
		logger.Info("Gemini adapter enabled")
	} else {
		logger.Warn("GEMINI_API_KEY not set, serving mock generations")
	}

	var elevenSynth *elevenlabs.Synthesizer
	if cfg.ElevenLabsAPIKey != "" {
		synth, err := elevenlabs.New(elevenlabs.NewConfigFromEnv(), logger)
		if err != nil {
			logger.Fatal("Failed to create elevenlabs adapter", zap.Error(err))
		}
		elevenSynth = synth
		clonedSynth = synth
		cloner = synth
		logger.Info("ElevenLabs adapter enabled")
	}

	if cfg.GoogleCredentials != "" {
		caps.Transcriber = stt.NewGoogleTranscriber(logger)
		logger.Info("Google transcription enabled")
	}

	// Initialize usecase services
	conversations := usecase.NewConversationStore()
	studioService := usecase.NewStudioService(caps, conversations, logger)
	voiceService := usecase.NewVoiceService(builtinSynth, clonedSynth, cloner, logger)

	// Voices already cloned at the provider survive restarts there; pull them
	// back into the in-memory catalog.
	if elevenSynth != nil {
		if profiles, err := elevenSynth.ListVoices(context.Background()); err != nil {
			logger.Warn("Failed to list cloned voices", zap.Error(err))
		} else if imported := voiceService.ImportCloned(profiles); imported > 0 {
			logger.Info("Imported cloned voices", zap.Int("count", imported))
		}
	}

	// Initialize WebSocket hub for live voice sessions
	hub := websocket.NewHub(transport, logger)
	go hub.Run()

	reaper := websocket.NewSessionReaper(hub, cfg.LiveSessionMaxAge, logger)
	reaper.Start()
	defer reaper.Stop()

	// Initialize API routes
	api.InitRoutes(e, hub, studioService, voiceService, logger)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
