package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/viralforge/server/domain"
	"github.com/viralforge/server/domain/repositories"
)

// ErrVoiceNotFound is returned when a voice id is not in the registry.
var ErrVoiceNotFound = errors.New("voice not found")

// ErrBuiltInVoice is returned when a caller tries to modify a built-in voice.
var ErrBuiltInVoice = errors.New("built-in voices cannot be modified")

// builtInVoices are the prebuilt synthesis voices available without any
// cloning. Names match the upstream voice identifiers.
var builtInVoices = []domain.VoiceProfile{
	{ID: "puck", Name: "Puck", Style: "Upbeat", Provenance: domain.VoiceBuiltIn, ProviderID: "Puck"},
	{ID: "charon", Name: "Charon", Style: "Informative", Provenance: domain.VoiceBuiltIn, ProviderID: "Charon"},
	{ID: "kore", Name: "Kore", Style: "Firm", Provenance: domain.VoiceBuiltIn, ProviderID: "Kore"},
	{ID: "aoede", Name: "Aoede", Style: "Breezy", Provenance: domain.VoiceBuiltIn, ProviderID: "Aoede"},
}

// VoiceService manages the voice catalog and routes synthesis requests to the
// right provider: built-in voices go to the prebuilt synthesizer, cloned
// voices to the cloning provider that trained them. The registry is in-memory
// only; cloned voices vanish on restart.
type VoiceService struct {
	builtin repositories.SpeechSynthesizer
	cloned  repositories.SpeechSynthesizer
	cloner  repositories.VoiceCloner
	logger  *zap.Logger

	mu     sync.RWMutex
	voices map[string]domain.VoiceProfile
	order  []string
}

// NewVoiceService creates a voice service seeded with the built-in voices.
func NewVoiceService(builtin repositories.SpeechSynthesizer, cloned repositories.SpeechSynthesizer, cloner repositories.VoiceCloner, logger *zap.Logger) *VoiceService {
	s := &VoiceService{
		builtin: builtin,
		cloned:  cloned,
		cloner:  cloner,
		logger:  logger,
		voices:  make(map[string]domain.VoiceProfile),
	}
	for _, v := range builtInVoices {
		s.voices[v.ID] = v
		s.order = append(s.order, v.ID)
	}
	return s
}

// List returns every voice in the catalog, built-ins first and clones in
// creation order.
func (s *VoiceService) List() []domain.VoiceProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profiles := make([]domain.VoiceProfile, 0, len(s.order))
	for _, id := range s.order {
		profiles = append(profiles, s.voices[id])
	}
	return profiles
}

// Clone trains a new voice from one audio sample and registers it.
func (s *VoiceService) Clone(ctx context.Context, name string, sample domain.Attachment) (domain.VoiceProfile, error) {
	if strings.TrimSpace(name) == "" {
		return domain.VoiceProfile{}, &domain.MissingFieldError{Field: "name"}
	}
	if sample.IsEmpty() {
		return domain.VoiceProfile{}, &domain.MissingFieldError{Field: "sample"}
	}

	providerID, err := s.cloner.CloneVoice(ctx, name, sample)
	if err != nil {
		return domain.VoiceProfile{}, err
	}

	profile := domain.VoiceProfile{
		ID:         uuid.NewString(),
		Name:       name,
		Style:      "Cloned",
		Provenance: domain.VoiceCloned,
		ProviderID: providerID,
	}

	s.mu.Lock()
	s.voices[profile.ID] = profile
	s.order = append(s.order, profile.ID)
	s.mu.Unlock()

	s.logger.Info("Voice registered",
		zap.String("voiceID", profile.ID),
		zap.String("name", name))
	return profile, nil
}

// ImportCloned seeds the registry with cloned voices already trained at the
// provider, typically on startup. Provider entries that are not clones or
// that collide with an existing id are skipped. Returns how many voices were
// added.
func (s *VoiceService) ImportCloned(profiles []domain.VoiceProfile) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	imported := 0
	for _, p := range profiles {
		if p.Provenance != domain.VoiceCloned || p.ID == "" {
			continue
		}
		if _, ok := s.voices[p.ID]; ok {
			continue
		}
		s.voices[p.ID] = p
		s.order = append(s.order, p.ID)
		imported++
	}
	return imported
}

// Rename changes the display name of a cloned voice.
func (s *VoiceService) Rename(id string, name string) (domain.VoiceProfile, error) {
	if strings.TrimSpace(name) == "" {
		return domain.VoiceProfile{}, &domain.MissingFieldError{Field: "name"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.voices[id]
	if !ok {
		return domain.VoiceProfile{}, ErrVoiceNotFound
	}
	if profile.Provenance != domain.VoiceCloned {
		return domain.VoiceProfile{}, ErrBuiltInVoice
	}
	profile.Name = name
	s.voices[id] = profile
	return profile, nil
}

// Synthesize produces speech for a voice in the catalog. An empty voice id
// falls back to the first built-in voice.
func (s *VoiceService) Synthesize(ctx context.Context, req domain.SpeechRequest) (domain.SpeechResult, error) {
	if err := req.Validate(); err != nil {
		return domain.SpeechResult{}, err
	}

	voiceID := req.VoiceID
	if voiceID == "" {
		voiceID = builtInVoices[0].ID
	}

	s.mu.RLock()
	profile, ok := s.voices[voiceID]
	s.mu.RUnlock()
	if !ok {
		return domain.SpeechResult{}, ErrVoiceNotFound
	}

	if profile.Provenance == domain.VoiceCloned {
		return s.cloned.SynthesizeSpeech(ctx, req.Text, profile.ProviderID)
	}
	return s.builtin.SynthesizeSpeech(ctx, req.Text, profile.ProviderID)
}
