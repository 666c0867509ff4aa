package gemini

import (
	"context"

	"google.golang.org/genai"

	"github.com/viralforge/server/domain/repositories"
)

// Connect opens a duplex voice channel against the Gemini Live API.
func (s *Studio) Connect(ctx context.Context, cfg repositories.LiveConfig) (repositories.LiveStream, error) {
	model := cfg.Model
	if model == "" {
		model = ModelLive
	}
	voice := cfg.Voice
	if voice == "" {
		voice = "Puck"
	}

	session, err := s.client.Live.Connect(ctx, model, &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	return &liveStream{session: session, mimeType: cfg.InputMIMEType}, nil
}

type liveStream struct {
	session  *genai.Session
	mimeType string
}

func (l *liveStream) SendAudio(data []byte) error {
	return l.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Media: &genai.Blob{Data: data, MIMEType: l.mimeType},
	})
}

func (l *liveStream) Receive() (repositories.LiveEvent, error) {
	msg, err := l.session.Receive()
	if err != nil {
		return repositories.LiveEvent{}, err
	}

	ev := repositories.LiveEvent{}
	if msg.ServerContent != nil {
		ev.TurnComplete = msg.ServerContent.TurnComplete
		if msg.ServerContent.ModelTurn != nil {
			for _, part := range msg.ServerContent.ModelTurn.Parts {
				if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
					ev.Audio = append(ev.Audio, part.InlineData.Data...)
				}
			}
		}
	}
	return ev, nil
}

func (l *liveStream) Close() error {
	return l.session.Close()
}
