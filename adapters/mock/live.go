package mock

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/viralforge/server/domain/repositories"
)

// ErrStreamClosed is returned by Receive once the stream is closed.
var ErrStreamClosed = errors.New("mock live stream closed")

// framesPerTurn is how many inbound capture frames the mock "listens" to
// before it completes a spoken turn.
const framesPerTurn = 8

// Connect implements repositories.LiveTransport. The returned stream echoes a
// short canned voice clip for every capture frame it receives, so a duplex
// session exercises the full send and playback path without a remote endpoint.
func (s *Studio) Connect(ctx context.Context, cfg repositories.LiveConfig) (repositories.LiveStream, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.logger.Info("Opening mock live stream",
		zap.String("model", cfg.Model),
		zap.String("voice", cfg.Voice))

	return &liveStream{
		events: make(chan repositories.LiveEvent, 64),
		done:   make(chan struct{}),
	}, nil
}

type liveStream struct {
	events chan repositories.LiveEvent
	done   chan struct{}

	mu        sync.Mutex
	frames    int
	closeOnce sync.Once
}

// SendAudio implements repositories.LiveStream
func (l *liveStream) SendAudio(data []byte) error {
	select {
	case <-l.done:
		return ErrStreamClosed
	default:
	}

	l.mu.Lock()
	l.frames++
	turnDone := l.frames%framesPerTurn == 0
	l.mu.Unlock()

	l.emit(repositories.LiveEvent{Audio: patternBytes(len(data))})
	if turnDone {
		l.emit(repositories.LiveEvent{TurnComplete: true})
	}
	return nil
}

// emit drops events when the reader falls behind rather than blocking the
// sender.
func (l *liveStream) emit(ev repositories.LiveEvent) {
	select {
	case l.events <- ev:
	default:
	}
}

// Receive implements repositories.LiveStream
func (l *liveStream) Receive() (repositories.LiveEvent, error) {
	select {
	case ev := <-l.events:
		return ev, nil
	case <-l.done:
		return repositories.LiveEvent{}, ErrStreamClosed
	}
}

// Close implements repositories.LiveStream
func (l *liveStream) Close() error {
	l.closeOnce.Do(func() {
		close(l.done)
	})
	return nil
}
