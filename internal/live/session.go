package live

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/viralforge/server/domain"
	"github.com/viralforge/server/domain/repositories"
)

// State is the lifecycle state of a streaming audio session.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// CaptureSource is an open microphone stream delivering float32 frames at the
// capture rate. Close releases the underlying device and must be safe to call
// while Frames is being read.
type CaptureSource interface {
	Frames() <-chan []float32
	Close() error
}

// CaptureOpener requests device access and opens a capture stream.
type CaptureOpener func(ctx context.Context, sampleRate, frameSize int) (CaptureSource, error)

// SessionConfig configures one session. Zero values pick the fixed defaults.
type SessionConfig struct {
	Model     string
	Voice     string
	FrameSize int

	// Clock drives playback scheduling; defaults to wall time anchored at the
	// moment the channel opens.
	Clock Clock

	// Sink receives scheduled playback buffers.
	Sink PlaybackSink

	// OnState observes lifecycle transitions.
	OnState func(State)
}

// Session is a one-shot duplex voice session: started once, stopped once.
// Outbound capture frames are converted to 16-bit PCM and transmitted in
// capture order with no buffering beyond the frame in flight. Inbound audio is
// decoded and scheduled for gapless ordered playback. Stopping is immediate
// and unconditional.
type Session struct {
	cfg         SessionConfig
	transport   repositories.LiveTransport
	openCapture CaptureOpener
	logger      *zap.Logger

	mu        sync.Mutex
	state     State
	stopped   bool
	stream    repositories.LiveStream
	capture   CaptureSource
	queue     *PlaybackQueue
	notifying bool
	pending   []State

	stopOnce sync.Once
	done     chan struct{}
	level    atomic.Uint64
}

// NewSession creates an idle session.
func NewSession(cfg SessionConfig, transport repositories.LiveTransport, openCapture CaptureOpener, logger *zap.Logger) *Session {
	if cfg.FrameSize == 0 {
		cfg.FrameSize = DefaultFrameSize
	}
	return &Session{
		cfg:         cfg,
		transport:   transport,
		openCapture: openCapture,
		logger:      logger,
		state:       StateIdle,
		done:        make(chan struct{}),
	}
}

// Start moves the session Idle -> Connecting -> Open. A refused capture
// device aborts the start and returns the session to Idle with no side
// effects; a transport failure closes the capture device and the session.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return fmt.Errorf("session already started (state %s)", s.state)
	}
	s.setStateLocked(StateConnecting)
	s.mu.Unlock()

	capture, err := s.openCapture(ctx, CaptureSampleRate, s.cfg.FrameSize)
	if err != nil {
		s.mu.Lock()
		s.setStateLocked(StateIdle)
		s.mu.Unlock()
		if errors.Is(err, domain.ErrDeviceAccessDenied) {
			return err
		}
		return fmt.Errorf("open capture: %w", err)
	}

	stream, err := s.transport.Connect(ctx, repositories.LiveConfig{
		Model:         s.cfg.Model,
		Voice:         s.cfg.Voice,
		InputMIMEType: InputMIMEType,
	})
	if err != nil {
		capture.Close()
		s.mu.Lock()
		s.setStateLocked(StateClosed)
		s.mu.Unlock()
		return &domain.TransportError{Op: "live connect", Err: err}
	}

	clock := s.cfg.Clock
	if clock == nil {
		opened := time.Now()
		clock = func() time.Duration { return time.Since(opened) }
	}

	s.mu.Lock()
	if s.stopped {
		// Stop raced the connect; tear down what we just opened.
		s.mu.Unlock()
		capture.Close()
		stream.Close()
		return fmt.Errorf("session stopped during connect")
	}
	s.capture = capture
	s.stream = stream
	s.queue = NewPlaybackQueue(PlaybackSampleRate, clock, s.cfg.Sink)
	s.setStateLocked(StateOpen)
	s.mu.Unlock()

	go s.sendLoop(capture, stream)
	go s.recvLoop(stream)
	return nil
}

// Stop halts all pending playback, releases the capture device exactly once
// and closes the transport stream. Safe to call concurrently and repeatedly;
// it never waits for in-flight frames.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.setStateLocked(StateClosing)
		stream, capture, queue := s.stream, s.capture, s.queue
		s.mu.Unlock()

		if queue != nil {
			if dropped := queue.Halt(); dropped > 0 {
				s.logger.Debug("Dropped pending playback buffers", zap.Int("count", dropped))
			}
		}
		if capture != nil {
			if err := capture.Close(); err != nil {
				s.logger.Warn("Failed to release capture device", zap.Error(err))
			}
		}
		if stream != nil {
			if err := stream.Close(); err != nil {
				s.logger.Debug("Live stream close", zap.Error(err))
			}
		}

		s.mu.Lock()
		s.setStateLocked(StateClosed)
		s.mu.Unlock()
		close(s.done)
	})
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Level returns the most recent amplitude metric.
func (s *Session) Level() float64 {
	return math.Float64frombits(s.level.Load())
}

// CompletePlayback releases a scheduled buffer once the output device reports
// it finished playing.
func (s *Session) CompletePlayback(seq uint64) {
	s.mu.Lock()
	queue := s.queue
	s.mu.Unlock()
	if queue != nil {
		queue.Complete(seq)
	}
}

// PendingPlayback reports how many scheduled buffers are still tracked.
func (s *Session) PendingPlayback() int {
	s.mu.Lock()
	queue := s.queue
	s.mu.Unlock()
	if queue == nil {
		return 0
	}
	return queue.Pending()
}

// Done is closed once the session reaches Closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) setStateLocked(st State) {
	s.state = st
	if s.cfg.OnState == nil {
		return
	}
	// Transitions are queued and drained by a single goroutine so observers
	// see them in order, and the callback runs without holding the lock.
	s.pending = append(s.pending, st)
	if !s.notifying {
		s.notifying = true
		go s.drainNotifications()
	}
}

func (s *Session) drainNotifications() {
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.notifying = false
			s.mu.Unlock()
			return
		}
		st := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()
		s.cfg.OnState(st)
	}
}

// sendLoop transmits capture frames in order, one frame in flight at a time.
// There is deliberately no further buffering: a slow transport surfaces as a
// send error that closes the session rather than a growing backlog.
func (s *Session) sendLoop(capture CaptureSource, stream repositories.LiveStream) {
	for {
		select {
		case <-s.done:
			return
		case frame, ok := <-capture.Frames():
			if !ok {
				s.Stop()
				return
			}
			s.level.Store(math.Float64bits(MeterLevel(frame)))
			if err := stream.SendAudio(EncodePCM16(frame)); err != nil {
				select {
				case <-s.done:
				default:
					s.logger.Error("Failed to send capture frame", zap.Error(err))
				}
				s.Stop()
				return
			}
		}
	}
}

// recvLoop decodes inbound audio and schedules it for playback. Receive
// unblocks with an error when the stream closes, which ends the loop.
func (s *Session) recvLoop(stream repositories.LiveStream) {
	for {
		ev, err := stream.Receive()
		if err != nil {
			select {
			case <-s.done:
			default:
				s.logger.Warn("Live stream receive ended", zap.Error(err))
			}
			s.Stop()
			return
		}
		if len(ev.Audio) == 0 {
			continue
		}
		s.mu.Lock()
		queue := s.queue
		s.mu.Unlock()
		if queue != nil {
			queue.Schedule(DecodePCM16(ev.Audio))
		}
	}
}
