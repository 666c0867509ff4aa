package live

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/viralforge/server/domain"
	"github.com/viralforge/server/domain/repositories"
)

type fakeCapture struct {
	frames     chan []float32
	closeCount int32
	closeOnce  sync.Once
}

func newFakeCapture() *fakeCapture {
	return &fakeCapture{frames: make(chan []float32, 1)}
}

func (f *fakeCapture) Frames() <-chan []float32 { return f.frames }

func (f *fakeCapture) Close() error {
	atomic.AddInt32(&f.closeCount, 1)
	f.closeOnce.Do(func() { close(f.frames) })
	return nil
}

type fakeStream struct {
	mu     sync.Mutex
	sent   [][]byte
	events chan repositories.LiveEvent
	closed chan struct{}
	once   sync.Once
}

func newFakeStream() *fakeStream {
	return &fakeStream{
		events: make(chan repositories.LiveEvent, 16),
		closed: make(chan struct{}),
	}
}

func (f *fakeStream) SendAudio(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, data)
	return nil
}

func (f *fakeStream) Receive() (repositories.LiveEvent, error) {
	select {
	case ev := <-f.events:
		return ev, nil
	case <-f.closed:
		return repositories.LiveEvent{}, errors.New("stream closed")
	}
}

func (f *fakeStream) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeStream) sentFrames() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.sent))
	copy(out, f.sent)
	return out
}

type fakeTransport struct {
	stream   *fakeStream
	connects int32
	err      error
}

func (f *fakeTransport) Connect(ctx context.Context, cfg repositories.LiveConfig) (repositories.LiveStream, error) {
	atomic.AddInt32(&f.connects, 1)
	if f.err != nil {
		return nil, f.err
	}
	return f.stream, nil
}

func openerFor(c *fakeCapture) CaptureOpener {
	return func(ctx context.Context, sampleRate, frameSize int) (CaptureSource, error) {
		return c, nil
	}
}

func TestSessionStartAndStop(t *testing.T) {
	capture := newFakeCapture()
	transport := &fakeTransport{stream: newFakeStream()}
	session := NewSession(SessionConfig{}, transport, openerFor(capture), zaptest.NewLogger(t))

	if session.State() != StateIdle {
		t.Fatalf("Expected initial state idle, got %s", session.State())
	}

	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if session.State() != StateOpen {
		t.Errorf("Expected state open, got %s", session.State())
	}

	session.Stop()
	<-session.Done()

	if session.State() != StateClosed {
		t.Errorf("Expected state closed, got %s", session.State())
	}
	if n := atomic.LoadInt32(&capture.closeCount); n != 1 {
		t.Errorf("Expected capture device released exactly once, got %d", n)
	}
}

func TestSessionStopIdempotent(t *testing.T) {
	capture := newFakeCapture()
	transport := &fakeTransport{stream: newFakeStream()}
	session := NewSession(SessionConfig{}, transport, openerFor(capture), zaptest.NewLogger(t))

	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session.Stop()
		}()
	}
	wg.Wait()
	<-session.Done()

	if n := atomic.LoadInt32(&capture.closeCount); n != 1 {
		t.Errorf("Expected capture device released exactly once, got %d", n)
	}
	if session.State() != StateClosed {
		t.Errorf("Expected state closed, got %s", session.State())
	}
}

func TestSessionDeviceAccessDenied(t *testing.T) {
	transport := &fakeTransport{stream: newFakeStream()}
	opener := func(ctx context.Context, sampleRate, frameSize int) (CaptureSource, error) {
		return nil, domain.ErrDeviceAccessDenied
	}
	session := NewSession(SessionConfig{}, transport, opener, zaptest.NewLogger(t))

	err := session.Start(context.Background())
	if !errors.Is(err, domain.ErrDeviceAccessDenied) {
		t.Fatalf("Expected device access denied, got %v", err)
	}
	if session.State() != StateIdle {
		t.Errorf("Expected state idle after denied access, got %s", session.State())
	}
	if atomic.LoadInt32(&transport.connects) != 0 {
		t.Error("Expected no transport connection after denied access")
	}
}

func TestSessionTransportFailureReleasesCapture(t *testing.T) {
	capture := newFakeCapture()
	transport := &fakeTransport{err: errors.New("endpoint unavailable")}
	session := NewSession(SessionConfig{}, transport, openerFor(capture), zaptest.NewLogger(t))

	err := session.Start(context.Background())
	if !domain.IsTransport(err) {
		t.Fatalf("Expected transport error, got %v", err)
	}
	if n := atomic.LoadInt32(&capture.closeCount); n != 1 {
		t.Errorf("Expected capture device released, close count %d", n)
	}
	if session.State() != StateClosed {
		t.Errorf("Expected state closed, got %s", session.State())
	}
}

func TestSessionTransmitsFramesInOrder(t *testing.T) {
	capture := newFakeCapture()
	stream := newFakeStream()
	transport := &fakeTransport{stream: stream}
	session := NewSession(SessionConfig{FrameSize: 4}, transport, openerFor(capture), zaptest.NewLogger(t))

	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	capture.frames <- []float32{0.1, 0.1, 0.1, 0.1}
	capture.frames <- []float32{0.2, 0.2, 0.2, 0.2}

	deadline := time.After(2 * time.Second)
	for {
		if len(stream.sentFrames()) >= 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("Timed out waiting for transmitted frames")
		case <-time.After(5 * time.Millisecond):
		}
	}

	sent := stream.sentFrames()
	if len(sent[0]) != 8 {
		t.Errorf("Expected 8-byte PCM frame, got %d bytes", len(sent[0]))
	}
	first := DecodePCM16(sent[0])
	second := DecodePCM16(sent[1])
	if first[0] > second[0] {
		t.Error("Expected frames transmitted in capture order")
	}
	if session.Level() <= 0 {
		t.Error("Expected amplitude metric to be updated")
	}

	session.Stop()
	<-session.Done()
}

func TestSessionStateNotificationsOrdered(t *testing.T) {
	capture := newFakeCapture()
	transport := &fakeTransport{stream: newFakeStream()}

	var mu sync.Mutex
	var states []State
	cfg := SessionConfig{OnState: func(st State) {
		mu.Lock()
		states = append(states, st)
		mu.Unlock()
	}}
	session := NewSession(cfg, transport, openerFor(capture), zaptest.NewLogger(t))

	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	session.Stop()
	<-session.Done()

	want := []State{StateConnecting, StateOpen, StateClosing, StateClosed}
	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := len(states)
		mu.Unlock()
		if n >= len(want) {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("Timed out waiting for notifications, got %v", states)
		case <-time.After(5 * time.Millisecond):
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for i, st := range want {
		if states[i] != st {
			t.Errorf("Notification %d: expected %s, got %s", i, st, states[i])
		}
	}
}

func TestSessionSchedulesInboundAudio(t *testing.T) {
	capture := newFakeCapture()
	stream := newFakeStream()
	transport := &fakeTransport{stream: stream}

	scheduled := make(chan Buffer, 8)
	cfg := SessionConfig{
		Clock: func() time.Duration { return 0 },
		Sink:  func(b Buffer) { scheduled <- b },
	}
	session := NewSession(cfg, transport, openerFor(capture), zaptest.NewLogger(t))

	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Three inbound buffers of different durations.
	for _, n := range []int{2400, 600, 4800} {
		stream.events <- repositories.LiveEvent{Audio: EncodePCM16(make([]float32, n))}
	}

	var expectedStart time.Duration
	for i := 0; i < 3; i++ {
		select {
		case buf := <-scheduled:
			if buf.Start != expectedStart {
				t.Errorf("Buffer %d: expected start %v, got %v", i, expectedStart, buf.Start)
			}
			expectedStart += buf.Duration
		case <-time.After(2 * time.Second):
			t.Fatal("Timed out waiting for scheduled buffer")
		}
	}

	if session.PendingPlayback() != 3 {
		t.Errorf("Expected 3 tracked buffers, got %d", session.PendingPlayback())
	}

	session.Stop()
	<-session.Done()

	if session.PendingPlayback() != 0 {
		t.Errorf("Expected pending buffers halted on stop, got %d", session.PendingPlayback())
	}
}
