package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap/zaptest"

	"github.com/viralforge/server/domain/repositories"
	"github.com/viralforge/server/internal/live"
)

// echoTransport loops every outbound frame straight back, standing in for the
// remote voice endpoint.
type echoTransport struct{}

func (e *echoTransport) Connect(ctx context.Context, cfg repositories.LiveConfig) (repositories.LiveStream, error) {
	return &echoStream{
		events: make(chan repositories.LiveEvent, 64),
		done:   make(chan struct{}),
	}, nil
}

type echoStream struct {
	events    chan repositories.LiveEvent
	done      chan struct{}
	closeOnce sync.Once
}

func (s *echoStream) SendAudio(data []byte) error {
	select {
	case s.events <- repositories.LiveEvent{Audio: data}:
	default:
	}
	return nil
}

func (s *echoStream) Receive() (repositories.LiveEvent, error) {
	select {
	case ev := <-s.events:
		return ev, nil
	case <-s.done:
		return repositories.LiveEvent{}, fmt.Errorf("stream closed")
	}
}

func (s *echoStream) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

func setupTestServer(t *testing.T) (*httptest.Server, *Hub) {
	logger := zaptest.NewLogger(t)
	hub := NewHub(&echoTransport{}, logger)
	go hub.Run()

	e := echo.New()
	e.GET("/ws/live", func(c echo.Context) error {
		return HandleWebSocket(hub, c, logger)
	})

	server := httptest.NewServer(e)
	t.Cleanup(server.Close)
	return server, hub
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/live"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("WebSocket connection failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// waitForState reads frames until the session reports the wanted state.
func waitForState(t *testing.T, conn *websocket.Conn, want string) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Connection ended while waiting for state %q: %v", want, err)
		}
		if messageType != websocket.TextMessage {
			continue
		}
		var msg StateMessage
		if err := json.Unmarshal(message, &msg); err != nil || msg.Type != MessageTypeSessionState {
			continue
		}
		if msg.State == want {
			return
		}
	}
}

func TestHubTracksClients(t *testing.T) {
	logger := zaptest.NewLogger(t)
	hub := NewHub(&echoTransport{}, logger)
	go hub.Run()

	numClients := 5
	clients := make([]*Client, numClients)
	for i := 0; i < numClients; i++ {
		client := &Client{
			hub:    hub,
			id:     fmt.Sprintf("client-%d", i),
			send:   make(chan WriteData, 256),
			logger: logger,
		}
		clients[i] = client
		hub.register <- client
	}

	time.Sleep(100 * time.Millisecond)
	if got := len(hub.ActiveClients()); got != numClients {
		t.Errorf("Expected %d active clients, got %d", numClients, got)
	}

	for _, client := range clients {
		hub.unregister <- client
	}

	time.Sleep(100 * time.Millisecond)
	if got := len(hub.ActiveClients()); got != 0 {
		t.Errorf("Expected 0 active clients, got %d", got)
	}
}

func TestSessionLifecycleOverWebSocket(t *testing.T) {
	server, _ := setupTestServer(t)
	conn := dial(t, server)

	start, _ := json.Marshal(ControlMessage{Type: MessageTypeSessionStart, Voice: "Puck"})
	if err := conn.WriteMessage(websocket.TextMessage, start); err != nil {
		t.Fatalf("Failed to send session_start: %v", err)
	}
	waitForState(t, conn, "open")

	// One capture frame goes out, its echo must come back scheduled for
	// playback: an audio header followed by a binary frame of equal size.
	frame := live.EncodePCM16(make([]float32, 256))
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		t.Fatalf("Failed to send capture frame: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	sawHeader := false
	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Connection ended while waiting for playback: %v", err)
		}
		if messageType == websocket.TextMessage {
			var msg AudioHeaderMessage
			if json.Unmarshal(message, &msg) == nil && msg.Type == MessageTypeAudio {
				sawHeader = true
				if msg.DurationMs <= 0 {
					t.Errorf("Expected a positive playback duration, got %d", msg.DurationMs)
				}
			}
			continue
		}
		if messageType == websocket.BinaryMessage {
			if len(message) != len(frame) {
				t.Errorf("Expected %d playback bytes, got %d", len(frame), len(message))
			}
			break
		}
	}
	if !sawHeader {
		t.Error("Expected an audio header before the playback frame")
	}

	stop, _ := json.Marshal(ControlMessage{Type: MessageTypeSessionStop})
	if err := conn.WriteMessage(websocket.TextMessage, stop); err != nil {
		t.Fatalf("Failed to send session_stop: %v", err)
	}
	waitForState(t, conn, "closed")
}

func TestSessionStopWithoutStart(t *testing.T) {
	server, _ := setupTestServer(t)
	conn := dial(t, server)

	stop, _ := json.Marshal(ControlMessage{Type: MessageTypeSessionStop})
	if err := conn.WriteMessage(websocket.TextMessage, stop); err != nil {
		t.Fatalf("Failed to send session_stop: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Connection ended while waiting for error: %v", err)
		}
		if messageType != websocket.TextMessage {
			continue
		}
		var msg ErrorMessage
		if json.Unmarshal(message, &msg) == nil && msg.Type == MessageTypeError {
			return
		}
	}
}

func TestDoubleSessionStartRejected(t *testing.T) {
	server, _ := setupTestServer(t)
	conn := dial(t, server)

	start, _ := json.Marshal(ControlMessage{Type: MessageTypeSessionStart})
	if err := conn.WriteMessage(websocket.TextMessage, start); err != nil {
		t.Fatalf("Failed to send session_start: %v", err)
	}
	waitForState(t, conn, "open")

	if err := conn.WriteMessage(websocket.TextMessage, start); err != nil {
		t.Fatalf("Failed to send second session_start: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Connection ended while waiting for error: %v", err)
		}
		if messageType != websocket.TextMessage {
			continue
		}
		var msg ErrorMessage
		if json.Unmarshal(message, &msg) == nil && msg.Type == MessageTypeError {
			return
		}
	}
}

func TestTrySendAfterTeardownDoesNotPanic(t *testing.T) {
	logger := zaptest.NewLogger(t)
	hub := NewHub(&echoTransport{}, logger)
	go hub.Run()

	client := &Client{
		hub:    hub,
		id:     "late-sender",
		send:   make(chan WriteData, 1),
		logger: logger,
	}
	hub.register <- client

	// Teardown order as in readPump: mark the channel closing, then let the
	// hub close it on unregister.
	client.closeSend()
	hub.unregister <- client
	time.Sleep(50 * time.Millisecond)

	// Session callbacks can still fire after teardown; they must be
	// discarded, not crash on the closed channel.
	client.notifyState(live.StateClosed)
	client.playbackSink(live.Buffer{Samples: []float32{0}})
	client.trySend(websocket.TextMessage, marshalAmplitudeMessage(0))
}

func TestCaptureBridgeReplacesStaleFrame(t *testing.T) {
	bridge := newCaptureBridge()

	if !bridge.push([]float32{1}) {
		t.Fatal("Expected first push to succeed")
	}
	if !bridge.push([]float32{2}) {
		t.Fatal("Expected replacement push to succeed")
	}

	select {
	case frame := <-bridge.Frames():
		if frame[0] != 2 {
			t.Errorf("Expected the newest frame, got %v", frame)
		}
	default:
		t.Fatal("Expected a frame to be available")
	}

	bridge.Close()
	bridge.Close()
	if bridge.push([]float32{3}) {
		t.Error("Expected push after close to fail")
	}
}
