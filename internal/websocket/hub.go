package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/viralforge/server/domain/repositories"
	"github.com/viralforge/server/internal/live"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512 * 1024 // 512KB for audio frames

	// How often the capture level meter is pushed to the client.
	meterPeriod = 250 * time.Millisecond

	// How long the upstream connect may take before session start fails.
	connectTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: Implement proper origin checking
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub maintains the set of active clients and hands each of them the shared
// live transport.
type Hub struct {
	// Registered clients.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	transport repositories.LiveTransport

	logger *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(transport repositories.LiveTransport, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		transport:  transport,
		logger:     logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			h.logger.Info("Client registered", zap.String("clientID", client.id))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Info("Client unregistered", zap.String("clientID", client.id))
		}
	}
}

// ActiveClients returns the ids of the connected clients.
func (h *Hub) ActiveClients() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	return ids
}

type WriteData struct {
	// MessageType is the type of the websocket message.
	// Expect websocket.TextMessage or websocket.BinaryMessage
	Type    int
	Payload []byte
}

// Client is a middleman between one websocket connection and its live voice
// session. At most one session is active per client at a time.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan WriteData

	id string

	logger *zap.Logger

	// sendMu orders trySend against closeSend so that no goroutine can write
	// to the send channel after the hub closes it.
	sendMu     sync.Mutex
	sendClosed bool

	mutex   sync.Mutex
	session *live.Session
	capture *captureBridge
	started time.Time
}

// HandleWebSocket handles websocket requests from the peer.
func HandleWebSocket(hub *Hub, c echo.Context, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	client := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan WriteData, 256),
		id:     uuid.NewString(),
		logger: logger,
	}

	client.hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}

// readPump pumps messages from the websocket connection to the session.
func (c *Client) readPump() {
	defer func() {
		c.stopSession()
		c.closeSend()
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		switch messageType {
		case websocket.TextMessage:
			c.processControl(message)
		case websocket.BinaryMessage:
			c.processCaptureFrame(message)
		default:
			c.logger.Warn("Received unknown message type", zap.Int("type", messageType))
		}
	}
}

// writePump pumps messages from the session to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(message.Type, message.Payload); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processControl handles inbound control messages.
func (c *Client) processControl(message []byte) {
	var msg ControlMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Error("Failed to parse control message", zap.Error(err))
		c.trySend(websocket.TextMessage, marshalErrorMessage("invalid control message"))
		return
	}

	switch msg.Type {
	case MessageTypeSessionStart:
		c.handleSessionStart(msg)
	case MessageTypeSessionStop:
		c.handleSessionStop()
	case MessageTypeAudioDone:
		c.handleAudioDone(msg.Seq)
	default:
		c.logger.Warn("Unknown control message type", zap.String("type", string(msg.Type)))
	}
}

// processCaptureFrame pushes one binary 16-bit PCM frame into the active
// session's capture stream.
func (c *Client) processCaptureFrame(data []byte) {
	c.mutex.Lock()
	capture := c.capture
	c.mutex.Unlock()

	if capture == nil {
		c.logger.Warn("Received capture frame without an active session",
			zap.String("clientID", c.id))
		return
	}
	if !capture.push(live.DecodePCM16(data)) {
		c.logger.Debug("Dropped capture frame", zap.String("clientID", c.id))
	}
}

// handleSessionStart opens a live voice session for this client.
func (c *Client) handleSessionStart(msg ControlMessage) {
	c.mutex.Lock()
	if c.session != nil && c.session.State() != live.StateClosed {
		c.mutex.Unlock()
		c.trySend(websocket.TextMessage, marshalErrorMessage("session already active"))
		return
	}

	capture := newCaptureBridge()
	session := live.NewSession(live.SessionConfig{
		Model:   msg.Model,
		Voice:   msg.Voice,
		Sink:    c.playbackSink,
		OnState: c.notifyState,
	}, c.hub.transport, capture.opener(), c.logger)

	c.session = session
	c.capture = capture
	c.started = time.Now()
	c.mutex.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := session.Start(ctx); err != nil {
		c.logger.Error("Failed to start live session",
			zap.String("clientID", c.id),
			zap.Error(err))
		c.mutex.Lock()
		c.session = nil
		c.capture = nil
		c.mutex.Unlock()
		c.trySend(websocket.TextMessage, marshalErrorMessage("failed to start session"))
		return
	}

	c.logger.Info("Live session started",
		zap.String("clientID", c.id),
		zap.String("voice", msg.Voice))
	go c.meterLoop(session)
}

// handleSessionStop stops the active session. Stopping twice is harmless.
func (c *Client) handleSessionStop() {
	c.mutex.Lock()
	session := c.session
	c.mutex.Unlock()

	if session == nil {
		c.trySend(websocket.TextMessage, marshalErrorMessage("no active session"))
		return
	}
	session.Stop()
}

// handleAudioDone releases a playback buffer the client finished playing.
func (c *Client) handleAudioDone(seq uint64) {
	c.mutex.Lock()
	session := c.session
	c.mutex.Unlock()

	if session != nil {
		session.CompletePlayback(seq)
	}
}

// playbackSink forwards a scheduled playback buffer to the client: a JSON
// header with the schedule, then the samples as one binary frame.
func (c *Client) playbackSink(buf live.Buffer) {
	c.trySend(websocket.TextMessage, marshalAudioHeader(
		buf.Seq,
		buf.Start.Milliseconds(),
		buf.Duration.Milliseconds(),
	))
	c.trySend(websocket.BinaryMessage, live.EncodePCM16(buf.Samples))
}

// notifyState pushes lifecycle transitions to the client.
func (c *Client) notifyState(state live.State) {
	c.trySend(websocket.TextMessage, marshalStateMessage(state.String()))
}

// meterLoop pushes the capture level meter until the session closes.
func (c *Client) meterLoop(session *live.Session) {
	ticker := time.NewTicker(meterPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-session.Done():
			return
		case <-ticker.C:
			c.trySend(websocket.TextMessage, marshalAmplitudeMessage(session.Level()))
		}
	}
}

// stopSession stops the active session, if any. Called when the connection
// goes away.
func (c *Client) stopSession() {
	c.mutex.Lock()
	session := c.session
	c.mutex.Unlock()
	if session != nil {
		session.Stop()
	}
}

// sessionAge reports how long the active session has been running, or zero.
func (c *Client) sessionAge() time.Duration {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.session == nil || c.session.State() == live.StateClosed {
		return 0
	}
	return time.Since(c.started)
}

// trySend queues an outbound message, dropping it if the client cannot keep
// up. Control frames are small; a full send buffer means the connection is
// effectively dead and the ping timeout will reap it. Session callbacks keep
// firing during teardown, so sends after closeSend are silently discarded.
func (c *Client) trySend(messageType int, payload []byte) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return
	}
	select {
	case c.send <- WriteData{Type: messageType, Payload: payload}:
	default:
		c.logger.Debug("Dropped outbound message", zap.String("clientID", c.id))
	}
}

// closeSend marks the send channel as closing. Must be called before the
// client unregisters; the hub closes the channel once the client is gone.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	c.sendClosed = true
	c.sendMu.Unlock()
}

// captureBridge adapts inbound websocket audio frames to the session's
// capture stream. It holds at most one frame; when the transport cannot keep
// up the oldest frame is replaced rather than queued.
type captureBridge struct {
	frames    chan []float32
	done      chan struct{}
	closeOnce sync.Once
}

func newCaptureBridge() *captureBridge {
	return &captureBridge{
		frames: make(chan []float32, 1),
		done:   make(chan struct{}),
	}
}

// Frames implements live.CaptureSource
func (b *captureBridge) Frames() <-chan []float32 {
	return b.frames
}

// Close implements live.CaptureSource
func (b *captureBridge) Close() error {
	b.closeOnce.Do(func() {
		close(b.done)
	})
	return nil
}

// push offers one frame, replacing a stale undelivered frame if needed.
// Returns false once the bridge is closed.
func (b *captureBridge) push(samples []float32) bool {
	select {
	case <-b.done:
		return false
	default:
	}

	select {
	case b.frames <- samples:
		return true
	default:
	}
	select {
	case <-b.frames:
	default:
	}
	select {
	case b.frames <- samples:
		return true
	default:
		return false
	}
}

// opener returns a CaptureOpener handing out this bridge. The browser owns
// the real microphone; by the time frames arrive here device access was
// already granted.
func (b *captureBridge) opener() live.CaptureOpener {
	return func(ctx context.Context, sampleRate, frameSize int) (live.CaptureSource, error) {
		return b, nil
	}
}
