package websocket

import (
	"time"

	"go.uber.org/zap"
)

// SessionReaper stops live sessions that run past the allowed duration. Live
// audio is billed per minute upstream; a tab left open must not stream
// forever.
type SessionReaper struct {
	hub      *Hub
	maxAge   time.Duration
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
}

// NewSessionReaper creates a reaper for sessions older than maxAge.
func NewSessionReaper(hub *Hub, maxAge time.Duration, logger *zap.Logger) *SessionReaper {
	return &SessionReaper{
		hub:      hub,
		maxAge:   maxAge,
		interval: time.Minute,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins the background reaping process
func (s *SessionReaper) Start() {
	go s.reapLoop()
	s.logger.Info("Session reaper started", zap.Duration("maxAge", s.maxAge))
}

// Stop gracefully stops the reaper
func (s *SessionReaper) Stop() {
	close(s.stopChan)
	s.logger.Info("Session reaper stopped")
}

func (s *SessionReaper) reapLoop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.reap()
		}
	}
}

func (s *SessionReaper) reap() {
	s.hub.mu.RLock()
	clients := make([]*Client, 0, len(s.hub.clients))
	for _, client := range s.hub.clients {
		clients = append(clients, client)
	}
	s.hub.mu.RUnlock()

	for _, client := range clients {
		if age := client.sessionAge(); age > s.maxAge {
			s.logger.Warn("Stopping overlong live session",
				zap.String("clientID", client.id),
				zap.Duration("age", age))
			client.stopSession()
		}
	}
}
