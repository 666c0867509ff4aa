package repositories

import "context"

// LiveConfig configures a duplex voice channel.
type LiveConfig struct {
	Model         string
	Voice         string
	InputMIMEType string
}

// LiveEvent is one inbound message on a live stream. Audio is raw 16-bit PCM
// at the playback rate; it may be empty on turn boundaries.
type LiveEvent struct {
	Audio        []byte
	TurnComplete bool
}

// LiveStream is an open duplex voice channel. SendAudio transmits one capture
// frame of 16-bit PCM in capture order. Receive blocks until the next inbound
// event or stream end.
type LiveStream interface {
	SendAudio(data []byte) error
	Receive() (LiveEvent, error)
	Close() error
}

// LiveTransport opens duplex voice channels against the remote endpoint.
type LiveTransport interface {
	Connect(ctx context.Context, cfg LiveConfig) (LiveStream, error)
}
