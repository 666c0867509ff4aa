package websocket

import "encoding/json"

// MessageType defines the type of WebSocket control message
type MessageType string

// Supported message types. Text frames carry control and status JSON; audio
// itself always travels in binary frames.
const (
	// Client to server
	MessageTypeSessionStart MessageType = "session_start"
	MessageTypeSessionStop  MessageType = "session_stop"
	MessageTypeAudioDone    MessageType = "audio_done"

	// Server to client
	MessageTypeSessionState MessageType = "session_state"
	MessageTypeAmplitude    MessageType = "amplitude"
	MessageTypeAudio        MessageType = "audio"
	MessageTypeError        MessageType = "error"
)

// ControlMessage is an inbound text frame from the browser.
type ControlMessage struct {
	Type  MessageType `json:"type"`
	Model string      `json:"model,omitempty"`
	Voice string      `json:"voice,omitempty"`

	// Seq acknowledges a finished playback buffer on audio_done.
	Seq uint64 `json:"seq,omitempty"`
}

// StateMessage reports a session lifecycle transition.
type StateMessage struct {
	Type  MessageType `json:"type"`
	State string      `json:"state"`
}

// AmplitudeMessage carries the capture level meter for visual feedback.
type AmplitudeMessage struct {
	Type  MessageType `json:"type"`
	Level float64     `json:"level"`
}

// AudioHeaderMessage announces the binary playback frame that follows it.
// The client schedules the frame at StartMs on its playback clock and replies
// with audio_done carrying the same Seq once it finished playing.
type AudioHeaderMessage struct {
	Type       MessageType `json:"type"`
	Seq        uint64      `json:"seq"`
	StartMs    int64       `json:"start_ms"`
	DurationMs int64       `json:"duration_ms"`
}

// ErrorMessage reports a recoverable protocol or session error.
type ErrorMessage struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

func marshalStateMessage(state string) []byte {
	data, _ := json.Marshal(StateMessage{Type: MessageTypeSessionState, State: state})
	return data
}

func marshalAmplitudeMessage(level float64) []byte {
	data, _ := json.Marshal(AmplitudeMessage{Type: MessageTypeAmplitude, Level: level})
	return data
}

func marshalAudioHeader(seq uint64, startMs, durationMs int64) []byte {
	data, _ := json.Marshal(AudioHeaderMessage{
		Type:       MessageTypeAudio,
		Seq:        seq,
		StartMs:    startMs,
		DurationMs: durationMs,
	})
	return data
}

func marshalErrorMessage(message string) []byte {
	data, _ := json.Marshal(ErrorMessage{Type: MessageTypeError, Message: message})
	return data
}
