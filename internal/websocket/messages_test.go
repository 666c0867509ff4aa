package websocket

import (
	"encoding/json"
	"testing"
)

func TestMarshalStateMessage(t *testing.T) {
	var msg StateMessage
	if err := json.Unmarshal(marshalStateMessage("open"), &msg); err != nil {
		t.Fatalf("Failed to unmarshal state message: %v", err)
	}
	if msg.Type != MessageTypeSessionState {
		t.Errorf("Expected type %s, got %s", MessageTypeSessionState, msg.Type)
	}
	if msg.State != "open" {
		t.Errorf("Expected state 'open', got '%s'", msg.State)
	}
}

func TestMarshalAudioHeader(t *testing.T) {
	var msg AudioHeaderMessage
	if err := json.Unmarshal(marshalAudioHeader(7, 1500, 170), &msg); err != nil {
		t.Fatalf("Failed to unmarshal audio header: %v", err)
	}
	if msg.Seq != 7 {
		t.Errorf("Expected seq 7, got %d", msg.Seq)
	}
	if msg.StartMs != 1500 || msg.DurationMs != 170 {
		t.Errorf("Unexpected schedule: start %d, duration %d", msg.StartMs, msg.DurationMs)
	}
}

func TestMarshalAmplitudeMessage(t *testing.T) {
	var msg AmplitudeMessage
	if err := json.Unmarshal(marshalAmplitudeMessage(42.5), &msg); err != nil {
		t.Fatalf("Failed to unmarshal amplitude message: %v", err)
	}
	if msg.Level != 42.5 {
		t.Errorf("Expected level 42.5, got %f", msg.Level)
	}
}

func TestControlMessageParsing(t *testing.T) {
	raw := `{"type":"session_start","voice":"Puck","model":"custom-model"}`
	var msg ControlMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("Failed to parse control message: %v", err)
	}
	if msg.Type != MessageTypeSessionStart {
		t.Errorf("Expected session_start, got %s", msg.Type)
	}
	if msg.Voice != "Puck" {
		t.Errorf("Expected voice Puck, got %s", msg.Voice)
	}

	raw = `{"type":"audio_done","seq":12}`
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("Failed to parse control message: %v", err)
	}
	if msg.Type != MessageTypeAudioDone || msg.Seq != 12 {
		t.Errorf("Unexpected ack message: %+v", msg)
	}
}
