package live

import (
	"math"
	"testing"
)

func TestEncodeDecodePCM16RoundTrip(t *testing.T) {
	in := []float32{0, 0.25, -0.25, 0.5, -0.5, 0.999, -0.999}
	out := DecodePCM16(EncodePCM16(in))

	if len(out) != len(in) {
		t.Fatalf("Expected %d samples, got %d", len(in), len(out))
	}
	for i := range in {
		if math.Abs(float64(out[i]-in[i])) > 1.0/32768.0 {
			t.Errorf("Sample %d: expected %f, got %f", i, in[i], out[i])
		}
	}
}

func TestEncodePCM16Clipping(t *testing.T) {
	data := EncodePCM16([]float32{1.5, -1.5})
	out := DecodePCM16(data)

	if out[0] < 0.999 {
		t.Errorf("Expected positive clip near 1.0, got %f", out[0])
	}
	if out[1] > -0.999 {
		t.Errorf("Expected negative clip near -1.0, got %f", out[1])
	}
}

func TestDecodePCM16OddTrailingByte(t *testing.T) {
	out := DecodePCM16([]byte{0x00, 0x40, 0x7f})
	if len(out) != 1 {
		t.Fatalf("Expected 1 sample, got %d", len(out))
	}
}

func TestMeterLevel(t *testing.T) {
	if level := MeterLevel(nil); level != 0 {
		t.Errorf("Expected 0 for empty frame, got %f", level)
	}

	silent := make([]float32, 256)
	if level := MeterLevel(silent); level != 0 {
		t.Errorf("Expected 0 for silence, got %f", level)
	}

	frame := make([]float32, 256)
	for i := range frame {
		if i%2 == 0 {
			frame[i] = 0.5
		} else {
			frame[i] = -0.5
		}
	}
	level := MeterLevel(frame)
	if math.Abs(level-50) > 0.001 {
		t.Errorf("Expected level 50 for constant 0.5 amplitude, got %f", level)
	}
}
