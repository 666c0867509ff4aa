package live

import "encoding/binary"

const (
	// CaptureSampleRate is the fixed microphone capture rate.
	CaptureSampleRate = 16000

	// PlaybackSampleRate is the fixed rate of inbound model audio.
	PlaybackSampleRate = 24000

	// DefaultFrameSize is the number of samples per capture frame.
	DefaultFrameSize = 4096

	// InputMIMEType tags outbound capture frames on the wire.
	InputMIMEType = "audio/pcm;rate=16000"
)

// EncodePCM16 converts floating-point samples in [-1,1] to little-endian
// 16-bit signed PCM, clipping out-of-range values.
func EncodePCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := int32(s * 32768)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v)))
	}
	return out
}

// DecodePCM16 converts little-endian 16-bit signed PCM back to floating-point
// samples. A trailing odd byte is ignored.
func DecodePCM16(data []byte) []float32 {
	n := len(data) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(data[i*2:]))
		out[i] = float32(v) / 32768.0
	}
	return out
}

// MeterLevel computes the running amplitude metric for one frame: the mean
// absolute sample value scaled to roughly [0,100]. Purely for visual feedback;
// it never affects transmission.
func MeterLevel(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		if s < 0 {
			sum -= float64(s)
		} else {
			sum += float64(s)
		}
	}
	return sum / float64(len(samples)) * 100
}
