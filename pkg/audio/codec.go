package audio

import (
	"encoding/base64"
	"encoding/binary"
	"time"

	"github.com/aura-assist/aura/pkg/core"
)

// Common live audio format constants.
const (
	// CaptureSampleRate is the microphone capture rate (16 kHz).
	CaptureSampleRate = 16000

	// PlaybackSampleRate is the assistant speech rate (24 kHz).
	PlaybackSampleRate = 24000

	// CaptureMimeType is the outbound microphone chunk MIME type.
	CaptureMimeType = "audio/pcm;rate=16000"
)

// Encode converts raw bytes to the transport-safe text encoding.
func Encode(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}

// Decode is the exact inverse of Encode.
func Decode(text string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, core.NewProtocolError("decode audio payload", err)
	}
	return raw, nil
}

// Buffer is a decoded, playable audio segment.
type Buffer struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Duration returns the playback duration of the buffer.
func (b Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 || b.Channels <= 0 {
		return 0
	}
	frames := len(b.Samples) / b.Channels
	return time.Duration(frames) * time.Second / time.Duration(b.SampleRate)
}

// Seconds returns the duration in seconds as a float, matching the
// playback clock unit.
func (b Buffer) Seconds() float64 {
	return b.Duration().Seconds()
}

// BuildPlayable interprets raw as little-endian signed 16-bit PCM and
// normalizes each sample to [-1, 1]. An odd-length payload is rejected.
func BuildPlayable(raw []byte, sampleRate, channels int) (Buffer, error) {
	if len(raw)%2 != 0 {
		return Buffer{}, core.NewProtocolError("pcm payload has odd length", nil)
	}
	if sampleRate <= 0 || channels <= 0 {
		return Buffer{}, core.NewInvalidError("sample rate and channels must be positive")
	}

	samples := make([]float32, len(raw)/2)
	for i := range samples {
		s := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		samples[i] = float32(s) / 32768.0
	}
	return Buffer{Samples: samples, SampleRate: sampleRate, Channels: channels}, nil
}

// Float32ToPCM16 converts capture samples to little-endian signed 16-bit
// PCM by scaling by 32768 and truncating, clamping at the int16 range.
func Float32ToPCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, f := range samples {
		v := int32(f * 32768)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v)))
	}
	return out
}
